package frame

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/lyntoo/ha-eufylife-ble/internal/domain/model"
)

// Decode parses one raw frame using the fixed layout selected by the
// capability tag. Failures leave no state behind; the caller drops the
// frame and waits for the next one.
func Decode(cap Capability, data []byte) (model.DecodedReading, error) {
	if cap == CapAdvertisement {
		return decodeAdvertisement(cap, data)
	}
	return decodeNotification(cap, data)
}

func decodeNotification(cap Capability, data []byte) (model.DecodedReading, error) {
	if len(data) < gattFrameLen {
		return model.DecodedReading{}, fmt.Errorf("notification frame: got %d bytes, need %d: %w", len(data), gattFrameLen, ErrFrameTooShort)
	}
	if data[0] != gattHeader || data[2] != 0x00 {
		return model.DecodedReading{}, fmt.Errorf("notification frame: header 0x%02X sanity 0x%02X: %w", data[0], data[2], ErrBadHeader)
	}

	weightKg := float64(binary.LittleEndian.Uint16(data[gattWeightOff:gattWeightOff+2])) / weightScale
	settled := data[gattSettleOff] == 0x00

	r := model.DecodedReading{
		WeightKg: weightKg,
		IsStable: settled,
	}
	if settled && weightKg > 0 {
		r.Kind = model.Final
	}

	if cap.SupportsBodyComposition() {
		raw := int(data[gattImpOff]) | int(data[gattImpOff+1])<<8 | int(data[gattImpOff+2])<<16
		if raw > 0 {
			r.ImpedanceOhm = &raw
		}
	}
	if cap.SupportsHeartRate() {
		if hr := int(data[gattHROff]); hr > 0 {
			r.HeartRateBPM = &hr
		}
	}
	return r, nil
}

func decodeAdvertisement(_ Capability, data []byte) (model.DecodedReading, error) {
	if len(data) < advMinLen {
		return model.DecodedReading{}, fmt.Errorf("advertisement packet: got %d bytes, need %d: %w", len(data), advMinLen, ErrFrameTooShort)
	}

	status := data[advStatusOff]

	// Composition packet: weight + impedance + heart rate.
	if status&advBodyCompFlag != 0 {
		if len(data) < advBodyCompLen {
			return model.DecodedReading{}, fmt.Errorf("composition packet: got %d bytes, need %d: %w", len(data), advBodyCompLen, ErrFrameTooShort)
		}

		weightKg := float64(binary.LittleEndian.Uint16(data[advWeightOff:advWeightOff+2])) / weightScale
		final := status&advFinalFlag != 0

		r := model.DecodedReading{
			WeightKg: weightKg,
			IsStable: final,
		}
		if final && weightKg > 0 {
			r.Kind = model.Final
		}
		if hr := int(data[advHROff]); hr > 0 {
			r.HeartRateBPM = &hr
		}
		if raw := binary.LittleEndian.Uint16(data[advImpOff : advImpOff+2]); raw > 0 {
			ohm := int(math.Round(float64(raw) / advImpedanceScale))
			r.ImpedanceOhm = &ohm
		}
		return r, nil
	}

	// Live weight-only packet.
	if status == advLiveStatus || status == advStableStatus {
		weightKg := float64(binary.LittleEndian.Uint16(data[advWeightOff:advWeightOff+2])) / weightScale
		stable := status == advStableStatus

		r := model.DecodedReading{
			WeightKg: weightKg,
			IsStable: stable,
		}
		if stable && weightKg > 0 {
			r.Kind = model.Final
		}
		return r, nil
	}

	return model.DecodedReading{}, fmt.Errorf("advertisement packet: status 0x%02X: %w", status, ErrBadHeader)
}
