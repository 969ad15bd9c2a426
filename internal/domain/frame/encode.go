package frame

import (
	"encoding/binary"
	"math"
)

// Synthesis helpers. Production traffic comes off the radio; these
// exist for the replay tool and for exercising the decode path.

// EncodeNotification builds a 16-byte notification frame. A zero
// impedance or heart rate leaves the field absent.
func EncodeNotification(weightKg float64, impedanceOhm, heartRateBPM int, settled bool) []byte {
	data := make([]byte, gattFrameLen)
	data[0] = gattHeader
	binary.LittleEndian.PutUint16(data[gattWeightOff:gattWeightOff+2], uint16(math.Round(weightKg*weightScale)))
	data[gattImpOff] = byte(impedanceOhm)
	data[gattImpOff+1] = byte(impedanceOhm >> 8)
	data[gattImpOff+2] = byte(impedanceOhm >> 16)
	data[gattHROff] = byte(heartRateBPM)
	if !settled {
		data[gattSettleOff] = 0x01
	}
	return data
}

// EncodeAdvertisement builds a manufacturer-data packet. With a zero
// impedance it produces a live weight-only packet whose status byte
// depends on stable; otherwise a composition packet, final or not.
func EncodeAdvertisement(weightKg float64, impedanceOhm, heartRateBPM int, stable, final bool) []byte {
	data := make([]byte, advBodyCompLen)
	binary.LittleEndian.PutUint16(data[advWeightOff:advWeightOff+2], uint16(math.Round(weightKg*weightScale)))

	if impedanceOhm <= 0 {
		if stable {
			data[advStatusOff] = advStableStatus
		} else {
			data[advStatusOff] = advLiveStatus
		}
		return data
	}

	status := byte(advBodyCompFlag)
	if final {
		status |= advFinalFlag
	}
	data[advStatusOff] = status
	data[advHROff] = byte(heartRateBPM)
	binary.LittleEndian.PutUint16(data[advImpOff:advImpOff+2], uint16(math.Round(float64(impedanceOhm)*advImpedanceScale)))
	return data
}
