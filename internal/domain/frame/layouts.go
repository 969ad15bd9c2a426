// Package frame decodes raw scale frames into typed readings.
//
// Byte layouts are fixed per device capability tag and documented here
// as data. They are not negotiated at runtime; the capability tag is a
// static property of the device model resolved at connection time.
package frame

// Capability classifies a device model by the fields its frames carry.
type Capability int

const (
	// CapWeightOnly devices report weight and a settle flag only.
	CapWeightOnly Capability = iota
	// CapBodyComposition devices add bioelectrical impedance.
	CapBodyComposition
	// CapBodyCompositionHR devices add impedance and heart rate.
	CapBodyCompositionHR
	// CapAdvertisement devices broadcast manufacturer-data packets
	// carrying weight, impedance and heart rate without a connection.
	CapAdvertisement
)

// String returns the capability label used in logs and config files.
func (c Capability) String() string {
	switch c {
	case CapBodyComposition:
		return "body_composition"
	case CapBodyCompositionHR:
		return "body_composition_hr"
	case CapAdvertisement:
		return "advertisement"
	default:
		return "weight_only"
	}
}

// SupportsBodyComposition reports whether frames carry impedance.
func (c Capability) SupportsBodyComposition() bool {
	return c != CapWeightOnly
}

// SupportsHeartRate reports whether frames carry a heart rate field.
func (c Capability) SupportsHeartRate() bool {
	return c == CapBodyCompositionHR || c == CapAdvertisement
}

// ModelCapability maps each supported device model to its capability
// tag. Unknown models are rejected at configuration time.
var ModelCapability = map[string]Capability{
	"T9140": CapWeightOnly,
	"T9146": CapWeightOnly,
	"T9147": CapWeightOnly,
	"T9148": CapBodyComposition,
	"T9149": CapBodyCompositionHR,
	"T9150": CapAdvertisement,
}

// CapabilityForModel resolves a model name to its capability tag.
func CapabilityForModel(model string) (Capability, error) {
	cap, ok := ModelCapability[model]
	if !ok {
		return CapWeightOnly, ErrUnknownModel
	}
	return cap, nil
}

// Notification frame layout (T9140..T9149), 16 bytes:
//
//	[0]     header, always 0xCF
//	[2]     sanity byte, always 0x00
//	[6:8]   weight, uint16 LE, 1/100 kg
//	[8:11]  impedance, uint24 LE, ohms (composition models)
//	[11]    heart rate, bpm, 0 = absent (heart-rate models)
//	[12]    settle flag, 0x00 = final
const (
	gattFrameLen    = 16
	gattHeader      = 0xCF
	gattWeightOff   = 6
	gattImpOff      = 8
	gattHROff       = 11
	gattSettleOff   = 12
)

// Advertisement packet layout (T9150 manufacturer data):
//
//	[10]     status byte; 0x20 bit = composition payload present,
//	         0x80 bit = final; 0x01/0x05 = live weight-only packet
//	[12:14]  weight, uint16 LE, 1/100 kg
//	[15]     heart rate, bpm, 0 = absent
//	[17:19]  impedance, uint16 LE, 1/10 ohm
const (
	advMinLen       = 18
	advBodyCompLen  = 19
	advStatusOff    = 10
	advWeightOff    = 12
	advHROff        = 15
	advImpOff       = 17
	advBodyCompFlag = 0x20
	advFinalFlag    = 0x80
	advLiveStatus   = 0x01
	advStableStatus = 0x05
)

// weightScale converts the fixed-point weight field to kilograms.
const weightScale = 100.0

// advImpedanceScale converts the advertisement impedance field to ohms.
const advImpedanceScale = 10.0
