package frame_test

import (
	"testing"

	"github.com/lyntoo/ha-eufylife-ble/internal/domain/frame"
	"github.com/lyntoo/ha-eufylife-ble/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCapabilityForModel(t *testing.T) {
	Convey("Given the supported model table", t, func() {
		Convey("When resolving a weight-only model", func() {
			cap, err := frame.CapabilityForModel("T9146")

			So(err, ShouldBeNil)
			So(cap, ShouldEqual, frame.CapWeightOnly)
			So(cap.SupportsBodyComposition(), ShouldBeFalse)
			So(cap.SupportsHeartRate(), ShouldBeFalse)
		})

		Convey("When resolving a heart-rate model", func() {
			cap, err := frame.CapabilityForModel("T9149")

			So(err, ShouldBeNil)
			So(cap.SupportsBodyComposition(), ShouldBeTrue)
			So(cap.SupportsHeartRate(), ShouldBeTrue)
		})

		Convey("When resolving an unknown model", func() {
			_, err := frame.CapabilityForModel("T9999")

			So(err, ShouldEqual, frame.ErrUnknownModel)
		})
	})
}

func TestDecodeNotification(t *testing.T) {
	Convey("Given notification frames", t, func() {
		Convey("When decoding a live frame", func() {
			data := frame.EncodeNotification(42.5, 0, 0, false)
			r, err := frame.Decode(frame.CapWeightOnly, data)

			Convey("Then it should be a real-time reading", func() {
				So(err, ShouldBeNil)
				So(r.Kind, ShouldEqual, model.RealTime)
				So(r.WeightKg, ShouldEqual, 42.5)
				So(r.IsStable, ShouldBeFalse)
				So(r.ImpedanceOhm, ShouldBeNil)
				So(r.HeartRateBPM, ShouldBeNil)
			})
		})

		Convey("When decoding a settled frame with impedance and heart rate", func() {
			data := frame.EncodeNotification(70.0, 500, 72, true)
			r, err := frame.Decode(frame.CapBodyCompositionHR, data)

			Convey("Then it should be a final reading with both extras", func() {
				So(err, ShouldBeNil)
				So(r.Kind, ShouldEqual, model.Final)
				So(r.WeightKg, ShouldEqual, 70.0)
				So(r.ImpedanceOhm, ShouldNotBeNil)
				So(*r.ImpedanceOhm, ShouldEqual, 500)
				So(r.HeartRateBPM, ShouldNotBeNil)
				So(*r.HeartRateBPM, ShouldEqual, 72)
			})
		})

		Convey("When the capability does not carry impedance", func() {
			data := frame.EncodeNotification(70.0, 500, 72, true)
			r, err := frame.Decode(frame.CapWeightOnly, data)

			Convey("Then the extra fields stay absent rather than zero", func() {
				So(err, ShouldBeNil)
				So(r.ImpedanceOhm, ShouldBeNil)
				So(r.HeartRateBPM, ShouldBeNil)
			})
		})

		Convey("When the impedance field reads zero", func() {
			data := frame.EncodeNotification(70.0, 0, 0, true)
			r, err := frame.Decode(frame.CapBodyComposition, data)

			Convey("Then impedance is absent, not zero", func() {
				So(err, ShouldBeNil)
				So(r.ImpedanceOhm, ShouldBeNil)
			})
		})

		Convey("When a settled frame reads zero weight", func() {
			data := frame.EncodeNotification(0, 0, 0, true)
			r, err := frame.Decode(frame.CapWeightOnly, data)

			Convey("Then it stays a real-time reading", func() {
				So(err, ShouldBeNil)
				So(r.Kind, ShouldEqual, model.RealTime)
			})
		})

		Convey("When the frame is too short", func() {
			_, err := frame.Decode(frame.CapWeightOnly, make([]byte, 10))

			So(err, ShouldWrap, frame.ErrFrameTooShort)
		})

		Convey("When the header byte is wrong", func() {
			data := frame.EncodeNotification(42.5, 0, 0, false)
			data[0] = 0xAB
			_, err := frame.Decode(frame.CapWeightOnly, data)

			So(err, ShouldWrap, frame.ErrBadHeader)
		})

		Convey("When the sanity byte is wrong", func() {
			data := frame.EncodeNotification(42.5, 0, 0, false)
			data[2] = 0x01
			_, err := frame.Decode(frame.CapWeightOnly, data)

			So(err, ShouldWrap, frame.ErrBadHeader)
		})
	})
}

func TestDecodeAdvertisement(t *testing.T) {
	Convey("Given advertisement packets", t, func() {
		Convey("When decoding a live weight packet", func() {
			data := frame.EncodeAdvertisement(55.3, 0, 0, false, false)
			r, err := frame.Decode(frame.CapAdvertisement, data)

			So(err, ShouldBeNil)
			So(r.Kind, ShouldEqual, model.RealTime)
			So(r.WeightKg, ShouldEqual, 55.3)
			So(r.IsStable, ShouldBeFalse)
		})

		Convey("When decoding a stable weight packet", func() {
			data := frame.EncodeAdvertisement(55.3, 0, 0, true, false)
			r, err := frame.Decode(frame.CapAdvertisement, data)

			Convey("Then the stabilized weight is final", func() {
				So(err, ShouldBeNil)
				So(r.Kind, ShouldEqual, model.Final)
				So(r.IsStable, ShouldBeTrue)
			})
		})

		Convey("When decoding a final composition packet", func() {
			data := frame.EncodeAdvertisement(70.0, 500, 68, false, true)
			r, err := frame.Decode(frame.CapAdvertisement, data)

			So(err, ShouldBeNil)
			So(r.Kind, ShouldEqual, model.Final)
			So(r.WeightKg, ShouldEqual, 70.0)
			So(r.ImpedanceOhm, ShouldNotBeNil)
			So(*r.ImpedanceOhm, ShouldEqual, 500)
			So(r.HeartRateBPM, ShouldNotBeNil)
			So(*r.HeartRateBPM, ShouldEqual, 68)
		})

		Convey("When decoding a non-final composition packet", func() {
			data := frame.EncodeAdvertisement(70.0, 500, 0, false, false)
			r, err := frame.Decode(frame.CapAdvertisement, data)

			Convey("Then heart rate is absent and the reading stays live", func() {
				So(err, ShouldBeNil)
				So(r.Kind, ShouldEqual, model.RealTime)
				So(r.HeartRateBPM, ShouldBeNil)
			})
		})

		Convey("When the packet is too short", func() {
			_, err := frame.Decode(frame.CapAdvertisement, make([]byte, 12))

			So(err, ShouldWrap, frame.ErrFrameTooShort)
		})

		Convey("When the status byte is unrecognized", func() {
			data := frame.EncodeAdvertisement(55.3, 0, 0, false, false)
			data[10] = 0x42
			_, err := frame.Decode(frame.CapAdvertisement, data)

			So(err, ShouldWrap, frame.ErrBadHeader)
		})
	})
}
