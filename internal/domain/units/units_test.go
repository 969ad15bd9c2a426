package units_test

import (
	"testing"

	"github.com/lyntoo/ha-eufylife-ble/internal/domain/units"
	. "github.com/smartystreets/goconvey/convey"
)

func TestHeightConversions(t *testing.T) {
	Convey("Given a metric height", t, func() {
		Convey("When converting 170 cm to feet and inches", func() {
			ft, in := units.CmToFtIn(170)

			Convey("Then it should split into whole feet and tenth inches", func() {
				So(ft, ShouldEqual, 5)
				So(in, ShouldEqual, 6.9)
			})
		})

		Convey("When converting 182.9 cm to feet and inches", func() {
			ft, in := units.CmToFtIn(182.9)

			So(ft, ShouldEqual, 6)
			So(in, ShouldEqual, 0.0)
		})

		Convey("When converting feet and inches back to centimetres", func() {
			cm := units.FtInToCm(5, 6.9)

			Convey("Then it should land within display precision of the original", func() {
				So(cm, ShouldEqual, 169.9)
			})
		})

		Convey("When converting zero height", func() {
			ft, in := units.CmToFtIn(0)

			So(ft, ShouldEqual, 0)
			So(in, ShouldEqual, 0.0)
		})
	})
}

func TestWeightConversions(t *testing.T) {
	Convey("Given a metric weight", t, func() {
		Convey("When converting 70 kg to pounds", func() {
			lb := units.KgToLb(70)

			Convey("Then it should not round", func() {
				So(lb, ShouldAlmostEqual, 154.3234, 0.0001)
			})
		})

		Convey("When converting pounds back to kilograms", func() {
			kg := units.LbToKg(units.KgToLb(70))

			Convey("Then the round trip should be exact to formula precision", func() {
				So(kg, ShouldAlmostEqual, 70, 1e-9)
			})
		})
	})
}
