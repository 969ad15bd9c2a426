package routing_test

import (
	"testing"

	"github.com/lyntoo/ha-eufylife-ble/internal/domain/model"
	"github.com/lyntoo/ha-eufylife-ble/internal/domain/routing"
	. "github.com/smartystreets/goconvey/convey"
)

func profile(name string, minKg, maxKg float64) model.Profile {
	return model.Profile{
		ID:          name,
		Name:        name,
		WeightMinKg: minKg,
		WeightMaxKg: maxKg,
	}
}

func TestRoute(t *testing.T) {
	Convey("Given a set of profiles", t, func() {
		Convey("When no profile range contains the weight", func() {
			p, outcome := routing.Route(120.0, []model.Profile{
				profile("alice", 50, 70),
				profile("bob", 75, 95),
			})

			Convey("Then the measurement stays unassigned", func() {
				So(p, ShouldBeNil)
				So(outcome, ShouldEqual, routing.Unassigned)
			})
		})

		Convey("When exactly one range contains the weight", func() {
			p, outcome := routing.Route(60.0, []model.Profile{
				profile("alice", 50, 70),
				profile("bob", 75, 95),
			})

			So(outcome, ShouldEqual, routing.Matched)
			So(p, ShouldNotBeNil)
			So(p.Name, ShouldEqual, "alice")
		})

		Convey("When bounds are hit exactly", func() {
			p, outcome := routing.Route(70.0, []model.Profile{
				profile("alice", 50, 70),
			})

			Convey("Then inclusive bounds match", func() {
				So(outcome, ShouldEqual, routing.Matched)
				So(p.Name, ShouldEqual, "alice")
			})
		})

		Convey("When two ranges overlap at the weight", func() {
			p, outcome := routing.Route(68.0, []model.Profile{
				profile("wide", 50, 90),
				profile("narrow", 65, 75),
			})

			Convey("Then the narrower range wins and the routing is ambiguous", func() {
				So(outcome, ShouldEqual, routing.Ambiguous)
				So(p.Name, ShouldEqual, "narrow")
			})
		})

		Convey("When overlapping ranges have equal width", func() {
			p, outcome := routing.Route(68.0, []model.Profile{
				profile("first", 60, 70),
				profile("second", 65, 75),
			})

			Convey("Then insertion order breaks the tie", func() {
				So(outcome, ShouldEqual, routing.Ambiguous)
				So(p.Name, ShouldEqual, "first")
			})
		})

		Convey("When routing the same inputs twice", func() {
			profiles := []model.Profile{
				profile("wide", 50, 90),
				profile("narrow", 65, 75),
			}
			p1, _ := routing.Route(68.0, profiles)
			p2, _ := routing.Route(68.0, profiles)

			Convey("Then the selection is deterministic", func() {
				So(p1.Name, ShouldEqual, p2.Name)
			})
		})

		Convey("When there are no profiles at all", func() {
			p, outcome := routing.Route(68.0, nil)

			So(p, ShouldBeNil)
			So(outcome, ShouldEqual, routing.Unassigned)
		})
	})
}
