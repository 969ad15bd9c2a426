package session_test

import (
	"testing"
	"time"

	"github.com/lyntoo/ha-eufylife-ble/internal/domain/model"
	"github.com/lyntoo/ha-eufylife-ble/internal/domain/session"
	. "github.com/smartystreets/goconvey/convey"
)

func liveReading(weightKg float64) model.DecodedReading {
	return model.DecodedReading{Kind: model.RealTime, WeightKg: weightKg}
}

func TestSessionFinalFrame(t *testing.T) {
	Convey("Given a fresh session", t, func() {
		s := session.New("AA:BB")

		Convey("When a final frame arrives directly", func() {
			imp := 500
			live, final := s.Observe(model.DecodedReading{
				Kind:         model.Final,
				WeightKg:     70.0,
				ImpedanceOhm: &imp,
			})

			Convey("Then it produces exactly one final measurement and no live event", func() {
				So(live, ShouldBeNil)
				So(final, ShouldNotBeNil)
				So(final.WeightKg, ShouldEqual, 70.0)
				So(*final.ImpedanceOhm, ShouldEqual, 500)
				So(s.Finalized(), ShouldBeTrue)
			})

			Convey("And further readings are ignored", func() {
				live2, final2 := s.Observe(liveReading(71.0))
				So(live2, ShouldBeNil)
				So(final2, ShouldBeNil)
			})

			Convey("And closing it produces nothing more", func() {
				So(s.Close(), ShouldBeNil)
			})
		})

		Convey("When live readings precede the final frame", func() {
			for _, w := range []float64{10.0, 42.1, 69.8} {
				live, final := s.Observe(liveReading(w))
				So(live, ShouldNotBeNil)
				So(live.WeightKg, ShouldEqual, w)
				So(final, ShouldBeNil)
			}

			_, final := s.Observe(model.DecodedReading{Kind: model.Final, WeightKg: 69.9})

			Convey("Then the final measurement uses the final frame's weight", func() {
				So(final, ShouldNotBeNil)
				So(final.WeightKg, ShouldEqual, 69.9)
			})
		})

		Convey("When extras were seen before a bare final frame", func() {
			imp := 480
			hr := 66
			s.Observe(model.DecodedReading{Kind: model.RealTime, WeightKg: 69.0, ImpedanceOhm: &imp, HeartRateBPM: &hr})
			_, final := s.Observe(model.DecodedReading{Kind: model.Final, WeightKg: 70.0})

			Convey("Then the last seen impedance and heart rate carry over", func() {
				So(final, ShouldNotBeNil)
				So(final.ImpedanceOhm, ShouldNotBeNil)
				So(*final.ImpedanceOhm, ShouldEqual, 480)
				So(final.HeartRateBPM, ShouldNotBeNil)
				So(*final.HeartRateBPM, ShouldEqual, 66)
			})
		})
	})
}

func TestSessionFallback(t *testing.T) {
	Convey("Given a session with a stability threshold of 5", t, func() {
		s := session.New("AA:BB",
			session.WithEpsilon(0.05),
			session.WithStabilityThreshold(5),
		)

		Convey("When ten readings stay within epsilon and the device disconnects", func() {
			weights := []float64{70.00, 70.01, 69.99, 70.02, 70.00, 70.01, 70.00, 69.98, 70.01, 70.00}
			for _, w := range weights {
				s.Observe(liveReading(w))
			}

			final := s.Close()

			Convey("Then a fallback measurement is synthesized from the last reading", func() {
				So(final, ShouldNotBeNil)
				So(final.WeightKg, ShouldEqual, 70.00)
			})
		})

		Convey("When the weight never settles", func() {
			for _, w := range []float64{10.0, 35.0, 55.0, 68.0, 70.0} {
				s.Observe(liveReading(w))
			}

			Convey("Then closing yields nothing", func() {
				So(s.Close(), ShouldBeNil)
			})
		})

		Convey("When a jump resets an almost complete stability window", func() {
			for _, w := range []float64{70.00, 70.01, 70.00, 70.02, 70.01} {
				s.Observe(liveReading(w))
			}
			// Off the scale and back on.
			s.Observe(liveReading(2.0))
			for _, w := range []float64{70.00, 70.01, 70.00} {
				s.Observe(liveReading(w))
			}

			Convey("Then the counter started over and the window is short", func() {
				So(s.Close(), ShouldBeNil)
			})
		})

		Convey("When the session saw no readings at all", func() {
			So(s.Close(), ShouldBeNil)
		})
	})
}

func TestSessionIdleClock(t *testing.T) {
	Convey("Given a session with an injected clock", t, func() {
		current := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
		s := session.New("AA:BB", session.WithClock(func() time.Time { return current }))

		Convey("When a reading arrives after the clock advances", func() {
			current = current.Add(10 * time.Second)
			s.Observe(liveReading(70.0))

			Convey("Then IdleSince reflects the last reading time", func() {
				So(s.IdleSince(), ShouldResemble, current)
			})
		})
	})
}
