package registry_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/lyntoo/ha-eufylife-ble/internal/adapters/registry"
	"github.com/lyntoo/ha-eufylife-ble/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func validProfile(name string) model.Profile {
	return model.Profile{
		Name:        name,
		Age:         30,
		Sex:         model.Male,
		HeightCm:    175,
		WeightMinKg: 60,
		WeightMaxKg: 80,
	}
}

func TestMemStoreCRUD(t *testing.T) {
	Convey("Given an empty profile store", t, func() {
		ctx := context.Background()
		s := registry.NewMemStore()

		Convey("When adding a valid profile", func() {
			created, err := s.Add(ctx, validProfile("alice"))

			Convey("Then it gets an ID and a creation time", func() {
				So(err, ShouldBeNil)
				So(created.ID, ShouldNotBeEmpty)
				So(created.CreatedAt.IsZero(), ShouldBeFalse)
				So(s.Count(ctx), ShouldEqual, 1)
			})

			Convey("And it can be fetched back", func() {
				got, err := s.Get(ctx, created.ID)
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "alice")
			})
		})

		Convey("When updating a profile", func() {
			created, _ := s.Add(ctx, validProfile("alice"))

			modified := validProfile("alice2")
			modified.ID = created.ID
			modified.WeightMaxKg = 90

			updated, err := s.Update(ctx, modified)

			Convey("Then the profile is replaced wholesale", func() {
				So(err, ShouldBeNil)
				So(updated.Name, ShouldEqual, "alice2")
				So(updated.WeightMaxKg, ShouldEqual, 90.0)
			})

			Convey("And the creation time is preserved", func() {
				So(updated.CreatedAt, ShouldResemble, created.CreatedAt)
			})
		})

		Convey("When updating an unknown profile", func() {
			p := validProfile("ghost")
			p.ID = "missing"
			_, err := s.Update(ctx, p)

			So(err, ShouldEqual, registry.ErrProfileNotFound)
		})

		Convey("When removing a profile", func() {
			a, _ := s.Add(ctx, validProfile("alice"))
			b, _ := s.Add(ctx, validProfile("bob"))

			So(s.Remove(ctx, a.ID), ShouldBeNil)

			Convey("Then it is gone and the rest remain addressable", func() {
				_, err := s.Get(ctx, a.ID)
				So(err, ShouldEqual, registry.ErrProfileNotFound)

				got, err := s.Get(ctx, b.ID)
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "bob")
			})

			Convey("And removing it twice fails", func() {
				So(s.Remove(ctx, a.ID), ShouldEqual, registry.ErrProfileNotFound)
			})
		})

		Convey("When listing profiles", func() {
			for _, name := range []string{"alice", "bob", "carol"} {
				_, err := s.Add(ctx, validProfile(name))
				So(err, ShouldBeNil)
			}

			list := s.List(ctx)

			Convey("Then insertion order is preserved", func() {
				So(len(list), ShouldEqual, 3)
				So(list[0].Name, ShouldEqual, "alice")
				So(list[1].Name, ShouldEqual, "bob")
				So(list[2].Name, ShouldEqual, "carol")
			})
		})
	})
}

func TestMemStoreValidation(t *testing.T) {
	Convey("Given a profile store", t, func() {
		ctx := context.Background()
		s := registry.NewMemStore()

		Convey("When the name is empty", func() {
			p := validProfile("")
			_, err := s.Add(ctx, p)
			So(err, ShouldEqual, registry.ErrInvalidName)
		})

		Convey("When the age is out of bounds", func() {
			p := validProfile("alice")
			p.Age = 120
			_, err := s.Add(ctx, p)
			So(err, ShouldEqual, registry.ErrInvalidAge)

			p.Age = 0
			_, err = s.Add(ctx, p)
			So(err, ShouldEqual, registry.ErrInvalidAge)
		})

		Convey("When the height is out of bounds", func() {
			p := validProfile("alice")
			p.HeightCm = 300
			_, err := s.Add(ctx, p)
			So(err, ShouldEqual, registry.ErrInvalidHeight)

			p.HeightCm = 20
			_, err = s.Add(ctx, p)
			So(err, ShouldEqual, registry.ErrInvalidHeight)
		})

		Convey("When the weight range is inverted or non-positive", func() {
			p := validProfile("alice")
			p.WeightMinKg = 80
			p.WeightMaxKg = 60
			_, err := s.Add(ctx, p)
			So(err, ShouldEqual, registry.ErrInvalidRange)

			p.WeightMinKg = 0
			p.WeightMaxKg = 60
			_, err = s.Add(ctx, p)
			So(err, ShouldEqual, registry.ErrInvalidRange)
		})

		Convey("And nothing invalid was stored", func() {
			So(s.Count(ctx), ShouldEqual, 0)
		})
	})
}

func TestMemStoreCapacity(t *testing.T) {
	Convey("Given a store capped at the default of 8 profiles", t, func() {
		ctx := context.Background()
		s := registry.NewMemStore()

		for i := 0; i < 8; i++ {
			_, err := s.Add(ctx, validProfile(fmt.Sprintf("user-%d", i)))
			So(err, ShouldBeNil)
		}

		Convey("When adding a ninth profile", func() {
			_, err := s.Add(ctx, validProfile("overflow"))

			Convey("Then it is rejected and the existing set is unchanged", func() {
				So(err, ShouldEqual, registry.ErrRegistryFull)
				So(s.Count(ctx), ShouldEqual, 8)
			})
		})

		Convey("When one is removed, a slot opens up", func() {
			list := s.List(ctx)
			So(s.Remove(ctx, list[0].ID), ShouldBeNil)

			_, err := s.Add(ctx, validProfile("replacement"))
			So(err, ShouldBeNil)
			So(s.Count(ctx), ShouldEqual, 8)
		})
	})
}

func TestMemStoreConcurrentReaders(t *testing.T) {
	ctx := context.Background()
	s := registry.NewMemStore()

	created, err := s.Add(ctx, validProfile("alice"))
	if err != nil {
		t.Fatalf("add profile: %v", err)
	}

	// Readers must only ever observe one of the two whole profiles,
	// never a mix of old and new fields.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			p := validProfile("alice")
			p.ID = created.ID
			if i%2 == 1 {
				p.Name = "alice2"
				p.WeightMinKg = 80
				p.WeightMaxKg = 100
			}
			if _, err := s.Update(ctx, p); err != nil {
				t.Errorf("update profile: %v", err)
				return
			}
		}
	}()

	for i := 0; i < 1000; i++ {
		got, err := s.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("get profile: %v", err)
		}
		switch got.Name {
		case "alice":
			if got.WeightMinKg != 60 || got.WeightMaxKg != 80 {
				t.Fatalf("torn read: %+v", got)
			}
		case "alice2":
			if got.WeightMinKg != 80 || got.WeightMaxKg != 100 {
				t.Fatalf("torn read: %+v", got)
			}
		default:
			t.Fatalf("unexpected profile name %q", got.Name)
		}
	}
	<-done
}
