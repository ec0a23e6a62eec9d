package config

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"hotel-pms/models"
	"hotel-pms/repository"
)

// SeedDatabase creates a demo hotel with floors, room types and rooms when
// the store has no hotel yet.
func SeedDatabase(ctx context.Context, store repository.Store, cfg Config, log logrus.FieldLogger) error {
	hotels, err := store.ListHotels(ctx)
	if err != nil {
		return err
	}
	if len(hotels) > 0 {
		log.Debug("hotels already seeded")
		return nil
	}

	return store.Transaction(ctx, func(tx repository.Store) error {
		hotel := models.Hotel{
			Name:            "Demo Hotel",
			Address:         "1 Demo Street",
			DefaultCurrency: cfg.DefaultCurrency,
			TaxRate:         cfg.DefaultTaxRate,
			CheckInTime:     "14:00",
			CheckOutTime:    "12:00",
		}
		if err := tx.CreateHotel(ctx, &hotel); err != nil {
			return errors.Wrap(err, "seed hotel")
		}

		floors := make([]models.Floor, 0, 2)
		for _, n := range []int{1, 2} {
			f := models.Floor{HotelID: hotel.ID, Number: n, Name: fmt.Sprintf("Floor %d", n)}
			if err := tx.CreateFloor(ctx, &f); err != nil {
				return errors.Wrap(err, "seed floor")
			}
			floors = append(floors, f)
		}

		types := []struct {
			name  string
			desc  string
			max   int
			rates map[string]int64
		}{
			{"Standard", "Standard Room", 2, map[string]int64{"USD": 100, "EUR": 92}},
			{"Deluxe", "Deluxe Room", 3, map[string]int64{"USD": 160, "EUR": 148}},
			{"Suite", "Suite", 4, map[string]int64{"USD": 250, "EUR": 230}},
		}
		roomTypes := make([]models.RoomType, 0, len(types))
		for _, t := range types {
			rates := map[string]decimal.Decimal{}
			for cur, v := range t.rates {
				rates[cur] = decimal.NewFromInt(v)
			}
			encoded, err := models.EncodeRates(rates)
			if err != nil {
				return err
			}
			rt := models.RoomType{HotelID: hotel.ID, Name: t.name, Description: t.desc, MaxOccupancy: t.max, BaseRates: encoded}
			if err := tx.CreateRoomType(ctx, &rt); err != nil {
				return errors.Wrap(err, "seed room type")
			}
			roomTypes = append(roomTypes, rt)
		}

		// 101-104 on floor 1, 201-204 on floor 2; the last room of each
		// floor is a suite, the third a deluxe.
		for _, f := range floors {
			for i := 1; i <= 4; i++ {
				rt := roomTypes[0]
				switch i {
				case 3:
					rt = roomTypes[1]
				case 4:
					rt = roomTypes[2]
				}
				floorID := f.ID
				room := models.Room{
					HotelID:    hotel.ID,
					RoomNumber: fmt.Sprintf("%d%02d", f.Number, i),
					FloorID:    &floorID,
					RoomTypeID: rt.ID,
					Status:     models.RoomAvailable,
				}
				if err := tx.CreateRoom(ctx, &room); err != nil {
					return errors.Wrap(err, "seed room")
				}
			}
		}
		log.WithField("hotel_id", hotel.ID).Info("demo hotel seeded")
		return nil
	})
}
