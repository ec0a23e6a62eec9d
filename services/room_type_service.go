package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"hotel-pms/models"
	"hotel-pms/repository"
)

type RoomTypeService struct {
	deps Deps
}

func NewRoomTypeService(deps Deps) *RoomTypeService {
	return &RoomTypeService{deps: deps.withDefaults()}
}

type RoomTypeInput struct {
	Name         string
	Description  string
	MaxOccupancy int
	BaseRates    map[string]decimal.Decimal
}

func (s *RoomTypeService) Create(ctx context.Context, hotelID uint, in RoomTypeInput) (*models.RoomType, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("error.nameRequired", "name is required")
	}
	if in.MaxOccupancy < 1 {
		return nil, validationError("error.invalidOccupancy", "max_occupancy must be at least 1")
	}
	for cur, rate := range in.BaseRates {
		if len(strings.TrimSpace(cur)) != 3 {
			return nil, validationError("error.invalidCurrency", "base_rates keys must be ISO-4217 codes")
		}
		if err := validRate(rate, "base_rates."+cur); err != nil {
			return nil, err
		}
	}
	rates, err := models.EncodeRates(in.BaseRates)
	if err != nil {
		return nil, internalError("encode base rates", err)
	}
	rt := &models.RoomType{
		HotelID:      hotelID,
		Name:         name,
		Description:  in.Description,
		MaxOccupancy: in.MaxOccupancy,
		BaseRates:    rates,
	}
	if err := s.deps.Store.CreateRoomType(ctx, rt); err != nil {
		return nil, internalError("create room type", err)
	}
	return rt, nil
}

func (s *RoomTypeService) List(ctx context.Context, hotelID uint) ([]models.RoomType, error) {
	out, err := s.deps.Store.ListRoomTypes(ctx, hotelID)
	if err != nil {
		return nil, internalError("list room types", err)
	}
	return out, nil
}

func (s *RoomTypeService) Get(ctx context.Context, hotelID, id uint) (*models.RoomType, error) {
	rt, err := s.deps.Store.GetRoomType(ctx, hotelID, id)
	if err != nil {
		return nil, lookupError(err, "error.roomTypeNotFound", "room type not found", "get room type")
	}
	return rt, nil
}

// Delete removes a room type that no room uses.
func (s *RoomTypeService) Delete(ctx context.Context, hotelID, id uint) error {
	if _, err := s.Get(ctx, hotelID, id); err != nil {
		return err
	}
	rooms, err := s.deps.Store.ListRooms(ctx, hotelID, repository.RoomFilter{RoomTypeID: &id})
	if err != nil {
		return internalError("list rooms", err)
	}
	if len(rooms) > 0 {
		return conflictError("error.roomTypeInUse", "room type is still assigned to rooms",
			map[string]interface{}{"rooms": len(rooms)})
	}
	if err := s.deps.Store.DeleteRoomType(ctx, hotelID, id); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return conflictError("error.roomTypeInUse", "room type is still referenced", nil)
		}
		return lookupError(err, "error.roomTypeNotFound", "room type not found", "delete room type")
	}
	return nil
}
