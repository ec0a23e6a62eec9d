package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"hotel-pms/services"
	"hotel-pms/utils"
)

type roomTypePayload struct {
	Name         string                     `json:"name" binding:"required"`
	Description  string                     `json:"description"`
	MaxOccupancy int                        `json:"max_occupancy" binding:"required,min=1"`
	BaseRates    map[string]decimal.Decimal `json:"base_rates"`
}

type RoomTypeController struct {
	RoomTypeSvc *services.RoomTypeService
}

func NewRoomTypeController(svc *services.RoomTypeService) *RoomTypeController {
	return &RoomTypeController{RoomTypeSvc: svc}
}

// GET /api/hotels/:hotelID/room-types
func (rc *RoomTypeController) GetRoomTypes(c *gin.Context) {
	list, err := rc.RoomTypeSvc.List(c.Request.Context(), hotelIDFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// POST /api/hotels/:hotelID/room-types
func (rc *RoomTypeController) CreateRoomType(c *gin.Context) {
	var p roomTypePayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}
	rt, err := rc.RoomTypeSvc.Create(c.Request.Context(), hotelIDFrom(c), services.RoomTypeInput{
		Name:         p.Name,
		Description:  p.Description,
		MaxOccupancy: p.MaxOccupancy,
		BaseRates:    p.BaseRates,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, rt)
}

// DELETE /api/hotels/:hotelID/room-types/:id
func (rc *RoomTypeController) DeleteRoomType(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := rc.RoomTypeSvc.Delete(c.Request.Context(), hotelIDFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
