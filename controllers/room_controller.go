package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hotel-pms/models"
	"hotel-pms/repository"
	"hotel-pms/services"
	"hotel-pms/utils"
)

type createRoomPayload struct {
	RoomNumber string            `json:"room_number" binding:"required"`
	FloorID    *uint             `json:"floor_id"`
	RoomTypeID uint              `json:"room_type_id" binding:"required"`
	Status     models.RoomStatus `json:"status" binding:"omitempty,room_status"`
	Notes      string            `json:"notes"`
}

type updateRoomPayload struct {
	RoomNumber *string `json:"room_number"`
	FloorID    *uint   `json:"floor_id"`
	RoomTypeID *uint   `json:"room_type_id"`
	Notes      *string `json:"notes"`
}

type roomStatusPayload struct {
	Status models.RoomStatus `json:"status" binding:"required,room_status"`
	Notes  *string           `json:"notes"`
}

type RoomController struct {
	RoomSvc *services.RoomService
}

func NewRoomController(svc *services.RoomService) *RoomController {
	return &RoomController{RoomSvc: svc}
}

// ----------------------------------------------------
// GET /api/hotels/:hotelID/rooms?status=&room_type_id=&floor_id=
// ----------------------------------------------------
func (rc *RoomController) GetRooms(c *gin.Context) {
	var f repository.RoomFilter
	var ok bool
	if f.RoomTypeID, ok = queryUint(c, "room_type_id"); !ok {
		return
	}
	if f.FloorID, ok = queryUint(c, "floor_id"); !ok {
		return
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		st := models.RoomStatus(strings.ToUpper(raw))
		f.Status = &st
	}
	rooms, err := rc.RoomSvc.List(c.Request.Context(), hotelIDFrom(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

// ----------------------------------------------------
// POST /api/hotels/:hotelID/rooms
// ----------------------------------------------------
func (rc *RoomController) CreateRoom(c *gin.Context) {
	var p createRoomPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}
	room, err := rc.RoomSvc.Create(c.Request.Context(), hotelIDFrom(c), services.RoomInput{
		RoomNumber: p.RoomNumber,
		FloorID:    p.FloorID,
		RoomTypeID: p.RoomTypeID,
		Status:     p.Status,
		Notes:      p.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, room)
}

// GET /api/hotels/:hotelID/rooms/:id
func (rc *RoomController) GetRoom(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	room, err := rc.RoomSvc.Get(c.Request.Context(), hotelIDFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// PATCH /api/hotels/:hotelID/rooms/:id
func (rc *RoomController) UpdateRoom(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var p updateRoomPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}
	room, err := rc.RoomSvc.Update(c.Request.Context(), hotelIDFrom(c), id, services.UpdateRoomInput{
		RoomNumber: p.RoomNumber,
		FloorID:    p.FloorID,
		RoomTypeID: p.RoomTypeID,
		Notes:      p.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// PATCH /api/hotels/:hotelID/rooms/:id/status
func (rc *RoomController) UpdateRoomStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var p roomStatusPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}
	room, err := rc.RoomSvc.UpdateStatus(c.Request.Context(), hotelIDFrom(c), id, p.Status, p.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// DELETE /api/hotels/:hotelID/rooms/:id
func (rc *RoomController) DeleteRoom(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := rc.RoomSvc.Delete(c.Request.Context(), hotelIDFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
