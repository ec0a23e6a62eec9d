package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"hotel-pms/models"
	"hotel-pms/repository"
	"hotel-pms/services"
	"hotel-pms/utils"
)

// ---------------------------
// Payload / DTOs
// ---------------------------

type createReservationPayload struct {
	RoomID          uint             `json:"room_id" binding:"required"`
	GuestID         uint             `json:"guest_id" binding:"required"`
	CheckInDate     string           `json:"check_in_date" binding:"required"`
	CheckOutDate    string           `json:"check_out_date" binding:"required"`
	Adults          int              `json:"adults" binding:"omitempty,min=1"`
	Children        int              `json:"children" binding:"omitempty,min=0"`
	RoomRate        *decimal.Decimal `json:"room_rate"`
	Currency        string           `json:"currency" binding:"omitempty,iso4217"`
	SpecialRequests string           `json:"special_requests"`
}

type updateReservationPayload struct {
	RoomID          *uint            `json:"room_id"`
	CheckInDate     *string          `json:"check_in_date"`
	CheckOutDate    *string          `json:"check_out_date"`
	Adults          *int             `json:"adults" binding:"omitempty,min=1"`
	Children        *int             `json:"children" binding:"omitempty,min=0"`
	RoomRate        *decimal.Decimal `json:"room_rate"`
	Currency        *string          `json:"currency" binding:"omitempty,iso4217"`
	SpecialRequests *string          `json:"special_requests"`
}

type cancelReservationPayload struct {
	Reason string `json:"reason"`
}

// ---------------------------
// Controller
// ---------------------------

type ReservationController struct {
	ReservationSvc  *services.ReservationService
	AvailabilitySvc *services.AvailabilityService
}

func NewReservationController(rs *services.ReservationService, as *services.AvailabilityService) *ReservationController {
	return &ReservationController{ReservationSvc: rs, AvailabilitySvc: as}
}

// POST /api/hotels/:hotelID/reservations
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var p createReservationPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}
	checkIn, ok := bodyDate(c, "check_in_date", p.CheckInDate)
	if !ok {
		return
	}
	checkOut, ok := bodyDate(c, "check_out_date", p.CheckOutDate)
	if !ok {
		return
	}
	res, err := rc.ReservationSvc.Create(c.Request.Context(), hotelIDFrom(c), services.CreateReservationInput{
		RoomID:          p.RoomID,
		GuestID:         p.GuestID,
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		Adults:          p.Adults,
		Children:        p.Children,
		RoomRate:        p.RoomRate,
		Currency:        p.Currency,
		SpecialRequests: p.SpecialRequests,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, res)
}

// GET /api/hotels/:hotelID/reservations?status=CONFIRMED,CHECKED_IN&room_id=&guest_id=&from=&to=
func (rc *ReservationController) GetReservations(c *gin.Context) {
	var f repository.ReservationFilter
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			f.Statuses = append(f.Statuses, models.ReservationStatus(strings.ToUpper(strings.TrimSpace(s))))
		}
	}
	var ok bool
	if f.RoomID, ok = queryUint(c, "room_id"); !ok {
		return
	}
	if f.GuestID, ok = queryUint(c, "guest_id"); !ok {
		return
	}
	if f.StayFrom, ok = queryDate(c, "from", false); !ok {
		return
	}
	if f.StayTo, ok = queryDate(c, "to", false); !ok {
		return
	}
	list, err := rc.ReservationSvc.List(c.Request.Context(), hotelIDFrom(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// GET /api/hotels/:hotelID/reservations/:id
func (rc *ReservationController) GetReservation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := rc.ReservationSvc.Get(c.Request.Context(), hotelIDFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

// PATCH /api/hotels/:hotelID/reservations/:id
func (rc *ReservationController) UpdateReservation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var p updateReservationPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}
	in := services.UpdateReservationInput{
		RoomID:          p.RoomID,
		Adults:          p.Adults,
		Children:        p.Children,
		RoomRate:        p.RoomRate,
		Currency:        p.Currency,
		SpecialRequests: p.SpecialRequests,
	}
	if in.CheckInDate, ok = optionalBodyDate(c, "check_in_date", p.CheckInDate); !ok {
		return
	}
	if in.CheckOutDate, ok = optionalBodyDate(c, "check_out_date", p.CheckOutDate); !ok {
		return
	}
	res, err := rc.ReservationSvc.Update(c.Request.Context(), hotelIDFrom(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

// POST /api/hotels/:hotelID/reservations/:id/cancel
func (rc *ReservationController) CancelReservation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var p cancelReservationPayload
	if !bindOptionalJSON(c, &p) {
		return
	}
	res, err := rc.ReservationSvc.Cancel(c.Request.Context(), hotelIDFrom(c), id, strings.TrimSpace(p.Reason))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

// POST /api/hotels/:hotelID/reservations/:id/no-show
func (rc *ReservationController) MarkNoShow(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := rc.ReservationSvc.MarkNoShow(c.Request.Context(), hotelIDFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

// GET /api/hotels/:hotelID/availability?check_in=&check_out=&adults=&children=&room_type_id=&currency=
func (rc *ReservationController) SearchAvailability(c *gin.Context) {
	var q struct {
		Adults   int    `form:"adults" binding:"omitempty,min=0"`
		Children int    `form:"children" binding:"omitempty,min=0"`
		Currency string `form:"currency" binding:"omitempty,iso4217"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	checkIn, ok := queryDate(c, "check_in", true)
	if !ok {
		return
	}
	checkOut, ok := queryDate(c, "check_out", true)
	if !ok {
		return
	}
	roomTypeID, ok := queryUint(c, "room_type_id")
	if !ok {
		return
	}
	if q.Adults == 0 {
		q.Adults = 1
	}
	out, err := rc.AvailabilitySvc.Search(c.Request.Context(), hotelIDFrom(c), services.SearchQuery{
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Adults:     q.Adults,
		Children:   q.Children,
		RoomTypeID: roomTypeID,
		Currency:   q.Currency,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, out)
}

// GET /api/hotels/:hotelID/rooms/:id/availability?check_in=&check_out=&exclude_reservation_id=
func (rc *ReservationController) RoomAvailability(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	checkIn, ok := queryDate(c, "check_in", true)
	if !ok {
		return
	}
	checkOut, ok := queryDate(c, "check_out", true)
	if !ok {
		return
	}
	exclude, ok := queryUint(c, "exclude_reservation_id")
	if !ok {
		return
	}
	var excludeID uint
	if exclude != nil {
		excludeID = *exclude
	}
	free, err := rc.AvailabilitySvc.IsRoomAvailable(c.Request.Context(), hotelIDFrom(c), id, checkIn, checkOut, excludeID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"room_id":   id,
		"check_in":  utils.FormatDate(checkIn),
		"check_out": utils.FormatDate(checkOut),
		"available": free,
	})
}
