package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"hotel-pms/repository"
	"hotel-pms/services"
	"hotel-pms/utils"
)

type guestPayload struct {
	FirstName       string  `json:"first_name" binding:"required"`
	LastName        string  `json:"last_name" binding:"required"`
	Email           string  `json:"email" binding:"omitempty,email"`
	Phone           string  `json:"phone"`
	DocumentType    string  `json:"document_type"`
	DocumentNumber  string  `json:"document_number"`
	DocumentCountry string  `json:"document_country" binding:"omitempty,len=2|len=3"`
	Nationality     string  `json:"nationality" binding:"omitempty,len=2|len=3"`
	DateOfBirth     *string `json:"date_of_birth"`
	VIPStatus       bool    `json:"vip_status"`
	Address         string  `json:"address"`
	Notes           string  `json:"notes"`
}

func (p guestPayload) input(dob *time.Time) services.GuestInput {
	return services.GuestInput{
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		Email:           p.Email,
		Phone:           p.Phone,
		DocumentType:    p.DocumentType,
		DocumentNumber:  p.DocumentNumber,
		DocumentCountry: p.DocumentCountry,
		Nationality:     p.Nationality,
		DateOfBirth:     dob,
		VIPStatus:       p.VIPStatus,
		Address:         p.Address,
		Notes:           p.Notes,
	}
}

type GuestController struct {
	GuestSvc *services.GuestService
}

func NewGuestController(svc *services.GuestService) *GuestController {
	return &GuestController{GuestSvc: svc}
}

// GET /api/hotels/:hotelID/guests?search=&vip=
func (gc *GuestController) GetGuests(c *gin.Context) {
	f := repository.GuestFilter{Search: c.Query("search")}
	if raw := strings.TrimSpace(c.Query("vip")); raw != "" {
		vip, err := strconv.ParseBool(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "error.invalidQuery", "invalid vip")
			return
		}
		f.VIP = &vip
	}
	guests, err := gc.GuestSvc.List(c.Request.Context(), hotelIDFrom(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, guests)
}

// GET /api/hotels/:hotelID/guests/:id
func (gc *GuestController) GetGuestByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	g, err := gc.GuestSvc.Get(c.Request.Context(), hotelIDFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, g)
}

// POST /api/hotels/:hotelID/guests
func (gc *GuestController) CreateGuest(c *gin.Context) {
	var p guestPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}
	dob, ok := optionalBodyDate(c, "date_of_birth", p.DateOfBirth)
	if !ok {
		return
	}
	g, err := gc.GuestSvc.Create(c.Request.Context(), hotelIDFrom(c), p.input(dob))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, g)
}

// PUT /api/hotels/:hotelID/guests/:id
func (gc *GuestController) UpdateGuest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var p guestPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}
	dob, ok := optionalBodyDate(c, "date_of_birth", p.DateOfBirth)
	if !ok {
		return
	}
	g, err := gc.GuestSvc.Update(c.Request.Context(), hotelIDFrom(c), id, p.input(dob))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, g)
}
