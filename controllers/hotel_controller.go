package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"hotel-pms/services"
	"hotel-pms/utils"
)

type hotelPayload struct {
	Name            string           `json:"name" binding:"required"`
	Address         string           `json:"address"`
	Phone           string           `json:"phone"`
	Email           string           `json:"email" binding:"omitempty,email"`
	Website         string           `json:"website"`
	DefaultCurrency string           `json:"default_currency" binding:"omitempty,iso4217"`
	TaxRate         *decimal.Decimal `json:"tax_rate"`
	CheckInTime     string           `json:"check_in_time"`
	CheckOutTime    string           `json:"check_out_time"`
}

func (p hotelPayload) input() services.HotelInput {
	return services.HotelInput{
		Name:            p.Name,
		Address:         p.Address,
		Phone:           p.Phone,
		Email:           p.Email,
		Website:         p.Website,
		DefaultCurrency: p.DefaultCurrency,
		TaxRate:         p.TaxRate,
		CheckInTime:     p.CheckInTime,
		CheckOutTime:    p.CheckOutTime,
	}
}

type floorPayload struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

type HotelController struct {
	HotelSvc *services.HotelService
}

func NewHotelController(svc *services.HotelService) *HotelController {
	return &HotelController{HotelSvc: svc}
}

// GET /api/hotels
func (hc *HotelController) GetHotels(c *gin.Context) {
	list, err := hc.HotelSvc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// POST /api/hotels
func (hc *HotelController) CreateHotel(c *gin.Context) {
	var p hotelPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}
	h, err := hc.HotelSvc.Create(c.Request.Context(), p.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, h)
}

// GET /api/hotels/:hotelID
func (hc *HotelController) GetHotel(c *gin.Context) {
	h, err := hc.HotelSvc.Get(c.Request.Context(), hotelIDFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, h)
}

// PUT /api/hotels/:hotelID
func (hc *HotelController) UpdateHotel(c *gin.Context) {
	var p hotelPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}
	h, err := hc.HotelSvc.Update(c.Request.Context(), hotelIDFrom(c), p.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, h)
}

// GET /api/hotels/:hotelID/floors
func (hc *HotelController) GetFloors(c *gin.Context) {
	list, err := hc.HotelSvc.ListFloors(c.Request.Context(), hotelIDFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// POST /api/hotels/:hotelID/floors
func (hc *HotelController) CreateFloor(c *gin.Context) {
	var p floorPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}
	f, err := hc.HotelSvc.CreateFloor(c.Request.Context(), hotelIDFrom(c), p.Number, p.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, f)
}
