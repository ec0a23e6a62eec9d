package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hotel-pms/services"
	"hotel-pms/utils"
)

type ReportController struct {
	ReportSvc *services.ReportService
}

func NewReportController(svc *services.ReportService) *ReportController {
	return &ReportController{ReportSvc: svc}
}

// GET /api/hotels/:hotelID/reports/dashboard?date=
func (rc *ReportController) Dashboard(c *gin.Context) {
	date, ok := queryDate(c, "date", false)
	if !ok {
		return
	}
	if date.IsZero() {
		date = utils.DateOnly(time.Now().UTC())
	}
	out, err := rc.ReportSvc.Dashboard(c.Request.Context(), hotelIDFrom(c), date)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, out)
}

// GET /api/hotels/:hotelID/reports/occupancy?from=&to=
func (rc *ReportController) Occupancy(c *gin.Context) {
	from, to, ok := reportRange(c)
	if !ok {
		return
	}
	out, err := rc.ReportSvc.Occupancy(c.Request.Context(), hotelIDFrom(c), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, out)
}

// GET /api/hotels/:hotelID/reports/revenue?from=&to=
func (rc *ReportController) Revenue(c *gin.Context) {
	from, to, ok := reportRange(c)
	if !ok {
		return
	}
	out, err := rc.ReportSvc.Revenue(c.Request.Context(), hotelIDFrom(c), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, out)
}

func reportRange(c *gin.Context) (time.Time, time.Time, bool) {
	from, ok := queryDate(c, "from", true)
	if !ok {
		return from, from, false
	}
	to, ok := queryDate(c, "to", true)
	return from, to, ok
}
