package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"hotel-pms/middleware"
	"hotel-pms/services"
	"hotel-pms/utils"
)

// respondError writes the error envelope for err. Internal errors are
// logged and reported with a generic message.
func respondError(c *gin.Context, err error) {
	var se *services.Error
	if !errors.As(err, &se) {
		se = &services.Error{Kind: services.KindInternal, Code: "error.internal", Err: err}
	}
	status := http.StatusInternalServerError
	switch se.Kind {
	case services.KindValidation:
		status = http.StatusBadRequest
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindConflict, services.KindInvalidTransition:
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		requestLogger(c).WithError(err).Error("request failed")
		utils.JSONError(c, status, "error.internal", "internal server error")
		return
	}
	if len(se.Details) > 0 {
		utils.JSONErrorDetails(c, status, se.Code, se.Message, se.Details)
		return
	}
	utils.JSONError(c, status, se.Code, se.Message)
}

func requestLogger(c *gin.Context) logrus.FieldLogger {
	if v, ok := c.Get(middleware.LoggerKey); ok {
		if l, ok := v.(logrus.FieldLogger); ok {
			return l
		}
	}
	return logrus.StandardLogger()
}

func respondBindError(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", err.Error())
}

// bindOptionalJSON binds the body when there is one; an empty body leaves
// dst untouched.
func bindOptionalJSON(c *gin.Context, dst interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func hotelIDFrom(c *gin.Context) uint {
	return c.GetUint(middleware.HotelIDKey)
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidId", "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func queryUint(c *gin.Context, name string) (*uint, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidQuery", "invalid "+name)
		return nil, false
	}
	u := uint(v)
	return &u, true
}

func queryDate(c *gin.Context, name string, required bool) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		if required {
			utils.JSONError(c, http.StatusBadRequest, "error.invalidQuery", name+" is required")
			return time.Time{}, false
		}
		return time.Time{}, true
	}
	t, err := utils.ParseDate(raw)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidQuery", name+": "+err.Error())
		return time.Time{}, false
	}
	return t, true
}

func bodyDate(c *gin.Context, field, raw string) (time.Time, bool) {
	t, err := utils.ParseDate(raw)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidDates", field+": "+err.Error())
		return time.Time{}, false
	}
	return t, true
}

func optionalBodyDate(c *gin.Context, field string, raw *string) (*time.Time, bool) {
	if raw == nil {
		return nil, true
	}
	t, ok := bodyDate(c, field, *raw)
	if !ok {
		return nil, false
	}
	return &t, true
}
