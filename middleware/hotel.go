package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hotel-pms/models"
	"hotel-pms/services"
	"hotel-pms/utils"
)

// HotelIDKey holds the resolved hotel id for routes under /hotels/:hotelID.
const HotelIDKey = "hotelID"

// HotelLookup is the part of the hotel service HotelScope needs.
type HotelLookup interface {
	Get(ctx context.Context, id uint) (*models.Hotel, error)
}

// HotelScope resolves :hotelID and rejects requests for unknown hotels, so
// every handler below it works with an explicit, existing hotel.
func HotelScope(hotels HotelLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("hotelID"), 10, 64)
		if err != nil || id == 0 {
			utils.JSONError(c, http.StatusBadRequest, "error.invalidId", "invalid hotelID")
			c.Abort()
			return
		}
		if _, err := hotels.Get(c.Request.Context(), uint(id)); err != nil {
			if services.KindOf(err) == services.KindNotFound {
				utils.JSONError(c, http.StatusNotFound, "error.hotelNotFound", "hotel not found")
			} else {
				utils.JSONError(c, http.StatusInternalServerError, "error.internal", "internal server error")
			}
			c.Abort()
			return
		}
		c.Set(HotelIDKey, uint(id))
		c.Next()
	}
}
