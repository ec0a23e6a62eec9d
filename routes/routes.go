package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"hotel-pms/controllers"
	"hotel-pms/middleware"
	"hotel-pms/models"
	"hotel-pms/services"
)

// bindingRules are the enum rules used in request payload tags.
var bindingRules = map[string]validator.Func{
	"room_status": func(fl validator.FieldLevel) bool {
		return models.RoomStatus(fl.Field().String()).Valid()
	},
	"service_category": func(fl validator.FieldLevel) bool {
		return models.ServiceCategory(fl.Field().String()).Valid()
	},
}

func registerValidators(log logrus.FieldLogger) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		log.Warn("gin validator engine is not validator/v10; custom binding rules not registered")
		return
	}
	registerRules(v, bindingRules, log)
}

// registerRules registers each rule and logs the ones the validator refuses;
// a refused tag would otherwise only surface as a bind-time panic.
func registerRules(v *validator.Validate, rules map[string]validator.Func, log logrus.FieldLogger) int {
	failed := 0
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.WithError(err).WithField("tag", tag).Error("register binding rule")
			failed++
		}
	}
	return failed
}

func SetupRouter(svcs *services.Services, origins []string, log logrus.FieldLogger) *gin.Engine {
	registerValidators(log)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(log))

	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	hc := controllers.NewHotelController(svcs.Hotels)
	rtc := controllers.NewRoomTypeController(svcs.RoomTypes)
	roc := controllers.NewRoomController(svcs.Rooms)
	gc := controllers.NewGuestController(svcs.Guests)
	rc := controllers.NewReservationController(svcs.Reservations, svcs.Availability)
	sc := controllers.NewStayController(svcs.Stays)
	bc := controllers.NewBillingController(svcs.Billing)
	src := controllers.NewServiceRequestController(svcs.ServiceRequests)
	rpc := controllers.NewReportController(svcs.Reports)

	api := r.Group("/api")
	{
		api.GET("/hotels", hc.GetHotels)
		api.POST("/hotels", hc.CreateHotel)

		// everything below requires an existing hotel
		hotel := api.Group("/hotels/:hotelID", middleware.HotelScope(svcs.Hotels))
		{
			hotel.GET("", hc.GetHotel)
			hotel.PUT("", hc.UpdateHotel)
			hotel.GET("/floors", hc.GetFloors)
			hotel.POST("/floors", hc.CreateFloor)

			roomTypes := hotel.Group("/room-types")
			{
				roomTypes.GET("", rtc.GetRoomTypes)
				roomTypes.POST("", rtc.CreateRoomType)
				roomTypes.DELETE("/:id", rtc.DeleteRoomType)
			}

			rooms := hotel.Group("/rooms")
			{
				rooms.GET("", roc.GetRooms)
				rooms.POST("", roc.CreateRoom)
				rooms.GET("/:id", roc.GetRoom)
				rooms.PATCH("/:id", roc.UpdateRoom)
				rooms.PATCH("/:id/status", roc.UpdateRoomStatus)
				rooms.DELETE("/:id", roc.DeleteRoom)
				rooms.GET("/:id/availability", rc.RoomAvailability)
			}

			guests := hotel.Group("/guests")
			{
				guests.GET("", gc.GetGuests)
				guests.GET("/:id", gc.GetGuestByID)
				guests.POST("", gc.CreateGuest)
				guests.PUT("/:id", gc.UpdateGuest)
			}

			hotel.GET("/availability", rc.SearchAvailability)

			reservations := hotel.Group("/reservations")
			{
				reservations.GET("", rc.GetReservations)
				reservations.POST("", rc.CreateReservation)
				reservations.GET("/:id", rc.GetReservation)
				reservations.PATCH("/:id", rc.UpdateReservation)
				reservations.POST("/:id/cancel", rc.CancelReservation)
				reservations.POST("/:id/no-show", rc.MarkNoShow)
				reservations.POST("/:id/check-in", sc.CheckIn)
				reservations.POST("/:id/check-out", sc.CheckOut)
			}

			requests := hotel.Group("/service-requests")
			{
				requests.GET("", src.GetServiceRequests)
				requests.POST("", src.CreateServiceRequest)
				requests.POST("/:id/complete", src.CompleteServiceRequest)
				requests.POST("/:id/cancel", src.CancelServiceRequest)
			}

			invoices := hotel.Group("/invoices")
			{
				invoices.GET("", bc.GetInvoices)
				invoices.POST("", bc.CreateInvoice)
				invoices.GET("/:id", bc.GetInvoice)
				invoices.POST("/:id/payments", bc.RecordPayment)
				invoices.POST("/:id/refund", bc.RefundInvoice)
			}

			reports := hotel.Group("/reports")
			{
				reports.GET("/dashboard", rpc.Dashboard)
				reports.GET("/occupancy", rpc.Occupancy)
				reports.GET("/revenue", rpc.Revenue)
			}
		}
	}

	return r
}
