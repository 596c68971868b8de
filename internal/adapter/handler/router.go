package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// RegisterRoutes mounts the public health check and the /v1 API. Booking
// routes require a caller identity; quotes and availability do not.
func RegisterRoutes(e *echo.Echo, bookings *BookingHandler, fares *FareHandler, availability *AvailabilityHandler) {
	e.GET("/healthz", Health)

	v1 := e.Group("/v1")
	v1.POST("/fares", fares.CalculateFare)
	v1.POST("/fares/batch", fares.CalculateMultipleFares)
	v1.GET("/trains/:id/availability", availability.GetAvailability)

	b := v1.Group("/bookings", RequireUser())
	b.POST("", bookings.CreateBooking)
	b.GET("/:id", bookings.GetBooking)
	b.POST("/:id/confirm", bookings.ConfirmBooking)
	b.POST("/:id/cancel", bookings.CancelBooking)
}
