package handler

import (
	"net/http"

	"github.com/alpha-og/railway-reservation-system-sub001/internal/core/services"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type BookingHandler struct {
	svc    *services.BookingService
	logger *logrus.Logger
}

func NewBookingHandler(svc *services.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, logger: logger}
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req services.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json body"})
	}
	req.UserID = currentUser(c)

	booking, err := h.svc.CreateBooking(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"booking": booking})
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	booking, err := h.svc.GetBooking(c.Request().Context(), c.Param("id"), currentUser(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"booking": booking})
}

func (h *BookingHandler) ConfirmBooking(c echo.Context) error {
	booking, err := h.svc.ConfirmBooking(c.Request().Context(), services.ConfirmBookingRequest{
		BookingID: c.Param("id"),
		UserID:    currentUser(c),
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"booking": booking})
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	var req services.CancelBookingRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json body"})
		}
	}
	req.BookingID = c.Param("id")
	req.UserID = currentUser(c)

	booking, err := h.svc.CancelBooking(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"booking": booking})
}
