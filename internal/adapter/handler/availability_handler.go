package handler

import (
	"net/http"

	"github.com/alpha-og/railway-reservation-system-sub001/internal/core/services"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type AvailabilityHandler struct {
	svc    *services.AvailabilityService
	logger *logrus.Logger
}

func NewAvailabilityHandler(svc *services.AvailabilityService, logger *logrus.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc, logger: logger}
}

func (h *AvailabilityHandler) GetAvailability(c echo.Context) error {
	coaches, err := h.svc.GetAvailability(c.Request().Context(), c.Param("id"), c.QueryParam("date"))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"coaches": coaches})
}
