package handler

import (
	"net/http"

	"github.com/alpha-og/railway-reservation-system-sub001/internal/core/services"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type FareHandler struct {
	svc    *services.FareService
	logger *logrus.Logger
}

func NewFareHandler(svc *services.FareService, logger *logrus.Logger) *FareHandler {
	return &FareHandler{svc: svc, logger: logger}
}

type fareItem struct {
	CoachTypeID string   `json:"coach_type_id"`
	Fare        *float64 `json:"fare,omitempty"`
	RatePerKm   *float64 `json:"rate_per_km,omitempty"`
	Distance    *float64 `json:"distance,omitempty"`
	Error       string   `json:"error,omitempty"`
}

func (h *FareHandler) CalculateFare(c echo.Context) error {
	var req services.FareRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json body"})
	}

	fare, err := h.svc.CalculateFare(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, fare)
}

func (h *FareHandler) CalculateMultipleFares(c echo.Context) error {
	var req services.BatchFareRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json body"})
	}

	results, err := h.svc.CalculateMultipleFares(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	items := make([]fareItem, len(results))
	for i, r := range results {
		items[i].CoachTypeID = req.CoachTypeIDs[i]
		if r.Err != nil {
			items[i].Error = errorMessage(r.Err)
			continue
		}
		items[i].Fare = &r.Fare.Fare
		items[i].RatePerKm = &r.Fare.RatePerKm
		items[i].Distance = &r.Fare.Distance
	}

	return c.JSON(http.StatusOK, echo.Map{"results": items})
}
