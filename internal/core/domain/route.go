package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Schedule is a dated run of a train.
type Schedule struct {
	ID            uuid.UUID
	TrainID       uuid.UUID
	DepartureDate time.Time
}

type ScheduleStop struct {
	ScheduleID    uuid.UUID
	StationID     uuid.UUID
	StopNumber    int
	ArrivalTime   *time.Time
	DepartureTime *time.Time
}

// StationDistance is stored once per unordered station pair.
type StationDistance struct {
	FromStationID uuid.UUID
	ToStationID   uuid.UUID
	DistanceKm    float64
}

type FareRate struct {
	TrainID     uuid.UUID
	CoachTypeID uuid.UUID
	RatePerKm   float64
}

type FareQuery struct {
	TrainID       uuid.UUID
	CoachTypeID   uuid.UUID
	FromStationID uuid.UUID
	ToStationID   uuid.UUID
}

type Fare struct {
	Fare      float64 `json:"fare"`
	RatePerKm float64 `json:"rate_per_km"`
	Distance  float64 `json:"distance"`
}

// FareResult is one item of a batch quote: exactly one of Fare or Err is set.
type FareResult struct {
	CoachTypeID uuid.UUID
	Fare        *Fare
	Err         error
}

// RoundMoney rounds to two decimal places, half away from zero.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// StopIndex returns the position of stationID in stops, or -1.
func StopIndex(stops []ScheduleStop, stationID uuid.UUID) int {
	for i, s := range stops {
		if s.StationID == stationID {
			return i
		}
	}
	return -1
}

// IsForwardRoute reports whether from is visited strictly before to.
func IsForwardRoute(stops []ScheduleStop, from, to uuid.UUID) bool {
	fi, ti := StopIndex(stops, from), StopIndex(stops, to)
	if fi < 0 || ti < 0 {
		return false
	}
	return stops[fi].StopNumber < stops[ti].StopNumber
}
