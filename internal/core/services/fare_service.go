package services

import (
	"context"

	"github.com/alpha-og/railway-reservation-system-sub001/internal/core/domain"
	"github.com/alpha-og/railway-reservation-system-sub001/internal/core/ports"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentFareQuotes = 4

type FareRequest struct {
	TrainID       string `json:"train_id"`
	CoachTypeID   string `json:"coach_type_id"`
	FromStationID string `json:"from_station_id"`
	ToStationID   string `json:"to_station_id"`
}

type BatchFareRequest struct {
	TrainID       string   `json:"train_id"`
	CoachTypeIDs  []string `json:"coach_type_ids"`
	FromStationID string   `json:"from_station_id"`
	ToStationID   string   `json:"to_station_id"`
}

// FareService prices a journey as rate per km times the distance walked
// along the train's stops.
type FareService struct {
	routeRepo ports.RouteRepository
}

func NewFareService(routeRepo ports.RouteRepository) *FareService {
	return &FareService{routeRepo: routeRepo}
}

func (s *FareService) CalculateFare(ctx context.Context, req FareRequest) (*domain.Fare, error) {
	trainID, fromID, toID, err := parseJourney(req.TrainID, req.FromStationID, req.ToStationID)
	if err != nil {
		return nil, err
	}
	coachTypeID, err := parseID("coach_type_id", req.CoachTypeID)
	if err != nil {
		return nil, err
	}
	return s.calculate(ctx, domain.FareQuery{
		TrainID:       trainID,
		CoachTypeID:   coachTypeID,
		FromStationID: fromID,
		ToStationID:   toID,
	})
}

// CalculateMultipleFares quotes every coach type independently. The returned
// slice has one entry per requested coach type, in request order; a failed
// quote is reported on its own entry.
func (s *FareService) CalculateMultipleFares(ctx context.Context, req BatchFareRequest) ([]domain.FareResult, error) {
	trainID, fromID, toID, err := parseJourney(req.TrainID, req.FromStationID, req.ToStationID)
	if err != nil {
		return nil, err
	}
	if len(req.CoachTypeIDs) == 0 {
		return nil, domain.ValidationError{Field: "coach_type_ids", Msg: "at least one coach type is required"}
	}

	results := make([]domain.FareResult, len(req.CoachTypeIDs))
	var g errgroup.Group
	g.SetLimit(maxConcurrentFareQuotes)
	for i, raw := range req.CoachTypeIDs {
		i, raw := i, raw
		g.Go(func() error {
			coachTypeID, err := parseID("coach_type_id", raw)
			if err != nil {
				results[i] = domain.FareResult{Err: err}
				return nil
			}
			fare, err := s.calculate(ctx, domain.FareQuery{
				TrainID:       trainID,
				CoachTypeID:   coachTypeID,
				FromStationID: fromID,
				ToStationID:   toID,
			})
			results[i] = domain.FareResult{CoachTypeID: coachTypeID, Fare: fare, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

func (s *FareService) calculate(ctx context.Context, q domain.FareQuery) (*domain.Fare, error) {
	rate, err := s.routeRepo.GetFareRate(ctx, q.TrainID, q.CoachTypeID)
	if err != nil {
		return nil, err
	}

	distance, err := s.routeDistance(ctx, q)
	if err != nil {
		return nil, err
	}

	return &domain.Fare{
		Fare:      domain.RoundMoney(rate.RatePerKm * distance),
		RatePerKm: rate.RatePerKm,
		Distance:  distance,
	}, nil
}

func (s *FareService) routeDistance(ctx context.Context, q domain.FareQuery) (float64, error) {
	stops, err := s.routeRepo.FindRouteStops(ctx, q.TrainID, q.FromStationID, q.ToStationID)
	if domain.IsNotFound(err) {
		direct, derr := s.routeRepo.GetDistance(ctx, q.FromStationID, q.ToStationID)
		if domain.IsNotFound(derr) {
			return 0, domain.ErrRouteNotFound
		}
		return direct, derr
	}
	if err != nil {
		return 0, err
	}
	if len(stops) < 2 {
		return 0, domain.ErrRouteNotFound
	}

	var total float64
	for i := 1; i < len(stops); i++ {
		a, b := stops[i-1].StationID, stops[i].StationID
		d, err := s.routeRepo.GetDistance(ctx, a, b)
		if domain.IsNotFound(err) {
			return 0, domain.RouteDataIncompleteError{FromStationID: a.String(), ToStationID: b.String()}
		}
		if err != nil {
			return 0, err
		}
		total += d
	}
	return total, nil
}

func parseJourney(rawTrain, rawFrom, rawTo string) (trainID, fromID, toID uuid.UUID, err error) {
	if trainID, err = parseID("train_id", rawTrain); err != nil {
		return
	}
	if fromID, err = parseID("from_station_id", rawFrom); err != nil {
		return
	}
	if toID, err = parseID("to_station_id", rawTo); err != nil {
		return
	}
	if fromID == toID {
		err = domain.ValidationError{Field: "to_station_id", Msg: "must differ from from_station_id"}
	}
	return
}
