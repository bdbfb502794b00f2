package heatmap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/qualarmap/qualarmap/internal/geo"
	"github.com/qualarmap/qualarmap/internal/grid"
	"github.com/qualarmap/qualarmap/internal/interp"
	"github.com/qualarmap/qualarmap/internal/measurement"
	"github.com/qualarmap/qualarmap/internal/station"
)

// Interpolation method names accepted in requests.
const (
	MethodKNN     = "KNN"
	MethodKriging = "Kriging"
)

// MethodSpec selects the interpolator of a request. Only the parameter set
// matching Method is read.
type MethodSpec struct {
	Method  string
	KNN     interp.KNNParams
	Kriging interp.KrigingParams
}

// ServiceConfig holds configuration for creating a heatmap Service.
type ServiceConfig struct {
	Repository  measurement.Repository
	Stations    *station.Registry
	Logger      zerolog.Logger
	Grid        grid.Config
	Concurrency int
}

// Service computes heatmaps. Time keys are independent of each other, so the
// per-key pipeline fans out across a bounded worker pool.
type Service struct {
	repository  measurement.Repository
	stations    *station.Registry
	discretizer *grid.Discretizer
	coordinates map[int]geo.Point
	logger      zerolog.Logger
	concurrency int
}

// NewService creates a heatmap service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Repository == nil {
		return nil, fmt.Errorf("heatmap service needs a measurement repository")
	}
	if cfg.Stations == nil {
		return nil, fmt.Errorf("heatmap service needs a station registry")
	}
	if cfg.Grid.NumberOfLatPoints == 0 {
		cfg.Grid = grid.DefaultConfig()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 4
	}

	discretizer, err := grid.NewDiscretizer(cfg.Grid, cfg.Stations)
	if err != nil {
		return nil, err
	}

	return &Service{
		repository:  cfg.Repository,
		stations:    cfg.Stations,
		discretizer: discretizer,
		coordinates: cfg.Stations.Coordinates(),
		logger:      cfg.Logger,
		concurrency: cfg.Concurrency,
	}, nil
}

// ComputeHeatmap fits and evaluates one interpolation per time key and
// assembles the keyed result in the order of keys. A key whose data cannot
// support a fit produces an empty slot; request-level errors (unknown method,
// empty hyperparameter candidates, unknown stations, bad time references)
// fail the whole computation.
func (s *Service) ComputeHeatmap(ctx context.Context, indicatorID int, spec MethodSpec, keys []TimeKey) (*Heatmap, error) {
	if err := validateMethod(spec.Method); err != nil {
		return nil, err
	}

	slots := make([][]Record, len(keys))
	errs := make([]error, len(keys))

	jobs := make(chan int, len(keys))
	var wg sync.WaitGroup
	for w := 0; w < s.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					errs[i] = ctx.Err()
				default:
					slots[i], errs[i] = s.computeKey(ctx, indicatorID, spec, keys[i])
				}
			}
		}()
	}
	for i := range keys {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	result := NewHeatmap()
	for i, key := range keys {
		if err := errs[i]; err != nil {
			if fatal(err) {
				return nil, fmt.Errorf("time key %s: %w", key.Label, err)
			}
			s.logger.Warn().
				Err(err).
				Int("indicator_id", indicatorID).
				Str("time_key", key.Label).
				Msg("no heatmap for time key")
			slots[i] = nil
		}
		result.Set(key.Label, slots[i])
	}
	return result, nil
}

// computeKey runs the per-key pipeline: station means, grid discretization,
// dataset snapping, interpolator fit, grid prediction.
func (s *Service) computeKey(ctx context.Context, indicatorID int, spec MethodSpec, key TimeKey) ([]Record, error) {
	means, err := s.repository.MeanByTimeReference(ctx, indicatorID, key.Reference)
	if err != nil {
		return nil, err
	}
	if len(means) == 0 {
		return nil, nil
	}

	points, err := s.discretizer.Points(indicatorID, means)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, nil
	}

	samples, err := interp.BuildDataset(points, s.coordinates, means)
	if err != nil {
		return nil, err
	}

	estimator, err := s.newInterpolator(spec, samples)
	if err != nil {
		return nil, err
	}

	values, err := estimator.Predict(points)
	if err != nil {
		return nil, err
	}

	records := make([]Record, len(points))
	for i, p := range points {
		records[i] = Record{Lat: p.Lat, Long: p.Long, Value: values[i]}
	}
	return records, nil
}

// newInterpolator is the single boundary where a method name selects an
// estimator constructor.
func (s *Service) newInterpolator(spec MethodSpec, samples []interp.Sample) (interp.Interpolator, error) {
	switch {
	case strings.EqualFold(spec.Method, MethodKNN):
		return interp.NewKNN(samples, spec.KNN)
	case strings.EqualFold(spec.Method, MethodKriging):
		return interp.NewKriging(samples, spec.Kriging)
	}
	return nil, fmt.Errorf("%w: %q", interp.ErrUnknownMethod, spec.Method)
}

func validateMethod(method string) error {
	if !strings.EqualFold(method, MethodKNN) && !strings.EqualFold(method, MethodKriging) {
		return fmt.Errorf("%w: %q", interp.ErrUnknownMethod, method)
	}
	return nil
}

// fatal reports whether an error indicates a bad request or broken
// configuration rather than missing data for one time key.
func fatal(err error) bool {
	return errors.Is(err, interp.ErrUnknownMethod) ||
		errors.Is(err, interp.ErrUnsupportedHyperparameter) ||
		errors.Is(err, measurement.ErrInvalidTimeReference) ||
		errors.Is(err, station.ErrUnknownStation) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
