package interp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/qualarmap/qualarmap/internal/geo"
)

// KrigingMethod selects the drift handling of the kriging system.
type KrigingMethod string

const (
	// KrigingOrdinary assumes a constant unknown mean.
	KrigingOrdinary KrigingMethod = "ordinary"
	// KrigingUniversal adds a linear drift in the planar coordinates.
	KrigingUniversal KrigingMethod = "universal"
)

// KrigingParams lists the hyperparameter candidates searched by cross
// validation. Every field must be non-empty; scalar request values are
// normalized to singleton lists before they reach this package.
type KrigingParams struct {
	Methods         []KrigingMethod
	VariogramModels []VariogramModel
	NLags           []int
	Weight          []bool
}

// DefaultKrigingParams is the fallback combination used when every training
// point lies on the convex hull and no fold can be scored.
func DefaultKrigingParams() KrigingParams {
	return KrigingParams{
		Methods:         []KrigingMethod{KrigingOrdinary},
		VariogramModels: []VariogramModel{VariogramLinear},
		NLags:           []int{6},
		Weight:          []bool{false},
	}
}

type krigingCombo struct {
	Method KrigingMethod
	Model  VariogramModel
	NLags  int
	Weight bool
}

// combinations enumerates the Cartesian product in field order, which fixes
// the grid-search tie-break ordering.
func (p KrigingParams) combinations() []krigingCombo {
	if len(p.Methods) == 0 || len(p.VariogramModels) == 0 || len(p.NLags) == 0 || len(p.Weight) == 0 {
		return nil
	}

	combos := make([]krigingCombo, 0, len(p.Methods)*len(p.VariogramModels)*len(p.NLags)*len(p.Weight))
	for _, method := range p.Methods {
		for _, model := range p.VariogramModels {
			for _, nlags := range p.NLags {
				for _, weight := range p.Weight {
					combos = append(combos, krigingCombo{
						Method: method,
						Model:  model,
						NLags:  nlags,
						Weight: weight,
					})
				}
			}
		}
	}
	return combos
}

func (p KrigingParams) validate() error {
	for _, m := range p.Methods {
		if m != KrigingOrdinary && m != KrigingUniversal {
			return fmt.Errorf("%w: unknown kriging method %q", ErrUnsupportedHyperparameter, m)
		}
	}
	for _, v := range p.VariogramModels {
		switch v {
		case VariogramLinear, VariogramPower, VariogramGaussian, VariogramSpherical:
		default:
			return fmt.Errorf("%w: unknown variogram model %q", ErrUnsupportedHyperparameter, v)
		}
	}
	for _, n := range p.NLags {
		if n < 1 {
			return fmt.Errorf("%w: nlags must be positive, got %d", ErrUnsupportedHyperparameter, n)
		}
	}
	return nil
}

type kriging struct {
	tr     *training
	system *krigingSystem
}

// NewKriging fits a kriging interpolator, selecting the hyperparameter
// combination with the best cross-validated RMSE. A single known point
// degrades to a constant estimator; when no fold can be scored the first
// combination is used as-is.
func NewKriging(samples []Sample, params KrigingParams) (Interpolator, error) {
	tr, err := newTraining(samples)
	if err != nil {
		return nil, err
	}
	if len(tr.y) == 1 {
		return constant{value: tr.y[0]}, nil
	}
	if err := params.validate(); err != nil {
		return nil, err
	}

	combos := params.combinations()
	if len(combos) == 0 {
		return nil, fmt.Errorf("%w: empty candidate list", ErrUnsupportedHyperparameter)
	}

	fit := func(combo krigingCombo, X []geo.PlanePoint, y []float64) (PredictFunc, error) {
		system, err := newKrigingSystem(combo, X, y)
		if err != nil {
			return nil, err
		}
		return system.predict, nil
	}

	chosen := combos[0]
	best, err := GridSearch(combos, HullFolds(tr.X), tr.X, tr.y, fit)
	switch {
	case err == ErrNoFolds:
	case err != nil:
		return nil, err
	default:
		chosen = best.Params
	}

	system, err := newKrigingSystem(chosen, tr.X, tr.y)
	if err != nil {
		return nil, err
	}
	return &kriging{tr: tr, system: system}, nil
}

func (e *kriging) Predict(points []geo.Point) ([]float64, error) {
	queries, err := e.tr.queryPoints(points)
	if err != nil {
		return nil, err
	}
	return e.system.predict(queries)
}

// krigingSystem is the factorized linear system of a fitted kriging model.
// Ordinary kriging carries one Lagrange multiplier for the mean constraint;
// universal kriging carries two more for the linear drift in x and y.
type krigingSystem struct {
	combo krigingCombo
	vario *variogram
	X     []geo.PlanePoint
	y     []float64
	lu    mat.LU
	size  int
}

func newKrigingSystem(combo krigingCombo, X []geo.PlanePoint, y []float64) (*krigingSystem, error) {
	vario, err := fitVariogram(X, y, combo.Model, combo.NLags, combo.Weight)
	if err != nil {
		return nil, err
	}

	n := len(X)
	extra := 1
	if combo.Method == KrigingUniversal {
		extra = 3
	}
	size := n + extra

	s := &krigingSystem{combo: combo, vario: vario, X: X, y: y, size: size}

	a := mat.NewDense(size, size, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			g := vario.gamma(math.Hypot(X[i].X-X[j].X, X[i].Y-X[j].Y))
			a.Set(i, j, g)
			a.Set(j, i, g)
		}
		a.Set(i, n, 1)
		a.Set(n, i, 1)
		if combo.Method == KrigingUniversal {
			a.Set(i, n+1, X[i].X)
			a.Set(n+1, i, X[i].X)
			a.Set(i, n+2, X[i].Y)
			a.Set(n+2, i, X[i].Y)
		}
	}

	s.lu.Factorize(a)
	if cond := s.lu.Cond(); math.IsInf(cond, 1) || cond > 1e12 {
		// Near-singular, typically a pure-nugget or degenerate geometry.
		// A small diagonal jitter on the gamma block restores solvability.
		for i := 0; i < n; i++ {
			a.Set(i, i, a.At(i, i)+1e-8)
		}
		s.lu.Factorize(a)
		if cond := s.lu.Cond(); math.IsInf(cond, 1) {
			return nil, fmt.Errorf("singular kriging system for %d points", n)
		}
	}
	return s, nil
}

func (s *krigingSystem) predict(queries []geo.PlanePoint) ([]float64, error) {
	n := len(s.X)
	b := mat.NewVecDense(s.size, nil)
	w := mat.NewVecDense(s.size, nil)

	out := make([]float64, len(queries))
	for qi, q := range queries {
		for i, p := range s.X {
			b.SetVec(i, s.vario.gamma(math.Hypot(p.X-q.X, p.Y-q.Y)))
		}
		b.SetVec(n, 1)
		if s.combo.Method == KrigingUniversal {
			b.SetVec(n+1, q.X)
			b.SetVec(n+2, q.Y)
		}

		if err := s.lu.SolveVecTo(w, false, b); err != nil {
			return nil, fmt.Errorf("solving kriging weights: %w", err)
		}
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += w.AtVec(i) * s.y[i]
		}
		out[qi] = sum
	}
	return out, nil
}
