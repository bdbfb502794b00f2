package interp

import (
	"fmt"
	"math"

	"github.com/qualarmap/qualarmap/internal/geo"
)

// VariogramModel names a variogram family used by the kriging estimator.
type VariogramModel string

const (
	VariogramLinear    VariogramModel = "linear"
	VariogramPower     VariogramModel = "power"
	VariogramGaussian  VariogramModel = "gaussian"
	VariogramSpherical VariogramModel = "spherical"
)

// variogram is a fitted semivariance function gamma(h). gamma(0) is always
// zero so kriging reproduces training values exactly at their own locations.
type variogram struct {
	model  VariogramModel
	nugget float64

	slope    float64 // linear
	scale    float64 // power
	exponent float64 // power
	psill    float64 // gaussian, spherical
	rangeH   float64 // gaussian, spherical
}

func (v *variogram) gamma(h float64) float64 {
	if h <= 0 {
		return 0
	}
	switch v.model {
	case VariogramLinear:
		return v.nugget + v.slope*h
	case VariogramPower:
		return v.nugget + v.scale*math.Pow(h, v.exponent)
	case VariogramGaussian:
		return v.nugget + v.psill*(1-math.Exp(-3*h*h/(v.rangeH*v.rangeH)))
	case VariogramSpherical:
		if h >= v.rangeH {
			return v.nugget + v.psill
		}
		r := h / v.rangeH
		return v.nugget + v.psill*(1.5*r-0.5*r*r*r)
	}
	return 0
}

// fitVariogram estimates the empirical semivariogram over nlags equal-width
// distance bins and fits the requested model to it by weighted least squares.
// Bin weights are pair counts; the weight flag additionally downweights long
// lags, where the empirical estimate is noisiest.
func fitVariogram(X []geo.PlanePoint, y []float64, model VariogramModel, nlags int, weight bool) (*variogram, error) {
	if nlags < 1 {
		return nil, fmt.Errorf("variogram needs at least one lag, got %d", nlags)
	}

	maxH := 0.0
	for i := range X {
		for j := i + 1; j < len(X); j++ {
			if h := math.Hypot(X[i].X-X[j].X, X[i].Y-X[j].Y); h > maxH {
				maxH = h
			}
		}
	}
	if maxH == 0 {
		return nil, fmt.Errorf("all %d training points are coincident", len(X))
	}

	binH := make([]float64, nlags)
	binG := make([]float64, nlags)
	binN := make([]float64, nlags)
	width := maxH / float64(nlags)
	for i := range X {
		for j := i + 1; j < len(X); j++ {
			h := math.Hypot(X[i].X-X[j].X, X[i].Y-X[j].Y)
			if h == 0 {
				continue
			}
			b := int(h / width)
			if b >= nlags {
				b = nlags - 1
			}
			binH[b] += h
			binG[b] += 0.5 * (y[i] - y[j]) * (y[i] - y[j])
			binN[b]++
		}
	}

	var lagH, lagG, lagW []float64
	for b := 0; b < nlags; b++ {
		if binN[b] == 0 {
			continue
		}
		h := binH[b] / binN[b]
		w := binN[b]
		if weight {
			w *= 1 - h/(maxH*1.01)
		}
		lagH = append(lagH, h)
		lagG = append(lagG, binG[b]/binN[b])
		lagW = append(lagW, w)
	}

	if len(lagH) < 2 {
		// Too sparse to regress. A zero-nugget linear model through the mean
		// lag keeps the system solvable.
		slope := 0.0
		if len(lagH) == 1 && lagH[0] > 0 {
			slope = lagG[0] / lagH[0]
		}
		return &variogram{model: VariogramLinear, slope: slope}, nil
	}

	switch model {
	case VariogramLinear:
		nugget, slope, _ := wlsLine(lagH, lagG, lagW)
		return &variogram{model: model, nugget: nugget, slope: slope}, nil

	case VariogramPower:
		best := &variogram{model: model}
		bestSSE := math.Inf(1)
		basis := make([]float64, len(lagH))
		for exp := 0.1; exp < 2.0; exp += 0.1 {
			for i, h := range lagH {
				basis[i] = math.Pow(h, exp)
			}
			nugget, scale, sse := wlsLine(basis, lagG, lagW)
			if sse < bestSSE {
				bestSSE = sse
				best = &variogram{model: model, nugget: nugget, scale: scale, exponent: exp}
			}
		}
		return best, nil

	case VariogramGaussian, VariogramSpherical:
		best := &variogram{model: model}
		bestSSE := math.Inf(1)
		basis := make([]float64, len(lagH))
		for frac := 0.1; frac <= 1.0; frac += 0.1 {
			r := frac * maxH
			for i, h := range lagH {
				basis[i] = (&variogram{model: model, psill: 1, rangeH: r}).gamma(h)
			}
			nugget, psill, sse := wlsLine(basis, lagG, lagW)
			if sse < bestSSE {
				bestSSE = sse
				best = &variogram{model: model, nugget: nugget, psill: psill, rangeH: r}
			}
		}
		return best, nil
	}

	return nil, fmt.Errorf("unsupported variogram model %q", model)
}

// wlsLine fits g = intercept + slope*b by weighted least squares and clamps
// both coefficients to be non-negative, as semivariances must be.
func wlsLine(b, g, w []float64) (intercept, slope, sse float64) {
	var sw, swb, swg, swbb, swbg float64
	for i := range b {
		sw += w[i]
		swb += w[i] * b[i]
		swg += w[i] * g[i]
		swbb += w[i] * b[i] * b[i]
		swbg += w[i] * b[i] * g[i]
	}

	det := sw*swbb - swb*swb
	if det != 0 {
		intercept = (swbb*swg - swb*swbg) / det
		slope = (sw*swbg - swb*swg) / det
	}
	if intercept < 0 || det == 0 {
		intercept = 0
		if swbb > 0 {
			slope = swbg / swbb
		}
	}
	if slope < 0 {
		slope = 0
		if sw > 0 {
			intercept = math.Max(swg/sw, 0)
		}
	}

	for i := range b {
		d := g[i] - intercept - slope*b[i]
		sse += w[i] * d * d
	}
	return intercept, slope, sse
}
