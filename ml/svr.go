package ml

import (
	"errors"
	"fmt"
	"math"
)

const (
	KernelRBF     = "rbf"
	KernelLinear  = "linear"
	KernelPoly    = "poly"
	KernelSigmoid = "sigmoid"
)

// SVRParams is the dual form of a fitted epsilon-SVR:
// f(x) = sum_i dual_coef[i] * K(sv[i], x) + intercept.
type SVRParams struct {
	Kernel         string      `json:"kernel"`
	Gamma          float64     `json:"gamma"`
	Coef0          float64     `json:"coef0"`
	Degree         int         `json:"degree"`
	SupportVectors [][]float64 `json:"support_vectors"`
	DualCoef       []float64   `json:"dual_coef"`
	Intercept      float64     `json:"intercept"`
}

func (p *SVRParams) check() error {
	if p.Kernel == "" {
		p.Kernel = KernelRBF
	}
	switch p.Kernel {
	case KernelLinear:
	case KernelRBF, KernelSigmoid:
		if p.Gamma <= 0 {
			return fmt.Errorf("%s kernel needs gamma > 0", p.Kernel)
		}
	case KernelPoly:
		if p.Gamma <= 0 {
			return errors.New("poly kernel needs gamma > 0")
		}
		if p.Degree == 0 {
			p.Degree = 3
		}
		if p.Degree < 0 {
			return errors.New("poly kernel needs degree >= 1")
		}
	default:
		return fmt.Errorf("unsupported kernel %q", p.Kernel)
	}

	if len(p.SupportVectors) == 0 {
		return errors.New("svr model has no support vectors")
	}
	if len(p.SupportVectors) != len(p.DualCoef) {
		return fmt.Errorf("%d support vectors but %d dual coefficients", len(p.SupportVectors), len(p.DualCoef))
	}
	for i, sv := range p.SupportVectors {
		if len(sv) != featureCount {
			return fmt.Errorf("support vector %d has %d features, want %d", i, len(sv), featureCount)
		}
	}
	return nil
}

func (p *SVRParams) predict(x []float64) (float64, error) {
	sum := p.Intercept
	for i, sv := range p.SupportVectors {
		sum += p.DualCoef[i] * p.kernel(sv, x)
	}
	return sum, nil
}

func (p *SVRParams) kernel(a, b []float64) float64 {
	switch p.Kernel {
	case KernelLinear:
		return dot(a, b)
	case KernelPoly:
		return math.Pow(p.Gamma*dot(a, b)+p.Coef0, float64(p.Degree))
	case KernelSigmoid:
		return math.Tanh(p.Gamma*dot(a, b) + p.Coef0)
	default:
		dist := 0.0
		for i := range a {
			d := a[i] - b[i]
			dist += d * d
		}
		return math.Exp(-p.Gamma * dist)
	}
}
