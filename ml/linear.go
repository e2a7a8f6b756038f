package ml

import "fmt"

// LinearParams is an ordinary least squares fit: y = w·x + b.
type LinearParams struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

func (p *LinearParams) check() error {
	if len(p.Coefficients) != featureCount {
		return fmt.Errorf("linear model needs %d coefficients, got %d", featureCount, len(p.Coefficients))
	}
	return nil
}

func (p *LinearParams) predict(x []float64) (float64, error) {
	return dot(p.Coefficients, x) + p.Intercept, nil
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
