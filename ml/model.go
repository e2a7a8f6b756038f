package ml

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// Predictor is the single capability the application needs from a model.
type Predictor interface {
	Infer(record FeatureRecord) (float64, error)
}

// FeatureRecord is the model input, always in Open, High, Low order.
type FeatureRecord struct {
	Open float64 `json:"open" validate:"gt=0"`
	High float64 `json:"high" validate:"gt=0"`
	Low  float64 `json:"low" validate:"gt=0"`
}

var recordValidator = validator.New()

func (r FeatureRecord) Vector() []float64 {
	return []float64{r.Open, r.High, r.Low}
}

// Validate reports whether every price is finite and strictly positive.
func (r FeatureRecord) Validate() error {
	for _, v := range r.Vector() {
		if math.IsInf(v, 0) {
			return errors.New("prices must be finite")
		}
	}
	return recordValidator.Struct(r)
}

// FeatureNames is the column order of FeatureRecord.Vector.
func FeatureNames() []string {
	return []string{"Open", "High", "Low"}
}

const featureCount = 3

type estimator interface {
	predict(x []float64) (float64, error)
	check() error
}

// Model is a loaded artifact. It is read-only and safe for concurrent use.
type Model struct {
	kind      string
	features  []string
	scaler    *Scaler
	estimator estimator
}

func (m *Model) Type() string {
	return m.kind
}

func (m *Model) Features() []string {
	if len(m.features) == 0 {
		return FeatureNames()
	}
	return append([]string(nil), m.features...)
}

// Infer returns the model's single output for record.
func (m *Model) Infer(record FeatureRecord) (float64, error) {
	x := record.Vector()
	if m.scaler != nil {
		x = m.scaler.transform(x)
	}
	value, err := m.estimator.predict(x)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("model produced non-finite output %v", value)
	}
	return value, nil
}

// Scaler standardises features as (x - mean) / scale before prediction.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *Scaler) check() error {
	if len(s.Mean) != featureCount || len(s.Scale) != featureCount {
		return fmt.Errorf("scaler needs %d means and scales", featureCount)
	}
	for _, v := range s.Scale {
		if v == 0 {
			return errors.New("scaler scale must be non-zero")
		}
	}
	return nil
}

func (s *Scaler) transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - s.Mean[i]) / s.Scale[i]
	}
	return out
}
