package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
)

//go:embed model/sleep_calculator.json
var defaultModelJSON []byte

// Model output units. The predictor always hands hours back to the caller.
const (
	unitHours   = "hours"
	unitSeconds = "seconds"
)

// Feature names as they appear in a model file.
const (
	featureWake           = "wake"
	featureEstimatedSleep = "estimatedSleep"
	featureCoffee         = "coffee"
)

// Features is the input vector for a sleep model.
type Features struct {
	Wake           float64 // seconds since midnight
	EstimatedSleep float64 // hours
	Coffee         float64 // cups
}

// Predictor estimates the actual sleep (in hours) a person needs.
type Predictor interface {
	Predict(f Features) (float64, error)
}

// ModelLoader produces a ready Predictor or fails.
type ModelLoader func() (Predictor, error)

// LinearModel is a pre-trained linear regression exported as JSON.
type LinearModel struct {
	Name         string             `json:"name"`
	Coefficients map[string]float64 `json:"coefficients"`
	Intercept    float64            `json:"intercept"`
	OutputUnit   string             `json:"output_unit"`
}

// ParseLinearModel decodes and validates a model artifact.
func ParseLinearModel(data []byte) (*LinearModel, error) {
	var m LinearModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model: %w", err)
	}

	if m.OutputUnit == "" {
		m.OutputUnit = unitHours
	}
	switch m.OutputUnit {
	case unitHours, unitSeconds:
	default:
		return nil, fmt.Errorf("unknown output unit %q", m.OutputUnit)
	}

	for _, name := range []string{featureWake, featureEstimatedSleep, featureCoffee} {
		coef, ok := m.Coefficients[name]
		if !ok {
			return nil, fmt.Errorf("missing coefficient %q", name)
		}
		if !isFinite(coef) {
			return nil, fmt.Errorf("coefficient %q is not finite", name)
		}
	}
	if !isFinite(m.Intercept) {
		return nil, fmt.Errorf("intercept is not finite")
	}

	return &m, nil
}

// Predict returns the predicted sleep duration in hours.
func (m *LinearModel) Predict(f Features) (float64, error) {
	out := m.Intercept +
		m.Coefficients[featureWake]*f.Wake +
		m.Coefficients[featureEstimatedSleep]*f.EstimatedSleep +
		m.Coefficients[featureCoffee]*f.Coffee

	if m.OutputUnit == unitSeconds {
		out /= 3600
	}

	if !isFinite(out) {
		return 0, fmt.Errorf("model produced non-finite output for %+v", f)
	}
	if out < 0 {
		return 0, fmt.Errorf("model produced negative sleep duration %.4fh", out)
	}
	return out, nil
}

// LoadModelFile reads a model artifact from disk.
func LoadModelFile(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	return ParseLinearModel(data)
}

// NewModelLoader returns a loader for path, or for the embedded model when
// path is empty.
func NewModelLoader(path string) ModelLoader {
	path = strings.TrimSpace(path)
	if path == "" {
		return func() (Predictor, error) {
			m, err := ParseLinearModel(defaultModelJSON)
			if err != nil {
				return nil, err
			}
			return m, nil
		}
	}
	return func() (Predictor, error) {
		m, err := LoadModelFile(path)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
