package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync"
)

// fallbackBedtime is shown instead of a bedtime whenever the model fails.
const fallbackBedtime = "Error"

// Form constraints.
const (
	minSleepAmount  = 4.0
	maxSleepAmount  = 12.0
	sleepAmountStep = 0.25
	minCoffee       = 1
	maxCoffee       = 19
)

// Inputs are the three values the form collects.
type Inputs struct {
	Wake        ClockTime
	SleepAmount float64
	Coffee      int
}

// DefaultInputs is the state of a freshly opened form.
func DefaultInputs() Inputs {
	return Inputs{
		Wake:        ClockTime{Hour: 6, Minute: 30},
		SleepAmount: 8,
		Coffee:      1,
	}
}

// Validate applies the same bounds the input widgets enforce.
func (in Inputs) Validate() error {
	if in.Wake.Hour < 0 || in.Wake.Hour > 23 || in.Wake.Minute < 0 || in.Wake.Minute > 59 {
		return fmt.Errorf("wake time %s is not a valid time of day", in.Wake)
	}
	if math.IsNaN(in.SleepAmount) || in.SleepAmount < minSleepAmount || in.SleepAmount > maxSleepAmount {
		return fmt.Errorf("sleep amount must be between %g and %g hours", minSleepAmount, maxSleepAmount)
	}
	if steps := in.SleepAmount / sleepAmountStep; steps != math.Trunc(steps) {
		return fmt.Errorf("sleep amount must be a multiple of %g hours", sleepAmountStep)
	}
	if in.Coffee < minCoffee || in.Coffee > maxCoffee {
		return fmt.Errorf("coffee intake must be between %d and %d cups", minCoffee, maxCoffee)
	}
	return nil
}

func sleepLabel(h float64) string {
	return fmt.Sprintf("%s hours", formatHours(h))
}

func coffeeLabel(n int) string {
	if n == 1 {
		return "1 cup"
	}
	return fmt.Sprintf("%d cups", n)
}

func formatHours(h float64) string {
	return fmt.Sprintf("%g", h)
}

const (
	opLoad    = "load"
	opPredict = "predict"
)

// ModelInferenceError reports that the sleep model could not be loaded or
// could not produce a usable prediction.
type ModelInferenceError struct {
	Op  string
	Err error
}

func (e *ModelInferenceError) Error() string {
	if e.Op == opLoad {
		return fmt.Sprintf("model load failed: %v", e.Err)
	}
	return fmt.Sprintf("model inference failed: %v", e.Err)
}

func (e *ModelInferenceError) Unwrap() error {
	return e.Err
}

// Bedtime is the outcome of a successful calculation.
type Bedtime struct {
	Time           ClockTime
	DayOffset      int // -1 when the bedtime falls on the day before waking
	PredictedHours float64
	Formatted      string
}

// Calculator turns form inputs into a recommended bedtime.
type Calculator struct {
	load   ModelLoader
	style  ClockStyle
	logger *slog.Logger

	mu    sync.Mutex
	model Predictor
}

// NewCalculator builds a calculator. The model is loaded on first use; a
// failed load is attempted again on the next calculation.
func NewCalculator(load ModelLoader, style ClockStyle, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Calculator{
		load:   load,
		style:  style.resolve(os.Getenv),
		logger: logger,
	}
}

func (c *Calculator) predictor() (Predictor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.model != nil {
		return c.model, nil
	}
	if c.load == nil {
		modelLoads.WithLabelValues(resultError).Inc()
		return nil, &ModelInferenceError{Op: opLoad, Err: fmt.Errorf("no model configured")}
	}

	m, err := c.load()
	if err == nil && m == nil {
		err = fmt.Errorf("loader returned no model")
	}
	if err != nil {
		modelLoads.WithLabelValues(resultError).Inc()
		return nil, &ModelInferenceError{Op: opLoad, Err: err}
	}

	modelLoads.WithLabelValues(resultOK).Inc()
	c.logger.Info("sleep model loaded")
	c.model = m
	return m, nil
}

// BedTime computes wake minus the model's predicted sleep duration. Every
// error it returns is a *ModelInferenceError.
func (c *Calculator) BedTime(wake ClockTime, sleepAmount float64, coffee int) (b Bedtime, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ModelInferenceError{Op: opPredict, Err: fmt.Errorf("model panicked: %v", r)}
		}
		if err != nil {
			calculations.WithLabelValues(resultError).Inc()
			return
		}
		calculations.WithLabelValues(resultOK).Inc()
		predictedSleep.Observe(b.PredictedHours)
	}()

	model, err := c.predictor()
	if err != nil {
		return Bedtime{}, err
	}

	f := Features{
		Wake:           float64(wake.SecondsOfDay()),
		EstimatedSleep: sleepAmount,
		Coffee:         float64(coffee),
	}
	hours, err := model.Predict(f)
	if err != nil {
		return Bedtime{}, &ModelInferenceError{Op: opPredict, Err: err}
	}
	if !isFinite(hours) || hours < 0 {
		return Bedtime{}, &ModelInferenceError{Op: opPredict, Err: fmt.Errorf("unusable sleep duration %v", hours)}
	}

	bed, days := clockFromSeconds(wake.SecondsOfDay() - hoursToSeconds(hours))
	return Bedtime{
		Time:           bed,
		DayOffset:      days,
		PredictedHours: hours,
		Formatted:      formatShortTime(bed, c.style),
	}, nil
}

// Recommend returns the formatted bedtime, or the fallback string when the
// model cannot help.
func (c *Calculator) Recommend(wake ClockTime, sleepAmount float64, coffee int) string {
	b, err := c.BedTime(wake, sleepAmount, coffee)
	if err != nil {
		c.logger.Warn("bedtime calculation failed",
			"wake", wake.String(), "sleep", sleepAmount, "coffee", coffee, "error", err)
		return fallbackBedtime
	}
	c.logger.Debug("bedtime calculated",
		"wake", wake.String(), "sleep", sleepAmount, "coffee", coffee,
		"predicted_hours", b.PredictedHours, "bedtime", b.Formatted)
	return b.Formatted
}
