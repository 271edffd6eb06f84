package main

import (
	"log/slog"

	"github.com/maypok86/otter/v2"
)

// cachedPredictor memoises predictions of a fixed model. Failed predictions
// are never stored.
type cachedPredictor struct {
	next   Predictor
	cache  *otter.Cache[Features, float64]
	logger *slog.Logger
}

func newCachedPredictor(next Predictor, size int, logger *slog.Logger) Predictor {
	if size <= 0 {
		return next
	}
	return &cachedPredictor{
		next: next,
		cache: otter.Must(&otter.Options[Features, float64]{
			MaximumSize: size,
		}),
		logger: logger,
	}
}

func (c *cachedPredictor) Predict(f Features) (float64, error) {
	if hours, ok := c.cache.GetIfPresent(f); ok {
		c.logger.Debug("prediction cache hit", "features", f, "hours", hours)
		return hours, nil
	}

	hours, err := c.next.Predict(f)
	if err != nil {
		return 0, err
	}
	c.cache.Set(f, hours)
	return hours, nil
}

// withCache wraps every predictor produced by load in a prediction cache.
func withCache(load ModelLoader, size int, logger *slog.Logger) ModelLoader {
	return func() (Predictor, error) {
		p, err := load()
		if err != nil {
			return nil, err
		}
		return newCachedPredictor(p, size, logger), nil
	}
}
