package source

import (
	"context"
	"time"

	"github.com/beesafe/broodwatch/internal/corridor"
)

// demoSource serves two hourly readings, the second one a heat stress event.
type demoSource struct {
	now func() time.Time
}

func (s *demoSource) Samples(_ context.Context) ([]corridor.Sample, error) {
	t0 := s.now()
	return []corridor.Sample{
		{Timestamp: t0, TemperatureC: 34.5},
		{Timestamp: t0.Add(time.Hour), TemperatureC: 37.2},
	}, nil
}
