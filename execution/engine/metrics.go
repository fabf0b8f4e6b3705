package engine

import (
	"github.com/rcrowley/go-metrics"
)

type engineMetrics struct {
	executed          metrics.Counter
	discarded         metrics.Counter
	validTransitions  metrics.Counter
	invalidTransition metrics.Counter
	processingFees    metrics.Meter
	storageFees       metrics.Meter
	execute           metrics.Timer
}

func newMetrics(r metrics.Registry) *engineMetrics {
	return &engineMetrics{
		executed:          metrics.NewRegisteredCounter("drive/block/executed", r),
		discarded:         metrics.NewRegisteredCounter("drive/block/discarded", r),
		validTransitions:  metrics.NewRegisteredCounter("drive/transition/valid", r),
		invalidTransition: metrics.NewRegisteredCounter("drive/transition/invalid", r),
		processingFees:    metrics.NewRegisteredMeter("drive/fees/processing", r),
		storageFees:       metrics.NewRegisteredMeter("drive/fees/storage", r),
		execute:           metrics.NewRegisteredTimer("drive/block/execute", r),
	}
}
