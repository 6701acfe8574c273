package metrics

import (
	"errors"
	"io"
)

// MultiSink fans out records to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRoute forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordRoute(ev RouteEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordRoute(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordChargeStop forwards stops to the sinks supporting them.
func (m *MultiSink) RecordChargeStop(ev ChargeStopEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ChargeStopRecorder); ok {
			if err := rec.RecordChargeStop(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordCatalogLoad forwards catalog loads to the sinks supporting them.
func (m *MultiSink) RecordCatalogLoad(ev CatalogLoadEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(CatalogRecorder); ok {
			if err := rec.RecordCatalogLoad(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink implementing io.Closer.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
