// Package metrics defines the sinks that record planning activity. Sinks like
// PromSink and InfluxSink in infra/metrics record planned routes, charging
// stops and catalog loads and can be combined with NewMultiSink. The factory
// helpers return a MultiSink automatically when several sinks are configured.
package metrics
