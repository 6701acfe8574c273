// Package infra holds the adapters behind the core interfaces: the road
// network and charger loaders, the MQTT transport, metrics sinks, logging
// and Sentry monitoring.
package infra
