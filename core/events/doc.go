// Package events defines the planning related events emitted on the event bus.
//
// Available event types:
//   - RoutePlanned: a planning run finished, successfully or with fail set
//   - CatalogLoaded: the charger catalog was (re)loaded
package events
