package routelog

import (
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/factory"
)

var storeRegistry = factory.NewRegistry[Store]()

func init() {
	_ = storeRegistry.Register("nop", func(map[string]any) (Store, error) { return NopStore{}, nil })
	_ = storeRegistry.Register("jsonl", func(conf map[string]any) (Store, error) {
		c := struct {
			Path       string `json:"path"`
			MaxSizeMB  int    `json:"max_size_mb"`
			MaxBackups int    `json:"max_backups"`
			MaxAgeDays int    `json:"max_age_days"`
		}{Path: "routes.jsonl", MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 7}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	})
	_ = storeRegistry.Register("sqlite", func(conf map[string]any) (Store, error) {
		c := struct {
			Path string `json:"path"`
		}{Path: "routes.db"}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewSQLiteStore(c.Path)
	})
}

// RegisterStore adds a store factory identified by name.
func RegisterStore(name string, f factory.Factory[Store]) error {
	return storeRegistry.Register(name, f)
}

// NewStore creates a Store from cfg. An empty type disables the route log.
func NewStore(cfg factory.ModuleConfig) (Store, error) {
	if cfg.Type == "" {
		return NopStore{}, nil
	}
	return storeRegistry.Create(cfg)
}
