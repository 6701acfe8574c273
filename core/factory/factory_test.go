package factory

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type store struct {
	path    string
	maxSize int
}

func storeRegistry(t *testing.T) *Registry[*store] {
	t.Helper()
	reg := NewRegistry[*store]()
	require.NoError(t, reg.Register("jsonl", func(conf map[string]any) (*store, error) {
		c := struct {
			Path      string `json:"path"`
			MaxSizeMB int    `json:"max_size_mb"`
		}{Path: "routes.jsonl"}
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.MaxSizeMB < 0 {
			return nil, errors.New("negative size")
		}
		return &store{path: c.Path, maxSize: c.MaxSizeMB}, nil
	}))
	return reg
}

func TestRegistryCreate(t *testing.T) {
	reg := storeRegistry(t)

	s, err := reg.Create(ModuleConfig{Type: "jsonl", Conf: map[string]any{"max_size_mb": 3}})
	require.NoError(t, err)
	assert.Equal(t, &store{path: "routes.jsonl", maxSize: 3}, s)

	_, err = reg.Create(ModuleConfig{Type: "jsonl", Conf: map[string]any{"max_size_mb": -1}})
	assert.ErrorContains(t, err, "jsonl: negative size")
}

func TestRegistryErrors(t *testing.T) {
	reg := storeRegistry(t)
	assert.Error(t, reg.Register("jsonl", func(map[string]any) (*store, error) { return nil, nil }), "duplicate")
	assert.Error(t, reg.Register("sqlite", nil))
	assert.Error(t, reg.Register("", func(map[string]any) (*store, error) { return nil, nil }))

	_, err := reg.Create(ModuleConfig{Type: "postgres"})
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.ErrorContains(t, err, "have jsonl")
	assert.Equal(t, []string{"jsonl"}, reg.Names())
}

// Values coming from env variables are strings.
func TestDecodeWeakTypes(t *testing.T) {
	var c struct {
		MaxSize int           `json:"max_size"`
		Flush   time.Duration `json:"flush"`
		Enabled bool          `json:"enabled"`
	}
	err := Decode(map[string]any{"max_size": "10", "flush": "2s", "enabled": "true"}, &c)
	require.NoError(t, err)
	assert.Equal(t, 10, c.MaxSize)
	assert.Equal(t, 2*time.Second, c.Flush)
	assert.True(t, c.Enabled)
}
