// Package settings holds gameplay tunables (speeds, impulses, timers) read
// from a TOML file. Every lookup takes a default so a missing or partial
// file never stops the game.
package settings

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// Settings is a flat key space. Nested TOML tables are flattened to dotted
// keys ("physics.gravity").
type Settings struct {
	path   string
	values map[string]any
	log    *zap.Logger
}

// New returns settings backed by values, which may be nil.
func New(values map[string]any, log *zap.Logger) *Settings {
	s := &Settings{values: make(map[string]any, len(values)), log: log}
	flatten("", values, s.values)
	return s
}

// Load reads a TOML settings file.
func Load(path string, log *zap.Logger) (*Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}
	var values map[string]any
	if err := toml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	s := New(values, log)
	s.path = path
	log.Info("settings loaded", zap.String("file", path), zap.Int("keys", len(s.values)))
	return s, nil
}

func flatten(prefix string, in, out map[string]any) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			flatten(key, sub, out)
			continue
		}
		out[key] = v
	}
}

func (s *Settings) Path() string { return s.path }

// Set overrides a key in memory.
func (s *Settings) Set(key string, value any) { s.values[key] = value }

func (s *Settings) String(key, def string) string {
	v, ok := s.values[key]
	if !ok {
		return def
	}
	str, ok := v.(string)
	if !ok {
		s.mismatch(key, "string", v)
		return def
	}
	return str
}

func (s *Settings) Float(key string, def float64) float64 {
	v, ok := s.values[key]
	if !ok {
		return def
	}
	f, ok := number(v)
	if !ok {
		s.mismatch(key, "float", v)
		return def
	}
	return f
}

func (s *Settings) Int(key string, def int) int {
	v, ok := s.values[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	}
	s.mismatch(key, "int", v)
	return def
}

func (s *Settings) Bool(key string, def bool) bool {
	v, ok := s.values[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		s.mismatch(key, "bool", v)
		return def
	}
	return b
}

// Vector reads a 2 or 3 element array; a missing Z is zero.
func (s *Settings) Vector(key string, def mgl64.Vec3) mgl64.Vec3 {
	v, ok := s.values[key]
	if !ok {
		return def
	}
	var items []any
	switch arr := v.(type) {
	case []any:
		items = arr
	case []float64:
		for _, f := range arr {
			items = append(items, f)
		}
	case mgl64.Vec3:
		return arr
	}
	if len(items) < 2 || len(items) > 3 {
		s.mismatch(key, "vector", v)
		return def
	}
	var out mgl64.Vec3
	for i, item := range items {
		f, ok := number(item)
		if !ok {
			s.mismatch(key, "vector", v)
			return def
		}
		out[i] = f
	}
	return out
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

func (s *Settings) mismatch(key, want string, got any) {
	s.log.Warn("settings type mismatch, using default",
		zap.String("key", key), zap.String("want", want), zap.String("got", fmt.Sprintf("%T", got)))
}
