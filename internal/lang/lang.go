// Package lang serves localized HUD strings.
package lang

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Default is used when the preferred language is not available.
var Default = language.BritishEnglish

var ErrNoLanguages = errors.New("no languages defined")

type file struct {
	Languages map[string]map[string]string `yaml:"languages"`
}

// Manager holds the strings of every language in a file and serves the
// selected one. A missing key is returned as-is.
type Manager struct {
	path    string
	tables  map[language.Tag]map[string]string
	tags    []language.Tag
	current language.Tag
	strings map[string]string
	printer *message.Printer
	log     *zap.Logger
}

// Load reads a languages file and selects the closest match to preferred,
// falling back to Default.
func Load(fsys fs.FS, path, preferred string, log *zap.Logger) (*Manager, error) {
	raw, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(f.Languages) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoLanguages)
	}

	m := &Manager{path: path, tables: make(map[language.Tag]map[string]string), log: log}
	for name, strs := range f.Languages {
		tag, err := language.Parse(strings.ReplaceAll(name, "_", "-"))
		if err != nil {
			return nil, fmt.Errorf("%s: language %q: %w", path, name, err)
		}
		table := make(map[string]string, len(strs))
		for k, v := range strs {
			table[k] = strings.ReplaceAll(v, "<br />", "\n")
		}
		m.tables[tag] = table
		m.tags = append(m.tags, tag)
	}

	if !m.Select(preferred) && !m.Select(Default.String()) {
		m.use(m.tags[0])
	}
	return m, nil
}

// Select switches to the best available match for name. It reports false
// when nothing matches with at least low confidence.
func (m *Manager) Select(name string) bool {
	want, err := language.Parse(strings.ReplaceAll(name, "_", "-"))
	if err != nil {
		m.log.Warn("bad language name", zap.String("language", name), zap.Error(err))
		return false
	}
	_, idx, conf := language.NewMatcher(m.tags).Match(want)
	if conf < language.Low {
		m.log.Error("language not available", zap.String("language", name), zap.String("file", m.path))
		return false
	}
	m.use(m.tags[idx])
	return true
}

func (m *Manager) use(tag language.Tag) {
	m.current = tag
	m.strings = m.tables[tag]
	m.printer = message.NewPrinter(tag)
	m.log.Info("language loaded", zap.Stringer("language", tag), zap.Int("strings", len(m.strings)))
}

// Language returns the selected language tag.
func (m *Manager) Language() language.Tag { return m.current }

// Get returns the string for key, or key itself when it is missing.
func (m *Manager) Get(key string) string {
	if s, ok := m.strings[key]; ok {
		return s
	}
	m.log.Error("string not found", zap.String("key", key), zap.Stringer("language", m.current))
	return key
}

// Format uses the string for key as a format with locale-aware numbers.
func (m *Manager) Format(key string, args ...any) string {
	return m.printer.Sprintf(m.Get(key), args...)
}
