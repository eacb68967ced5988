// Package settings reads the optional pmgen settings file.
//
// Two formats are understood. The classic pymod.cfg is INI-style:
//
//	[all]
//	nimSetIsRelease = true
//	nimAddModulePath = "../shared"
//	nimAddModulePath = /opt/nim/lib
//
// A pymod.toml holds the same sections as tables and may add conditional
// tables keyed by an expression, merged only when the expression is true:
//
//	[all]
//	nimAddModulePath = ["../shared"]
//
//	[all."target_os == 'darwin'"]
//	nimAddModulePath = ["/opt/homebrew/lib/nim"]
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultFile and TOMLFile are looked up in the invocation directory.
	DefaultFile = "pymod.cfg"
	TOMLFile    = "pymod.toml"

	SectionAll       = "all"
	KeySetIsRelease  = "nimSetIsRelease"
	KeyAddModulePath = "nimAddModulePath"
)

var ErrConfigParse = errors.New("config parse error")

// Settings maps section -> lower-cased key -> raw values in file order.
type Settings struct {
	sections map[string]map[string][]string
}

// New returns empty settings.
func New() *Settings {
	return &Settings{sections: make(map[string]map[string][]string)}
}

// Add appends a raw value to section/key.
func (s *Settings) Add(section, key, value string) {
	sec, ok := s.sections[section]
	if !ok {
		sec = make(map[string][]string)
		s.sections[section] = sec
	}
	key = strings.ToLower(key)
	sec[key] = append(sec[key], value)
}

// Get returns every value of section/key with surrounding quotes stripped.
// Missing sections and keys give nil.
func (s *Settings) Get(section, key string) []string {
	if s == nil {
		return nil
	}
	raw := s.sections[section][strings.ToLower(key)]
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i] = StripQuotes(v)
	}
	return out
}

// GetBoolean parses every value of section/key as a boolean.
func (s *Settings) GetBoolean(section, key string) ([]bool, error) {
	values := s.Get(section, key)
	out := make([]bool, 0, len(values))
	for _, v := range values {
		b, err := parseBool(v)
		if err != nil {
			return nil, fmt.Errorf("[%s] %s: %w", section, key, err)
		}
		out = append(out, b)
	}
	return out, nil
}

// Any reports whether any boolean value of section/key is true.
func (s *Settings) Any(section, key string) (bool, error) {
	values, err := s.GetBoolean(section, key)
	if err != nil {
		return false, err
	}
	for _, v := range values {
		if v {
			return true, nil
		}
	}
	return false, nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "yes", "true", "on":
		return true, nil
	case "0", "no", "false", "off":
		return false, nil
	}
	return false, fmt.Errorf("%w: not a boolean: %q", ErrConfigParse, v)
}

// StripQuotes removes one pair of surrounding """ or " quotes.
func StripQuotes(s string) string {
	if len(s) >= 6 && strings.HasPrefix(s, `"""`) && strings.HasSuffix(s, `"""`) {
		return s[3 : len(s)-3]
	}
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}

// Load reads path. A file that does not exist yields empty settings.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return parseTOML(data, NewEnv())
	}
	return parseINI(data)
}

// Find picks the settings file for dir: explicit wins, then pymod.cfg, then
// pymod.toml. The returned path may not exist.
func Find(dir, explicit string) string {
	if explicit != "" {
		return explicit
	}
	cfg := filepath.Join(dir, DefaultFile)
	if _, err := os.Stat(cfg); err == nil {
		return cfg
	}
	toml := filepath.Join(dir, TOMLFile)
	if _, err := os.Stat(toml); err == nil {
		return toml
	}
	return cfg
}
