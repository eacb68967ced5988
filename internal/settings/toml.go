package settings

import (
	"fmt"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/pelletier/go-toml/v2"
)

// Env is what conditional section expressions are evaluated against.
type Env struct {
	TargetOS   string            `expr:"target_os"`
	TargetArch string            `expr:"target_arch"`
	Environ    map[string]string `expr:"environ"`
}

func NewEnv() Env {
	environ := make(map[string]string)
	for _, e := range os.Environ() {
		if k, v, ok := strings.Cut(e, "="); ok {
			environ[k] = v
		}
	}
	return Env{
		TargetOS:   runtime.GOOS,
		TargetArch: runtime.GOARCH,
		Environ:    environ,
	}
}

func parseTOML(data []byte, env Env) (*Settings, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		if derr, ok := err.(*toml.DecodeError); ok {
			return nil, fmt.Errorf("%w: %s", ErrConfigParse, derr.String())
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	s := New()
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		table, ok := raw[name].(map[string]any)
		if !ok {
			// top-level keys behave like ini's default section
			if err := addValue(s, "DEFAULT", name, raw[name]); err != nil {
				return nil, err
			}
			continue
		}
		if err := addSection(s, name, table, env); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// addSection adds the plain keys of table first, then merges every
// conditional sub-table whose expression is true, in sorted order.
func addSection(s *Settings, section string, table map[string]any, env Env) error {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var conditions []string
	for _, k := range keys {
		if _, ok := table[k].(map[string]any); ok {
			conditions = append(conditions, k)
			continue
		}
		if err := addValue(s, section, k, table[k]); err != nil {
			return err
		}
	}

	for _, cond := range conditions {
		program, err := expr.Compile(cond, expr.Env(env), expr.AsBool())
		if err != nil {
			return fmt.Errorf("%w: failed to compile expression for [%s.%q]: %v", ErrConfigParse, section, cond, err)
		}
		result, err := expr.Run(program, env)
		if err != nil {
			return fmt.Errorf("%w: failed to run expression for [%s.%q]: %v", ErrConfigParse, section, cond, err)
		}
		if matched, ok := result.(bool); !ok || !matched {
			continue
		}
		sub := table[cond].(map[string]any)
		subKeys := make([]string, 0, len(sub))
		for k := range sub {
			subKeys = append(subKeys, k)
		}
		slices.Sort(subKeys)
		for _, k := range subKeys {
			if err := addValue(s, section, k, sub[k]); err != nil {
				return err
			}
		}
	}
	return nil
}

func addValue(s *Settings, section, key string, v any) error {
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if err := addValue(s, section, key, item); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		return fmt.Errorf("%w: [%s] %s: nested tables are only allowed as conditions", ErrConfigParse, section, key)
	case string:
		s.Add(section, key, val)
	case bool:
		s.Add(section, key, strconv.FormatBool(val))
	default:
		s.Add(section, key, fmt.Sprintf("%v", val))
	}
	return nil
}
