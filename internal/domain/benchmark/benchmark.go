// Package benchmark holds the norm-referenced cut point table used to
// classify raw scores. The table is loaded once at startup and is
// immutable afterwards, so concurrent reads need no locking.
package benchmark

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/edulytics/screener/internal/domain/model"
)

// CutPoints are the named thresholds for one (key, grade, window) cell.
// Any of the three may be absent; when present they are ascending:
// moderate <= benchmark <= advanced.
type CutPoints struct {
	Advanced  *float64 `koanf:"advanced"`
	Benchmark *float64 `koanf:"benchmark"`
	Moderate  *float64 `koanf:"moderate"`
}

// Table maps benchmark key -> grade -> time-of-year -> cut points.
type Table struct {
	entries map[string]map[string]map[string]CutPoints
}

// Load parses the compiled-in reference dataset.
func Load() (*Table, error) {
	return parse(rawbytes.Provider(defaultData))
}

// LoadFile parses an operator-supplied YAML dataset, replacing the
// compiled-in one entirely.
func LoadFile(path string) (*Table, error) {
	return parse(file.Provider(path))
}

func parse(provider koanf.Provider) (*Table, error) {
	k := koanf.New(".")
	if err := k.Load(provider, yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadTable, err)
	}

	entries := make(map[string]map[string]map[string]CutPoints)
	if err := k.UnmarshalWithConf("", &entries, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadTable, err)
	}

	t := &Table{entries: entries}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// validate enforces the ascending cut point invariant on every cell.
func (t *Table) validate() error {
	for key, grades := range t.entries {
		for grade, windows := range grades {
			for toy, cp := range windows {
				if cp.Advanced != nil && cp.Benchmark != nil && *cp.Advanced < *cp.Benchmark {
					return fmt.Errorf("%w: %s/%s/%s advanced < benchmark", ErrInvalidTable, key, grade, toy)
				}
				if cp.Benchmark != nil && cp.Moderate != nil && *cp.Benchmark < *cp.Moderate {
					return fmt.Errorf("%w: %s/%s/%s benchmark < moderate", ErrInvalidTable, key, grade, toy)
				}
				if cp.Advanced != nil && cp.Moderate != nil && *cp.Advanced < *cp.Moderate {
					return fmt.Errorf("%w: %s/%s/%s advanced < moderate", ErrInvalidTable, key, grade, toy)
				}
			}
		}
	}
	return nil
}

// Lookup returns the cut points for a (key, grade, window) triple.
// Keys starting with "_" carry metadata, not norms, and never resolve.
func (t *Table) Lookup(key, grade string, toy model.TimeOfYear) (CutPoints, bool) {
	if strings.HasPrefix(key, "_") {
		return CutPoints{}, false
	}
	grades, ok := t.entries[key]
	if !ok {
		return CutPoints{}, false
	}
	windows, ok := grades[grade]
	if !ok {
		return CutPoints{}, false
	}
	cp, ok := windows[string(toy)]
	return cp, ok
}

// Keys lists the benchmark keys present in the table.
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of benchmark keys in the table.
func (t *Table) Len() int {
	return len(t.entries)
}
