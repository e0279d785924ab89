// Package catalog holds the ordered list of levels.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/mathcatch/internal/model"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("level not found")

// NotFoundError reports a level id absent from the catalog.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("level %d not found", e.ID)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

var defaultLevels = []model.Level{
	{ID: 1, Time: 30, Equations: []string{"1+1=2", "2+2=4", "3+1=4"}, Wrong: []string{"1+2=5", "4+3=2"}, Target: 10},
	{ID: 2, Time: 30, Equations: []string{"5-2=3", "6-3=3", "7-2=5"}, Wrong: []string{"3-2=4", "9-1=3"}, Target: 15},
	{ID: 3, Time: 30, Equations: []string{"4+5=9", "6+2=8", "7-3=4"}, Wrong: []string{"8+1=10", "2+6=5"}, Target: 20},
	{ID: 4, Time: 40, Equations: []string{"10-3=7", "8+2=10", "9-4=5"}, Wrong: []string{"6-1=8", "3+7=11"}, Target: 25},
	{ID: 5, Time: 40, Equations: []string{"12-5=7", "9+3=12", "15-6=9"}, Wrong: []string{"8-3=2", "5+5=11"}, Target: 30},
}

// Catalog is a read-only, id-ordered list of levels.
type Catalog struct {
	levels []model.Level
}

// Default returns the built-in five level catalog.
func Default() *Catalog {
	c, err := New(defaultLevels)
	if err != nil {
		panic(err)
	}
	return c
}

// New validates levels and returns them as a catalog ordered by id.
func New(levels []model.Level) (*Catalog, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("catalog has no levels")
	}
	sorted := make([]model.Level, len(levels))
	for i, lvl := range levels {
		sorted[i] = cloneLevel(lvl)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for i, lvl := range sorted {
		if err := validateLevel(lvl); err != nil {
			return nil, err
		}
		if i > 0 && sorted[i-1].ID == lvl.ID {
			return nil, fmt.Errorf("duplicate level id %d", lvl.ID)
		}
	}
	return &Catalog{levels: sorted}, nil
}

// Load reads levels from a TOML or YAML file, chosen by extension.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read levels file: %w", err)
	}
	var levels []model.Level
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var doc struct {
			Level []model.Level `toml:"level"`
		}
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode levels file: %w", err)
		}
		levels = doc.Level
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &levels); err != nil {
			return nil, fmt.Errorf("failed to decode levels file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported levels file extension %q", filepath.Ext(path))
	}
	return New(levels)
}

// Get returns the level with the given id or a *NotFoundError.
func (c *Catalog) Get(id int) (model.Level, error) {
	i := c.index(id)
	if i < 0 {
		return model.Level{}, &NotFoundError{ID: id}
	}
	return cloneLevel(c.levels[i]), nil
}

// Next returns the level following id in catalog order.
func (c *Catalog) Next(id int) (model.Level, bool) {
	i := c.index(id)
	if i < 0 || i+1 >= len(c.levels) {
		return model.Level{}, false
	}
	return cloneLevel(c.levels[i+1]), true
}

// First returns the lowest-id level.
func (c *Catalog) First() model.Level {
	return cloneLevel(c.levels[0])
}

// Levels returns a copy of every level in id order.
func (c *Catalog) Levels() []model.Level {
	out := make([]model.Level, len(c.levels))
	for i, lvl := range c.levels {
		out[i] = cloneLevel(lvl)
	}
	return out
}

// Len returns the number of levels.
func (c *Catalog) Len() int {
	return len(c.levels)
}

func (c *Catalog) index(id int) int {
	i := sort.Search(len(c.levels), func(i int) bool { return c.levels[i].ID >= id })
	if i < len(c.levels) && c.levels[i].ID == id {
		return i
	}
	return -1
}

func validateLevel(lvl model.Level) error {
	if lvl.ID <= 0 {
		return fmt.Errorf("level id must be > 0, got %d", lvl.ID)
	}
	if lvl.Time <= 0 {
		return fmt.Errorf("level %d: time must be > 0", lvl.ID)
	}
	if len(lvl.Equations) == 0 {
		return fmt.Errorf("level %d: equations must not be empty", lvl.ID)
	}
	if len(lvl.Wrong) == 0 {
		return fmt.Errorf("level %d: wrong equations must not be empty", lvl.ID)
	}
	return nil
}

func cloneLevel(lvl model.Level) model.Level {
	lvl.Equations = append([]string(nil), lvl.Equations...)
	lvl.Wrong = append([]string(nil), lvl.Wrong...)
	return lvl
}
