package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/daviddao/learnlog/pkg/model"
	"github.com/daviddao/learnlog/pkg/quiz"
	"github.com/daviddao/learnlog/pkg/retention"
)

//go:embed default_catalog.toml
var defaultCatalog []byte

// Task is a roadmap task listed in the catalog.
type Task struct {
	ID    string `toml:"id" yaml:"id"`
	Title string `toml:"title" yaml:"title"`
}

// Catalog describes a roadmap: its tasks, milestones, review schedule and
// quiz bank.
type Catalog struct {
	Name string `toml:"name" yaml:"name"`
	// TotalTasks is used when the roadmap's tasks are not listed one by one.
	TotalTasks      int                  `toml:"total_tasks" yaml:"total_tasks"`
	ReviewIntervals []int                `toml:"review_intervals" yaml:"review_intervals"`
	ScaleByStrength *bool                `toml:"scale_by_strength" yaml:"scale_by_strength"`
	Tasks           []Task               `toml:"tasks" yaml:"tasks"`
	Milestones      []model.MilestoneDef `toml:"milestones" yaml:"milestones"`
	Quiz            []quiz.Question      `toml:"quiz" yaml:"quiz"`
}

// DefaultCatalog returns the built-in roadmap.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog, "toml")
}

// LoadCatalog reads a catalog file; the format follows the extension
// (.toml, .yaml or .yml). An empty path returns the default catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	c, err := ParseCatalog(data, format)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes and validates a catalog in the given format.
func ParseCatalog(data []byte, format string) (*Catalog, error) {
	var c Catalog
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks ids are unique and values are in range.
func (c *Catalog) Validate() error {
	var errs []error
	if c.TotalTasks < 0 {
		errs = append(errs, fmt.Errorf("total_tasks must not be negative"))
	}
	seen := make(map[string]bool)
	for _, t := range c.Tasks {
		if t.ID == "" {
			errs = append(errs, errors.New("task with empty id"))
			continue
		}
		if seen[t.ID] {
			errs = append(errs, fmt.Errorf("duplicate task id %q", t.ID))
		}
		seen[t.ID] = true
	}
	seen = make(map[string]bool)
	for _, m := range c.Milestones {
		if m.ID == "" {
			errs = append(errs, errors.New("milestone with empty id"))
			continue
		}
		if seen[m.ID] {
			errs = append(errs, fmt.Errorf("duplicate milestone id %q", m.ID))
		}
		if m.RequiredTasks < 0 {
			errs = append(errs, fmt.Errorf("milestone %q: required_tasks must not be negative", m.ID))
		}
		seen[m.ID] = true
	}
	for _, d := range c.ReviewIntervals {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("review interval %d must be positive", d))
		}
	}
	for _, q := range c.Quiz {
		if err := q.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Total returns the roadmap size: the larger of total_tasks and the
// number of listed tasks.
func (c *Catalog) Total() int {
	if len(c.Tasks) > c.TotalTasks {
		return len(c.Tasks)
	}
	return c.TotalTasks
}

// TaskIDs returns the listed task ids in catalog order.
func (c *Catalog) TaskIDs() []string {
	ids := make([]string, len(c.Tasks))
	for i, t := range c.Tasks {
		ids[i] = t.ID
	}
	return ids
}

// TaskTitle returns the title of a listed task, or "" when unlisted.
func (c *Catalog) TaskTitle(id string) string {
	for _, t := range c.Tasks {
		if t.ID == id {
			return t.Title
		}
	}
	return ""
}

// RetentionPolicy returns the review schedule the catalog asks for.
// Strength scaling defaults to on.
func (c *Catalog) RetentionPolicy() retention.Policy {
	p := retention.DefaultPolicy()
	if len(c.ReviewIntervals) > 0 {
		p.Intervals = append([]int(nil), c.ReviewIntervals...)
	}
	if c.ScaleByStrength != nil {
		p.ScaleByStrength = *c.ScaleByStrength
	}
	return p
}
