package form

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Skufu/heartcheck/internal/predict"
)

//go:embed heart.yaml
var defaultDefinition []byte

type Kind string

const (
	KindInteger Kind = "integer"
	KindDecimal Kind = "decimal"
	KindSelect  Kind = "select"
)

var (
	ErrInvalidDefinition = errors.New("invalid form definition")
	ErrUnknownVariant    = errors.New("unknown form variant")
)

// Option binds one display label to the code the classifier was trained on.
type Option struct {
	Label string `yaml:"label" json:"label"`
	Code  int    `yaml:"code" json:"code"`
}

// Display is the coded rendering of the option, e.g. "Male: 1".
func (o Option) Display() string {
	return fmt.Sprintf("%s: %d", o.Label, o.Code)
}

type Field struct {
	Name    string   `yaml:"name" json:"name"`
	Label   string   `yaml:"label" json:"label"`
	Kind    Kind     `yaml:"kind" json:"kind"`
	Default string   `yaml:"default" json:"default"`
	Step    float64  `yaml:"step,omitempty" json:"step,omitempty"`
	Min     *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max     *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	Options []Option `yaml:"options,omitempty" json:"options,omitempty"`
}

// Choices lists what a select shows to the user, derived from Options.
func (f Field) Choices(showCodes bool) []string {
	out := make([]string, 0, len(f.Options))
	for _, o := range f.Options {
		if showCodes {
			out = append(out, o.Display())
		} else {
			out = append(out, o.Label)
		}
	}
	return out
}

// Codes returns the declared code set of a select.
func (f Field) Codes() []int {
	out := make([]int, 0, len(f.Options))
	for _, o := range f.Options {
		out = append(out, o.Code)
	}
	return out
}

// Option finds the option matching either its label or its coded display.
func (f Field) Option(display string) (Option, bool) {
	display = strings.TrimSpace(display)
	for _, o := range f.Options {
		if strings.EqualFold(display, o.Label) || strings.EqualFold(display, o.Display()) {
			return o, true
		}
	}
	return Option{}, false
}

// Clamp bounds v to the field's declared range.
func (f Field) Clamp(v float64) float64 {
	if f.Min != nil && v < *f.Min {
		v = *f.Min
	}
	if f.Max != nil && v > *f.Max {
		v = *f.Max
	}
	return v
}

func (f Field) inRange(v float64) bool {
	if f.Min != nil && v < *f.Min {
		return false
	}
	if f.Max != nil && v > *f.Max {
		return false
	}
	return true
}

// Variant holds the cosmetic differences between renditions of the page.
type Variant struct {
	Title     string   `yaml:"title" json:"title"`
	Accent    string   `yaml:"accent" json:"accent"`
	Image     string   `yaml:"image" json:"image"`
	ShowCodes bool     `yaml:"show_codes" json:"show_codes"`
	Footer    []string `yaml:"footer,omitempty" json:"footer,omitempty"`
}

// Definition is the single source of truth for the form: the rendered
// inputs, the option lists and the code lookup all come from Fields.
type Definition struct {
	Title        string             `yaml:"title" json:"title"`
	Tagline      string             `yaml:"tagline" json:"tagline"`
	SidebarTitle string             `yaml:"sidebar_title" json:"sidebar_title"`
	Description  string             `yaml:"description" json:"-"`
	Variants     map[string]Variant `yaml:"variants" json:"variants"`
	Fields       []Field            `yaml:"fields" json:"fields"`

	byName map[string]int
}

// Default returns the built-in heart disease form.
func Default() (*Definition, error) {
	return Parse(defaultDefinition)
}

// Load reads a definition from path, or the built-in one when path is empty.
func Load(path string) (*Definition, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form definition: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Definition, error) {
	var d Definition
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks the definition covers every record column exactly once
// and that every select is a bijection between labels and codes.
func (d *Definition) Validate() error {
	d.byName = make(map[string]int, len(d.Fields))
	for i, f := range d.Fields {
		if _, ok := columns[f.Name]; !ok {
			return fmt.Errorf("%w: field %q is not a record column", ErrInvalidDefinition, f.Name)
		}
		if _, dup := d.byName[f.Name]; dup {
			return fmt.Errorf("%w: field %q declared twice", ErrInvalidDefinition, f.Name)
		}
		d.byName[f.Name] = i
		if err := validateField(f); err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrInvalidDefinition, f.Name, err)
		}
	}
	for _, name := range predict.Columns {
		if _, ok := d.byName[name]; !ok {
			return fmt.Errorf("%w: missing field %q", ErrInvalidDefinition, name)
		}
	}
	for name, v := range d.Variants {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: unnamed variant", ErrInvalidDefinition)
		}
		if v.Accent == "" {
			return fmt.Errorf("%w: variant %q has no accent", ErrInvalidDefinition, name)
		}
	}
	return nil
}

func validateField(f Field) error {
	if strings.TrimSpace(f.Label) == "" {
		return errors.New("missing label")
	}
	if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
		return fmt.Errorf("min %v greater than max %v", *f.Min, *f.Max)
	}

	switch f.Kind {
	case KindInteger, KindDecimal:
		if len(f.Options) > 0 {
			return fmt.Errorf("%s field cannot declare options", f.Kind)
		}
		if f.Kind == KindDecimal && !columns[f.Name].decimal {
			return errors.New("column holds an integer")
		}
	case KindSelect:
		if len(f.Options) < 2 {
			return errors.New("select needs at least two options")
		}
		labels := map[string]bool{}
		codes := map[int]bool{}
		for _, o := range f.Options {
			key := strings.ToLower(strings.TrimSpace(o.Label))
			if key == "" {
				return errors.New("option with empty label")
			}
			if labels[key] {
				return fmt.Errorf("duplicate option label %q", o.Label)
			}
			if codes[o.Code] {
				return fmt.Errorf("duplicate option code %d", o.Code)
			}
			labels[key] = true
			codes[o.Code] = true
		}
		for _, o := range f.Options {
			for _, other := range f.Options {
				if o != other && strings.EqualFold(strings.TrimSpace(o.Label), other.Display()) {
					return fmt.Errorf("option label %q collides with %q", o.Label, other.Display())
				}
			}
		}
	default:
		return fmt.Errorf("unknown kind %q", f.Kind)
	}

	if _, err := parseValue(f, f.Default); err != nil {
		return fmt.Errorf("default: %w", err)
	}
	return nil
}

// Field returns the descriptor for a record column.
func (d *Definition) Field(name string) (Field, bool) {
	i, ok := d.byName[name]
	if !ok {
		return Field{}, false
	}
	return d.Fields[i], true
}

// Variant resolves a named variant; an empty name picks "standard".
func (d *Definition) Variant(name string) (Variant, error) {
	if name == "" {
		name = "standard"
	}
	v, ok := d.Variants[name]
	if !ok {
		if len(d.Variants) == 0 && name == "standard" {
			return Variant{Title: d.Title, Accent: "orange", ShowCodes: true}, nil
		}
		return Variant{}, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
	}
	if v.Title == "" {
		v.Title = d.Title
	}
	return v, nil
}
