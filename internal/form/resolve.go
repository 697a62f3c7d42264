package form

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Skufu/heartcheck/internal/predict"
)

var (
	ErrUnknownField  = errors.New("unknown field")
	ErrUnknownOption = errors.New("unknown option")
	ErrNotSelect     = errors.New("field is not a select")
	ErrMissing       = errors.New("value is required")
	ErrInvalidNumber = errors.New("not a valid number")
	ErrOutOfRange    = errors.New("value out of range")
)

// FieldError ties a resolution failure to the field it came from.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// IsUserError reports whether err was caused by the submitted values rather
// than by the form configuration.
func IsUserError(err error) bool {
	return errors.Is(err, ErrMissing) || errors.Is(err, ErrInvalidNumber) || errors.Is(err, ErrOutOfRange)
}

// Integers pass through float64 on the way into the record; beyond 2^53
// they would no longer round-trip.
const maxExactInt int64 = 1 << 53

type column struct {
	decimal bool
	set     func(r *predict.Record, v float64)
}

var columns = map[string]column{
	"age":      {set: func(r *predict.Record, v float64) { r.Age = int(v) }},
	"sex":      {set: func(r *predict.Record, v float64) { r.Sex = int(v) }},
	"cp":       {set: func(r *predict.Record, v float64) { r.CP = int(v) }},
	"trestbps": {set: func(r *predict.Record, v float64) { r.Trestbps = int(v) }},
	"chol":     {set: func(r *predict.Record, v float64) { r.Chol = int(v) }},
	"fbs":      {set: func(r *predict.Record, v float64) { r.FBS = int(v) }},
	"restecg":  {set: func(r *predict.Record, v float64) { r.Restecg = int(v) }},
	"thalach":  {set: func(r *predict.Record, v float64) { r.Thalach = int(v) }},
	"exang":    {set: func(r *predict.Record, v float64) { r.Exang = int(v) }},
	"oldpeak":  {decimal: true, set: func(r *predict.Record, v float64) { r.Oldpeak = v }},
	"slope":    {set: func(r *predict.Record, v float64) { r.Slope = int(v) }},
	"ca":       {set: func(r *predict.Record, v float64) { r.CA = int(v) }},
	"thal":     {set: func(r *predict.Record, v float64) { r.Thal = int(v) }},
}

// Resolve returns the classifier code for a select's display value.
// Numeric fields are parsed and returned unchanged.
func (d *Definition) Resolve(name, display string) (float64, error) {
	f, ok := d.Field(name)
	if !ok {
		return 0, &FieldError{Field: name, Err: ErrUnknownField}
	}
	v, err := parseValue(f, display)
	if err != nil {
		return 0, &FieldError{Field: name, Err: err}
	}
	return v, nil
}

// Code returns the integer code bound to a select's display value, which may
// be either the bare label ("Male") or the coded display ("Male: 1").
func (d *Definition) Code(name, display string) (int, error) {
	f, ok := d.Field(name)
	if !ok {
		return 0, &FieldError{Field: name, Err: ErrUnknownField}
	}
	if f.Kind != KindSelect {
		return 0, &FieldError{Field: name, Err: ErrNotSelect}
	}
	o, ok := f.Option(display)
	if !ok {
		return 0, &FieldError{Field: name, Err: fmt.Errorf("%w %q", ErrUnknownOption, display)}
	}
	return o.Code, nil
}

// Submission holds raw form values keyed by field name.
type Submission map[string]string

// Build resolves every field of s into a coded record.
func (d *Definition) Build(s Submission) (predict.Record, error) {
	var rec predict.Record
	for _, name := range predict.Columns {
		raw, ok := s[name]
		if !ok {
			return predict.Record{}, &FieldError{Field: name, Err: ErrMissing}
		}
		v, err := d.Resolve(name, raw)
		if err != nil {
			return predict.Record{}, err
		}
		columns[name].set(&rec, v)
	}
	for name := range s {
		if _, ok := columns[name]; !ok {
			return predict.Record{}, &FieldError{Field: name, Err: ErrUnknownField}
		}
	}
	return rec, nil
}

// Defaults returns a submission holding each field's default value.
func (d *Definition) Defaults() Submission {
	s := make(Submission, len(d.Fields))
	for _, f := range d.Fields {
		s[f.Name] = f.Default
	}
	return s
}

func parseValue(f Field, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrMissing
	}

	switch f.Kind {
	case KindSelect:
		o, ok := f.Option(raw)
		if !ok {
			return 0, fmt.Errorf("%w %q", ErrUnknownOption, raw)
		}
		return float64(o.Code), nil
	case KindInteger:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
		}
		if int64(n) > maxExactInt || int64(n) < -maxExactInt {
			return 0, fmt.Errorf("%w: %d exceeds 2^53 in magnitude", ErrOutOfRange, n)
		}
		v := float64(n)
		if !f.inRange(v) {
			return 0, fmt.Errorf("%w: %d not in %s", ErrOutOfRange, n, rangeString(f))
		}
		return v, nil
	case KindDecimal:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
		}
		if !f.inRange(v) {
			return 0, fmt.Errorf("%w: %v not in %s", ErrOutOfRange, v, rangeString(f))
		}
		return v, nil
	default:
		return 0, fmt.Errorf("unknown kind %q", f.Kind)
	}
}

func rangeString(f Field) string {
	lo, hi := "-inf", "+inf"
	if f.Min != nil {
		lo = strconv.FormatFloat(*f.Min, 'f', -1, 64)
	}
	if f.Max != nil {
		hi = strconv.FormatFloat(*f.Max, 'f', -1, 64)
	}
	return "[" + lo + ", " + hi + "]"
}
