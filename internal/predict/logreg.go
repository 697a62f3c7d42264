package predict

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrBadArtifact = errors.New("invalid model artifact")

// Artifact is the serialized form of a fitted logistic regression.
// JSON artifacts parse as well since they are valid YAML.
type Artifact struct {
	Kind         string    `yaml:"kind" json:"kind"`
	Version      string    `yaml:"version" json:"version"`
	Features     []string  `yaml:"features" json:"features"`
	Coefficients []float64 `yaml:"coefficients" json:"coefficients"`
	Intercept    float64   `yaml:"intercept" json:"intercept"`
}

// LogisticRegression predicts 1 when the decision function is positive.
type LogisticRegression struct {
	version      string
	coefficients []float64
	intercept    float64
}

// LoadLogisticRegression reads and validates an artifact from disk.
func LoadLogisticRegression(path string) (*LogisticRegression, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	return ParseLogisticRegression(raw)
}

func ParseLogisticRegression(raw []byte) (*LogisticRegression, error) {
	var a Artifact
	if err := yaml.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArtifact, err)
	}
	return NewLogisticRegression(a)
}

func NewLogisticRegression(a Artifact) (*LogisticRegression, error) {
	if a.Kind != "" && a.Kind != "logistic_regression" {
		return nil, fmt.Errorf("%w: unsupported kind %q", ErrBadArtifact, a.Kind)
	}
	if len(a.Features) != len(Columns) {
		return nil, fmt.Errorf("%w: expected %d features, got %d", ErrBadArtifact, len(Columns), len(a.Features))
	}
	for i, name := range Columns {
		if a.Features[i] != name {
			return nil, fmt.Errorf("%w: feature %d is %q, want %q", ErrBadArtifact, i, a.Features[i], name)
		}
	}
	if len(a.Coefficients) != len(Columns) {
		return nil, fmt.Errorf("%w: expected %d coefficients, got %d", ErrBadArtifact, len(Columns), len(a.Coefficients))
	}
	for i, c := range a.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("%w: coefficient for %s is not finite", ErrBadArtifact, Columns[i])
		}
	}
	if math.IsNaN(a.Intercept) || math.IsInf(a.Intercept, 0) {
		return nil, fmt.Errorf("%w: intercept is not finite", ErrBadArtifact)
	}

	coef := make([]float64, len(a.Coefficients))
	copy(coef, a.Coefficients)
	return &LogisticRegression{
		version:      a.Version,
		coefficients: coef,
		intercept:    a.Intercept,
	}, nil
}

func (m *LogisticRegression) Name() string {
	if m.version == "" {
		return "logistic_regression"
	}
	return "logistic_regression@" + m.version
}

// DecisionFunction returns the signed distance of rec to the separating hyperplane.
func (m *LogisticRegression) DecisionFunction(rec Record) float64 {
	z := m.intercept
	for i, x := range rec.Values() {
		z += m.coefficients[i] * x
	}
	return z
}

// Probability returns the estimated probability of the positive class.
func (m *LogisticRegression) Probability(rec Record) float64 {
	return 1 / (1 + math.Exp(-m.DecisionFunction(rec)))
}

func (m *LogisticRegression) Predict(ctx context.Context, rec Record) (Label, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if m.DecisionFunction(rec) > 0 {
		return 1, nil
	}
	return 0, nil
}
