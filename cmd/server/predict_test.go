package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/heartcheck/internal/form"
	"github.com/Skufu/heartcheck/internal/outcome"
)

type scriptedPrompter struct {
	answers map[string]string
	asked   []string
	options map[string][]string
}

func (p *scriptedPrompter) Select(message string, options []string, def string) (string, error) {
	p.asked = append(p.asked, message)
	if p.options == nil {
		p.options = map[string][]string{}
	}
	p.options[message] = options
	if a, ok := p.answers[message]; ok {
		return a, nil
	}
	return def, nil
}

func (p *scriptedPrompter) Input(message, def string, validate func(string) error) (string, error) {
	p.asked = append(p.asked, message)
	a, ok := p.answers[message]
	if !ok {
		a = def
	}
	if err := validate(a); err != nil {
		return "", err
	}
	return a, nil
}

func mustDefinition(t *testing.T) (*form.Definition, form.Variant) {
	t.Helper()
	def, err := form.Default()
	require.NoError(t, err)
	v, err := def.Variant("standard")
	require.NoError(t, err)
	return def, v
}

func TestCollectSubmissionPromptsRemainingFields(t *testing.T) {
	def, v := mustDefinition(t)
	p := &scriptedPrompter{answers: map[string]string{
		"Sex": "Female: 0",
		"Number of Major Vessels Colored by Fluoroscopy (0-3)": "7",
		"ST Depression Induced by Exercise Relative to Rest":   "1.4",
	}}

	s, err := collectSubmission(def, v, map[string]string{"age": "63"}, p)
	require.NoError(t, err)

	assert.NotContains(t, p.asked, "Age in years")
	assert.Len(t, p.asked, len(def.Fields)-1)
	assert.Equal(t, []string{"Female: 0", "Male: 1"}, p.options["Sex"])

	rec, err := def.Build(s)
	require.NoError(t, err)
	assert.Equal(t, 63, rec.Age)
	assert.Equal(t, 0, rec.Sex)
	assert.Equal(t, 3, rec.CA, "vessel count is clamped to the widget bounds")
	assert.Equal(t, 1.4, rec.Oldpeak)
}

func TestCollectSubmissionRejectsNonNumericInput(t *testing.T) {
	def, v := mustDefinition(t)
	p := &scriptedPrompter{answers: map[string]string{"Serum Cholesterol (mg/dl)": "233.5"}}

	_, err := collectSubmission(def, v, nil, p)
	assert.ErrorIs(t, err, form.ErrInvalidNumber)
}

func TestCollectSubmissionWithoutPrompter(t *testing.T) {
	def, v := mustDefinition(t)

	s, err := collectSubmission(def, v, map[string]string{"thal": "Reversible Defect"}, nil)
	require.NoError(t, err)

	rec, err := def.Build(s)
	require.NoError(t, err)
	assert.Equal(t, 7, rec.Thal)
	assert.Equal(t, 1, rec.Sex)
}

func TestCollectSubmissionClampsNumericPresets(t *testing.T) {
	def, v := mustDefinition(t)

	s, err := collectSubmission(def, v, map[string]string{"ca": "5", "age": " 63 ", "chol": "abc"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "3", s["ca"])
	assert.Equal(t, "63", s["age"])
	assert.Equal(t, "abc", s["chol"])

	s["chol"] = "233"
	rec, err := def.Build(s)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.CA)
}

func TestCollectSubmissionStopsOnAbort(t *testing.T) {
	def, v := mustDefinition(t)

	_, err := collectSubmission(def, v, nil, abortingPrompter{})
	assert.ErrorIs(t, err, errAborted)
}

type abortingPrompter struct{}

func (abortingPrompter) Select(string, []string, string) (string, error) { return "", errAborted }
func (abortingPrompter) Input(string, string, func(string) error) (string, error) {
	return "", errAborted
}

func TestPrintVerdict(t *testing.T) {
	var buf bytes.Buffer
	pos, err := outcome.Render(1)
	require.NoError(t, err)
	printVerdict(&buf, pos)
	assert.Contains(t, buf.String(), outcome.PositiveMessage)

	buf.Reset()
	neg, err := outcome.Render(0)
	require.NoError(t, err)
	printVerdict(&buf, neg)
	assert.Contains(t, buf.String(), outcome.NegativeMessage)
}

func TestTranslateSurveyErr(t *testing.T) {
	other := errors.New("tty closed")
	assert.Equal(t, other, translateSurveyErr(other))
}
