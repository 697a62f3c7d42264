package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Skufu/heartcheck/internal/form"
	"github.com/Skufu/heartcheck/internal/outcome"
)

var (
	presets map[string]string
	noInput bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Fill in the form in the terminal and print the verdict",
	Long: `Prompts for each of the thirteen patient fields and prints the model's verdict.

Fields given with --set are not prompted for. Numeric values, whether typed
or given with --set, are clamped to the field's bounds (the vessel count to
0-3). With --no-input, any field not given with --set takes its default value.

Example:
  heartcheck predict --set age=63,sex=Male,cp="Typical Angina" --no-input`,
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().StringToStringVar(&presets, "set", nil, "field=value pairs to use instead of prompting")
	predictCmd.Flags().BoolVar(&noInput, "no-input", false, "never prompt; use defaults for fields not given with --set")
}

func runPredict(cmd *cobra.Command, _ []string) error {
	_, logger, a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck
	defer a.Close()

	var p prompter = surveyPrompter{}
	if noInput {
		p = nil
	}
	s, err := collectSubmission(a.Form, a.Variant, presets, p)
	if err != nil {
		return err
	}

	res, err := a.Evaluate(cmd.Context(), s)
	if err != nil {
		return err
	}
	printVerdict(cmd.OutOrStdout(), res.Outcome)
	return nil
}

// prompter asks for one value at a time.
type prompter interface {
	Select(message string, options []string, def string) (string, error)
	Input(message, def string, validate func(string) error) (string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Select(message string, options []string, def string) (string, error) {
	var out string
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: def,
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyPrompter) Input(message, def string, validate func(string) error) (string, error) {
	var out string
	prompt := &survey.Input{
		Message: message,
		Default: def,
	}
	validator := func(ans interface{}) error {
		s, _ := ans.(string)
		return validate(s)
	}
	if err := survey.AskOne(prompt, &out, survey.WithValidator(validator)); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

var errAborted = errors.New("aborted")

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errAborted
	}
	return err
}

// collectSubmission fills every field from presets, the prompter, or the
// field default when p is nil. Numeric answers are clamped to the field's
// bounds the way a number input widget would.
func collectSubmission(def *form.Definition, v form.Variant, presets map[string]string, p prompter) (form.Submission, error) {
	s := make(form.Submission, len(def.Fields))
	for name, value := range presets {
		s[name] = value
		if f, ok := def.Field(name); ok && f.Kind != form.KindSelect {
			s[name] = clampNumeric(f, value)
		}
	}

	for _, f := range def.Fields {
		if _, ok := s[f.Name]; ok {
			continue
		}
		if p == nil {
			s[f.Name] = f.Default
			continue
		}

		switch f.Kind {
		case form.KindSelect:
			choices := f.Choices(v.ShowCodes)
			defOpt, _ := f.Option(f.Default)
			defChoice := defOpt.Label
			if v.ShowCodes {
				defChoice = defOpt.Display()
			}
			answer, err := p.Select(f.Label, choices, defChoice)
			if err != nil {
				return nil, err
			}
			s[f.Name] = answer
		default:
			field := f
			answer, err := p.Input(f.Label, f.Default, func(ans string) error {
				ans = strings.TrimSpace(ans)
				_, err := strconv.ParseFloat(ans, 64)
				if err != nil || (field.Kind == form.KindInteger && !isInteger(ans)) {
					return fmt.Errorf("%s: %w", field.Name, form.ErrInvalidNumber)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			s[f.Name] = clampNumeric(field, answer)
		}
	}
	return s, nil
}

// clampNumeric bounds a numeric answer to the field's range. Anything that
// does not parse is returned as is so Build reports it.
func clampNumeric(f form.Field, raw string) string {
	raw = strings.TrimSpace(raw)
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || (f.Kind == form.KindInteger && !isInteger(raw)) {
		return raw
	}
	clamped := f.Clamp(n)
	if clamped == n {
		return raw
	}
	return strconv.FormatFloat(clamped, 'f', -1, 64)
}

func isInteger(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

var (
	positiveStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	negativeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

func printVerdict(w io.Writer, o outcome.Outcome) {
	style := negativeStyle
	if o.IsPositive() {
		style = positiveStyle
	}
	fmt.Fprintln(w, style.Render(o.Message))
}
