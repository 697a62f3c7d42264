package server

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/Skufu/heartcheck/internal/app"
	"github.com/Skufu/heartcheck/internal/form"
	"github.com/Skufu/heartcheck/internal/outcome"
	"github.com/Skufu/heartcheck/internal/predict"
)

const internalErrorMessage = "The prediction could not be completed. Please contact the site operator."

type handler struct {
	app         *app.App
	logger      *zap.Logger
	description template.HTML
	image       string
}

type choice struct {
	Value    string
	Selected bool
}

type pageField struct {
	Name    string
	Label   string
	Value   string
	Step    string
	Min     string
	Max     string
	Choices []choice
	Error   string
}

type pageData struct {
	Title        string
	Tagline      string
	SidebarTitle string
	Description  template.HTML
	Accent       string
	Image        string
	Fields       []pageField
	Footer       []string
	Outcome      *outcome.Outcome
	Failure      string
}

func (h *handler) page(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", h.pageData(h.app.Form.Defaults(), nil))
}

func (h *handler) submit(c *gin.Context) {
	s := form.Submission{}
	for _, f := range h.app.Form.Fields {
		if v, ok := c.GetPostForm(f.Name); ok {
			s[f.Name] = v
		}
	}

	res, err := h.app.Evaluate(c.Request.Context(), s)
	if err != nil {
		data := h.pageData(withDefaults(h.app.Form, s), err)
		if form.IsUserError(err) {
			c.HTML(http.StatusUnprocessableEntity, "index.html", data)
			return
		}
		h.logger.Error("form submission failed", zap.Error(err))
		data.Failure = internalErrorMessage
		c.HTML(http.StatusInternalServerError, "index.html", data)
		return
	}

	data := h.pageData(s, nil)
	data.Outcome = &res.Outcome
	c.HTML(http.StatusOK, "index.html", data)
}

type predictResponse struct {
	Label   predict.Label  `json:"label"`
	Outcome outcome.State  `json:"outcome"`
	Message string         `json:"message"`
	Record  predict.Record `json:"record"`
}

func (h *handler) predictJSON(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	s, err := toSubmission(payload)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, validationBody(err))
		return
	}

	res, err := h.app.Evaluate(c.Request.Context(), s)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, predictResponse{
			Label:   res.Label,
			Outcome: res.Outcome.State,
			Message: res.Outcome.Message,
			Record:  res.Record,
		})
	case form.IsUserError(err), errors.Is(err, form.ErrUnknownOption), errors.Is(err, form.ErrUnknownField):
		c.JSON(http.StatusUnprocessableEntity, validationBody(err))
	case errors.Is(err, outcome.ErrUnexpectedLabel):
		h.logger.Error("unexpected classifier label", zap.Float64("label", float64(res.Label)))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected_label"})
	default:
		h.logger.Error("prediction failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction_failed"})
	}
}

func (h *handler) formDefinition(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"title":   h.app.Variant.Title,
		"variant": h.app.VariantName,
		"fields":  h.app.Form.Fields,
	})
}

func validationBody(err error) gin.H {
	body := gin.H{"error": "validation_failed", "details": err.Error()}
	var fe *form.FieldError
	if errors.As(err, &fe) {
		body["field"] = fe.Field
	}
	return body
}

// toSubmission accepts JSON numbers or strings for every field.
func toSubmission(payload map[string]any) (form.Submission, error) {
	s := make(form.Submission, len(payload))
	for name, v := range payload {
		switch val := v.(type) {
		case string:
			s[name] = val
		case float64:
			s[name] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			return nil, &form.FieldError{Field: name, Err: fmt.Errorf("%w: %v", form.ErrInvalidNumber, v)}
		}
	}
	return s, nil
}

func withDefaults(def *form.Definition, s form.Submission) form.Submission {
	out := def.Defaults()
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (h *handler) pageData(values form.Submission, err error) pageData {
	variant := h.app.Variant
	var failed *form.FieldError
	if err != nil && form.IsUserError(err) {
		errors.As(err, &failed)
	}

	fields := make([]pageField, 0, len(h.app.Form.Fields))
	for _, f := range h.app.Form.Fields {
		pf := pageField{
			Name:  f.Name,
			Label: f.Label,
			Value: values[f.Name],
		}
		switch f.Kind {
		case form.KindSelect:
			current, _ := f.Option(values[f.Name])
			shown := f.Choices(variant.ShowCodes)
			for i, o := range f.Options {
				pf.Choices = append(pf.Choices, choice{
					Value:    shown[i],
					Selected: o == current,
				})
			}
		case form.KindDecimal:
			pf.Step = formatStep(f.Step, "0.1")
		default:
			pf.Step = formatStep(f.Step, "1")
		}
		if f.Min != nil {
			pf.Min = strconv.FormatFloat(*f.Min, 'f', -1, 64)
		}
		if f.Max != nil {
			pf.Max = strconv.FormatFloat(*f.Max, 'f', -1, 64)
		}
		if failed != nil && failed.Field == f.Name {
			pf.Error = failed.Err.Error()
		}
		fields = append(fields, pf)
	}

	return pageData{
		Title:        variant.Title,
		Tagline:      h.app.Form.Tagline,
		SidebarTitle: h.app.Form.SidebarTitle,
		Description:  h.description,
		Accent:       variant.Accent,
		Image:        h.image,
		Fields:       fields,
		Footer:       variant.Footer,
	}
}

func formatStep(step float64, fallback string) string {
	if step <= 0 {
		return fallback
	}
	return strconv.FormatFloat(step, 'f', -1, 64)
}

// sanitizeDescription keeps the light inline styling of the intro text and
// strips anything else.
func sanitizeDescription(raw string) template.HTML {
	policy := bluemonday.UGCPolicy()
	policy.AllowStyles("color", "font-size", "font-weight").OnElements("span")
	return template.HTML(policy.Sanitize(raw))
}
