package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Skufu/heartcheck/internal/config"
	"github.com/Skufu/heartcheck/internal/dataset"
	"github.com/Skufu/heartcheck/internal/form"
	"github.com/Skufu/heartcheck/internal/outcome"
	"github.com/Skufu/heartcheck/internal/predict"
)

// App is the immutable context built once at startup and shared by every
// request handler.
type App struct {
	Form        *form.Definition
	Variant     form.Variant
	VariantName string
	Predictor   *predict.Predictor
	Dataset     *dataset.Dataset
	DB          HealthChecker
	Logger      *zap.Logger
}

// Result is one evaluated submission.
type Result struct {
	Record  predict.Record  `json:"record"`
	Label   predict.Label   `json:"label"`
	Outcome outcome.Outcome `json:"-"`
}

// New loads the form definition, classifier and reference dataset. Any
// failure here means the process must not serve requests.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	def, err := form.Load(cfg.FormPath)
	if err != nil {
		return nil, fmt.Errorf("load form: %w", err)
	}
	variant, err := def.Variant(cfg.FormVariant)
	if err != nil {
		return nil, fmt.Errorf("load form: %w", err)
	}

	classifier, err := loadClassifier(cfg)
	if err != nil {
		return nil, err
	}
	predictor, err := predict.NewPredictor(classifier, logger.Named("predict"))
	if err != nil {
		return nil, err
	}

	ds, err := dataset.Load(cfg.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	a := &App{
		Form:        def,
		Variant:     variant,
		VariantName: cfg.FormVariant,
		Predictor:   predictor,
		Dataset:     ds,
		Logger:      logger,
	}

	if cfg.EnableDB {
		pool, err := connectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		a.DB = pool
	}

	logger.Info("application ready",
		zap.String("classifier", classifier.Name()),
		zap.String("variant", cfg.FormVariant),
		zap.Int("dataset_rows", ds.Len()),
		zap.Bool("db", a.DB != nil))
	return a, nil
}

func loadClassifier(cfg *config.Config) (predict.Classifier, error) {
	if cfg.ClassifierURL != "" {
		return predict.NewRemoteClassifier(cfg.ClassifierURL, cfg.ClassifierTimeout), nil
	}
	m, err := predict.LoadLogisticRegression(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("load classifier: %w", err)
	}
	return m, nil
}

// Evaluate runs one submission through resolution, inference and rendering.
func (a *App) Evaluate(ctx context.Context, s form.Submission) (Result, error) {
	rec, err := a.Form.Build(s)
	if err != nil {
		return Result{}, err
	}

	label, err := a.Predictor.Predict(ctx, rec)
	if err != nil {
		return Result{}, err
	}

	out, err := outcome.Render(label)
	if err != nil {
		return Result{Record: rec, Label: label}, err
	}
	return Result{Record: rec, Label: label, Outcome: out}, nil
}

func (a *App) Close() {
	if c, ok := a.DB.(interface{ Close() }); ok {
		c.Close()
	}
}
