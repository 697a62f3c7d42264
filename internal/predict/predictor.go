package predict

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Label is the scalar the classifier returns for one record.
type Label float64

// Classifier is the pre-trained model. Implementations must be safe for
// concurrent use and must not mutate after construction.
type Classifier interface {
	Predict(ctx context.Context, rec Record) (Label, error)
	Name() string
}

var ErrNoClassifier = errors.New("no classifier configured")

// Predictor adapts a Classifier to the form pipeline.
type Predictor struct {
	classifier Classifier
	logger     *zap.Logger
}

func NewPredictor(classifier Classifier, logger *zap.Logger) (*Predictor, error) {
	if classifier == nil {
		return nil, ErrNoClassifier
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Predictor{classifier: classifier, logger: logger}, nil
}

// Predict passes rec to the classifier unchanged and returns its label.
func (p *Predictor) Predict(ctx context.Context, rec Record) (Label, error) {
	requestID := uuid.NewString()
	start := time.Now()

	label, err := p.classifier.Predict(ctx, rec)
	if err != nil {
		p.logger.Error("prediction failed",
			zap.String("request_id", requestID),
			zap.String("classifier", p.classifier.Name()),
			zap.Error(err))
		return 0, fmt.Errorf("classifier %s: %w", p.classifier.Name(), err)
	}

	p.logger.Info("prediction",
		zap.String("request_id", requestID),
		zap.String("classifier", p.classifier.Name()),
		zap.Float64("label", float64(label)),
		zap.Duration("elapsed", time.Since(start)))
	return label, nil
}

// Classifier returns the wrapped model.
func (p *Predictor) Classifier() Classifier {
	return p.classifier
}
