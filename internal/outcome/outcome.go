package outcome

import (
	"errors"
	"fmt"

	"github.com/Skufu/heartcheck/internal/predict"
)

type State string

const (
	Positive State = "positive"
	Negative State = "negative"
)

const (
	PositiveMessage = "The model predicts that the patient has heart disease."
	NegativeMessage = "The model predicts that the patient does not have heart disease."
)

var ErrUnexpectedLabel = errors.New("unexpected classifier label")

type Outcome struct {
	State   State  `json:"outcome"`
	Message string `json:"message"`
	Color   string `json:"color"`
}

// Render maps a binary label to its verdict. Anything other than 0 or 1 is an error.
func Render(label predict.Label) (Outcome, error) {
	switch label {
	case 1:
		return Outcome{State: Positive, Message: PositiveMessage, Color: "red"}, nil
	case 0:
		return Outcome{State: Negative, Message: NegativeMessage, Color: "green"}, nil
	default:
		return Outcome{}, fmt.Errorf("%w: %v", ErrUnexpectedLabel, float64(label))
	}
}

func (o Outcome) IsPositive() bool {
	return o.State == Positive
}
