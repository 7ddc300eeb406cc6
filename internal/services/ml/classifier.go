package ml

import (
	"encoding/json"
	"fmt"

	"FinCast/internal/domain/models"
)

// Classifier is the capability every supported model family implements.
// Fit mutates the receiver; Predict and PredictProba are safe for
// concurrent use once fitted.
type Classifier interface {
	Fit(X [][]float64, y []int) error
	Predict(x []float64) int
	// PredictProba returns [P(class 0), P(class 1)] and true, or nil and
	// false when the model exposes no probability estimates.
	PredictProba(x []float64) ([]float64, bool)
	Kind() models.ModelKind
	State() (models.ClassifierState, error)
}

// New creates an unfitted classifier of the given kind with the defaults
// for that family. The kind set is closed; anything else is a
// configuration error, never a fallback.
func New(kind models.ModelKind) (Classifier, error) {
	switch kind {
	case models.KindGradientBoosting:
		return NewGradientBoosting(GradientBoostingConfig{}), nil
	case models.KindRandomForest:
		return NewRandomForest(RandomForestConfig{}), nil
	case models.KindKernelSVM:
		return NewKernelSVM(KernelSVMConfig{}), nil
	default:
		return nil, fmt.Errorf("model kind %q: %w", kind, models.ErrUnknownModelKind)
	}
}

// Restore rebuilds a fitted classifier from its persisted state.
func Restore(st models.ClassifierState) (Classifier, error) {
	switch st.Kind {
	case models.KindGradientBoosting:
		var g GradientBoosting
		if err := json.Unmarshal(st.Payload, &g); err != nil {
			return nil, fmt.Errorf("restore %s: %w", st.Kind, err)
		}
		return &g, nil
	case models.KindRandomForest:
		var f RandomForest
		if err := json.Unmarshal(st.Payload, &f); err != nil {
			return nil, fmt.Errorf("restore %s: %w", st.Kind, err)
		}
		return &f, nil
	case models.KindKernelSVM:
		var s KernelSVM
		if err := json.Unmarshal(st.Payload, &s); err != nil {
			return nil, fmt.Errorf("restore %s: %w", st.Kind, err)
		}
		return &s, nil
	default:
		return nil, fmt.Errorf("model kind %q: %w", st.Kind, models.ErrUnknownModelKind)
	}
}

func marshalState(kind models.ModelKind, c any) (models.ClassifierState, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return models.ClassifierState{}, fmt.Errorf("marshal %s state: %w", kind, err)
	}
	return models.ClassifierState{Kind: kind, Payload: payload}, nil
}
