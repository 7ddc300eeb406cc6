package models

// ModelKind selects the classifier family for an artifact. The set is closed:
// anything else is a configuration error, never a silent fallback.
type ModelKind string

const (
	KindGradientBoosting ModelKind = "gbt"
	KindRandomForest     ModelKind = "random_forest"
	KindKernelSVM        ModelKind = "svm"
)

// IsValidModelKind reports whether kind is one of the supported families.
func IsValidModelKind(kind ModelKind) bool {
	switch kind {
	case KindGradientBoosting, KindRandomForest, KindKernelSVM:
		return true
	default:
		return false
	}
}

// ConfusionMatrix is indexed [actual][predicted] over the binary classes.
type ConfusionMatrix [2][2]int

// EvalMetrics is the held-out evaluation snapshot stored with an artifact.
// Positive class is 1 (BULL). Ratios with a zero denominator are 0.
type EvalMetrics struct {
	Accuracy  float64         `json:"accuracy"`
	Precision float64         `json:"precision"`
	Recall    float64         `json:"recall"`
	F1        float64         `json:"f1"`
	Confusion ConfusionMatrix `json:"confusion"`
	TrainSize int             `json:"train_size"`
	TestSize  int             `json:"test_size"`
}

// TrainResult reports one completed training run.
type TrainResult struct {
	Status       string
	Instrument   string
	ArtifactID   string
	Version      string
	Kind         ModelKind
	Metrics      EvalMetrics
	ArtifactPath string
	FeatureRows  int
}

const (
	TrainStatusSuccess = "success"
	TrainStatusFailed  = "failed"
)
