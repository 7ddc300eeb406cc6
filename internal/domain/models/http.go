package models

// Requests for the forecast HTTP endpoints. Defined in domain for consistency and reuse.

type CandlesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	TF     string `query:"tf" json:"tf" default:"1h" validate:"oneof=1m 5m 15m 1h 1d"`
	Limit  int    `query:"limit" json:"limit" default:"1000" validate:"gte=1,lte=50000"`
}

type TrainRequest struct {
	Symbol     string `json:"symbol" validate:"required"`
	TF         string `json:"tf" default:"1h" validate:"oneof=1m 5m 15m 1h 1d"`
	From       string `json:"from"`
	To         string `json:"to"`
	Kind       string `json:"model_kind" default:"gbt" validate:"oneof=gbt random_forest svm"`
	ArtifactID string `json:"artifact_id"`
	N          int    `json:"n" default:"2000" validate:"gte=100,lte=50000"`
}

type PredictRequest struct {
	Symbols   []string `json:"symbols" validate:"required,min=1,dive,required"`
	TF        string   `json:"tf" default:"1h" validate:"oneof=1m 5m 15m 1h 1d"`
	Threshold float64  `json:"threshold" default:"0.6" validate:"gte=0,lte=1"`
	N         int      `json:"n" default:"200" validate:"gte=51,lte=5000"`
	Publish   bool     `json:"publish"`
}

type BacktestRequest struct {
	Symbol     string `json:"symbol" validate:"required"`
	TF         string `json:"tf" default:"1h" validate:"oneof=1m 5m 15m 1h 1d"`
	From       string `json:"from"`
	To         string `json:"to"`
	ArtifactID string `json:"artifact_id"`
	N          int    `json:"n" default:"2000" validate:"gte=100,lte=50000"`
}

type AnalysisRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	TF     string `query:"tf" json:"tf" default:"1h" validate:"oneof=1m 5m 15m 1h 1d"`
	N      int    `query:"n" json:"n" default:"200" validate:"gte=3,lte=5000"`
}
