package models

import (
	"encoding/json"
	"time"
)

// ScalerState holds fitted z-score parameters, one entry per schema column.
type ScalerState struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// ClassifierState is the persisted form of a fitted classifier. Payload is
// the kind-specific serialization; only the matching kind can restore it.
type ClassifierState struct {
	Kind    ModelKind       `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// ModelArtifact bundles everything needed to score features exactly as at
// train time: classifier, scaler and the ordered feature schema. Artifacts
// are immutable once saved; retraining writes a new version.
type ModelArtifact struct {
	ID         string          `json:"id"`
	Instrument string          `json:"instrument"`
	Version    string          `json:"version"`
	Kind       ModelKind       `json:"kind"`
	CreatedAt  time.Time       `json:"created_at"`
	Schema     []string        `json:"schema"`
	Scaler     ScalerState     `json:"scaler"`
	Classifier ClassifierState `json:"classifier"`
	Metrics    EvalMetrics     `json:"metrics"`
}

// ArtifactInfo is the registry listing view of a stored artifact.
type ArtifactInfo struct {
	ID         string      `json:"id"`
	Instrument string      `json:"instrument"`
	Version    string      `json:"version"`
	Kind       ModelKind   `json:"kind"`
	CreatedAt  time.Time   `json:"created_at"`
	Metrics    EvalMetrics `json:"metrics"`
}

// Info returns the listing view of the artifact.
func (a *ModelArtifact) Info() ArtifactInfo {
	return ArtifactInfo{
		ID:         a.ID,
		Instrument: a.Instrument,
		Version:    a.Version,
		Kind:       a.Kind,
		CreatedAt:  a.CreatedAt,
		Metrics:    a.Metrics,
	}
}

// SchemaMatches reports whether the artifact's recorded schema is identical,
// name for name and in order, to the given schema.
func (a *ModelArtifact) SchemaMatches(schema []string) bool {
	if len(a.Schema) != len(schema) {
		return false
	}
	for i := range schema {
		if a.Schema[i] != schema[i] {
			return false
		}
	}
	return true
}
