package repository

import (
	"context"

	"FinCast/internal/domain/models"
)

// ArtifactStore persists model artifacts as one atomic bundle per id.
// Load of an unknown id fails with models.ErrArtifactNotFound, never an
// empty or default artifact.
type ArtifactStore interface {
	Save(ctx context.Context, a *models.ModelArtifact) (string, error)
	Load(ctx context.Context, id string) (*models.ModelArtifact, error)
	List(ctx context.Context) ([]models.ArtifactInfo, error)
}
