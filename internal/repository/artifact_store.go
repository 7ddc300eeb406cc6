package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"FinCast/internal/domain/models"
	"FinCast/internal/domain/repository"
)

// FileArtifactStore persists model artifacts as one JSON bundle per id in a
// directory. Writes go through a temp file plus rename so a bundle is either
// completely present or absent, never half-written.
type FileArtifactStore struct {
	dir string
}

func NewFileArtifactStore(dir string) (*FileArtifactStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("artifact dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifact dir: %w", err)
	}
	return &FileArtifactStore{dir: dir}, nil
}

var _ repository.ArtifactStore = (*FileArtifactStore)(nil)

func (s *FileArtifactStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes the artifact bundle and returns its location.
func (s *FileArtifactStore) Save(ctx context.Context, a *models.ModelArtifact) (string, error) {
	if a == nil || a.ID == "" {
		return "", fmt.Errorf("artifact has no id")
	}
	if strings.ContainsAny(a.ID, `/\`) {
		return "", fmt.Errorf("artifact id %q contains path separators", a.ID)
	}

	b, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("marshal artifact %s: %w", a.ID, err)
	}

	dst := s.path(a.ID)
	tmp, err := os.CreateTemp(s.dir, a.ID+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("artifact temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write artifact %s: %w", a.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close artifact %s: %w", a.ID, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("commit artifact %s: %w", a.ID, err)
	}
	return dst, nil
}

// Load restores one artifact bundle. An unknown id is a reported failure,
// never an empty default model.
func (s *FileArtifactStore) Load(ctx context.Context, id string) (*models.ModelArtifact, error) {
	b, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("artifact %q: %w", id, models.ErrArtifactNotFound)
		}
		return nil, fmt.Errorf("read artifact %s: %w", id, err)
	}
	var a models.ModelArtifact
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", id, err)
	}
	return &a, nil
}

// List enumerates stored artifacts for the registry endpoint.
func (s *FileArtifactStore) List(ctx context.Context) ([]models.ArtifactInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	out := make([]models.ArtifactInfo, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		a, err := s.Load(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil {
			// a foreign or corrupt file never hides the rest of the registry
			continue
		}
		out = append(out, a.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
