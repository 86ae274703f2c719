package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/marketlens/insight-engine/internal/models"
)

// ErrModelUnavailable signals that no artifact exists for a model name or
// that the stored artifact could not be decoded. Callers fall back to trend
// extrapolation; this error never aborts a pipeline run.
var ErrModelUnavailable = errors.New("model artifact unavailable")

// ArtifactStore persists trained model artifacts and insight records as
// JSON under a caller-supplied data directory. All I/O is blocking and
// local-filesystem-bound. An unwritable data directory is the one condition
// treated as fatal at construction time.
type ArtifactStore struct {
	dataDir string
	logger  *logrus.Logger
}

func NewArtifactStore(dataDir string, logger *logrus.Logger) (*ArtifactStore, error) {
	for _, sub := range []string{"models", "insights"} {
		if err := os.MkdirAll(filepath.Join(dataDir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
		}
	}
	return &ArtifactStore{
		dataDir: dataDir,
		logger:  logger,
	}, nil
}

// SaveModel writes (or overwrites) the artifact for a model name. Artifacts
// are never deleted automatically; a later training call for the same name
// replaces the file.
func (s *ArtifactStore) SaveModel(modelName string, artifact any) error {
	data, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("failed to encode model artifact %s: %w", modelName, err)
	}
	path := s.modelPath(modelName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model artifact %s: %w", modelName, err)
	}

	s.logger.WithFields(logrus.Fields{
		"model": modelName,
		"path":  path,
	}).Debug("Model artifact saved")
	return nil
}

// LoadModel decodes the artifact for a model name into out. A missing or
// undecodable artifact returns ErrModelUnavailable.
func (s *ArtifactStore) LoadModel(modelName string, out any) error {
	data, err := os.ReadFile(s.modelPath(modelName))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrModelUnavailable, modelName)
		}
		return fmt.Errorf("failed to read model artifact %s: %w", modelName, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrModelUnavailable, modelName, err)
	}
	return nil
}

// HasModel reports whether an artifact file exists for the model name.
func (s *ArtifactStore) HasModel(modelName string) bool {
	_, err := os.Stat(s.modelPath(modelName))
	return err == nil
}

// SaveInsight persists one insight record and returns the file path. Each
// run writes its own timestamped file keyed by the insight ID.
func (s *ArtifactStore) SaveInsight(insight *models.Insight) (string, error) {
	data, err := json.MarshalIndent(insight, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode insight %s: %w", insight.ID, err)
	}
	name := fmt.Sprintf("insight_%s_%s.json", insight.GeneratedAt.Format("20060102_150405"), insight.ID)
	path := filepath.Join(s.dataDir, "insights", name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write insight %s: %w", insight.ID, err)
	}
	return path, nil
}

func (s *ArtifactStore) modelPath(modelName string) string {
	return filepath.Join(s.dataDir, "models", modelName+".json")
}
