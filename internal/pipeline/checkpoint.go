package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/models"
)

// CheckpointStore persists pipeline state snapshots as JSON files named
// {run_id}--{stage}.json so a crashed run can resume from its last
// completed stage.
type CheckpointStore struct {
	dir    string
	logger arbor.ILogger
}

// NewCheckpointStore creates a store rooted at dir
func NewCheckpointStore(dir string, logger arbor.ILogger) *CheckpointStore {
	return &CheckpointStore{dir: dir, logger: logger}
}

// Save writes the checkpoint file and returns its path
func (s *CheckpointStore) Save(cp *models.Checkpoint) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", &models.CheckpointError{Err: fmt.Errorf("failed to create checkpoint directory: %w", err)}
	}

	path := filepath.Join(s.dir, fmt.Sprintf("%s--%s.json", cp.RunID, cp.CompletedStep))
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return "", &models.CheckpointError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", &models.CheckpointError{Path: path, Err: fmt.Errorf("failed to save checkpoint: %w", err)}
	}

	s.logger.Info().
		Str("path", path).
		Str("step", cp.CompletedStep).
		Msg("Checkpoint saved")
	return path, nil
}

// LoadLatest returns the most recent checkpoint for a run id, or nil when
// none exists. Corrupt checkpoint files surface as CheckpointError, which
// the pipeline treats as fatal.
func (s *CheckpointStore) LoadLatest(runID string) (*models.Checkpoint, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &models.CheckpointError{Path: s.dir, Err: err}
	}

	prefix := runID + "--"
	type candidate struct {
		path  string
		mtime int64
	}
	var matches []candidate
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		matches = append(matches, candidate{
			path:  filepath.Join(s.dir, entry.Name()),
			mtime: info.ModTime().UnixNano(),
		})
	}

	if len(matches) == 0 {
		return nil, nil
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].mtime > matches[j].mtime
	})

	latest := matches[0].path
	data, err := os.ReadFile(latest)
	if err != nil {
		return nil, &models.CheckpointError{Path: latest, Err: err}
	}

	var cp models.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, &models.CheckpointError{Path: latest, Err: fmt.Errorf("failed to parse checkpoint: %w", err)}
	}

	s.logger.Info().
		Str("path", latest).
		Str("step", cp.CompletedStep).
		Msg("Checkpoint loaded")
	return &cp, nil
}
