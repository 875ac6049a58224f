package usecases

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/devbydaniel/greenrec/internal/domain/recording"
)

const (
	currentStateFile = "current.json"
	lastResultFile   = "last.json"
	lockFile         = "session.lock"
)

// ErrNoActiveRecording is returned when no recorder state is on disk.
var ErrNoActiveRecording = errors.New("no active recording found")

func statePath(dir string) string  { return filepath.Join(dir, currentStateFile) }
func resultPath(dir string) string { return filepath.Join(dir, lastResultFile) }

func readState(dir string) (*recording.State, error) {
	data, err := os.ReadFile(statePath(dir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoActiveRecording
	}
	if err != nil {
		return nil, err
	}

	var state recording.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("reading recording state: %w", err)
	}
	return &state, nil
}

func readResult(dir string) (*recording.Result, error) {
	data, err := os.ReadFile(resultPath(dir))
	if err != nil {
		return nil, err
	}

	var res recording.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("reading recording result: %w", err)
	}
	return &res, nil
}

// writeJSON replaces path atomically so readers never see a partial record.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func removeState(dir string) {
	_ = os.Remove(statePath(dir))
}
