/*
PURPOSE:
  Writes a session's results.json so that readers never see a partial file.
  This is the Result Store.

REQUIREMENTS:
  User-specified:
  - Atomic writes: a crash mid-write must not leave a truncated results.json.

  Implementation-discovered:
  - Other processes poll for results.json, so the file must appear complete.
  - rename(2) is only atomic within one filesystem, so the temp file is a
    sibling of the target (<path>.tmp).
  - fsync before rename, otherwise a power cut can leave an empty target.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (SessionRunner)
  - Consumes: internal/model.ResultRecord

ERROR HANDLING:
  - Returns wrapped errors on marshal, write, sync, close or rename failure.
  - The temp file is removed on failure; the target is never touched.

IMPLEMENTATION RULES:
  - Use encoding/json with two-space indentation (matches the deployed files).
  - Never write to the final path directly.

USAGE:
  err := output.WriteResult(filepath.Join(dir, "results.json"), rec)

SELF-HEALING INSTRUCTIONS:
  - A leftover results.json.tmp is harmless; the next write truncates it.

RELATED FILES:
  - internal/model/types.go
*/

package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/daryltucker/bench-worker/internal/model"
)

// TempSuffix is appended to the target path to form the temporary sibling.
const TempSuffix = ".tmp"

// WriteResult persists rec at path atomically.
func WriteResult(path string, rec *model.ResultRecord) error {
	return WriteJSONAtomic(path, rec)
}

// WriteJSONAtomic marshals v and replaces path with it in a single rename.
func WriteJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}

	tmpPath := path + TempSuffix
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming %s: %w", path, err)
	}
	committed = true

	return nil
}

// ReadResult loads a results.json written by WriteResult.
func ReadResult(path string) (*model.ResultRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec model.ResultRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &rec, nil
}
