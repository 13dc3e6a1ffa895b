package driver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when ExportPayload format changes.
const exportSchemaVersion uint16 = 1

// ExportPayload is the serialized form of a batch run: the target
// description it ran against and one result per input expression.
type ExportPayload struct {
	Schema  uint16
	Target  string // canonical data layout string
	Results []QueryResult
}

// NewExportPayload wraps results for serialization.
func NewExportPayload(target string, results []QueryResult) *ExportPayload {
	return &ExportPayload{
		Schema:  exportSchemaVersion,
		Target:  target,
		Results: results,
	}
}

// WriteMsgpack serializes the payload to path, replacing any previous
// file atomically.
func WriteMsgpack(path string, payload *ExportPayload) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if removeErr := os.Remove(f.Name()); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "failed to remove temp file: %v\n", removeErr)
		}
	}()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadMsgpack deserializes a payload written by WriteMsgpack. A schema
// mismatch is an error: the format carries no compatibility shims.
func ReadMsgpack(path string) (*ExportPayload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "failed to close %s: %v\n", path, closeErr)
		}
	}()

	var payload ExportPayload
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Schema != exportSchemaVersion {
		return nil, fmt.Errorf("%s: unsupported export schema %d (want %d)", path, payload.Schema, exportSchemaVersion)
	}
	return &payload, nil
}

// WriteJSON writes the payload as indented JSON.
func WriteJSON(w io.Writer, payload *ExportPayload) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
