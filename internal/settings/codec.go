package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CorruptionError reports settings bytes that are not a well-formed settings
// document. Path names the file the bytes came from when known.
type CorruptionError struct {
	Path string
	Err  error
}

func (e *CorruptionError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("settings document is corrupted: %v", e.Err)
	}
	return fmt.Sprintf("settings file %s is corrupted: %v", e.Path, e.Err)
}

func (e *CorruptionError) Unwrap() error { return e.Err }

// Decode parses raw file bytes into a partial document. Empty input yields an
// empty Partial.
func Decode(data []byte) (Partial, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Partial{}, nil
	}
	var p Partial
	if err := json.Unmarshal(data, &p); err != nil {
		return Partial{}, &CorruptionError{Err: err}
	}
	return p, nil
}

// Encode serializes the canonical fields of d. Legacy and unknown keys are
// never written.
func Encode(d Document) ([]byte, error) {
	if d.Languages == nil {
		d.Languages = map[Language]Record{}
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return append(data, '\n'), nil
}
