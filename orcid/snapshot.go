package orcid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// WriteSnapshot writes the raw record to path as indented JSON with sorted keys.
func WriteSnapshot(path string, rec *Record) error {
	if len(rec.Raw) == 0 {
		return fmt.Errorf("record has no raw document")
	}

	var doc any
	if err := json.Unmarshal(rec.Raw, &doc); err != nil {
		return fmt.Errorf("decoding raw record: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}
