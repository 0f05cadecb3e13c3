package transcript

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/threads/conversation"
)

// Format selects the encoding of a file-backed snapshot.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file extension. Anything other than
// .yaml or .yml is JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func encodeSnapshot(format Format, records map[string]conversation.Record) ([]byte, error) {
	if records == nil {
		records = map[string]conversation.Record{}
	}
	if err := checkUTF8(records); err != nil {
		return nil, err
	}
	switch format {
	case FormatYAML:
		return yaml.Marshal(records)
	default:
		return json.MarshalIndent(records, "", "  ")
	}
}

func decodeSnapshot(format Format, data []byte) (map[string]conversation.Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.WithMessage(ErrCorrupt, "empty snapshot")
	}

	var records map[string]conversation.Record
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &records)
	default:
		err = json.Unmarshal(data, &records)
	}
	if err != nil {
		return nil, errors.WithMessagef(ErrCorrupt, "decode %s snapshot: %v", format, err)
	}

	if records == nil {
		records = map[string]conversation.Record{}
	}
	if err := validateRecords(records); err != nil {
		return nil, err
	}
	return records, nil
}

// decodeRecord decodes a single JSON-encoded record, as stored per key by the
// bolt and redis backends.
func decodeRecord(id string, data []byte) (conversation.Record, error) {
	var rec conversation.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, errors.WithMessagef(ErrCorrupt, "decode record %s: %v", id, err)
	}
	return rec, nil
}

// checkUTF8 rejects records whose text would not survive encoding unchanged.
// encoding/json rewrites invalid UTF-8 as U+FFFD instead of failing.
func checkUTF8(records map[string]conversation.Record) error {
	for id, rec := range records {
		if !utf8.ValidString(id) {
			return errors.WithMessagef(ErrSaveFailed, "conversation id %q is not valid UTF-8", id)
		}
		if !utf8.ValidString(rec.Title) {
			return errors.WithMessagef(ErrSaveFailed, "record %s: title is not valid UTF-8", id)
		}
		for i, msg := range rec.Messages {
			if !utf8.ValidString(msg.Content) {
				return errors.WithMessagef(ErrSaveFailed, "record %s: message %d is not valid UTF-8", id, i)
			}
		}
	}
	return nil
}

func validateRecords(records map[string]conversation.Record) error {
	for id, rec := range records {
		if id == "" {
			return errors.WithMessage(ErrCorrupt, "record with empty conversation id")
		}
		if err := rec.Validate(); err != nil {
			return errors.WithMessagef(ErrCorrupt, "record %s: %v", id, err)
		}
	}
	return nil
}
