package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// EncodeCredentials serializes creds to w as one JSON line.
func EncodeCredentials(w io.Writer, creds *Credentials) error {
	if creds == nil {
		return fmt.Errorf("credentials are nil")
	}
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(creds); err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	return nil
}

// DecodeCredentials parses the credentials tool output. Surrounding whitespace
// is ignored and unknown fields are tolerated. The raw bytes are returned for
// diagnostics on every path after a successful read.
func DecodeCredentials(r io.Reader) (*Credentials, []byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, data, fmt.Errorf("credentials tool produced no output on stdout")
	}

	var creds Credentials
	if err := json.Unmarshal(trimmed, &creds); err != nil {
		return nil, data, fmt.Errorf("credentials output is not valid JSON: %w", err)
	}

	if creds.URLSuffix == "" {
		return nil, data, fmt.Errorf("credentials missing required field: url_suffix")
	}

	return &creds, data, nil
}
