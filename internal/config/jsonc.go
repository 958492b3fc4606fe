package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// StandardizeJSON converts JSON with comments and trailing commas into plain
// JSON. Rush configuration files are conventionally written that way. The
// input is left untouched; hujson rewrites the slice it is given.
func StandardizeJSON(data []byte) ([]byte, error) {
	return hujson.Standardize(bytes.Clone(data))
}

// ReadJSONFile reads a JSON-with-comments file and decodes it into v.
func ReadJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	std, err := StandardizeJSON(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if err := json.Unmarshal(std, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
