package facility

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads an ordered list of facilities from a JSON or YAML file.
// The format is chosen by extension: .yaml and .yml are YAML, anything else JSON.
func Load(path string) ([]Facility, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseJSON decodes a JSON array of facilities. Unknown fields are rejected
// so a misspelled "usernme" does not silently drop credentials.
func ParseJSON(data []byte) ([]Facility, error) {
	var list []Facility
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return checkList(list)
}

// ParseYAML decodes a YAML sequence of facilities.
func ParseYAML(data []byte) ([]Facility, error) {
	var list []Facility
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return checkList(list)
}

func checkList(list []Facility) ([]Facility, error) {
	seen := make(map[string]struct{}, len(list))
	for i, f := range list {
		if err := f.validate(); err != nil {
			return nil, fmt.Errorf("facility #%d: %w", i+1, err)
		}
		fid := f.FID()
		if _, dup := seen[fid]; dup {
			return nil, fmt.Errorf("%w: duplicate facility %q", ErrInvalidConfig, fid)
		}
		seen[fid] = struct{}{}
	}
	return list, nil
}
