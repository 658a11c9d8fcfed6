package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"feeder-populator/internal/model"

	"gopkg.in/yaml.v3"
)

// LoadModel reads a pre-parsed backbone. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func LoadModel(path string) (*model.ParsedModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	format := "json"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}
	pm, err := DecodeModel(raw, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse model file %s: %w", path, err)
	}
	return pm, nil
}

// DecodeModel decodes a backbone in "json" or "yaml" form.
func DecodeModel(raw []byte, format string) (*model.ParsedModel, error) {
	var pm model.ParsedModel
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(raw, &pm); err != nil {
			return nil, err
		}
	case "json":
		if err := json.Unmarshal(raw, &pm); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown model format %q", format)
	}
	if len(pm.Objects) == 0 {
		return nil, fmt.Errorf("model has no objects")
	}
	return &pm, nil
}

// CountByClass splits a model into per-class object counts.
func CountByClass(pm *model.ParsedModel) map[string]int {
	out := map[string]int{}
	if pm == nil {
		return out
	}
	for class, objs := range pm.Objects {
		out[class] = len(objs)
	}
	return out
}
