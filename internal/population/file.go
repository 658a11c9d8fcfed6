package population

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadMetadataFile decodes a YAML metadata file over DefaultMetadata, so a
// file only needs the tables it changes.
func LoadMetadataFile(path string) (Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, err
	}
	m := DefaultMetadata()
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return Metadata{}, fmt.Errorf("metadata %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return Metadata{}, err
	}
	return m, nil
}
