package population

import (
	"os"
	"path/filepath"
	"testing"

	"feeder-populator/internal/model"

	"gotest.tools/v3/assert"
)

func TestLoadMetadataFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.yaml")
	body := `
small_apartment_share: 0.25
floor_area:
  apartment: {min: 400, max: 1500, mean: 800, std: 200}
`
	assert.NilError(t, os.WriteFile(path, []byte(body), 0o644))

	m, err := LoadMetadataFile(path)
	assert.NilError(t, err)
	assert.Equal(t, m.SmallApartmentShare, 0.25)
	assert.Equal(t, m.FloorArea.Apartment.Max, 1500.0)
	assert.Equal(t, m.FloorArea.SingleFamily.Max, 4000.0)
	assert.Equal(t, len(m.IncomeLevels), 3)
}

func TestLoadMetadataFileRejectsBadTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.yaml")
	body := `
income_levels:
  - name: Only
    probability: 0.7
    vintage:
      single_family: [0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.3]
      apartment: [0, 0, 0, 0, 0, 0, 0, 0]
      mobile_home: [0, 0, 0, 0, 0, 0, 0, 0]
`
	assert.NilError(t, os.WriteFile(path, []byte(body), 0o644))
	_, err := LoadMetadataFile(path)
	assert.Assert(t, model.IsConfigurationError(err))
}

func TestDefaultSizeTablesCoverEveryBuildingType(t *testing.T) {
	m := DefaultMetadata()
	assert.NilError(t, m.Validate())
	for _, b := range buildingTypes {
		area, aspect := m.FloorArea.At(b), m.AspectRatio.At(b)
		assert.Assert(t, area.Min > 0 && area.Min < area.Mean && area.Mean < area.Max, "floor area %v", b)
		assert.Assert(t, aspect.Min >= 1 && aspect.Min < aspect.Mean && aspect.Mean < aspect.Max, "aspect ratio %v", b)
	}
	assert.Equal(t, m.FloorArea.MobileHome.Max, 2400.0)
	assert.Equal(t, m.AspectRatio.MobileHome.Mean, 3.8)
}
