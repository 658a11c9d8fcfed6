package handlers

import (
	"net/http"

	"feeder-populator/internal/api/models"
	"feeder-populator/internal/commercial"
	"feeder-populator/internal/ev"
	"feeder-populator/internal/population"

	"github.com/gin-gonic/gin"
)

// ReferenceHandler serves the fixed vocabularies used in run results
type ReferenceHandler struct {
	metadata population.Metadata
}

// NewReferenceHandler creates a new reference handler. A nil meta means the
// built-in tables.
func NewReferenceHandler(meta *population.Metadata) *ReferenceHandler {
	m := population.DefaultMetadata()
	if meta != nil {
		m = *meta
	}
	return &ReferenceHandler{metadata: m}
}

// GetReference handles GET /api/v1/reference
func (h *ReferenceHandler) GetReference(c *gin.Context) {
	resp := models.ReferenceResponse{
		BuildingTypes: []string{
			population.SingleFamily.String(),
			population.Apartment.String(),
			population.MobileHome.String(),
		},
		Vintages: population.VintageNames,
	}
	for i, name := range population.RegionNames {
		resp.Regions = append(resp.Regions, models.RegionInfo{Index: i + 1, Name: name})
	}
	for _, lvl := range h.metadata.IncomeLevels {
		resp.IncomeLevels = append(resp.IncomeLevels, lvl.Name)
	}
	for _, t := range commercial.DefaultPoolSpec().Types {
		resp.CommercialTags = append(resp.CommercialTags, t.Tag)
	}
	for _, m := range ev.DefaultFleet().Models {
		resp.EVModels = append(resp.EVModels, m.Name)
	}
	c.JSON(http.StatusOK, resp)
}
