package handlers

import (
	"net/http"

	"feeder-populator/internal/api/models"
	"feeder-populator/internal/catalog"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the equipment catalog the server sizes against
type CatalogHandler struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	if cat == nil {
		cat = catalog.Default()
	}
	return &CatalogHandler{catalog: cat}
}

// GetCatalog handles GET /api/v1/catalog
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, models.CatalogResponse{
		ThreePhase:   h.catalog.ThreePhase,
		SinglePhase:  h.catalog.SinglePhase,
		Fuses:        h.catalog.Fuses,
		Reclosers:    h.catalog.Reclosers,
		Breakers:     h.catalog.Breakers,
		OversizeAmps: catalog.OversizeAmps,
	})
}
