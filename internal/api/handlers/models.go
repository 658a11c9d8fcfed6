package handlers

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"feeder-populator/internal/api/models"
	"feeder-populator/internal/data"

	"github.com/gin-gonic/gin"
)

// ModelHandler lists the backbone models stored on the server
type ModelHandler struct {
	modelDir string
}

// NewModelHandler creates a new model handler. An empty dir falls back to
// MODEL_DIR, then ./examples/models.
func NewModelHandler(dir string) *ModelHandler {
	if dir == "" {
		dir = os.Getenv("MODEL_DIR")
	}
	if dir == "" {
		dir = filepath.Join(".", "examples", "models")
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	log.Printf("ModelHandler: Using model directory: %s", dir)
	return &ModelHandler{modelDir: dir}
}

// Dir returns the resolved model directory.
func (h *ModelHandler) Dir() string {
	return h.modelDir
}

// ListModels handles GET /api/v1/models
func (h *ModelHandler) ListModels(c *gin.Context) {
	out := []models.ModelInfo{}

	entries, err := os.ReadDir(h.modelDir)
	if err != nil {
		log.Printf("ModelHandler: Failed to read model directory %s: %v", h.modelDir, err)
		c.JSON(http.StatusOK, gin.H{"models": out})
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !isModelFile(entry.Name()) {
			continue
		}
		path := filepath.Join(h.modelDir, entry.Name())
		pm, err := data.LoadModel(path)
		if err != nil {
			log.Printf("ModelHandler: Skipping %s: %v", path, err)
			continue
		}
		out = append(out, models.ModelInfo{
			ID:      strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())),
			File:    entry.Name(),
			Objects: data.CountByClass(pm),
		})
	}

	log.Printf("ModelHandler: Returning %d models", len(out))
	c.JSON(http.StatusOK, gin.H{"models": out})
}

func isModelFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
