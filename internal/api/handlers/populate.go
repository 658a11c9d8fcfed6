package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"feeder-populator/internal/api/models"
	"feeder-populator/internal/catalog"
	"feeder-populator/internal/config"
	"feeder-populator/internal/data"
	"feeder-populator/internal/ev"
	"feeder-populator/internal/metrics"
	"feeder-populator/internal/model"
	"feeder-populator/internal/population"
	"feeder-populator/internal/populate"
	"feeder-populator/internal/store"

	"github.com/gin-gonic/gin"
)

// PopulateHandler handles population runs and stored results
type PopulateHandler struct {
	store    *store.Store
	cache    *store.RunCache
	catalog  *catalog.Catalog
	metadata *population.Metadata
	modelDir string
	engine   *populate.Engine
}

// NewPopulateHandler creates a new populate handler. cache may be nil.
func NewPopulateHandler(st *store.Store, cache *store.RunCache, cat *catalog.Catalog, meta *population.Metadata, modelDir string) *PopulateHandler {
	if cat == nil {
		cat = catalog.Default()
	}
	return &PopulateHandler{
		store:    st,
		cache:    cache,
		catalog:  cat,
		metadata: meta,
		modelDir: modelDir,
		engine:   populate.New(),
	}
}

// RunPopulation handles POST /api/v1/populate
func (h *PopulateHandler) RunPopulation(c *gin.Context) {
	var req models.PopulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	pm, status, err := h.resolveModel(req)
	if err != nil {
		code := "INVALID_REQUEST"
		if status == http.StatusNotFound {
			code = "MODEL_NOT_FOUND"
		}
		writeError(c, status, code, err.Error())
		return
	}

	cfg := req.Config.ToConfig()
	if err := cfg.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error())
		return
	}

	key := requestKey(pm, cfg, req.Trips)
	if id, ok := h.cache.Get(key); ok {
		if res, err := h.store.GetRun(c.Request.Context(), id); err == nil {
			log.Printf("PopulateHandler: Serving run %s from cache", id)
			c.JSON(http.StatusOK, toResponse(res, req.Options.IncludeHouses, true))
			return
		}
	}

	start := time.Now()
	res, err := h.engine.Run(populate.Inputs{
		Model:    pm,
		Config:   cfg,
		Catalog:  h.catalog,
		Metadata: h.metadata,
		Trips:    req.Trips,
	})
	if err != nil {
		metrics.ObserveRun(nil, time.Since(start), "error")
		if model.IsConfigurationError(err) {
			writeError(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error())
			return
		}
		writeError(c, http.StatusInternalServerError, "RUN_FAILED", err.Error())
		return
	}
	metrics.ObserveRun(res, time.Since(start), "ok")

	if err := h.store.SaveRun(c.Request.Context(), res); err != nil {
		log.Printf("PopulateHandler: Failed to store run %s: %v", res.RunID, err)
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	h.cache.Set(key, res.RunID)

	c.JSON(http.StatusOK, toResponse(res, req.Options.IncludeHouses, false))
}

// GetRun handles GET /api/v1/runs/:id
func (h *PopulateHandler) GetRun(c *gin.Context) {
	res, ok := h.loadRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetRunHouses handles GET /api/v1/runs/:id/houses
func (h *PopulateHandler) GetRunHouses(c *gin.Context) {
	res, ok := h.loadRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.HousesResponse{
		ID:         res.RunID,
		Houses:     res.Houses,
		SmallLoads: res.SmallLoads,
	})
}

// ListRuns handles GET /api/v1/runs
func (h *PopulateHandler) ListRuns(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a positive integer")
			return
		}
		limit = n
	}
	runs, err := h.store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	if runs == nil {
		runs = []store.RunSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (h *PopulateHandler) loadRun(c *gin.Context) (*populate.Result, bool) {
	id := c.Param("id")
	res, err := h.store.GetRun(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "NOT_FOUND",
				Message: "run not found",
				Details: map[string]interface{}{"id": id},
			},
		})
		return nil, false
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return nil, false
	}
	return res, true
}

// resolveModel returns the inline model or loads the named file from the
// model directory. The returned status is meaningful only with an error.
func (h *PopulateHandler) resolveModel(req models.PopulateRequest) (*model.ParsedModel, int, error) {
	switch {
	case req.Model != nil && req.ModelFile != "":
		return nil, http.StatusBadRequest, errors.New("give either model or model_file, not both")
	case req.Model != nil:
		if len(req.Model.Objects) == 0 {
			return nil, http.StatusBadRequest, errors.New("model has no objects")
		}
		return req.Model, 0, nil
	case req.ModelFile != "":
		// Base keeps the lookup inside the model directory.
		pm, err := data.LoadModel(filepath.Join(h.modelDir, filepath.Base(req.ModelFile)))
		if err != nil {
			return nil, http.StatusNotFound, err
		}
		return pm, 0, nil
	default:
		return nil, http.StatusBadRequest, errors.New("model or model_file is required")
	}
}

// requestKey hashes the loaded model rather than its file name, so editing a
// model file on disk never serves a stale run.
func requestKey(pm *model.ParsedModel, cfg config.Config, trips []ev.Trip) string {
	modelJSON, _ := json.Marshal(pm)
	cfgJSON, _ := json.Marshal(cfg)
	tripsJSON, _ := json.Marshal(trips)
	return store.CacheKey(modelJSON, cfgJSON, tripsJSON)
}

func toResponse(res *populate.Result, includeHouses, cached bool) models.PopulateResponse {
	resp := models.PopulateResponse{
		ID:          res.RunID,
		Status:      "completed",
		Cached:      cached,
		Summary:     res.Summary,
		Reservation: res.Reservation,
		Pool:        res.Pool,
		Warnings:    res.Warnings,
	}
	if resp.Warnings == nil {
		resp.Warnings = []model.Warning{}
	}
	if includeHouses {
		resp.Houses = res.Houses
		resp.Commercial = res.Commercial
	}
	return resp
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
