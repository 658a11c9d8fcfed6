package models

import (
	"feeder-populator/internal/catalog"
	"feeder-populator/internal/commercial"
	"feeder-populator/internal/model"
	"feeder-populator/internal/population"
	"feeder-populator/internal/populate"
)

// PopulateResponse represents the response from a population run
type PopulateResponse struct {
	ID          string                       `json:"id"`
	Status      string                       `json:"status"`
	Cached      bool                         `json:"cached,omitempty"`
	Summary     populate.Summary             `json:"summary"`
	Reservation population.ReservationReport `json:"reservation"`
	Pool        commercial.PoolSummary       `json:"pool_remaining"`
	Warnings    []model.Warning              `json:"warnings"`
	Houses      []population.HouseAssignment `json:"houses,omitempty"`
	Commercial  []commercial.Assignment      `json:"commercial,omitempty"`
}

// HousesResponse lists the residential side table of a run
type HousesResponse struct {
	ID         string                           `json:"id"`
	Houses     []population.HouseAssignment     `json:"houses"`
	SmallLoads []population.SmallLoadAssignment `json:"small_loads"`
}

// CatalogResponse is the equipment catalog in use
type CatalogResponse struct {
	ThreePhase   catalog.Table `json:"three_phase"`
	SinglePhase  catalog.Table `json:"single_phase"`
	Fuses        []float64     `json:"fuses"`
	Reclosers    []float64     `json:"reclosers"`
	Breakers     []float64     `json:"breakers"`
	OversizeAmps float64       `json:"oversize_amps"`
}

// ModelInfo represents a backbone model available on the server
type ModelInfo struct {
	ID      string         `json:"id"`
	File    string         `json:"file"`
	Objects map[string]int `json:"objects"`
}

// RegionInfo describes a climate region
type RegionInfo struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// ReferenceResponse lists the fixed vocabularies used in results
type ReferenceResponse struct {
	Regions        []RegionInfo `json:"regions"`
	BuildingTypes  []string     `json:"building_types"`
	Vintages       []string     `json:"vintages"`
	IncomeLevels   []string     `json:"income_levels"`
	CommercialTags []string     `json:"commercial_types"`
	EVModels       []string     `json:"ev_models"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
