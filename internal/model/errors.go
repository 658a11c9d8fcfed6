package model

import (
	"errors"
	"fmt"
	"log"
)

// ConfigurationError is a fatal problem with the network, the metadata or the
// run parameters. A run that hits one produces no result.
type ConfigurationError struct {
	Op      string // component that detected the problem, e.g. "network"
	Subject string // object, table or bucket the problem is about
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Subject, e.Message)
}

// Configf builds a ConfigurationError.
func Configf(op, subject, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Op: op, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// IsConfigurationError reports whether err wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// WarningKind classifies non-fatal data-quality findings.
// Keep these values stable; they are intended for CSV and JSON output.
type WarningKind string

const (
	WarnOrphanObject       WarningKind = "ORPHAN_OBJECT"
	WarnUnknownEndpoint    WarningKind = "UNKNOWN_ENDPOINT"
	WarnSkippedTransformer WarningKind = "SKIPPED_TRANSFORMER"
	WarnOversizeEquipment  WarningKind = "OVERSIZE_EQUIPMENT"
	WarnUnclassifiedLoad   WarningKind = "UNCLASSIFIED_LOAD"
	WarnUnknownInjection   WarningKind = "UNKNOWN_INJECTION"
)

// Warning is a non-fatal data-quality finding. Processing continues with a
// documented fallback.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Subject string      `json:"subject"`
	Message string      `json:"message"`
}

// Warnings collects findings in the order they were raised and logs each one.
type Warnings struct {
	Component string
	items     []Warning
}

// Add records and logs a warning.
func (w *Warnings) Add(kind WarningKind, subject, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	w.items = append(w.items, Warning{Kind: kind, Subject: subject, Message: msg})
	log.Printf("[%s] WARNING %s %s: %s", w.Component, kind, subject, msg)
}

// Items returns the collected warnings.
func (w *Warnings) Items() []Warning {
	if w == nil {
		return nil
	}
	return w.items
}

func (w *Warnings) Len() int {
	if w == nil {
		return 0
	}
	return len(w.items)
}
