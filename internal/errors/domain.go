package errors

import (
	"fmt"
	"sort"
	"strings"
)

// SchemaResolutionError reports that a required canonical field could not be
// mapped to any column of a source table. It is fatal to the run: without the
// rate and traded-value columns no sector ranking is possible.
type SchemaResolutionError struct {
	// Canonical is the canonical field name that could not be resolved.
	Canonical string
	// Available is the full set of column names observed in the source
	// table, kept for diagnosability when the provider renames columns.
	Available []string
}

// Error implements the error interface
func (e *SchemaResolutionError) Error() string {
	cols := append([]string(nil), e.Available...)
	sort.Strings(cols)
	return fmt.Sprintf("[%s] cannot resolve canonical field %q from columns [%s]",
		ErrTypeSchema, e.Canonical, strings.Join(cols, ", "))
}

// NewSchemaResolutionError creates a schema resolution error for one canonical field
func NewSchemaResolutionError(canonical string, available []string) *SchemaResolutionError {
	return &SchemaResolutionError{Canonical: canonical, Available: available}
}

// EmptyRankingError reports that the merge succeeded but zero sectors had at
// least one record with a usable change rate. Fatal to the run.
type EmptyRankingError struct{}

// Error implements the error interface
func (e *EmptyRankingError) Error() string {
	return fmt.Sprintf("[%s] no sector has a usable change rate", ErrTypeSchema)
}

// NewEmptyRankingError creates an empty ranking error
func NewEmptyRankingError() *EmptyRankingError {
	return &EmptyRankingError{}
}
