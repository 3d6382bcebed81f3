package router

import "errors"

const (
	DEFAULT_MAX_NODES = 1024
	DEFAULT_MAX_EDGES = 4096

	// area hazard above which the active route is considered unsafe
	DEFAULT_HAZARD_THRESHOLD = 0.8

	// hazard intensity normalization: (tvoc + eco2) / 2000
	DEFAULT_NORMALIZATION = 2000.0
)

var (
	// graph store insert errors; the offending insert is rejected, prior
	// graph state is left intact
	ErrDuplicateID      = errors.New("id already exists")
	ErrUnknownEndpoint  = errors.New("edge endpoint does not exist")
	ErrCapacityExceeded = errors.New("graph capacity exceeded")

	// recoverable planning errors, surfaced as "no path currently available"
	ErrAreaNotFound = errors.New("area not found")
	ErrPathNotFound = errors.New("no path found")
	ErrNoExit       = errors.New("no exit area configured")

	// the direction translator needs at least two nodes
	ErrInvalidPath = errors.New("path too short to derive a direction")
)
