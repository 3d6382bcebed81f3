package algo

import "errors"

const (
	// edge traversal cost = distance * (1 + k * risk)
	DEFAULT_RISK_AVERSION = 10.0
)

var (
	// returned when addressing an edge that was never initialized
	ErrEdgeNotFound = errors.New("edge not found in search graph")
)
