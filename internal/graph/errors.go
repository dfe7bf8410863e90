package graph

import (
	"errors"
	"fmt"
)

var ErrLoad = errors.New("graph load failed")

type LoadErrorKind string

const (
	TooManyNodes  LoadErrorKind = "too_many_nodes"
	TooManyEdges  LoadErrorKind = "too_many_edges"
	MissingNode   LoadErrorKind = "missing_node"
	DuplicateNode LoadErrorKind = "duplicate_node"
	InvalidEdge   LoadErrorKind = "invalid_edge"
	InvalidNode   LoadErrorKind = "invalid_node"
)

// LoadError rejects a whole graph payload. The engine never serves a partially valid graph.
type LoadError struct {
	Kind   LoadErrorKind
	Detail string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrLoad, e.Kind, e.Detail)
}

func (e *LoadError) Unwrap() error {
	return ErrLoad
}

func loadErr(kind LoadErrorKind, format string, args ...any) *LoadError {
	return &LoadError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
