package services

import "errors"

// Service errors
var (
	// ErrNoSnapshot is returned before the first pipeline run has finished.
	ErrNoSnapshot = errors.New("no finished analysis available")

	// ErrViewNotComputed marks a view whose computation failed in the latest run.
	ErrViewNotComputed = errors.New("view was not computed")
)
