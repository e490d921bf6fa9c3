package graphdb

import "errors"

var (
	// ErrUnavailable means the database stayed unreachable for every connect attempt.
	ErrUnavailable = errors.New("graph database unavailable")

	// ErrClosed is returned by any use of a Manager after Close.
	ErrClosed = errors.New("graph database connection closed")

	// ErrNotConnected is returned by Ping before the first successful Get.
	ErrNotConnected = errors.New("graph database not connected yet")
)
