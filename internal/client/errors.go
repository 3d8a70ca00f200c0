package client

import (
	"errors"
	"fmt"
)

// ErrBackendUnavailable means the health probe failed and no network attempt
// was made for the request.
var ErrBackendUnavailable = errors.New("backend unavailable")

// ErrNotFound means neither the remote service nor the local mirror has any
// record with the requested id. It is the only error the domain wrappers are
// allowed to surface.
var ErrNotFound = errors.New("not found")

// RemoteError is a non-2xx response or transport failure from the remote
// service. Status is zero when the failure happened before a response.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote request failed: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("remote request failed: %s", e.Message)
}

// Source tags where a wrapper's result came from, so callers and tests can
// distinguish remote data from mirror fallbacks without log scraping.
type Source int

const (
	SourceRemote Source = iota
	SourceLocal
)

func (s Source) String() string {
	switch s {
	case SourceRemote:
		return "remote"
	case SourceLocal:
		return "local"
	default:
		return "unknown"
	}
}
