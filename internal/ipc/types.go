package ipc

import (
	"bricsview/internal/catalog"
	"bricsview/internal/viewer"
)

// PingRequest checks daemon liveness.
type PingRequest struct{}

// PingResponse carries the daemon process id.
type PingResponse struct {
	PID int `json:"pid"`
}

// StatusRequest fetches daemon and display status.
type StatusRequest struct{}

// StatusResponse combines daemon runtime information with the current
// display state and its banner projection.
type StatusResponse struct {
	Running    bool                `json:"running"`
	PID        int                 `json:"pid"`
	LockPath   string              `json:"lock_path"`
	SocketPath string              `json:"socket_path"`
	Display    viewer.DisplayState `json:"display"`
	StatusLine string              `json:"status_line"`
	Level      string              `json:"level"`
}

// SessionsRequest lists browsable sessions.
type SessionsRequest struct{}

// SessionsResponse contains every session visible in the library.
type SessionsResponse struct {
	Sessions []catalog.Session `json:"sessions"`
}

// SequencesRequest lists sequences for one capture date.
type SequencesRequest struct {
	Date string `json:"date"`
}

// SequencesResponse contains sequence directory names, sorted ascending.
type SequencesResponse struct {
	Sequences []string `json:"sequences"`
}

// SelectRequest switches the displayed session. Empty fields select the
// newest session in the library.
type SelectRequest struct {
	Date     string `json:"date"`
	Sequence string `json:"sequence"`
}

// SelectResponse returns the display state right after the selection was
// requested; the load may still be in flight.
type SelectResponse struct {
	Display viewer.DisplayState `json:"display"`
}

// RefreshRequest forces a library rescan and re-resolution.
type RefreshRequest struct{}

// RefreshResponse returns the display state after the refresh was issued.
type RefreshResponse struct {
	Display viewer.DisplayState `json:"display"`
}

// LogTailRequest fetches log lines based on offset and follow semantics.
// A negative offset means "the last Limit lines".
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int64 `json:"wait_millis"`
}

// LogTailResponse carries log lines and the offset to resume from.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// StopRequest shuts the daemon process down.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}
