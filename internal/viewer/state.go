package viewer

import (
	"time"

	"bricsview/internal/catalog"
)

// Status enumerates coordinator states.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusLoading  Status = "loading"
	StatusLoaded   Status = "loaded"
	StatusNotFound Status = "not_found"
	StatusError    Status = "error"
)

// DisplayState is the snapshot the display layer binds to. Only the
// Coordinator writes it; everyone else receives copies.
type DisplayState struct {
	// Session is the most recently requested selection.
	Session catalog.Session `json:"session"`
	// Dir and Version identify the scene currently on display. They stay at
	// their previous values through NotFound and Error outcomes.
	Dir     string `json:"dir"`
	Version int    `json:"version"`
	// HasScene reports whether a payload has ever been published.
	HasScene bool `json:"has_scene"`
	// SceneBytes is the size of the displayed payload.
	SceneBytes int64 `json:"scene_bytes"`

	Status     Status    `json:"status"`
	StatusText string    `json:"status_text"`
	UpdatedAt  time.Time `json:"updated_at"`
}
