// Package viewer coordinates scene selection, resolution, and loading.
//
// The Coordinator owns the single mutable DisplayState. Every selection takes
// a monotonically increasing token; the token held at publish time decides
// whether a finished load may mutate the display. Superseded loads run to
// completion and still populate the scene cache, but they never touch the
// DisplayState. Failures keep the previous scene on display: losing the last
// good preview is worse than showing a stale one.
package viewer
