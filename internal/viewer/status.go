package viewer

import "strings"

// Level is the coarse indicator the display layer renders next to the status
// text: nominal (green), busy (yellow), problem (red).
type Level int

const (
	LevelNominal Level = iota
	LevelBusy
	LevelProblem
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelBusy:
		return "busy"
	case LevelProblem:
		return "problem"
	default:
		return "nominal"
	}
}

var problemWords = []string{"error", "fail", "not found", "no checkpoint", "no ckpt", "missing"}

// Describe projects a display state to the banner text and indicator level.
// Word matching on the status text only applies when the coordinator is not
// busy, so a "loading" banner never turns red mid-flight.
func Describe(state DisplayState) (string, Level) {
	text := strings.TrimSpace(state.StatusText)
	if text == "" {
		switch state.Status {
		case StatusLoading:
			text = "loading..."
		default:
			text = "idle"
		}
	}

	if state.Status == StatusLoading {
		return text, LevelBusy
	}

	lowered := strings.ToLower(text)
	for _, word := range problemWords {
		if strings.Contains(lowered, word) {
			return text, LevelProblem
		}
	}
	return text, LevelNominal
}
