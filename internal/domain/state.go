package domain

import "fmt"

// State is one of the mutually exclusive visual modes of a session.
type State string

const (
	StateIdle          State = "idle"
	StateImageSelected State = "image_selected"
	StateGenerating    State = "generating"
	StateResult        State = "result"
	StateError         State = "error"
)

// Event drives a State transition.
type Event string

const (
	EventImageLoaded       Event = "image_loaded"
	EventImageFailed       Event = "image_failed"
	EventGenerateStarted   Event = "generate_started"
	EventGenerateSucceeded Event = "generate_succeeded"
	EventGenerateFailed    Event = "generate_failed"
	EventReset             Event = "reset"
)

var transitions = map[State]map[Event]State{
	StateIdle: {
		EventImageLoaded: StateImageSelected,
		EventImageFailed: StateError,
	},
	StateImageSelected: {
		EventImageLoaded:     StateImageSelected,
		EventImageFailed:     StateError,
		EventGenerateStarted: StateGenerating,
	},
	StateGenerating: {
		EventGenerateSucceeded: StateResult,
		EventGenerateFailed:    StateError,
	},
	StateResult: {
		// a late failure never hides a video that is already playable
		EventGenerateFailed: StateResult,
	},
	StateError: {
		EventImageLoaded:     StateImageSelected,
		EventImageFailed:     StateError,
		EventGenerateStarted: StateGenerating,
	},
}

// Next returns the state reached from s on e. Reset is accepted from every state.
func (s State) Next(e Event) (State, error) {
	if e == EventReset {
		return StateIdle, nil
	}
	if next, ok := transitions[s][e]; ok {
		return next, nil
	}
	return s, fmt.Errorf("%w: %s on %s", ErrIllegalTransition, s, e)
}

// View is the visibility projection of a session, ready to render.
type View struct {
	State           State  `json:"state"`
	SetupError      bool   `json:"setup_error"`
	UploadVisible   bool   `json:"upload_visible"`
	PreviewVisible  bool   `json:"preview_visible"`
	PreviewURI      string `json:"preview_uri,omitempty"`
	GenerateEnabled bool   `json:"generate_enabled"`
	LoaderVisible   bool   `json:"loader_visible"`
	LoadingMessage  string `json:"loading_message,omitempty"`
	VideoVisible    bool   `json:"video_visible"`
	VideoRef        string `json:"video_ref,omitempty"`
	ErrorVisible    bool   `json:"error_visible"`
	ErrorMessage    string `json:"error_message,omitempty"`
}

// Project derives region visibility from a state. Texts and references are
// filled in by the caller.
func Project(s State, hasImage bool) View {
	v := View{State: s}
	switch s {
	case StateIdle:
		v.UploadVisible = true
	case StateImageSelected:
		v.UploadVisible = true
		v.PreviewVisible = hasImage
		v.GenerateEnabled = hasImage
	case StateGenerating:
		v.LoaderVisible = true
	case StateResult:
		v.VideoVisible = true
	case StateError:
		v.UploadVisible = true
		v.ErrorVisible = true
		v.PreviewVisible = hasImage
		v.GenerateEnabled = hasImage
	}
	return v
}

// ActiveRegions counts the visible exclusive regions (upload form, loader, video).
func (v View) ActiveRegions() int {
	n := 0
	for _, on := range []bool{v.UploadVisible, v.LoaderVisible, v.VideoVisible} {
		if on {
			n++
		}
	}
	return n
}
