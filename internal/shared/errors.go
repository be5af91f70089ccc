package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Remote service errors
	ErrTransport        = fmt.Errorf("transport failure")
	ErrParse            = fmt.Errorf("malformed response")
	ErrResolution       = fmt.Errorf("link resolution failed")
	ErrAuth             = fmt.Errorf("authentication rejected")
	ErrAPIRequest       = fmt.Errorf("API request failed")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrTrackNotFound    = fmt.Errorf("track not found")

	// Playback errors
	ErrInvalidQueue     = fmt.Errorf("queue is not a permutation of the track list")
	ErrQueueEmpty       = fmt.Errorf("queue is empty")
	ErrAudioUnavailable = fmt.Errorf("audio output unavailable in this build")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
