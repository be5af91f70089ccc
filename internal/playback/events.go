package playback

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/ymx/internal/shared"
)

// EventKind enumerates control commands.
type EventKind int

const (
	AdjustVolume EventKind = iota
	SetVolume
	AdjustSpeed
	SetSpeed
	TogglePlayback
	Next
	Previous
	Shuffle
	ListPlaylists
	LoadPlaylist
	LoadFavorites
	ShowStatus
	Quit
)

func (k EventKind) String() string {
	switch k {
	case AdjustVolume:
		return "adjust_volume"
	case SetVolume:
		return "set_volume"
	case AdjustSpeed:
		return "adjust_speed"
	case SetSpeed:
		return "set_speed"
	case TogglePlayback:
		return "toggle_playback"
	case Next:
		return "next"
	case Previous:
		return "previous"
	case Shuffle:
		return "shuffle"
	case ListPlaylists:
		return "list_playlists"
	case LoadPlaylist:
		return "load_playlist"
	case LoadFavorites:
		return "load_favorites"
	case ShowStatus:
		return "show_status"
	case Quit:
		return "quit"
	default:
		return ""
	}
}

// Event is a control command. Value carries the delta or target for volume
// and speed kinds; Index carries the playlist index for LoadPlaylist.
type Event struct {
	Kind  EventKind
	Value float64
	Index int
}

func (e Event) String() string {
	switch e.Kind {
	case AdjustVolume, SetVolume, AdjustSpeed, SetSpeed:
		return fmt.Sprintf("%s(%g)", e.Kind, e.Value)
	case LoadPlaylist:
		return fmt.Sprintf("%s(%d)", e.Kind, e.Index)
	default:
		return e.Kind.String()
	}
}

// Steps are the increments used by the relative volume and speed commands.
type Steps struct {
	Volume float64
	Speed  float64
}

// DefaultSteps are the increments of the vu/vd and su/sd commands.
var DefaultSteps = Steps{Volume: 0.05, Speed: 0.5}

// CommandHelp lists the line commands understood by [ParseCommand].
const CommandHelp = `vu / vd      volume up / down
vs <value>   set volume
vg           show volume
su / sd      speed up / down
ss <value>   set speed
sg           show speed
p            pause / resume
n            next track
b            previous track
sh           shuffle queue
pl           list playlists
lp <index>   load playlist
lf           load liked tracks
st           status
q            quit`

// ParseCommand maps one input line to an [Event].
func ParseCommand(line string, steps Steps) (Event, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Event{}, fmt.Errorf("%w: empty command", shared.ErrInvalidInput)
	}

	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "vu":
		return Event{Kind: AdjustVolume, Value: steps.Volume}, nil
	case "vd":
		return Event{Kind: AdjustVolume, Value: -steps.Volume}, nil
	case "vs":
		v, err := floatArg(cmd, args)
		return Event{Kind: SetVolume, Value: v}, err
	case "su":
		return Event{Kind: AdjustSpeed, Value: steps.Speed}, nil
	case "sd":
		return Event{Kind: AdjustSpeed, Value: -steps.Speed}, nil
	case "ss":
		v, err := floatArg(cmd, args)
		return Event{Kind: SetSpeed, Value: v}, err
	case "vg", "sg", "st":
		return Event{Kind: ShowStatus}, nil
	case "p":
		return Event{Kind: TogglePlayback}, nil
	case "n":
		return Event{Kind: Next}, nil
	case "b":
		return Event{Kind: Previous}, nil
	case "sh":
		return Event{Kind: Shuffle}, nil
	case "pl":
		return Event{Kind: ListPlaylists}, nil
	case "lp":
		if len(args) != 1 {
			return Event{}, fmt.Errorf("%w: lp takes a playlist index", shared.ErrMissingArgument)
		}
		i, err := strconv.Atoi(args[0])
		if err != nil || i < 0 {
			return Event{}, fmt.Errorf("%w: playlist index %q", shared.ErrInvalidArgument, args[0])
		}
		return Event{Kind: LoadPlaylist, Index: i}, nil
	case "lf":
		return Event{Kind: LoadFavorites}, nil
	case "q", "quit", "exit":
		return Event{Kind: Quit}, nil
	default:
		return Event{}, fmt.Errorf("%w: unknown command %q", shared.ErrInvalidInput, cmd)
	}
}

func floatArg(cmd string, args []string) (float64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: %s takes one numeric value", shared.ErrMissingArgument, cmd)
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", shared.ErrInvalidArgument, args[0])
	}
	return v, nil
}
