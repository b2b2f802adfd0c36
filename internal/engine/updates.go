package engine

// Update is one progress event emitted during a shuffle run.
//
// IsQueueing is true while tracks are still being pushed to the remote
// queue; the final event of a successful run carries IsQueueing=false.
type Update struct {
	IsQueueing bool
	Progress   int
	Total      int
	Message    string
}

// State identifies where in its lifecycle a shuffle run is.
type State int32

const (
	Idle State = iota
	ResolvingTracks
	DeviceCheck
	StartingPlayback
	DrainingQueue
	Done
	Failed
	Cancelled
)

func (s State) String() string {
	switch s {
	case ResolvingTracks:
		return "resolving tracks"
	case DeviceCheck:
		return "device check"
	case StartingPlayback:
		return "starting playback"
	case DrainingQueue:
		return "draining queue"
	case Done:
		return "done"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// Terminal reports whether a run in this state has finished.
func (s State) Terminal() bool {
	return s == Done || s == Failed || s == Cancelled
}
