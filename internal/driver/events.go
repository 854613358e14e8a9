package driver

import "context"

// EventKind says what happened to a file.
type EventKind uint8

const (
	// EventStarted is sent when a worker picks up the file.
	EventStarted EventKind = iota
	// EventFinished is sent once the file's result slot is filled.
	EventFinished
)

func (k EventKind) String() string {
	if k == EventFinished {
		return "finished"
	}
	return "started"
}

// Event reports progress of a batch. Index is the position of the file in
// the sorted batch and Total the batch size.
type Event struct {
	Kind    EventKind
	Index   int
	Total   int
	Path    string
	Changed bool
	Cached  bool
	Err     error
}

// emit sends ev unless ch is nil or ctx is done. The receiver must keep
// draining the channel until FormatPaths returns.
func emit(ctx context.Context, ch chan<- Event, ev Event) {
	if ch == nil {
		return
	}
	select {
	case ch <- ev:
	case <-ctx.Done():
	}
}
