package mirrorfetch

// Source describes one fetch unit: an ordered, non-empty list of mirror
// URLs, a final destination path, and an optional staging path. When
// Staging is non-empty, all work targets the staging path and is
// atomically renamed to Dest on success.
type Source struct {
	URLs    []string
	Dest    string
	Staging string
}

// NewSource returns a Source with no staging path. Use WithStaging to
// opt a particular source into the stage-then-rename discipline.
func NewSource(dest string, urls ...string) Source {
	return Source{URLs: urls, Dest: dest}
}

// WithStaging returns a copy of s that downloads to path and renames to
// s.Dest on success.
func (s Source) WithStaging(path string) Source {
	s.Staging = path
	return s
}

// target is the path all engine components actually operate against:
// the staging path when set, otherwise the destination.
func (s Source) target() string {
	if s.Staging != "" {
		return s.Staging
	}
	return s.Dest
}

// FetchEventKind tags the variant of a FetchEvent.
type FetchEventKind int

const (
	// EventFetching signals a source entered processing.
	EventFetching FetchEventKind = iota
	// EventAlreadyFetched signals a cache hit; no bytes transferred.
	EventAlreadyFetched
	// EventContentLength reports the server-advertised total size in N.
	EventContentLength
	// EventProgress reports N additional bytes written to disk.
	EventProgress
	// EventPartFetching reports that part index N began.
	EventPartFetching
	// EventPartFetched reports that part index N finished (success or failure).
	EventPartFetched
	// EventFetched signals a source left processing.
	EventFetched
)

// FetchEvent is a tagged value describing fetch progress. N is the byte
// count for EventContentLength/EventProgress, the part index for
// EventPartFetching/EventPartFetched, and unused (zero) otherwise.
type FetchEvent struct {
	Kind FetchEventKind
	N    uint64
}

// EventRecord is one (destination, user data, event) triple delivered to
// an event sink.
type EventRecord[Data any] struct {
	Dest     string
	UserData Data
	Event    FetchEvent
}

// EventSender is a non-blocking, fire-and-forget destination for
// EventRecords. A Fetcher never blocks on it: sends happen via a
// non-blocking select, so a full or abandoned channel simply drops
// events rather than stalling a fetch. Give it a generously buffered
// channel if you don't want to miss any.
type EventSender[Data any] chan<- EventRecord[Data]

func trySend[Data any](sender EventSender[Data], rec EventRecord[Data]) {
	if sender == nil {
		return
	}
	select {
	case sender <- rec:
	default:
	}
}
