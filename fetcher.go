package mirrorfetch

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cognusion/go-sequence"
	"github.com/cognusion/go-timings"
	"go.uber.org/atomic"
)

var seq = sequence.New(0)

// Fetcher is the engine described by this package: construct one with
// New or NewWithLoggers, tune it with the Set* methods, then share it by
// reference across every Source it fetches. A Fetcher holds no
// per-request state, so the same value may be driving any number of
// concurrent fetches.
type Fetcher[Data any] struct {
	TimingsOut *log.Logger
	DebugOut   *log.Logger

	client             Client
	cancel             *atomic.Bool
	connectionsPerFile int // 0 means absent: single-stream only
	retries            int
	maxPartSize        int64
	timeout            time.Duration
	events             EventSender[Data]
}

// New returns a Fetcher using client to perform requests, with default
// retries (3) and max part size (2 MiB). Logged messages are discarded.
func New[Data any](client Client) *Fetcher[Data] {
	return NewWithLoggers[Data](client, nil, nil)
}

// NewWithLoggers is New, but sends timing and debug messages to the
// given loggers instead of discarding them. Either may be nil.
func NewWithLoggers[Data any](client Client, timingLogger, debugLogger *log.Logger) *Fetcher[Data] {
	if timingLogger == nil {
		timingLogger = log.New(io.Discard, "", 0)
	}
	if debugLogger == nil {
		debugLogger = log.New(io.Discard, "", 0)
	}
	if client == nil {
		client = DefaultClient
	}

	return &Fetcher[Data]{
		TimingsOut:  timingLogger,
		DebugOut:    debugLogger,
		client:      client,
		retries:     3,
		maxPartSize: 2 * 1024 * 1024,
	}
}

// SetClient overrides the Client used to make requests.
func (f *Fetcher[Data]) SetClient(client Client) *Fetcher[Data] {
	f.client = client
	return f
}

// SetCancel installs a shared cancellation flag. Any in-flight operation
// across any source driven by this Fetcher observes it at its next I/O
// boundary and aborts with Cancelled.
func (f *Fetcher[Data]) SetCancel(cancel *atomic.Bool) *Fetcher[Data] {
	f.cancel = cancel
	return f
}

// SetConnectionsPerFile enables multi-part mode with the given number of
// concurrent range GETs per file. A value less than 1 disables multi-part
// mode (the zero value already means "absent").
func (f *Fetcher[Data]) SetConnectionsPerFile(n int) *Fetcher[Data] {
	f.connectionsPerFile = n
	return f
}

// SetRetries sets the total number of attempts made per source,
// including the first. Values below 1 are treated as 1.
func (f *Fetcher[Data]) SetRetries(n int) *Fetcher[Data] {
	if n < 1 {
		n = 1
	}
	f.retries = n
	return f
}

// SetMaxPartSize sets the upper bound, in bytes, on any single range in
// multi-part mode. Values below 1 are ignored.
func (f *Fetcher[Data]) SetMaxPartSize(n int64) *Fetcher[Data] {
	if n < 1 {
		return f
	}
	f.maxPartSize = n
	return f
}

// SetTimeout sets the per-chunk I/O deadline: it bounds each individual
// read and the initial request send, not the fetch's total duration. The
// zero value disables the deadline.
func (f *Fetcher[Data]) SetTimeout(d time.Duration) *Fetcher[Data] {
	f.timeout = d
	return f
}

// SetEvents installs the sink FetchEvents are delivered to. Sends are
// always non-blocking; give it a generously buffered channel.
func (f *Fetcher[Data]) SetEvents(events EventSender[Data]) *Fetcher[Data] {
	f.events = events
	return f
}

// session carries the per-request state (correlation id, the event
// destination, and the caller's user data) that head/supportsRange/get/
// getMany need across every attempt of one Request call, without mutating
// the shared Fetcher.
type session[Data any] struct {
	f        *Fetcher[Data]
	dlid     string
	dest     string
	userdata Data
}

func (f *Fetcher[Data]) newSession(dest string, userdata Data) *session[Data] {
	return &session[Data]{f: f, dlid: seq.NextHashID(), dest: dest, userdata: userdata}
}

func (s *session[Data]) emit(kind FetchEventKind, n uint64) {
	trySend(s.f.events, EventRecord[Data]{Dest: s.dest, UserData: s.userdata, Event: FetchEvent{Kind: kind, N: n}})
}

func (s *session[Data]) cancelled() bool {
	return s.f.cancel != nil && s.f.cancel.Load()
}

// Request fetches source, retrying up to the configured attempt count,
// and returns only the terminal error (if any). It is the function C8's
// Pipeline calls per source, and emits Fetching/Fetched around it.
func (f *Fetcher[Data]) Request(source Source, userdata Data) error {
	s := f.newSession(source.Dest, userdata)

	s.emit(EventFetching, 0)
	err := f.requestSource(s, source)
	s.emit(EventFetched, 0)

	return err
}

func (f *Fetcher[Data]) requestSource(s *session[Data], source Source) error {
	to := source.target()

	removeParts(to)

	var why error
	for attempt := 0; attempt < f.retries; attempt++ {
		if s.cancelled() {
			why = newErr(Cancelled, nil)
			break
		}

		err := f.attempt(s, source.URLs, to, attempt)
		removeParts(to)

		if err == nil {
			why = nil
			break
		}
		why = err

		if fe, ok := err.(*Error); ok && fe.Kind == Cancelled {
			// Cancellation is terminal: no further retries.
			break
		}
	}

	if why != nil {
		return why
	}

	if source.Staging != "" {
		if err := os.Rename(source.Staging, source.Dest); err != nil {
			return newErr(Rename, err)
		}
	}
	return nil
}

// attempt runs one PROBE -> { CACHE_HIT | MULTI | SINGLE } pass for to,
// the path (staging or final) all work targets for this attempt.
func (f *Fetcher[Data]) attempt(s *session[Data], uris []string, to string, attemptIndex int) error {
	defer timings.Track(fmt.Sprintf("[%s] attempt %d", s.dlid, attemptIndex), time.Now(), f.TimingsOut)

	var (
		modified *time.Time
		length   *int64
		resume   *int64
	)

	// PROBE
	if _, err := os.Stat(to); err == nil {
		res, herr := s.head(uris[0])
		if herr != nil {
			return herr
		}
		if res != nil {
			defer res.Body.Close()

			cl, haveCL := responseContentLength(res)
			lm, haveLM := responseLastModified(res)

			if haveCL {
				length = &cl
			}
			if haveLM {
				modified = &lm
			}

			if haveCL && haveLM {
				info, statErr := os.Stat(to)
				if statErr != nil {
					if rmErr := os.Remove(to); rmErr != nil {
						return newPathErr(MetadataRemove, to, rmErr)
					}
				} else if info.Size() == cl {
					if info.ModTime().Truncate(time.Second).Equal(lm.Truncate(time.Second)) {
						s.emit(EventAlreadyFetched, 0)
						return nil
					}
					if err := os.Remove(to); err != nil {
						return newPathErr(MetadataRemove, to, err)
					}
				} else {
					r := info.Size()
					resume = &r
				}
			}
		}
	}

	// MULTI
	if f.connectionsPerFile > 0 {
		res, herr := s.head(uris[0])
		if herr != nil {
			return herr
		}
		if res != nil {
			res.Body.Close()

			if lm, ok := responseLastModified(res); ok {
				modified = &lm
			}
			if length == nil {
				cl, ok, cerr := requireContentLength(res)
				if cerr != nil {
					return cerr
				}
				if ok {
					length = &cl
				}
			}

			r := int64(0)
			if resume != nil {
				r = *resume
			}

			if length != nil {
				ok, serr := s.supportsRange(uris[0], r, length)
				if serr != nil {
					return serr
				}
				if ok {
					s.emit(EventContentLength, uint64(*length))
					if r > 0 {
						s.emit(EventProgress, uint64(r))
					}

					mod := newModifiedTracker(modified)
					if err := s.getMany(*length, f.connectionsPerFile, uris, to, r, mod); err != nil {
						return err
					}
					return applyTimestamp(to, mod.value())
				}
			}
		}
	}

	// SINGLE
	if length != nil {
		s.emit(EventContentLength, uint64(*length))
	}

	if resume != nil && length != nil && *resume > *length {
		resume = nil
	}

	rangeHdr := ""
	effectiveResume := int64(0)
	if resume != nil {
		if ok, _ := s.supportsRange(uris[0], *resume, length); ok {
			rangeHdr = rangeHeader(*resume, length)
			effectiveResume = *resume
		}
	}

	gr := getRequest{
		URI:         uris[0],
		To:          to,
		Offset:      effectiveResume,
		Length:      length,
		RangeHeader: rangeHdr,
	}

	mod := newModifiedTracker(modified)
	err := s.get(gr, mod)
	if fe, ok := err.(*Error); ok && fe.Kind == Status && fe.StatusCode == 501 {
		// Server doesn't support conditional/range requests: retry once,
		// plain, within this same attempt. A plain GET returns the whole
		// body, so it is written from the start of the file.
		gr.RangeHeader = ""
		gr.Offset = 0
		err = s.get(gr, mod)
	}
	if err != nil {
		return err
	}

	return applyTimestamp(to, mod.value())
}

func applyTimestamp(path string, modified *time.Time) error {
	if modified == nil {
		return nil
	}
	t := modified.Truncate(time.Second)
	if err := os.Chtimes(path, t, t); err != nil {
		return newPathErr(FileTime, path, err)
	}
	return nil
}

// removeParts deletes every sibling of to whose name is
// filepath.Base(to) followed by ".part" and anything else. It is called
// before and after every attempt, and is best-effort: a directory scan
// failure (e.g. the directory itself doesn't exist yet) is silently
// ignored, matching the "defensive cleanup" role it plays.
func removeParts(to string) {
	dir := filepath.Dir(to)
	base := filepath.Base(to)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	prefix := base + ".part"
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), prefix) {
			_ = os.Remove(filepath.Join(dir, entry.Name()))
		}
	}
}

func partPath(to string, index int) string {
	return fmt.Sprintf("%s.part%d", to, index)
}
