package mirrorfetch

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cognusion/go-timings"
)

const chunkSize = 8 * 1024

// getRequest describes one GET for the single-stream getter: which URI,
// which file to write to, where in that file to start writing, how many
// bytes to pre-size the file to (if known), and an optional pre-built
// Range header value.
type getRequest struct {
	URI         string
	To          string
	Offset      int64
	Length      *int64
	RangeHeader string
}

// get issues one GET (ranged or not, per gr.RangeHeader) and streams the
// response body to gr.To, starting at gr.Offset. If mod hasn't observed
// Last-Modified yet, get captures it from this response. A 304 response
// is a no-op success.
func (s *session[Data]) get(gr getRequest, mod *modifiedTracker) error {
	defer timings.Track(fmt.Sprintf("[%s] get %s", s.dlid, gr.To), time.Now(), s.f.TimingsOut)

	file, err := openForWrite(gr.To, gr.Offset)
	if err != nil {
		return newPathErr(FileCreate, gr.To, err)
	}
	defer file.Close()

	// Pre-sizing only makes sense for a fresh, from-scratch write: an
	// append-mode file (gr.Offset != 0) always writes at its current
	// end-of-file, so truncating it out to the full length first would
	// shift subsequent writes past the gap instead of filling it.
	if gr.Length != nil && gr.Offset == 0 {
		_ = file.Truncate(*gr.Length)
	}

	req, err := http.NewRequest(http.MethodGet, gr.URI, nil)
	if err != nil {
		return newErr(Client, err)
	}
	if gr.RangeHeader != "" {
		req.Header.Set("Range", gr.RangeHeader)
	}

	res, err := timed(s.f.timeout, func() (*http.Response, error) {
		return s.f.client.Do(req)
	})
	if err != nil {
		if isTimedOut(err) {
			return err
		}
		return newErr(Client, err)
	}

	if res.StatusCode == http.StatusNotModified {
		res.Body.Close()
		return nil
	}

	if verr := validateStatus(res); verr != nil {
		res.Body.Close()
		return verr
	}
	defer res.Body.Close()

	if !mod.have() {
		if lm, ok := responseLastModified(res); ok {
			mod.set(lm)
		}
	}

	// gr.Length is nil only when the caller had no prior HEAD to learn the
	// size from (a cold fetch with no resume and no multi-part probe): in
	// that case this plain GET's own Content-Length is the first and only
	// chance to report it.
	if gr.Length == nil {
		if cl, ok := responseContentLength(res); ok {
			s.emit(EventContentLength, uint64(cl))
		}
	}

	buf := make([]byte, chunkSize)
	for {
		if s.cancelled() {
			return newErr(Cancelled, nil)
		}

		n, rerr := timed(s.f.timeout, func() (int, error) {
			return res.Body.Read(buf)
		})
		if rerr != nil && n == 0 {
			if isTimedOut(rerr) {
				return rerr
			}
			if rerr == io.EOF {
				break
			}
			return newErr(Client, rerr)
		}

		if n == 0 {
			break
		}

		s.emit(EventProgress, uint64(n))

		if _, werr := file.Write(buf[:n]); werr != nil {
			return newPathErr(Write, gr.To, werr)
		}

		if rerr == io.EOF {
			break
		}
	}

	return nil
}

// openForWrite opens path for writing, creating it if absent. offset==0
// truncates any existing content; a non-zero offset opens in append mode,
// on the assumption the caller has already verified the file's current
// size equals offset.
func openForWrite(path string, offset int64) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if offset == 0 {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	return os.OpenFile(path, flags, 0o644)
}

// timed runs fn, racing it against duration d (no race at all when d is
// zero). Losing to the clock reports a TimedOut error; the loser
// goroutine is left to finish on its own, since the in-flight network or
// file call it's blocked on cannot be interrupted.
func timed[T any](d time.Duration, fn func() (T, error)) (T, error) {
	if d <= 0 {
		return fn()
	}

	type result struct {
		v   T
		err error
	}

	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-time.After(d):
		var zero T
		return zero, newErr(TimedOut, nil)
	}
}

func isTimedOut(err error) bool {
	fe, ok := err.(*Error)
	return ok && fe.Kind == TimedOut
}
