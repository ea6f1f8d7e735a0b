package mirrorfetch

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/cognusion/go-timings"
	"github.com/cognusion/semaphore"
	"go.uber.org/atomic"
)

// getMany downloads [offset, length) of a file across concurrent
// (concurrency bounded) range GETs, one URI per part chosen round-robin
// across uris, and concatenates the resulting part files into to in
// planned order. On the first failing part, dispatch of further parts
// stops and the error is returned; part files already on disk are left
// for the orchestrator's cleanup.
func (s *session[Data]) getMany(length int64, concurrency int, uris []string, to string, offset int64, mod *modifiedTracker) error {
	defer timings.Track(fmt.Sprintf("[%s] getMany %s", s.dlid, to), time.Now(), s.f.TimingsOut)

	if _, _, err := destPathParts(to); err != nil {
		return err
	}

	dst, err := openForWrite(to, offset)
	if err != nil {
		return newPathErr(FileCreate, to, err)
	}
	defer dst.Close()

	ranges := planRanges(length, s.f.maxPartSize, offset)
	results := make([]chan error, len(ranges))
	for i := range results {
		results[i] = make(chan error, 1)
	}

	sem := semaphore.NewSemaphore(concurrency)
	var firstErr atomic.Error

	for i, rg := range ranges {
		if s.cancelled() {
			results[i] <- newErr(Cancelled, nil)
			for j := i + 1; j < len(ranges); j++ {
				results[j] <- newErr(Cancelled, nil)
			}
			break
		}
		if ferr := firstErr.Load(); ferr != nil {
			// A part has already failed: stop dispatching new ones.
			results[i] <- ferr
			for j := i + 1; j < len(ranges); j++ {
				results[j] <- ferr
			}
			break
		}

		sem.Lock()
		go func(i int, rg Range) {
			defer sem.Unlock()

			uri := uris[i%len(uris)]
			path := partPath(to, i)
			rangeLen := rg.End - rg.Start

			s.emit(EventPartFetching, uint64(i))
			err := s.get(getRequest{
				URI:         uri,
				To:          path,
				Offset:      0,
				Length:      &rangeLen,
				RangeHeader: rg.header(),
			}, mod)
			s.emit(EventPartFetched, uint64(i))

			if err != nil {
				firstErr.Store(err)
			}
			results[i] <- err
		}(i, rg)
	}

	parts := make(chan string)
	var dispatchErr error
	go func() {
		defer close(parts)
		for i := range ranges {
			if err := <-results[i]; err != nil {
				dispatchErr = err
				return
			}
			parts <- partPath(to, i)
		}
	}()

	if err := concatenate(dst, parts); err != nil {
		return err
	}
	if dispatchErr != nil {
		return dispatchErr
	}

	return nil
}

// destPathParts splits to into its parent directory and final filename
// component, mirroring the original's to.parent()/to.file_name()
// validation (lib.rs): a destination with no directory component above
// itself is Parentless, and one with no filename component (empty, ".",
// or a bare separator) is Nameless. Multi-part mode needs both to build
// part-file paths alongside to, so it checks up front rather than
// failing partway through dispatch.
func destPathParts(to string) (parent, base string, err error) {
	parent = filepath.Dir(to)
	if parent == to {
		return "", "", newPathErr(Parentless, to, nil)
	}

	base = filepath.Base(to)
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", "", newPathErr(Nameless, to, nil)
	}

	return parent, base, nil
}
