package mirrorfetch

import "sync"

// PipelineInput pairs one Source with the caller's user data, the unit
// Pipeline consumes.
type PipelineInput[Data any] struct {
	Source   Source
	UserData Data
}

// PipelineResult is what a pipeline future yields once awaited: the
// fetch's destination, the user data it was dispatched with, and the
// terminal error, if any.
type PipelineResult[Data any] struct {
	Dest     string
	UserData Data
	Err      error
}

// Pipeline turns a stream of sources into a stream of futures: for each
// input received from in, it sends a func on the returned channel that,
// when called, performs that source's full fetch (emitting Fetching and
// Fetched around it) and returns the result. Pipeline runs one goroutine
// that only forwards inputs as futures; it performs no fetch itself and
// imposes no concurrency on the fetches; how many of the returned
// futures the caller invokes at once is entirely up to it. The returned
// channel closes once in is drained and closed.
func Pipeline[Data any](f *Fetcher[Data], in <-chan PipelineInput[Data]) <-chan func() PipelineResult[Data] {
	out := make(chan func() PipelineResult[Data])

	go func() {
		defer close(out)
		for input := range in {
			input := input
			out <- func() PipelineResult[Data] {
				err := f.Request(input.Source, input.UserData)
				return PipelineResult[Data]{
					Dest:     input.Source.Dest,
					UserData: input.UserData,
					Err:      err,
				}
			}
		}
	}()

	return out
}

// Run is a convenience over Pipeline for callers who just want bounded
// parallelism across sources: it drains in with concurrency worker
// goroutines, each pulling the next future and awaiting it, and returns
// results on the returned channel in completion order. A concurrency
// below 1 is treated as 1.
func Run[Data any](f *Fetcher[Data], in <-chan PipelineInput[Data], concurrency int) <-chan PipelineResult[Data] {
	if concurrency < 1 {
		concurrency = 1
	}

	futures := Pipeline(f, in)
	out := make(chan PipelineResult[Data])

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			for future := range futures {
				out <- future()
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}
