package mirrorfetch

import (
	"fmt"
)

// ErrorKind tags the category of failure a fetch Error represents.
type ErrorKind int

// The error kinds the fetch engine can surface. Each carries enough
// context in the wrapped Error to diagnose the failure; none is a bare
// numeric code without meaning.
const (
	// Cancelled means the cancellation flag was observed set.
	Cancelled ErrorKind = iota
	// Client is a transport-layer failure (DNS, TLS, connect, protocol).
	Client
	// Status means the server returned an unacceptable HTTP status.
	Status
	// TimedOut means a per-chunk deadline elapsed.
	TimedOut
	// InvalidRange means content length could not be parsed or used.
	InvalidRange
	// FileCreate means the destination or part file could not be created.
	FileCreate
	// Write means a write to the destination or a part file failed.
	Write
	// MetadataRemove means a stale destination could not be removed.
	MetadataRemove
	// OpenPart means a completed part file could not be reopened for concatenation.
	OpenPart
	// Concatenate means appending a part file to the destination failed.
	Concatenate
	// Rename means the staging-to-destination rename failed.
	Rename
	// FileTime means the destination's mtime/atime could not be set.
	FileTime
	// Parentless means the destination path lacks a parent directory.
	Parentless
	// Nameless means the destination path lacks a final filename component.
	Nameless
)

func (k ErrorKind) String() string {
	switch k {
	case Cancelled:
		return "cancelled"
	case Client:
		return "client"
	case Status:
		return "status"
	case TimedOut:
		return "timed out"
	case InvalidRange:
		return "invalid range"
	case FileCreate:
		return "file create"
	case Write:
		return "write"
	case MetadataRemove:
		return "metadata remove"
	case OpenPart:
		return "open part"
	case Concatenate:
		return "concatenate"
	case Rename:
		return "rename"
	case FileTime:
		return "file time"
	case Parentless:
		return "parentless"
	case Nameless:
		return "nameless"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every fetch operation in this
// module. Path and StatusCode are populated only when relevant to Kind.
type Error struct {
	Kind       ErrorKind
	Path       string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case Status:
		return fmt.Sprintf("server responded with an error: %d", e.StatusCode)
	case FileTime:
		return fmt.Sprintf("unable to set timestamp on %s: %v", e.Path, e.Err)
	case OpenPart:
		return fmt.Sprintf("unable to open fetched part %s: %v", e.Path, e.Err)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Kind, e.Err)
		}
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func newPathErr(kind ErrorKind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

func statusErr(code int) *Error {
	return &Error{Kind: Status, StatusCode: code}
}
