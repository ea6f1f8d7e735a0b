package mirrorfetch

import (
	"io"
	"os"
)

// concatenate appends the bytes of each path received from parts, in the
// order received, onto dst — which must already be open, writable, and
// positioned at its current end — deleting each part file immediately
// after its bytes are appended. parts is expected to be fed in planned
// order; concatenate itself imposes no ordering, it simply drains
// whatever arrives.
//
// The first I/O error aborts: a part that cannot be opened yields an
// OpenPart error, a failed copy or delete a Concatenate error; parts already
// appended remain consumed (deleted), and parts is drained no further.
func concatenate(dst *os.File, parts <-chan string) error {
	for path := range parts {
		if err := appendPart(dst, path); err != nil {
			return err
		}
	}
	return nil
}

func appendPart(dst *os.File, path string) error {
	part, err := os.Open(path)
	if err != nil {
		return newPathErr(OpenPart, path, err)
	}

	_, copyErr := io.Copy(dst, part)
	part.Close()
	if copyErr != nil {
		return newPathErr(Concatenate, path, copyErr)
	}

	if err := os.Remove(path); err != nil {
		return newPathErr(Concatenate, path, err)
	}
	return nil
}
