package checksum

import (
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func Test_MD5(t *testing.T) {
	Convey("A matching MD5 digest validates cleanly", t, func() {
		// md5("hello") = 5d41402abc4b2a76b9719d911017c592
		c, err := NewMD5("5d41402abc4b2a76b9719d911017c592")
		So(err, ShouldBeNil)
		So(c.Kind(), ShouldEqual, MD5)

		err = c.Validate(strings.NewReader("hello"), nil)
		So(err, ShouldBeNil)
	})

	Convey("A mismatched MD5 digest fails with Invalid", t, func() {
		c, err := NewMD5("5d41402abc4b2a76b9719d911017c592")
		So(err, ShouldBeNil)

		err = c.Validate(strings.NewReader("goodbye"), nil)
		So(err, ShouldNotBeNil)

		ce, ok := err.(*Error)
		So(ok, ShouldBeTrue)
		So(ce.Kind, ShouldEqual, Invalid)
	})

	Convey("An invalid hex digest is rejected at construction", t, func() {
		_, err := NewMD5("not-hex")
		So(err, ShouldNotBeNil)
	})

	Convey("A digest of the wrong length for the algorithm is rejected", t, func() {
		_, err := NewMD5("abcd")
		So(err, ShouldNotBeNil)
	})
}

func Test_SHA256(t *testing.T) {
	Convey("A matching SHA-256 digest validates cleanly", t, func() {
		// sha256("hello") = 2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824
		c, err := NewSHA256("2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824")
		So(err, ShouldBeNil)
		So(c.Kind(), ShouldEqual, SHA256)

		err = c.Validate(strings.NewReader("hello"), make([]byte, 4))
		So(err, ShouldBeNil)
	})
}

type errReader struct{}

func (errReader) Read(p []byte) (int, error) {
	return 0, errShort
}

var errShort = errors.New("short read")

func Test_ValidateIOError(t *testing.T) {
	Convey("A read failure surfaces as an IO error", t, func() {
		c, err := NewMD5("5d41402abc4b2a76b9719d911017c592")
		So(err, ShouldBeNil)

		verr := c.Validate(errReader{}, nil)
		So(verr, ShouldNotBeNil)
		ce, ok := verr.(*Error)
		So(ok, ShouldBeTrue)
		So(ce.Kind, ShouldEqual, IO)
	})
}
