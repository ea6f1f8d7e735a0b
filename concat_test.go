package mirrorfetch

import (
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func Test_Concatenate(t *testing.T) {
	Convey("Parts are appended to the destination in the order received, and deleted afterward", t, func() {
		dir := t.TempDir()

		dst, err := os.Create(dir + "/dst")
		So(err, ShouldBeNil)
		defer dst.Close()

		p1 := dir + "/p1"
		p2 := dir + "/p2"
		So(os.WriteFile(p1, []byte("hello, "), 0o644), ShouldBeNil)
		So(os.WriteFile(p2, []byte("world"), 0o644), ShouldBeNil)

		parts := make(chan string, 2)
		parts <- p1
		parts <- p2
		close(parts)

		err = concatenate(dst, parts)
		So(err, ShouldBeNil)

		_, statErr := os.Stat(p1)
		So(os.IsNotExist(statErr), ShouldBeTrue)
		_, statErr = os.Stat(p2)
		So(os.IsNotExist(statErr), ShouldBeTrue)

		contents, rerr := os.ReadFile(dir + "/dst")
		So(rerr, ShouldBeNil)
		So(string(contents), ShouldEqual, "hello, world")
	})

	Convey("A missing part file surfaces an OpenPart error and stops further draining", t, func() {
		dir := t.TempDir()

		dst, err := os.Create(dir + "/dst")
		So(err, ShouldBeNil)
		defer dst.Close()

		p2 := dir + "/p2"
		So(os.WriteFile(p2, []byte("world"), 0o644), ShouldBeNil)

		parts := make(chan string, 2)
		parts <- dir + "/does-not-exist"
		parts <- p2
		close(parts)

		err = concatenate(dst, parts)
		So(err, ShouldNotBeNil)

		fe, ok := err.(*Error)
		So(ok, ShouldBeTrue)
		So(fe.Kind, ShouldEqual, OpenPart)

		So(len(parts), ShouldEqual, 1)
		_, statErr := os.Stat(p2)
		So(statErr, ShouldBeNil)
	})

	Convey("A failing copy still surfaces a Concatenate error", t, func() {
		dir := t.TempDir()

		dst, err := os.Create(dir + "/dst")
		So(err, ShouldBeNil)
		defer dst.Close()

		p1 := dir + "/p1"
		So(os.WriteFile(p1, []byte("hello"), 0o644), ShouldBeNil)
		So(dst.Close(), ShouldBeNil) // closed dst makes the copy fail

		parts := make(chan string, 1)
		parts <- p1
		close(parts)

		err = concatenate(dst, parts)
		So(err, ShouldNotBeNil)

		fe, ok := err.(*Error)
		So(ok, ShouldBeTrue)
		So(fe.Kind, ShouldEqual, Concatenate)
	})
}
