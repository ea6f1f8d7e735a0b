package mirrorfetch

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/fortytw2/leaktest"
	. "github.com/smartystreets/goconvey/convey"
)

func Test_Pipeline(t *testing.T) {
	defer leaktest.Check(t)()

	Convey("Pipeline yields one future per input, each performing its own fetch when called", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			rw.Write([]byte("hi"))
		}))
		defer server.Close()

		dir := t.TempDir()
		f := New[string](new(http.Client))

		in := make(chan PipelineInput[string], 3)
		dests := []string{dir + "/a", dir + "/b", dir + "/c"}
		for _, d := range dests {
			in <- PipelineInput[string]{Source: NewSource(d, server.URL), UserData: d}
		}
		close(in)

		futures := Pipeline(f, in)
		var results []PipelineResult[string]
		for future := range futures {
			results = append(results, future())
		}

		So(results, ShouldHaveLength, 3)
		for _, r := range results {
			So(r.Err, ShouldBeNil)
			contents, err := os.ReadFile(r.Dest)
			So(err, ShouldBeNil)
			So(string(contents), ShouldEqual, "hi")
		}
	})
}

func Test_Run(t *testing.T) {
	defer leaktest.Check(t)()

	Convey("Run drains a pipeline with bounded concurrency and reports every result", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			rw.Write([]byte("hi"))
		}))
		defer server.Close()

		dir := t.TempDir()
		f := New[int](new(http.Client))

		in := make(chan PipelineInput[int], 5)
		for i := 0; i < 5; i++ {
			in <- PipelineInput[int]{Source: NewSource(dir+"/"+string(rune('a'+i)), server.URL), UserData: i}
		}
		close(in)

		var got []PipelineResult[int]
		for r := range Run(f, in, 2) {
			got = append(got, r)
		}

		So(got, ShouldHaveLength, 5)
		seen := make(map[int]bool)
		for _, r := range got {
			So(r.Err, ShouldBeNil)
			seen[r.UserData] = true
		}
		So(seen, ShouldHaveLength, 5)
	})

	Convey("A concurrency below 1 is treated as 1", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			rw.Write([]byte("hi"))
		}))
		defer server.Close()

		dir := t.TempDir()
		f := New[int](new(http.Client))

		in := make(chan PipelineInput[int], 1)
		in <- PipelineInput[int]{Source: NewSource(dir+"/only", server.URL), UserData: 1}
		close(in)

		var got []PipelineResult[int]
		for r := range Run(f, in, 0) {
			got = append(got, r)
		}
		So(got, ShouldHaveLength, 1)
		So(got[0].Err, ShouldBeNil)
	})
}
