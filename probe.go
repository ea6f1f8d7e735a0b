package mirrorfetch

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cognusion/go-timings"
)

func isInformational(code int) bool { return code >= 100 && code < 200 }
func isSuccess(code int) bool       { return code >= 200 && code < 300 }

// validateStatus passes informational and success responses through
// unchanged; anything else becomes a Status error.
func validateStatus(res *http.Response) error {
	if isInformational(res.StatusCode) || isSuccess(res.StatusCode) {
		return nil
	}
	return statusErr(res.StatusCode)
}

// head issues a HEAD request for uri. A 304 or 501 response carries no
// usable information and is reported as (nil, nil) rather than an error,
// so PROBE can proceed without cached metadata. Any other non-2xx/1xx
// status surfaces as a Status error; a caller receiving a non-nil
// response is responsible for closing its Body.
func (s *session[Data]) head(uri string) (*http.Response, error) {
	defer timings.Track(fmt.Sprintf("[%s] head", s.dlid), time.Now(), s.f.TimingsOut)

	req, err := http.NewRequest(http.MethodHead, uri, nil)
	if err != nil {
		return nil, newErr(Client, err)
	}

	res, err := s.f.client.Do(req)
	if err != nil {
		return nil, newErr(Client, err)
	}

	switch res.StatusCode {
	case http.StatusNotModified, http.StatusNotImplemented:
		res.Body.Close()
		return nil, nil
	}

	if err := validateStatus(res); err != nil {
		res.Body.Close()
		return nil, err
	}
	return res, nil
}

// supportsRange issues a HEAD with a Range header covering
// [resume, length) and reports whether the server actually honored it:
// true only on a 206 whose Content-Range begins with "bytes <resume>-".
// A non-206 success response means ranges are not supported (false, nil);
// any other status propagates as an error.
func (s *session[Data]) supportsRange(uri string, resume int64, length *int64) (bool, error) {
	defer timings.Track(fmt.Sprintf("[%s] supportsRange", s.dlid), time.Now(), s.f.TimingsOut)

	req, err := http.NewRequest(http.MethodHead, uri, nil)
	if err != nil {
		return false, newErr(Client, err)
	}
	req.Header.Set("Range", rangeHeader(resume, length))

	res, err := s.f.client.Do(req)
	if err != nil {
		return false, newErr(Client, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusPartialContent {
		want := "bytes " + strconv.FormatInt(resume, 10) + "-"
		return strings.HasPrefix(res.Header.Get("Content-Range"), want), nil
	}
	if isSuccess(res.StatusCode) {
		return false, nil
	}
	return false, validateStatus(res)
}

// responseContentLength parses the Content-Length header as an unsigned
// decimal, reporting whether it was present and well-formed.
func responseContentLength(res *http.Response) (int64, bool) {
	v := res.Header.Get("Content-Length")
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(v, 10, 63)
	if err != nil {
		return 0, false
	}
	return int64(n), true
}

// requireContentLength is responseContentLength, but a header that's
// present and unparseable surfaces as an InvalidRange error instead of
// behaving as if the header were simply absent. Use it where the caller
// is about to plan byte ranges off the result and silently falling back
// would hide a server sending garbage rather than nothing.
func requireContentLength(res *http.Response) (int64, bool, error) {
	v := res.Header.Get("Content-Length")
	if v == "" {
		return 0, false, nil
	}
	n, err := strconv.ParseUint(v, 10, 63)
	if err != nil {
		return 0, false, newErr(InvalidRange, err)
	}
	return int64(n), true, nil
}

// responseLastModified parses the Last-Modified header as an HTTP-date
// (RFC 7231), reporting whether it was present and well-formed.
func responseLastModified(res *http.Response) (time.Time, bool) {
	v := res.Header.Get("Last-Modified")
	if v == "" {
		return time.Time{}, false
	}
	t, err := http.ParseTime(v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
