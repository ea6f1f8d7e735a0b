package mirrorfetch

import "strconv"

// Range is a half-open byte interval [Start, End) over a file's byte
// space.
type Range struct {
	Start, End int64
}

// planRanges splits [offset, length) into contiguous, ascending,
// half-open ranges no larger than maxPart bytes each. It produces
// ceil((length-offset)/maxPart) ranges, the last of which ends exactly
// at length. length < offset yields an empty, non-nil slice.
func planRanges(length, maxPart, offset int64) []Range {
	if length < offset || maxPart <= 0 {
		return []Range{}
	}

	remaining := length - offset
	count := remaining / maxPart
	if remaining%maxPart != 0 {
		count++
	}

	ranges := make([]Range, 0, count)
	start := offset
	for start < length {
		end := start + maxPart
		if end > length {
			end = length
		}
		ranges = append(ranges, Range{Start: start, End: end})
		start = end
	}
	return ranges
}

// header renders r as an HTTP Range request header value, using the
// inclusive upper bound the wire format requires.
func (r Range) header() string {
	return rangeHeader(r.Start, &r.End)
}

// rangeHeader renders a byte-range header value for [start, *end) when
// end is non-nil, or the open-ended "bytes=start-" form when it is nil.
func rangeHeader(start int64, end *int64) string {
	if end == nil {
		return "bytes=" + strconv.FormatInt(start, 10) + "-"
	}
	return "bytes=" + strconv.FormatInt(start, 10) + "-" + strconv.FormatInt(*end-1, 10)
}
