// Package playlist synthesizes a VOD-style HLS manifest up front, before
// any segment has actually been transcoded, per spec.md §4.2.
package playlist

import (
	"fmt"
	"math"
	"strings"
)

const crlf = "\r\n"

// Synthesize builds the deterministic VOD manifest for a stream of the
// given duration. It is a pure function of its three arguments: no
// filesystem or clock access, so it is trivially unit-testable and
// callable before the transcoder has produced a single byte.
func Synthesize(durationSeconds float64, identifier string, segmentDurationSeconds float64) string {
	var sb strings.Builder

	sb.WriteString("#EXTM3U" + crlf)
	sb.WriteString("#EXT-X-VERSION:3" + crlf)
	sb.WriteString("#EXT-X-MEDIA-SEQUENCE:0" + crlf)
	sb.WriteString(fmt.Sprintf("#EXT-X-TARGETDURATION: %d%s", int(segmentDurationSeconds), crlf))
	sb.WriteString("#EXT-X-PLAYLIST-TYPE:VOD" + crlf)

	remaining := durationSeconds
	for i := 0; remaining > 0; i++ {
		segLen := math.Min(remaining, segmentDurationSeconds)
		sb.WriteString(fmt.Sprintf("#EXTINF:%.4f, nodesc%s", segLen, crlf))
		sb.WriteString(fmt.Sprintf("/segment.ts?file=%s%d.ts%s", identifier, i, crlf))
		remaining -= segmentDurationSeconds
	}

	sb.WriteString("#EXT-X-ENDLIST" + crlf)
	return sb.String()
}

// SegmentCount returns ⌈duration/segmentDuration⌉, the number of
// #EXTINF entries Synthesize will emit for the same arguments.
func SegmentCount(durationSeconds, segmentDurationSeconds float64) int {
	return int(math.Ceil(durationSeconds / segmentDurationSeconds))
}
