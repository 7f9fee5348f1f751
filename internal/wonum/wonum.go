// Package wonum locates work-order numbers in arbitrary strings: filenames,
// email subjects, bodies.
package wonum

import "regexp"

// Observed business identifiers are always 6-10 digits; shorter runs are
// usually page numbers or dates, longer runs phone numbers or internal
// database ids. The WO-tagged form tolerates 5 digits because the explicit
// marker already disambiguates.
var (
	taggedPattern = regexp.MustCompile(`(?i)WO#?\s*(\d{5,10})`)
	barePattern   = regexp.MustCompile(`\b(\d{6,10})\b`)
)

// Locate finds a work-order number in text. A "WO"/"WO#"-tagged digit group
// wins over any bare digit run; the first bare run of 6-10 digits is the
// fallback. Returns ("", false) when nothing qualifies.
func Locate(text string) (string, bool) {
	if m := taggedPattern.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	if m := barePattern.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	return "", false
}
