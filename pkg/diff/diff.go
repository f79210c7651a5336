// Package diff renders line diffs between a statement and its rewritten
// form, for review before replacing files in place.
package diff

import (
	"strings"

	"github.com/kylelemons/godebug/diff"
)

// Text returns a line diff from before to after, with removed lines
// prefixed by "-" and added lines by "+". It returns "" when the two
// texts are identical.
func Text(before, after string) string {
	d := diff.Diff(before, after)
	if d == "" {
		return ""
	}
	if !strings.HasSuffix(d, "\n") {
		d += "\n"
	}
	return d
}
