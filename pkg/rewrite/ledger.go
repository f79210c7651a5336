// Package rewrite implements the token-stream rewriting engine: an edit
// ledger that accumulates insert/delete/replace operations anchored to
// token positions, a tree walker that dispatches rule handlers by node
// kind, and a pipeline that chains rewrite stages with per-stage failure
// isolation.
package rewrite

import (
	"fmt"
	"sort"
	"strings"

	"github.com/walteh/sqlshift/pkg/token"
)

type opKind int

const (
	opInsertBefore opKind = iota
	opInsertAfter
	opReplace
	opDelete
)

type edit struct {
	kind  opKind
	start int
	end   int
	text  string
	seq   int
}

// Ledger accumulates pending edits keyed by token index and resolves them
// into output text in a single pass over the stream. It knows nothing
// about grammar semantics; anchors are plain token indices and are only
// meaningful for the stream the edits were computed from.
type Ledger struct {
	isBlank func(string) bool
	edits   []edit
}

// NewLedger returns an empty ledger. isBlank classifies trivia text that
// is absorbed when the token preceding it is deleted, so removing a
// keyword or operator does not leave a double space behind. A nil
// predicate disables absorption.
func NewLedger(isBlank func(string) bool) *Ledger {
	return &Ledger{isBlank: isBlank}
}

func (l *Ledger) record(kind opKind, start, end int, text string) {
	l.edits = append(l.edits, edit{kind: kind, start: start, end: end, text: text, seq: len(l.edits)})
}

// InsertBefore schedules text to be emitted immediately before the token
// at anchor. Multiple inserts at the same anchor are emitted in the order
// they were recorded.
func (l *Ledger) InsertBefore(anchor int, text string) {
	l.record(opInsertBefore, anchor, anchor, text)
}

// InsertAfter schedules text to be emitted immediately after the token at
// anchor, in recorded order.
func (l *Ledger) InsertAfter(anchor int, text string) {
	l.record(opInsertAfter, anchor, anchor, text)
}

// Replace substitutes text for the tokens in [start, end] inclusive.
func (l *Ledger) Replace(start, end int, text string) {
	l.record(opReplace, start, end, text)
}

// ReplaceToken substitutes text for the single token at anchor.
func (l *Ledger) ReplaceToken(anchor int, text string) {
	l.Replace(anchor, anchor, text)
}

// Delete removes the tokens in [start, end] inclusive, absorbing one
// trailing blank trivia token if present.
func (l *Ledger) Delete(start, end int) {
	l.record(opDelete, start, end, "")
}

// DeleteToken removes the single token at anchor.
func (l *Ledger) DeleteToken(anchor int) {
	l.Delete(anchor, anchor)
}

// Empty reports whether no edits have been recorded.
func (l *Ledger) Empty() bool {
	return len(l.edits) == 0
}

// Materialize replays stream in index order with all recorded edits
// applied, reproducing every token's original text verbatim except where
// an edit overrides it. Replacement text is emitted once, at the range's
// start anchor. The ledger is meant to be consumed exactly once.
func (l *Ledger) Materialize(stream *token.Stream) string {
	ranges := l.resolveRanges()

	before := make(map[int][]string)
	after := make(map[int][]string)
	for _, e := range l.edits {
		switch e.kind {
		case opInsertBefore:
			before[e.start] = append(before[e.start], e.text)
		case opInsertAfter:
			after[e.start] = append(after[e.start], e.text)
		}
	}

	var b strings.Builder
	n := stream.Size()
	for i := 0; i < n; {
		if r, ok := ranges[i]; ok {
			for _, t := range before[i] {
				b.WriteString(t)
			}
			b.WriteString(r.text)
			for _, t := range after[r.end] {
				b.WriteString(t)
			}
			i = r.end + 1
			if r.kind == opDelete && i < n && l.isBlank != nil {
				if next := stream.Get(i); next.Channel == token.ChannelTrivia && l.isBlank(next.Text) {
					i++
				}
			}
			continue
		}
		for _, t := range before[i] {
			b.WriteString(t)
		}
		b.WriteString(stream.Get(i).Text)
		for _, t := range after[i] {
			b.WriteString(t)
		}
		i++
	}
	return b.String()
}

// resolveRanges orders the Replace/Delete edits by position, drops an edit
// fully nested inside a wider one (the outer edit wins), lets the
// later-recorded of two identical ranges supersede the earlier, and
// panics on a partial overlap: two rules fighting over the same tokens is
// a defect in the rules, not a runtime input condition, and must surface
// before release rather than corrupt output.
func (l *Ledger) resolveRanges() map[int]edit {
	var rs []edit
	for _, e := range l.edits {
		if e.kind == opReplace || e.kind == opDelete {
			rs = append(rs, e)
		}
	}
	if len(rs) == 0 {
		return nil
	}
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].start != rs[j].start {
			return rs[i].start < rs[j].start
		}
		return rs[i].end > rs[j].end
	})

	var kept []edit
	for _, e := range rs {
		if len(kept) == 0 || e.start > kept[len(kept)-1].end {
			kept = append(kept, e)
			continue
		}
		last := &kept[len(kept)-1]
		if e.start == last.start && e.end == last.end {
			if e.seq > last.seq {
				*last = e
			}
			continue
		}
		if e.end <= last.end {
			continue
		}
		panic(fmt.Sprintf("rewrite: conflicting edits: [%d,%d] partially overlaps [%d,%d]",
			e.start, e.end, last.start, last.end))
	}

	out := make(map[int]edit, len(kept))
	for _, e := range kept {
		out[e.start] = e
	}
	return out
}
