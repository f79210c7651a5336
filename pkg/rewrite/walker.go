package rewrite

import (
	"strings"

	"github.com/walteh/sqlshift/pkg/ast"
	"github.com/walteh/sqlshift/pkg/token"
)

// Handler is one rule invocation: it reads the node it is given plus the
// stage's token stream and records edits in the stage ledger. A non-nil
// error is a fatal precondition failure for the whole stage. Handlers
// should only anchor edits to tokens within or immediately adjacent to
// their own node's span; that convention keeps rules composable.
type Handler func(n ast.Node) error

// Stage is one complete dialect-rewrite pass: a rule set keyed by node
// kind plus the ledger the rules write into, bound to the token stream
// its anchors refer to. Stages are single-use; build a fresh one per
// input text.
type Stage struct {
	name   string
	stream *token.Stream
	ledger *Ledger
	enter  map[ast.Kind]Handler
	exit   map[ast.Kind]Handler
}

func NewStage(name string, stream *token.Stream) *Stage {
	return &Stage{
		name:   name,
		stream: stream,
		ledger: NewLedger(func(text string) bool { return strings.TrimSpace(text) == "" }),
		enter:  make(map[ast.Kind]Handler),
		exit:   make(map[ast.Kind]Handler),
	}
}

func (s *Stage) Name() string          { return s.name }
func (s *Stage) Stream() *token.Stream { return s.stream }
func (s *Stage) Ledger() *Ledger       { return s.ledger }

// OnEnter registers h to run when the walk enters a node of kind k,
// before the node's children are visited.
func (s *Stage) OnEnter(k ast.Kind, h Handler) {
	s.enter[k] = h
}

// OnExit registers h to run after all children of a node of kind k have
// been visited.
func (s *Stage) OnExit(k ast.Kind, h Handler) {
	s.exit[k] = h
}

// Walk performs a pre-order depth-first traversal of root, dispatching
// the stage's handlers by node kind. Siblings are visited left to right.
// Handler failures propagate to the caller unhandled; isolating them is
// the pipeline's job.
func Walk(root ast.Node, stage *Stage) error {
	if root == nil {
		return nil
	}
	if h := stage.enter[root.Kind()]; h != nil {
		if err := h(root); err != nil {
			return err
		}
	}
	for _, child := range root.Children() {
		if child == nil {
			continue
		}
		if err := Walk(child, stage); err != nil {
			return err
		}
	}
	if h := stage.exit[root.Kind()]; h != nil {
		if err := h(root); err != nil {
			return err
		}
	}
	return nil
}
