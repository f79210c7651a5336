package rewrite

import (
	"context"
	"fmt"
	"time"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/sqlshift/pkg/grammar"
	"github.com/walteh/sqlshift/pkg/token"
)

// StageFactory constructs a fresh Stage bound to the token stream of the
// text entering that stage.
type StageFactory func(stream *token.Stream) *Stage

// Rewrite translates sql by running each stage in order: lex the current
// text, parse it, walk the tree with the stage's rules, materialize the
// ledger, and feed the result to the next stage. A stage that fails to
// lex, parse or walk is skipped with a warning on the context logger and
// its input text passes through unchanged, so the worst outcome for the
// caller is receiving sql back untouched.
func Rewrite(ctx context.Context, sql string, factories []StageFactory) string {
	out, _ := RewriteChecked(ctx, sql, factories)
	return out
}

// RewriteChecked is Rewrite plus a report of skipped stages: one wrapped
// error per stage that was passed through, or nil if every stage applied.
func RewriteChecked(ctx context.Context, sql string, factories []StageFactory) (string, error) {
	logger := zerolog.Ctx(ctx)
	start := time.Now()

	out := sql
	var report *multierror.Error
	for i, factory := range factories {
		next, name, err := runStage(out, factory)
		if err != nil {
			if name == "" {
				name = fmt.Sprintf("stage-%d", i)
			}
			logger.Warn().Err(err).Str("stage", name).Msg("failed to rewrite sql, passing through unchanged")
			report = multierror.Append(report, errors.Errorf("stage %s: %w", name, err))
			continue
		}
		out = next
	}

	logger.Debug().Dur("took", time.Since(start)).Msg("sql rewrite finished")
	return out, report.ErrorOrNil()
}

func runStage(sql string, factory StageFactory) (out string, name string, err error) {
	stream, err := grammar.Lex(sql)
	if err != nil {
		return "", "", errors.Errorf("lexing: %w", err)
	}
	stage := factory(stream)
	tree, err := grammar.Parse(stream)
	if err != nil {
		return "", stage.Name(), errors.Errorf("parsing: %w", err)
	}
	if err := Walk(tree, stage); err != nil {
		return "", stage.Name(), errors.Errorf("walking: %w", err)
	}
	return stage.ledger.Materialize(stream), stage.Name(), nil
}
