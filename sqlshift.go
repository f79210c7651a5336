// Package sqlshift translates SQL from one dialect into another by
// replaying the source token stream with localized, position-anchored
// edits applied. Everything not subject to a dialect difference
// (whitespace, comments, literal casing, token order) survives
// byte-for-byte.
package sqlshift

import (
	"context"

	"github.com/walteh/sqlshift/pkg/grammar"
	"github.com/walteh/sqlshift/pkg/presto"
	"github.com/walteh/sqlshift/pkg/rewrite"
)

// HiveToPresto rewrites a single Hive statement into Presto SQL. Stages
// that fail are skipped with a warning on the context logger; the worst
// outcome is sql returned unchanged.
func HiveToPresto(ctx context.Context, sql string) string {
	return rewrite.Rewrite(ctx, sql, Stages())
}

// Stages returns the default Hive-to-Presto pipeline.
func Stages() []rewrite.StageFactory {
	return []rewrite.StageFactory{presto.Stage}
}

// Check reports whether sql lexes and parses as a single Hive statement.
func Check(sql string) error {
	return grammar.Check(sql)
}
