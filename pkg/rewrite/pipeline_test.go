package rewrite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/sqlshift/pkg/ast"
	"github.com/walteh/sqlshift/pkg/rewrite"
	"github.com/walteh/sqlshift/pkg/token"
)

// upperSelect rewrites the SELECT keyword to uppercase.
func upperSelect(stream *token.Stream) *rewrite.Stage {
	stage := rewrite.NewStage("upper-select", stream)
	stage.OnEnter(ast.KindStatement, func(n ast.Node) error {
		if i := stream.FindText(0, "select"); i >= 0 {
			stage.Ledger().ReplaceToken(i, "SELECT")
		}
		return nil
	})
	return stage
}

// alwaysFails refuses every statement.
func alwaysFails(stream *token.Stream) *rewrite.Stage {
	stage := rewrite.NewStage("always-fails", stream)
	stage.OnEnter(ast.KindStatement, func(n ast.Node) error {
		return errors.New("refusing statement")
	})
	return stage
}

func TestRewriteAppliesStagesInOrder(t *testing.T) {
	out := rewrite.Rewrite(context.Background(), "select a from t",
		[]rewrite.StageFactory{upperSelect})
	assert.Equal(t, "SELECT a from t", out)
}

func TestRewriteMalformedInputPassesThrough(t *testing.T) {
	in := "SELECT FROM"
	out, err := rewrite.RewriteChecked(context.Background(), in,
		[]rewrite.StageFactory{upperSelect})
	assert.Equal(t, in, out)
	require.Error(t, err)
}

func TestRewriteFailedStageIsIsolated(t *testing.T) {
	tests := []struct {
		name      string
		factories []rewrite.StageFactory
	}{
		{name: "failure first", factories: []rewrite.StageFactory{alwaysFails, upperSelect}},
		{name: "failure last", factories: []rewrite.StageFactory{upperSelect, alwaysFails}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := rewrite.RewriteChecked(context.Background(), "select a from t", tt.factories)
			assert.Equal(t, "SELECT a from t", out)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "always-fails")
		})
	}
}

func TestRewriteNoStages(t *testing.T) {
	in := "select a from t"
	out, err := rewrite.RewriteChecked(context.Background(), in, nil)
	assert.Equal(t, in, out)
	require.NoError(t, err)
}
