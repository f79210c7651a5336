package rewrite_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/sqlshift/pkg/ast"
	"github.com/walteh/sqlshift/pkg/grammar"
	"github.com/walteh/sqlshift/pkg/rewrite"
)

func parseTree(t *testing.T, sql string) (*ast.Statement, *rewrite.Stage) {
	t.Helper()
	stream := lex(t, sql)
	tree, err := grammar.Parse(stream)
	require.NoError(t, err)
	return tree, rewrite.NewStage("test", stream)
}

func TestWalkEnterBeforeExit(t *testing.T) {
	tree, stage := parseTree(t, "SELECT a FROM t WHERE a RLIKE 'x' AND 7 % 2 = 1")

	var order []string
	stage.OnEnter(ast.KindPredicate, func(n ast.Node) error {
		order = append(order, "enter-predicate")
		return nil
	})
	stage.OnExit(ast.KindPredicate, func(n ast.Node) error {
		order = append(order, "exit-predicate")
		return nil
	})
	stage.OnEnter(ast.KindArithmeticBinary, func(n ast.Node) error {
		order = append(order, "enter-binary")
		return nil
	})

	require.NoError(t, rewrite.Walk(tree, stage))
	assert.Equal(t, []string{"enter-predicate", "exit-predicate", "enter-binary"}, order)
}

func TestWalkVisitsNestedNodes(t *testing.T) {
	tree, stage := parseTree(t, "SELECT a FROM (SELECT b FROM u WHERE b RLIKE 'x') s WHERE a RLIKE 'y'")

	count := 0
	stage.OnEnter(ast.KindPredicate, func(n ast.Node) error {
		count++
		return nil
	})

	require.NoError(t, rewrite.Walk(tree, stage))
	assert.Equal(t, 2, count)
}

func TestWalkErrorPropagates(t *testing.T) {
	tree, stage := parseTree(t, "SELECT a FROM t WHERE a RLIKE 'x' AND b RLIKE 'y'")

	visited := 0
	stage.OnEnter(ast.KindPredicate, func(n ast.Node) error {
		visited++
		return errors.New("unsupported construct")
	})

	err := rewrite.Walk(tree, stage)
	require.Error(t, err)
	assert.Equal(t, 1, visited, "traversal must stop at the first failing handler")
}

func TestWalkNilRoot(t *testing.T) {
	_, stage := parseTree(t, "SELECT 1")
	require.NoError(t, rewrite.Walk(nil, stage))
}
