package grammar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/sqlshift/pkg/ast"
	"github.com/walteh/sqlshift/pkg/grammar"
)

func parse(t *testing.T, sql string) *ast.Statement {
	t.Helper()
	stream, err := grammar.Lex(sql)
	require.NoError(t, err)
	stmt, err := grammar.Parse(stream)
	require.NoError(t, err)
	return stmt
}

// collect returns every node of the given kind, in traversal order.
func collect(root ast.Node, kind ast.Kind) []ast.Node {
	var out []ast.Node
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if n == nil {
			return
		}
		if n.Kind() == kind {
			out = append(out, n)
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(root)
	return out
}

func TestParseValidStatements(t *testing.T) {
	valid := []string{
		"SELECT 1",
		"SELECT a, b AS c FROM t",
		"SELECT * FROM t WHERE a = 1 AND b <> 2",
		"SELECT t.* FROM db.t",
		"SELECT count(*) FROM t GROUP BY a HAVING count(*) > 1",
		"SELECT a FROM t ORDER BY a DESC NULLS LAST LIMIT 10",
		"SELECT a FROM t1 JOIN t2 ON t1.id = t2.id",
		"SELECT a FROM t1 CROSS JOIN t2",
		"SELECT a FROM (SELECT a FROM t) sub",
		"SELECT CASE WHEN a = 1 THEN 'x' ELSE 'y' END FROM t",
		"SELECT CAST(a AS DECIMAL(10, 2)) FROM t",
		"SELECT a FROM t WHERE b IN (1, 2, 3)",
		"SELECT a FROM t WHERE b IN (SELECT b FROM u)",
		"SELECT a FROM t WHERE b BETWEEN 1 AND 10",
		"SELECT a FROM t WHERE b IS NOT NULL",
		"SELECT a FROM t LATERAL VIEW explode(b) t2 AS c, d",
		"SELECT a FROM t DISTRIBUTE BY a SORT BY b",
		"CREATE TABLE t (c STRING, n INT) COMMENT 'demo'",
		"CREATE EXTERNAL TABLE IF NOT EXISTS db.t (c ARRAY<STRING>)",
		"CREATE TABLE t AS SELECT a FROM u",
		"INSERT OVERWRITE TABLE t SELECT a FROM u",
		"INSERT INTO t SELECT a FROM u;",
	}
	for _, sql := range valid {
		t.Run(sql, func(t *testing.T) {
			parse(t, sql)
		})
	}
}

func TestParseInvalidStatements(t *testing.T) {
	invalid := []string{
		"SELECT FROM",
		"SELECT",
		"FROM t",
		"SELECT a FROM t WHERE",
		"SELECT a a b FROM t",
		"CREATE TABLE",
		"SELECT a FROM t; SELECT b FROM u",
	}
	for _, sql := range invalid {
		t.Run(sql, func(t *testing.T) {
			require.Error(t, grammar.Check(sql))
		})
	}
}

func TestParsePredicateShape(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		negated bool
	}{
		{name: "plain rlike", sql: "SELECT a FROM t WHERE a RLIKE '.*'", negated: false},
		{name: "negated regexp", sql: "SELECT a FROM t WHERE a NOT REGEXP 'x'", negated: true},
		{name: "outer not stays outside", sql: "SELECT a FROM t WHERE NOT a RLIKE 'x'", negated: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := parse(t, tt.sql)
			preds := collect(stmt, ast.KindPredicate)
			require.Len(t, preds, 1)
			pred := preds[0].(*ast.Predicate)
			assert.Equal(t, tt.negated, pred.Not != nil)
			assert.Equal(t, pred.Left.Bounds().Start, pred.Bounds().Start,
				"predicate span must include the left operand")
		})
	}
}

func TestParseSpansIndexOriginalStream(t *testing.T) {
	sql := "SELECT /* c */ 7 % 2"
	stream, err := grammar.Lex(sql)
	require.NoError(t, err)
	stmt, err := grammar.Parse(stream)
	require.NoError(t, err)

	bins := collect(stmt, ast.KindArithmeticBinary)
	require.Len(t, bins, 1)
	bin := bins[0].(*ast.ArithmeticBinary)

	assert.Equal(t, "7", stream.Get(bin.Bounds().Start).Text)
	assert.Equal(t, "2", stream.Get(bin.Bounds().End).Text)
	assert.Equal(t, "%", bin.Op.Text)
	assert.Equal(t, "7 % 2", stream.Slice(bin.Bounds().Start, bin.Bounds().End))
}

func TestParseLateralViewShape(t *testing.T) {
	stmt := parse(t, "SELECT a FROM t LATERAL VIEW explode(b) t2 AS c")
	lvs := collect(stmt, ast.KindLateralView)
	require.Len(t, lvs, 1)
	lv := lvs[0].(*ast.LateralView)

	require.NotNil(t, lv.Call)
	require.Len(t, lv.Call.Name.Parts, 1)
	require.NotNil(t, lv.As)
	require.Len(t, lv.ColAliases, 1)
}

func TestParseQueryOrganizationShape(t *testing.T) {
	stmt := parse(t, "SELECT * FROM t CLUSTER BY a")
	orgs := collect(stmt, ast.KindQueryOrganization)
	require.Len(t, orgs, 1)
	org := orgs[0].(*ast.QueryOrganization)
	require.NotNil(t, org.ClusterBy)
	assert.Nil(t, org.DistributeBy)
	assert.Nil(t, org.Sort)

	stmt = parse(t, "SELECT * FROM t SORT BY a")
	org = collect(stmt, ast.KindQueryOrganization)[0].(*ast.QueryOrganization)
	require.NotNil(t, org.Sort)
	assert.Nil(t, org.ClusterBy)
}

func TestParseDottedName(t *testing.T) {
	stmt := parse(t, "SELECT db.schema.fn(a) FROM t")
	calls := collect(stmt, ast.KindFunctionCall)
	require.Len(t, calls, 1)
	assert.Len(t, calls[0].(*ast.FunctionCall).Name.Parts, 3)
}

func TestParseStringSegments(t *testing.T) {
	stmt := parse(t, `SELECT 'a' "b" FROM t`)
	lits := collect(stmt, ast.KindStringLiteral)
	require.Len(t, lits, 1)
	assert.Len(t, lits[0].(*ast.StringLiteral).Segments, 2)
}
