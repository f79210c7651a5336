// Package presto rewrites Hive SQL into the equivalent Presto SQL.
//
// Each rule is a localized, self-contained transformation keyed to a node
// kind: it reads the node it is given plus the raw token stream, and
// records token-anchored edits in the stage ledger. Source text not
// touched by a rule (whitespace, comments, casing, token order)
// survives byte-for-byte.
package presto

import (
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/sqlshift/pkg/ast"
	"github.com/walteh/sqlshift/pkg/rewrite"
	"github.com/walteh/sqlshift/pkg/token"
)

// Stage builds the Hive-to-Presto rule set bound to stream.
func Stage(stream *token.Stream) *rewrite.Stage {
	st := rewrite.NewStage("presto", stream)
	led := st.Ledger()

	st.OnEnter(ast.KindPredicate, func(n ast.Node) error {
		return rewriteRegexPredicate(led, n.(*ast.Predicate))
	})
	st.OnEnter(ast.KindArithmeticBinary, func(n ast.Node) error {
		return rewriteModulo(led, n.(*ast.ArithmeticBinary))
	})
	st.OnEnter(ast.KindFunctionCall, func(n ast.Node) error {
		return rewriteArrayConstructor(led, stream, n.(*ast.FunctionCall))
	})
	st.OnEnter(ast.KindPrimitiveType, func(n ast.Node) error {
		return rewriteStringType(led, n.(*ast.PrimitiveType))
	})
	st.OnEnter(ast.KindLateralView, func(n ast.Node) error {
		return rewriteLateralView(led, stream, n.(*ast.LateralView))
	})
	st.OnEnter(ast.KindQuotedIdentifier, func(n ast.Node) error {
		return rewriteQuotedIdentifier(led, n.(*ast.QuotedIdentifier))
	})
	st.OnEnter(ast.KindUnquotedIdentifier, func(n ast.Node) error {
		return rewriteLeadingDigitIdentifier(led, n.(*ast.UnquotedIdentifier))
	})
	st.OnExit(ast.KindQueryOrganization, func(n ast.Node) error {
		return rewriteQueryOrganization(led, stream, n.(*ast.QueryOrganization))
	})
	st.OnExit(ast.KindFunctionCall, func(n ast.Node) error {
		return rewriteDottedFunctionName(led, stream, n.(*ast.FunctionCall))
	})
	st.OnExit(ast.KindStringLiteral, func(n ast.Node) error {
		return rewriteDoubleQuotedString(led, n.(*ast.StringLiteral))
	})

	return st
}

// Hive supports the regexp and rlike operators, Presto does not:
//
//	col rlike '.*'     => regexp_like(col, '.*')
//	col not rlike '.*' => not regexp_like(col, '.*')
//
// The negated form hoists a fresh `not` in front of the call; an outer,
// syntactically separate NOT is a different node and is left alone.
func rewriteRegexPredicate(led *rewrite.Ledger, p *ast.Predicate) error {
	if !p.Op.Match("RLIKE") && !p.Op.Match("REGEXP") {
		return nil
	}
	span := p.Bounds()
	if p.Not != nil {
		led.InsertBefore(span.Start, "not ")
		led.DeleteToken(p.Not.Index)
	}
	led.InsertBefore(span.Start, "regexp_like(")
	led.InsertAfter(p.Left.Bounds().End, ",")
	led.DeleteToken(p.Op.Index)
	led.InsertAfter(span.End, ")")
	return nil
}

// Hive supports the % operator, Presto does not:
//
//	a % b => mod(a, b)
func rewriteModulo(led *rewrite.Ledger, b *ast.ArithmeticBinary) error {
	if b.Op.Text != "%" {
		return nil
	}
	span := b.Bounds()
	led.InsertBefore(span.Start, "mod(")
	led.DeleteToken(b.Op.Index)
	led.InsertAfter(b.Left.Bounds().End, ",")
	led.InsertAfter(span.End, ")")
	return nil
}

// Hive's array constructor becomes a Presto array literal:
//
//	array(1, 2, 3) => [1, 2, 3]
//
// The opening parenthesis is located by token search from the call's
// start rather than by child position, so trivia between the name and the
// parenthesis does not break the rule. The argument list is untouched.
func rewriteArrayConstructor(led *rewrite.Ledger, stream *token.Stream, call *ast.FunctionCall) error {
	if len(call.Name.Parts) != 1 || !strings.EqualFold(identText(call.Name.Parts[0]), "ARRAY") {
		return nil
	}
	span := call.Bounds()
	lp := stream.FindText(span.Start, "(")
	if lp < 0 || lp > call.RParen {
		return nil
	}
	led.Replace(span.Start, lp, "[")
	led.ReplaceToken(call.RParen, "]")
	return nil
}

// Hive's variable-length string type is string, Presto's is varchar.
func rewriteStringType(led *rewrite.Ledger, t *ast.PrimitiveType) error {
	if !t.Name.Match("STRING") {
		return nil
	}
	led.ReplaceToken(t.Name.Index, "varchar")
	return nil
}

// Hive and Presto expand table-generating functions differently:
//
//	Hive:   LATERAL VIEW explode(scores) t AS score
//	Presto: cross join unnest(scores) as t (score)
//
// Only the explode UDTF has an unnest equivalent; anything else is a
// fatal precondition failure for the stage.
func rewriteLateralView(led *rewrite.Ledger, stream *token.Stream, lv *ast.LateralView) error {
	name := qualifiedText(lv.Call.Name)
	if !strings.EqualFold(name, "EXPLODE") {
		return errors.Errorf("lateral view only supports the explode udtf, got %q", name)
	}

	span := lv.Bounds()
	fnIdx := stream.FindText(span.Start, "explode")
	if fnIdx < 0 {
		return errors.Errorf("explode token not found in lateral view clause")
	}
	led.Replace(span.Start, fnIdx, "cross join unnest")
	led.InsertAfter(lv.Call.RParen, " as")

	if lv.As != nil {
		led.DeleteToken(lv.As.Index)
	}
	if len(lv.ColAliases) > 0 {
		first := lv.ColAliases[0].Bounds().Start
		last := lv.ColAliases[len(lv.ColAliases)-1].Bounds().End
		led.InsertBefore(first, "(")
		led.InsertAfter(last, ")")
	}
	return nil
}

// Hive quotes identifiers with backticks, Presto with double quotes:
//
//	`col` => "col"
func rewriteQuotedIdentifier(led *rewrite.Ledger, q *ast.QuotedIdentifier) error {
	text := q.Tok.Text
	if len(text) < 2 || text[0] != '`' {
		return nil
	}
	led.ReplaceToken(q.Tok.Index, `"`+text[1:len(text)-1]+`"`)
	return nil
}

// Hive identifiers may start with a digit, Presto's may not:
//
//	1var => "1var"
func rewriteLeadingDigitIdentifier(led *rewrite.Ledger, u *ast.UnquotedIdentifier) error {
	text := u.Tok.Text
	if len(text) == 0 || text[0] < '0' || text[0] > '9' {
		return nil
	}
	led.ReplaceToken(u.Tok.Index, `"`+text+`"`)
	return nil
}

// Hive supports cluster-by, distribute-by and sort-by, Presto does not:
// the first two are dropped entirely and sort by becomes order by.
func rewriteQueryOrganization(led *rewrite.Ledger, stream *token.Stream, qo *ast.QueryOrganization) error {
	if qo.ClusterBy != nil {
		deleteClause(led, stream, qo.ClusterBy)
	}
	if qo.DistributeBy != nil {
		deleteClause(led, stream, qo.DistributeBy)
	}
	if qo.Sort != nil {
		led.ReplaceToken(qo.Sort.Index, "order")
	}
	return nil
}

// deleteClause removes a whole clause span plus exactly one adjacent
// blank, so no double space and no trailing space is left behind. The
// ledger already absorbs a blank following a deleted range; the clause's
// leading blank is only folded in when no trailing one exists, as for a
// clause at the end of the statement.
func deleteClause(led *rewrite.Ledger, stream *token.Stream, c *ast.ClausePos) {
	start := c.Keyword
	if !stream.Get(c.End+1).IsBlank() && start > 0 && stream.Get(start-1).IsBlank() {
		start--
	}
	led.Delete(start, c.End)
}

// Presto requires dotted function names to be quoted in call position:
//
//	db.schema.fn(x) => "db.schema.fn"(x)
//
// Runs post-order so calls nested in the arguments are rewritten first.
func rewriteDottedFunctionName(led *rewrite.Ledger, stream *token.Stream, call *ast.FunctionCall) error {
	if len(call.Name.Parts) <= 1 {
		return nil
	}
	span := call.Name.Bounds()
	led.Replace(span.Start, span.End, `"`+stream.Slice(span.Start, span.End)+`"`)
	return nil
}

// Hive accepts double-quoted string literals, Presto only single-quoted:
//
//	"lit" => 'lit'
//
// Interior content is preserved verbatim; only the quote characters of
// each double-quoted segment change.
func rewriteDoubleQuotedString(led *rewrite.Ledger, s *ast.StringLiteral) error {
	for _, seg := range s.Segments {
		if len(seg.Text) >= 2 && seg.Text[0] == '"' {
			led.ReplaceToken(seg.Index, "'"+seg.Text[1:len(seg.Text)-1]+"'")
		}
	}
	return nil
}

func identText(n ast.Node) string {
	switch v := n.(type) {
	case *ast.UnquotedIdentifier:
		return v.Tok.Text
	case *ast.QuotedIdentifier:
		return strings.Trim(v.Tok.Text, "`")
	}
	return ""
}

func qualifiedText(q *ast.QualifiedName) string {
	parts := make([]string, 0, len(q.Parts))
	for _, p := range q.Parts {
		parts = append(parts, identText(p))
	}
	return strings.Join(parts, ".")
}
