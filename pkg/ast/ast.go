// Package ast defines the concrete syntax tree produced by pkg/grammar.
//
// Nodes carry inclusive token-index spans into the stream that produced
// them instead of re-rendered text, so the rewrite engine can anchor edits
// to exact token positions and leave every untouched source byte intact.
// Trees are immutable once built and live for the duration of one parse.
package ast

import "github.com/walteh/sqlshift/pkg/token"

// Kind identifies the grammar production a node was built from. Rewrite
// rules are dispatched by kind; KindFragment covers scaffolding the rules
// never inspect.
type Kind int

const (
	KindStatement Kind = iota
	KindFragment
	KindPredicate
	KindArithmeticBinary
	KindFunctionCall
	KindQualifiedName
	KindPrimitiveType
	KindLateralView
	KindQuotedIdentifier
	KindUnquotedIdentifier
	KindQueryOrganization
	KindStringLiteral
)

func (k Kind) String() string {
	switch k {
	case KindStatement:
		return "statement"
	case KindFragment:
		return "fragment"
	case KindPredicate:
		return "predicate"
	case KindArithmeticBinary:
		return "arithmetic-binary"
	case KindFunctionCall:
		return "function-call"
	case KindQualifiedName:
		return "qualified-name"
	case KindPrimitiveType:
		return "primitive-type"
	case KindLateralView:
		return "lateral-view"
	case KindQuotedIdentifier:
		return "quoted-identifier"
	case KindUnquotedIdentifier:
		return "unquoted-identifier"
	case KindQueryOrganization:
		return "query-organization"
	case KindStringLiteral:
		return "string-literal"
	}
	return "unknown"
}

// Span is an inclusive token-index range in the originating stream.
type Span struct {
	Start int
	End   int
}

// Bounds implements Node for every type that embeds Span.
func (s Span) Bounds() Span {
	return s
}

// Node is one node of the concrete syntax tree.
type Node interface {
	Kind() Kind
	Bounds() Span
	Children() []Node
}

// Statement is the root single-statement production.
type Statement struct {
	Span
	Body Node
}

func (s *Statement) Kind() Kind       { return KindStatement }
func (s *Statement) Children() []Node { return []Node{s.Body} }

// Fragment is scaffolding: any production the rewrite rules do not
// inspect. Kids are in source order so traversal stays left-to-right.
type Fragment struct {
	Span
	Kids []Node
}

func (f *Fragment) Kind() Kind       { return KindFragment }
func (f *Fragment) Children() []Node { return f.Kids }

// Predicate is `left [NOT] <op> pattern` where op is a predicate keyword
// such as LIKE, RLIKE or REGEXP. The span covers the left operand too, so
// wrapping the whole predicate is a matter of editing at the span bounds.
// A syntactically separate outer NOT is represented by an enclosing
// Fragment, never by the Not field.
type Predicate struct {
	Span
	Left    Node
	Not     *token.Token
	Op      token.Token
	Pattern Node
}

func (p *Predicate) Kind() Kind       { return KindPredicate }
func (p *Predicate) Children() []Node { return []Node{p.Left, p.Pattern} }

// ArithmeticBinary is `left <op> right` for arithmetic operators.
type ArithmeticBinary struct {
	Span
	Left  Node
	Op    token.Token
	Right Node
}

func (a *ArithmeticBinary) Kind() Kind       { return KindArithmeticBinary }
func (a *ArithmeticBinary) Children() []Node { return []Node{a.Left, a.Right} }

// FunctionCall is `name ( args )`. LParen and RParen are the token indices
// of the parentheses delimiting the argument list.
type FunctionCall struct {
	Span
	Name   *QualifiedName
	LParen int
	RParen int
	Args   []Node
}

func (f *FunctionCall) Kind() Kind { return KindFunctionCall }

func (f *FunctionCall) Children() []Node {
	kids := make([]Node, 0, len(f.Args)+1)
	kids = append(kids, f.Name)
	kids = append(kids, f.Args...)
	return kids
}

// QualifiedName is a dot-separated identifier chain. Parts are the
// identifier nodes; the separating dots are reachable through the span.
type QualifiedName struct {
	Span
	Parts []Node
}

func (q *QualifiedName) Kind() Kind       { return KindQualifiedName }
func (q *QualifiedName) Children() []Node { return q.Parts }

// PrimitiveType is a primitive type name, optionally with length or
// precision parameters covered by the span.
type PrimitiveType struct {
	Span
	Name token.Token
}

func (p *PrimitiveType) Kind() Kind       { return KindPrimitiveType }
func (p *PrimitiveType) Children() []Node { return nil }

// LateralView is the source dialect's table-generating-function clause:
// `LATERAL VIEW [OUTER] udtf(args) tableAlias [AS] col [, col ...]`.
type LateralView struct {
	Span
	Call       *FunctionCall
	TableAlias Node
	As         *token.Token
	ColAliases []Node
}

func (l *LateralView) Kind() Kind { return KindLateralView }

func (l *LateralView) Children() []Node {
	kids := make([]Node, 0, len(l.ColAliases)+2)
	kids = append(kids, l.Call, l.TableAlias)
	kids = append(kids, l.ColAliases...)
	return kids
}

// QuotedIdentifier is a single backtick-quoted identifier token.
type QuotedIdentifier struct {
	Span
	Tok token.Token
}

func (q *QuotedIdentifier) Kind() Kind       { return KindQuotedIdentifier }
func (q *QuotedIdentifier) Children() []Node { return nil }

// UnquotedIdentifier is a single bare identifier token.
type UnquotedIdentifier struct {
	Span
	Tok token.Token
}

func (u *UnquotedIdentifier) Kind() Kind       { return KindUnquotedIdentifier }
func (u *UnquotedIdentifier) Children() []Node { return nil }

// ClausePos locates one clause inside a QueryOrganization: the index of
// the introducing keyword token and the index of the last expression
// token.
type ClausePos struct {
	Keyword int
	End     int
}

// QueryOrganization is the trailing organization of a query: any mix of
// order-by, cluster-by, distribute-by, sort-by and limit clauses.
type QueryOrganization struct {
	Span
	ClusterBy    *ClausePos
	DistributeBy *ClausePos
	Sort         *token.Token
	Kids         []Node
}

func (q *QueryOrganization) Kind() Kind       { return KindQueryOrganization }
func (q *QueryOrganization) Children() []Node { return q.Kids }

// StringLiteral is one or more adjacent string literal segments that the
// source dialect concatenates implicitly.
type StringLiteral struct {
	Span
	Segments []token.Token
}

func (s *StringLiteral) Kind() Kind       { return KindStringLiteral }
func (s *StringLiteral) Children() []Node { return nil }
