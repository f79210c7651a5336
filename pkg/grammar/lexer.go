// Package grammar provides the lexical and syntax grammar for the source
// SQL dialect: a stateful lexer producing a trivia-preserving token stream
// and a recursive-descent parser producing the concrete syntax tree the
// rewrite engine walks.
package grammar

import (
	"regexp"

	"github.com/alecthomas/participle/v2/lexer"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/sqlshift/pkg/token"
)

// LexerRules defines the lexer rules for the source dialect. Whitespace
// and comments are kept as trivia rather than discarded so the rewritten
// output can reproduce them byte-for-byte. Keyword recognition happens
// after matching, case-insensitively, in Lex.
var LexerRules = lexer.Rules{
	"Root": {
		// Comments: line and block
		{Name: "Comment", Pattern: `--[^\n]*|/\*(?s:.*?)\*/`, Action: nil},
		// Whitespace
		{Name: "Blank", Pattern: `\s+`, Action: nil},
		// String literals; the source dialect quotes strings with ' or "
		{Name: "String", Pattern: `'(?:''|[^'])*'|"(?:""|[^"])*"`, Action: nil},
		// Backtick-quoted identifiers
		{Name: "QuotedIdent", Pattern: "`[^`]*`", Action: nil},
		// Bare identifiers with a leading digit, legal in the source dialect
		{Name: "DigitIdent", Pattern: `\d\w*[A-Za-z_]\w*`, Action: nil},
		{Name: "Number", Pattern: `\d+(?:\.\d+)?(?:[eE][+-]?\d+)?`, Action: nil},
		{Name: "Ident", Pattern: `[A-Za-z_]\w*`, Action: nil},
		{Name: "Operator", Pattern: `<=>|<>|!=|<=|>=|\|\||&&|[-+*/%<>=!~&|^]`, Action: nil},
		{Name: "Punct", Pattern: `[(),.;:\[\]]`, Action: nil},
	},
}

// SQLLexer is the stateful lexer for the source dialect.
var SQLLexer = lexer.MustStateful(LexerRules)

var exponentNumber = regexp.MustCompile(`^\d+(?:\.\d+)?[eE][+-]?\d+$`)

var symbolNames = func() map[lexer.TokenType]string {
	names := make(map[lexer.TokenType]string, len(SQLLexer.Symbols()))
	for name, t := range SQLLexer.Symbols() {
		names[t] = name
	}
	return names
}()

// Lex tokenizes sql into a trivia-preserving token stream terminated by an
// EOF token.
func Lex(sql string) (*token.Stream, error) {
	lx, err := SQLLexer.LexString("", sql)
	if err != nil {
		return nil, errors.Errorf("lexing sql: %w", err)
	}

	var toks []token.Token
	for {
		t, err := lx.Next()
		if err != nil {
			return nil, errors.Errorf("lexing sql: %w", err)
		}
		if t.EOF() {
			toks = append(toks, token.Token{Index: len(toks), Type: token.EOF, Channel: token.ChannelMain})
			return token.NewStream(toks), nil
		}

		tok := token.Token{Index: len(toks), Text: t.Value, Channel: token.ChannelMain}
		switch symbolNames[t.Type] {
		case "Blank":
			tok.Type = token.Blank
			tok.Channel = token.ChannelTrivia
		case "Comment":
			tok.Type = token.Comment
			tok.Channel = token.ChannelTrivia
		case "String":
			tok.Type = token.String
		case "QuotedIdent":
			tok.Type = token.QuotedIdent
		case "Number":
			tok.Type = token.Number
		case "DigitIdent":
			// 1e10 is a number, not an identifier named 1e10
			if exponentNumber.MatchString(t.Value) {
				tok.Type = token.Number
			} else {
				tok.Type = token.Ident
			}
		case "Ident":
			if token.IsKeyword(t.Value) {
				tok.Type = token.Keyword
			} else {
				tok.Type = token.Ident
			}
		case "Operator":
			tok.Type = token.Operator
		default:
			tok.Type = token.Punct
		}
		toks = append(toks, tok)
	}
}
