// Package token defines the lexical token model shared by the lexer, the
// parser and the rewrite engine: an immutable token with a stable index in
// its stream, and a read-only stream over one lex run.
package token

import "strings"

// Type is the coarse lexical category of a token.
type Type int

const (
	EOF Type = iota
	Keyword
	Ident
	QuotedIdent
	Number
	String
	Operator
	Punct
	Blank
	Comment
)

func (t Type) String() string {
	switch t {
	case EOF:
		return "eof"
	case Keyword:
		return "keyword"
	case Ident:
		return "ident"
	case QuotedIdent:
		return "quoted-ident"
	case Number:
		return "number"
	case String:
		return "string"
	case Operator:
		return "operator"
	case Punct:
		return "punct"
	case Blank:
		return "blank"
	case Comment:
		return "comment"
	}
	return "unknown"
}

// Channel separates main-content tokens from trivia such as whitespace and
// comments. Trivia is preserved in the stream so rewrites can replay it
// byte-for-byte, but the parser never consumes it.
type Channel int

const (
	ChannelMain Channel = iota
	ChannelTrivia
)

// Token is one lexical unit of the source text. Tokens are created once at
// lex time and never mutated. Index is the token's position in its stream
// and is only meaningful for the lifetime of the parse that produced it.
type Token struct {
	Index   int
	Text    string
	Type    Type
	Channel Channel
}

// IsBlank reports whether the token is trivia consisting solely of
// whitespace.
func (t Token) IsBlank() bool {
	return t.Channel == ChannelTrivia && t.Text != "" && strings.TrimSpace(t.Text) == ""
}

// Match reports whether the token's text equals s ignoring case.
func (t Token) Match(s string) bool {
	return strings.EqualFold(t.Text, s)
}

// Stream is a read-only view over the lexical output of one lex run. The
// final token is always EOF.
type Stream struct {
	tokens []Token
}

func NewStream(tokens []Token) *Stream {
	return &Stream{tokens: tokens}
}

func (s *Stream) Size() int {
	return len(s.tokens)
}

func (s *Stream) Get(i int) Token {
	return s.tokens[i]
}

// Tokens returns the backing slice. Callers must not modify it.
func (s *Stream) Tokens() []Token {
	return s.tokens
}

// FindText returns the index of the first token at or after start whose
// text equals text ignoring case, or -1 if there is none.
func (s *Stream) FindText(start int, text string) int {
	for i := start; i < len(s.tokens); i++ {
		if strings.EqualFold(s.tokens[i].Text, text) {
			return i
		}
	}
	return -1
}

// Slice returns the verbatim source text covered by tokens [start, end],
// trivia included.
func (s *Stream) Slice(start, end int) string {
	var b strings.Builder
	for i := start; i <= end && i < len(s.tokens); i++ {
		b.WriteString(s.tokens[i].Text)
	}
	return b.String()
}

var keywords = map[string]struct{}{
	"SELECT": {}, "FROM": {}, "WHERE": {}, "GROUP": {}, "BY": {},
	"HAVING": {}, "ORDER": {}, "SORT": {}, "CLUSTER": {}, "DISTRIBUTE": {},
	"LIMIT": {}, "AS": {}, "NOT": {}, "AND": {}, "OR": {}, "IN": {},
	"IS": {}, "NULL": {}, "BETWEEN": {}, "LIKE": {}, "RLIKE": {},
	"REGEXP": {}, "EXISTS": {}, "CREATE": {}, "TABLE": {}, "EXTERNAL": {},
	"IF": {}, "CAST": {}, "LATERAL": {}, "VIEW": {}, "OUTER": {},
	"JOIN": {}, "CROSS": {}, "INNER": {}, "LEFT": {}, "RIGHT": {},
	"FULL": {}, "SEMI": {}, "ON": {}, "UNION": {}, "ALL": {},
	"DISTINCT": {}, "TRUE": {}, "FALSE": {}, "ARRAY": {}, "MAP": {},
	"STRUCT": {}, "STRING": {}, "VARCHAR": {}, "CHAR": {}, "INT": {},
	"INTEGER": {}, "BIGINT": {}, "SMALLINT": {}, "TINYINT": {},
	"DOUBLE": {}, "FLOAT": {}, "DECIMAL": {}, "BOOLEAN": {}, "DATE": {},
	"TIMESTAMP": {}, "BINARY": {}, "INSERT": {}, "INTO": {}, "VALUES": {},
	"OVERWRITE": {}, "PARTITION": {}, "ASC": {}, "DESC": {}, "NULLS": {},
	"FIRST": {}, "LAST": {}, "CASE": {}, "WHEN": {}, "THEN": {},
	"ELSE": {}, "END": {}, "COMMENT": {}, "STORED": {}, "LOCATION": {},
}

// IsKeyword reports whether s is a keyword of the source dialect, ignoring
// case.
func IsKeyword(s string) bool {
	_, ok := keywords[strings.ToUpper(s)]
	return ok
}
