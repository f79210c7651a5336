package grammar_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/sqlshift/pkg/grammar"
	"github.com/walteh/sqlshift/pkg/token"
)

// Concatenating every token of the stream, trivia included, must
// reproduce the input exactly. This is the foundation of the engine's
// fidelity contract.
func TestLexRoundTrip(t *testing.T) {
	inputs := []string{
		"SELECT a FROM t",
		"select  a ,\tb\nfrom t -- trailing comment",
		"SELECT /* block\ncomment */ 1 % 2",
		"SELECT 'it''s', \"quoted\" FROM `weird table`",
		"CREATE TABLE t (c STRING, n DECIMAL(10, 2))",
		"SELECT 1var, 2.5, 1e10 FROM 9t",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			stream, err := grammar.Lex(input)
			require.NoError(t, err)

			var b strings.Builder
			for _, tok := range stream.Tokens() {
				b.WriteString(tok.Text)
			}
			assert.Equal(t, input, b.String())
		})
	}
}

func TestLexTypes(t *testing.T) {
	stream, err := grammar.Lex("SELECT `c` FROM t WHERE x RLIKE '.*' -- done")
	require.NoError(t, err)

	byText := map[string]token.Token{}
	for _, tok := range stream.Tokens() {
		byText[tok.Text] = tok
	}

	assert.Equal(t, token.Keyword, byText["SELECT"].Type)
	assert.Equal(t, token.Keyword, byText["RLIKE"].Type)
	assert.Equal(t, token.QuotedIdent, byText["`c`"].Type)
	assert.Equal(t, token.Ident, byText["x"].Type)
	assert.Equal(t, token.String, byText["'.*'"].Type)
	assert.Equal(t, token.Comment, byText["-- done"].Type)
	assert.Equal(t, token.ChannelTrivia, byText["-- done"].Channel)
	assert.Equal(t, token.ChannelTrivia, byText[" "].Channel)
}

func TestLexLeadingDigitIdentifier(t *testing.T) {
	stream, err := grammar.Lex("SELECT 1var")
	require.NoError(t, err)
	tok := stream.Get(2)
	assert.Equal(t, "1var", tok.Text)
	assert.Equal(t, token.Ident, tok.Type)
}

func TestLexEOF(t *testing.T) {
	stream, err := grammar.Lex("")
	require.NoError(t, err)
	require.Equal(t, 1, stream.Size())
	assert.Equal(t, token.EOF, stream.Get(0).Type)
}

func TestLexError(t *testing.T) {
	_, err := grammar.Lex("SELECT $bad")
	require.Error(t, err)
}
