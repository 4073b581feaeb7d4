// Package frontend turns Brain source text into an internal/ast.Program.
// Tokenization is out of scope for the code-generation hard core (spec §1);
// this package exists so the repository compiles and runs a `.brn` file
// end to end rather than only accepting hand-built ASTs.
package frontend

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// brainLexer is the Simple lexer's rule set, tried in declaration order at
// each position — multi-character operators are listed ahead of the
// single-character Punct class so they aren't shadowed by it. Keywords are
// recognized by the parser, not the lexer: they lex as plain Ident tokens.
var brainLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Char", Pattern: `'(\\.|[^'\\])'`},
	{Name: "Number", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Arrow", Pattern: `->`},
	{Name: "PathSep", Pattern: `::`},
	{Name: "DotDot", Pattern: `\.\.`},
	{Name: "Eq", Pattern: `==`},
	{Name: "Ne", Pattern: `!=`},
	{Name: "Le", Pattern: `<=`},
	{Name: "Ge", Pattern: `>=`},
	{Name: "AndAnd", Pattern: `&&`},
	{Name: "OrOr", Pattern: `\|\|`},
	{Name: "FatArrow", Pattern: `=>`},
	{Name: "Punct", Pattern: `[+\-*/%=<>!&.,:;(){}\[\]]`},
})

// tokenNames inverts brainLexer.Symbols() (name -> TokenType) so tokenize
// can recover a token's rule name from the numeric type participle hands
// back on each lexer.Token.
var tokenNames = invertSymbols(brainLexer.Symbols())

func invertSymbols(symbols map[string]lexer.TokenType) map[lexer.TokenType]string {
	out := make(map[lexer.TokenType]string, len(symbols))
	for name, t := range symbols {
		out[t] = name
	}
	return out
}

// rawToken is one lexed unit after comments and whitespace are dropped.
type rawToken struct {
	kind  string
	value string
	pos   lexer.Position
}

// tokenize runs the participle Simple lexer over source and filters it down
// to the tokens the parser cares about (spec §1's tokenization is an
// external collaborator; this is the minimal stand-in for it).
func tokenize(filename, source string) ([]rawToken, error) {
	lex, err := brainLexer.Lex(filename, strings.NewReader(source))
	if err != nil {
		return nil, err
	}
	var out []rawToken
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF() {
			break
		}
		name := tokenNames[tok.Type]
		if name == "Comment" || name == "Whitespace" {
			continue
		}
		out = append(out, rawToken{kind: name, value: tok.Value, pos: tok.Pos})
	}
	return out, nil
}
