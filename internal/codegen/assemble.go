package codegen

import "strings"

// assemble concatenates the finished module: target triple, struct type
// declarations, interned string constants, the runtime prelude, then the
// function bodies g.out accumulated during lowering (spec §4.7).
func (g *Generator) assemble() string {
	var b strings.Builder

	b.WriteString("target triple = \"" + TripleFor(g.target) + "\"\n\n")

	for _, decl := range g.structDecls {
		b.WriteString(decl)
		b.WriteByte('\n')
	}
	if len(g.structDecls) > 0 {
		b.WriteByte('\n')
	}

	preludeText := g.buildPrelude()

	for _, lit := range g.strLits {
		b.WriteString(formatStringConstant(lit))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	b.WriteString(preludeText)
	b.WriteString(g.out.String())

	return b.String()
}
