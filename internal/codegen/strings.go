package codegen

import (
	"fmt"
	"strconv"

	"github.com/llir/llvm/ir/constant"
)

// internString registers value as a global string constant and returns its
// identifier (without the leading '@'). Identical literal bodies share one
// constant: a repeat occurrence returns the id already minted for it
// instead of emitting a duplicate global (spec §3 invariant — string
// literals are interned by content).
func (g *Generator) internString(value string) string {
	if id, ok := g.internedIDs[value]; ok {
		return id
	}
	id := ".str." + strconv.Itoa(g.strCounter)
	g.strCounter++
	g.strLits = append(g.strLits, internedString{id: id, value: value})
	g.internedIDs[value] = id
	return id
}

// formatStringConstant renders one interned string as its global constant
// declaration line, escaping bytes per spec §4.7: \n, \r, \t, backslash
// and quote get their explicit two-hex-digit form, printable ASCII prints
// verbatim, everything else is \XX. constant.NewCharArrayFromString
// already implements exactly this rule, so it is used here instead of a
// hand-rolled escaper (a direct library win over the original's manual
// escape_string).
func formatStringConstant(s internedString) string {
	arr := constant.NewCharArrayFromString(s.value + "\x00")
	return fmt.Sprintf("@%s = private unnamed_addr constant %s %s", s.id, arr.Type().String(), arr.String())
}
