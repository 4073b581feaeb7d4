package codegen

import (
	"strconv"

	"github.com/brain-lang/brainc/internal/ast"
)

// lowerMatch lowers a match expression to a chain of compare-and-branch
// tests, arms tried in source order, first match wins (spec §4.5). An
// enum-pattern match reads the shared { i32, i64 } tag once up front;
// a value-pattern match (int/string literals, wildcard/identifier)
// compares the scrutinee directly against each arm.
func (g *Generator) lowerMatch(n *ast.Match) string {
	valueReg := g.lowerNode(n.Value)
	endLabel := g.newLabel("match_end")

	isEnumMatch := false
	for _, arm := range n.Arms {
		if arm.Pattern.Kind == ast.PatternEnum {
			isEnumMatch = true
			break
		}
	}

	if isEnumMatch {
		g.lowerEnumMatch(n, valueReg, endLabel)
	} else {
		g.lowerValueMatch(n, valueReg, endLabel)
	}

	g.emitAlways(endLabel + ":")
	g.blockTerminated = false
	return "0"
}

func (g *Generator) lowerEnumMatch(n *ast.Match, valueReg, endLabel string) {
	tagPtr := g.newTemp()
	g.emit("  " + tagPtr + " = getelementptr { i32, i64 }, { i32, i64 }* " + valueReg + ", i32 0, i32 0")
	tag := g.newTemp()
	g.emit("  " + tag + " = load i32, i32* " + tagPtr)

	for i, arm := range n.Arms {
		armLabel := g.newLabel("match_arm_" + strconv.Itoa(i))
		nextLabel := endLabel
		if i < len(n.Arms)-1 {
			nextLabel = g.newLabel("match_check_" + strconv.Itoa(i+1))
		}

		switch arm.Pattern.Kind {
		case ast.PatternEnum:
			variantTag := i
			if variants, ok := g.enumVariants[arm.Pattern.Enum]; ok {
				for vi, v := range variants {
					if v == arm.Pattern.Variant {
						variantTag = vi
						break
					}
				}
			}

			cond := g.newTemp()
			g.emit("  " + cond + " = icmp eq i32 " + tag + ", " + strconv.Itoa(variantTag))
			g.emit("  br i1 " + cond + ", label %" + armLabel + ", label %" + nextLabel)
			g.emitAlways(armLabel + ":")

			if arm.Pattern.Binding != "" {
				valPtr := g.newTemp()
				g.emit("  " + valPtr + " = getelementptr { i32, i64 }, { i32, i64 }* " + valueReg + ", i32 0, i32 1")
				val := g.newTemp()
				g.emit("  " + val + " = load i64, i64* " + valPtr)
				varPtr := g.newTemp()
				g.emit("  " + varPtr + " = alloca i64")
				g.emit("  store i64 " + val + ", i64* " + varPtr)
				g.bind(arm.Pattern.Binding, &binding{llvmName: varPtr, varType: "int"})
			}

			g.blockTerminated = false
			g.lowerNode(arm.Body)
			if !g.blockTerminated {
				g.emit("  br label %" + endLabel)
			}
		case ast.PatternWildcard, ast.PatternIdent:
			g.emit("  br label %" + armLabel)
			g.emitAlways(armLabel + ":")
			g.blockTerminated = false
			g.lowerNode(arm.Body)
			if !g.blockTerminated {
				g.emit("  br label %" + endLabel)
			}
		}

		if i < len(n.Arms)-1 {
			g.emitAlways(nextLabel + ":")
		}
	}
}

func (g *Generator) lowerValueMatch(n *ast.Match, valueReg, endLabel string) {
	for i, arm := range n.Arms {
		armLabel := g.newLabel("match_arm_" + strconv.Itoa(i))
		nextLabel := endLabel
		if i < len(n.Arms)-1 {
			nextLabel = g.newLabel("match_check_" + strconv.Itoa(i+1))
		}

		switch arm.Pattern.Kind {
		case ast.PatternInt:
			cond := g.newTemp()
			g.emit("  " + cond + " = icmp eq i64 " + valueReg + ", " + strconv.FormatInt(arm.Pattern.Int, 10))
			g.emit("  br i1 " + cond + ", label %" + armLabel + ", label %" + nextLabel)
			g.emitAlways(armLabel + ":")
			g.blockTerminated = false
			g.lowerNode(arm.Body)
			if !g.blockTerminated {
				g.emit("  br label %" + endLabel)
			}
		case ast.PatternString:
			id := g.internString(arm.Pattern.Str)
			strLen := len(arm.Pattern.Str) + 1
			lenStr := strconv.Itoa(strLen)
			strPtr := g.newTemp()
			g.emit("  " + strPtr + " = getelementptr inbounds [" + lenStr + " x i8], [" + lenStr + " x i8]* @" + id + ", i64 0, i64 0")
			cmpResult := g.newTemp()
			g.emit("  " + cmpResult + " = call i32 @strcmp(i8* " + valueReg + ", i8* " + strPtr + ")")
			cond := g.newTemp()
			g.emit("  " + cond + " = icmp eq i32 " + cmpResult + ", 0")
			g.emit("  br i1 " + cond + ", label %" + armLabel + ", label %" + nextLabel)
			g.emitAlways(armLabel + ":")
			g.blockTerminated = false
			g.lowerNode(arm.Body)
			if !g.blockTerminated {
				g.emit("  br label %" + endLabel)
			}
		case ast.PatternWildcard, ast.PatternIdent:
			g.emit("  br label %" + armLabel)
			g.emitAlways(armLabel + ":")
			g.blockTerminated = false
			g.lowerNode(arm.Body)
			if !g.blockTerminated {
				g.emit("  br label %" + endLabel)
			}
		}

		if i < len(n.Arms)-1 {
			g.emitAlways(nextLabel + ":")
		}
	}
}
