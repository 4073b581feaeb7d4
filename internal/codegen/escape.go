package codegen

import "github.com/brain-lang/brainc/internal/ast"

// safeBuiltins are calls whose heap-shaped arguments do not escape: each
// either reads through the pointer without retaining it, or is itself the
// sole place that pointer's lifetime is tracked (spec §4.4).
var safeBuiltins = map[string]bool{
	"print": true, "println": true, "print_int": true, "println_int": true,
	"print_bool": true, "println_bool": true, "print_char": true, "println_char": true,
	"write_file": true, "read_file": true,
	"vec_len": true, "vec_get": true, "vec_push": true, "vec_set": true,
	"int_to_string": true, "len": true,
}

// analyzeEscape returns the set of local names that escape the function
// body: returned, passed by value to a non-safe-builtin call, or otherwise
// observed outliving the stack frame (spec §4.4). Everything not in this
// set is eligible for stack promotion.
func analyzeEscape(params []ast.Parameter, body *ast.Block) map[string]bool {
	escaping := make(map[string]bool)

	// Parameters passed by value with a pointer-shaped surface type always
	// escape: the callee cannot prove the caller won't retain them too.
	for _, p := range params {
		isRef, _, inner := ast.StripRef(p.Type)
		if !p.IsReference && !isRef && isHeapType(inner) {
			escaping[p.Name] = true
		}
	}

	visitEscape(body, escaping)
	return escaping
}

func visitEscape(node ast.Node, escaping map[string]bool) {
	switch n := node.(type) {
	case nil:
		return
	case *ast.Block:
		for _, s := range n.Stmts {
			visitEscape(s, escaping)
		}
	case *ast.Return:
		markEscaping(n.Value, escaping)
		visitEscape(n.Value, escaping)
	case *ast.LetBinding:
		visitEscape(n.Value, escaping)
	case *ast.Assignment:
		visitEscape(n.Value, escaping)
	case *ast.ArrayAssignment:
		visitEscape(n.Array, escaping)
		visitEscape(n.Index, escaping)
		visitEscape(n.Value, escaping)
	case *ast.If:
		visitEscape(n.Condition, escaping)
		visitEscape(n.Then, escaping)
		visitEscape(n.Else, escaping)
	case *ast.While:
		visitEscape(n.Condition, escaping)
		visitEscape(n.Body, escaping)
	case *ast.For:
		visitEscape(n.Start, escaping)
		visitEscape(n.End, escaping)
		visitEscape(n.Body, escaping)
	case *ast.BinaryOp:
		visitEscape(n.Left, escaping)
		visitEscape(n.Right, escaping)
	case *ast.UnaryOp:
		visitEscape(n.Operand, escaping)
	case *ast.Match:
		visitEscape(n.Value, escaping)
		for _, arm := range n.Arms {
			visitEscape(arm.Body, escaping)
		}
	case *ast.ArrayLit:
		for _, e := range n.Elements {
			visitEscape(e, escaping)
		}
	case *ast.StructInit:
		for _, f := range n.Fields {
			visitEscape(f.Value, escaping)
		}
	case *ast.Index:
		visitEscape(n.Array, escaping)
		visitEscape(n.Index, escaping)
	case *ast.Reference:
		// Taking a reference never itself causes the referent to escape;
		// only the call site that ultimately consumes a non-reference
		// argument does (see the Call case below).
		visitEscape(n.Inner, escaping)
	case *ast.MemberAccess:
		visitEscape(n.Object, escaping)
	case *ast.MethodCall:
		visitEscape(n.Object, escaping)
		for _, a := range n.Args {
			visitEscape(a, escaping)
		}
	case *ast.ExpressionStatement:
		visitEscape(n.Expr, escaping)
	case *ast.Call:
		safe := safeBuiltins[n.Name]
		for _, a := range n.Args {
			if _, isRef := a.(*ast.Reference); isRef {
				visitEscape(a, escaping)
				continue
			}
			if !safe {
				markEscaping(a, escaping)
			}
			visitEscape(a, escaping)
		}
	default:
		// Identifier, Number, Boolean, Character, StringLit, Break,
		// Continue, EnumValue, Import, StructDef, EnumDef: leaves.
	}
}

// markEscaping records node's referenced binding(s) as escaping. Only an
// Identifier (directly, or through a Reference wrapper) can escape; every
// other expression shape is either a fresh value with nothing to mark or
// is handled by recursing into visitEscape elsewhere.
func markEscaping(node ast.Node, escaping map[string]bool) {
	switch n := node.(type) {
	case *ast.Identifier:
		escaping[n.Name] = true
	case *ast.Reference:
		markEscaping(n.Inner, escaping)
	}
}

// isHeapType reports whether a Brain surface type denotes a heap-allocated
// value — anything escape analysis and stack promotion must track (spec
// §4.4, §9). string and Vec are heap types; so is every name other than
// the scalar primitives and "array" (struct names, but also fixed-array
// spellings such as "[int; 3]"), since no struct table is consulted here.
func isHeapType(t string) bool {
	switch t {
	case "string", "Vec":
		return true
	case "int", "bool", "char", "void", "array", "":
		return false
	default:
		return true
	}
}
