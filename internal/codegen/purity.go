package codegen

import "github.com/brain-lang/brainc/internal/ast"

// impureBuiltins is the set of built-in call names that disqualify an
// enclosing function from purity regardless of their arguments (spec
// §4.6): I/O, mutation of shared state, or concurrency primitives.
var impureBuiltins = map[string]bool{
	"print": true, "println": true, "print_int": true, "println_int": true,
	"print_bool": true, "println_bool": true, "print_char": true, "println_char": true,
	"read_file": true, "write_file": true,
	"vec_push": true, "vec_set": true,
	"send": true, "recv": true, "spawn": true,
}

// inferPurity records, for every function in prog, whether it qualifies
// for the "nounwind readonly willreturn" attribute (spec §4.6). A
// function is pure when: no parameter is a mutable reference, it contains
// no assignment or impure-builtin call, and (if it takes a string
// parameter) it performs no string concatenation — string `+` always
// allocates, which readonly forbids.
func (g *Generator) inferPurity(prog *ast.Program) {
	for _, item := range prog.Items {
		fd, ok := item.(*ast.FunctionDef)
		if !ok {
			continue
		}
		g.pureFunctions[fd.Name] = isPure(fd.Params, fd.Body)
	}
}

func isPure(params []ast.Parameter, body *ast.Block) bool {
	hasStringParam := false
	for _, p := range params {
		isRef, isMut, inner := ast.StripRef(p.Type)
		if (p.IsReference || isRef) && (p.IsMutable || isMut) {
			return false
		}
		if inner == "string" {
			hasStringParam = true
		}
	}
	if hasStringParam && bodyContainsAdd(body) {
		return false
	}
	return bodyIsPure(body)
}

func bodyContainsAdd(node ast.Node) bool {
	switch n := node.(type) {
	case nil:
		return false
	case *ast.BinaryOp:
		if n.Op == ast.Add {
			return true
		}
		return bodyContainsAdd(n.Left) || bodyContainsAdd(n.Right)
	case *ast.Block:
		for _, s := range n.Stmts {
			if bodyContainsAdd(s) {
				return true
			}
		}
		return false
	case *ast.Program:
		for _, it := range n.Items {
			if bodyContainsAdd(it) {
				return true
			}
		}
		return false
	case *ast.Return:
		return bodyContainsAdd(n.Value)
	case *ast.LetBinding:
		return bodyContainsAdd(n.Value)
	case *ast.If:
		return bodyContainsAdd(n.Condition) || bodyContainsAdd(n.Then) || bodyContainsAdd(n.Else)
	case *ast.While:
		return bodyContainsAdd(n.Condition) || bodyContainsAdd(n.Body)
	case *ast.For:
		return bodyContainsAdd(n.Start) || bodyContainsAdd(n.End) || bodyContainsAdd(n.Body)
	case *ast.Match:
		for _, arm := range n.Arms {
			if bodyContainsAdd(arm.Body) {
				return true
			}
		}
		return bodyContainsAdd(n.Value)
	case *ast.Call:
		for _, a := range n.Args {
			if bodyContainsAdd(a) {
				return true
			}
		}
		return false
	case *ast.ExpressionStatement:
		return bodyContainsAdd(n.Expr)
	default:
		return false
	}
}

// bodyIsPure reports whether node contains no assignment, no array write,
// and no call to an impure builtin (spec §4.6, clarified for array writes
// per SPEC_FULL.md's supplemented purity detail).
func bodyIsPure(node ast.Node) bool {
	switch n := node.(type) {
	case nil:
		return true
	case *ast.Assignment, *ast.ArrayAssignment:
		return false
	case *ast.Call:
		if impureBuiltins[n.Name] {
			return false
		}
		for _, a := range n.Args {
			if !bodyIsPure(a) {
				return false
			}
		}
		return true
	case *ast.Program:
		for _, it := range n.Items {
			if !bodyIsPure(it) {
				return false
			}
		}
		return true
	case *ast.Block:
		for _, s := range n.Stmts {
			if !bodyIsPure(s) {
				return false
			}
		}
		return true
	case *ast.FunctionDef:
		return bodyIsPure(n.Body)
	case *ast.LetBinding:
		return bodyIsPure(n.Value)
	case *ast.If:
		return bodyIsPure(n.Condition) && bodyIsPure(n.Then) && bodyIsPure(n.Else)
	case *ast.While:
		return bodyIsPure(n.Condition) && bodyIsPure(n.Body)
	case *ast.For:
		return bodyIsPure(n.Start) && bodyIsPure(n.End) && bodyIsPure(n.Body)
	case *ast.Return:
		return bodyIsPure(n.Value)
	case *ast.BinaryOp:
		if n.Op == ast.Add {
			if isStringLit(n.Left) || isStringLit(n.Right) {
				return false
			}
		}
		return bodyIsPure(n.Left) && bodyIsPure(n.Right)
	case *ast.UnaryOp:
		return bodyIsPure(n.Operand)
	case *ast.ExpressionStatement:
		return bodyIsPure(n.Expr)
	case *ast.Match:
		if !bodyIsPure(n.Value) {
			return false
		}
		for _, arm := range n.Arms {
			if !bodyIsPure(arm.Body) {
				return false
			}
		}
		return true
	case *ast.ArrayLit:
		for _, e := range n.Elements {
			if !bodyIsPure(e) {
				return false
			}
		}
		return true
	case *ast.StructInit:
		for _, f := range n.Fields {
			if !bodyIsPure(f.Value) {
				return false
			}
		}
		return true
	case *ast.Index:
		return bodyIsPure(n.Array) && bodyIsPure(n.Index)
	case *ast.Reference:
		return bodyIsPure(n.Inner)
	case *ast.EnumValue:
		return bodyIsPure(n.Value)
	case *ast.MethodCall:
		if !bodyIsPure(n.Object) {
			return false
		}
		for _, a := range n.Args {
			if !bodyIsPure(a) {
				return false
			}
		}
		return true
	case *ast.MemberAccess:
		return bodyIsPure(n.Object)
	default:
		// Identifier, Number, Boolean, StringLit, Character, Break,
		// Continue, Import, StructDef, EnumDef: always pure.
		return true
	}
}

func isStringLit(node ast.Node) bool {
	_, ok := node.(*ast.StringLit)
	return ok
}
