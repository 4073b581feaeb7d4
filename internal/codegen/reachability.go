package codegen

import "github.com/brain-lang/brainc/internal/ast"

// collectReachable computes the set of function names transitively called
// from "main", via a worklist over the call graph (spec §4.3). A function
// never reached from main is dead and skipped by Generate — the only dead
// code elimination this compiler performs.
func collectReachable(prog *ast.Program) map[string]bool {
	bodies := make(map[string]*ast.FunctionDef)
	for _, item := range prog.Items {
		if fd, ok := item.(*ast.FunctionDef); ok {
			bodies[fd.Name] = fd
		}
	}

	reachable := make(map[string]bool)
	queue := []string{"main"}

	for len(queue) > 0 {
		name := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if reachable[name] {
			continue
		}
		reachable[name] = true

		fd, ok := bodies[name]
		if !ok {
			continue
		}
		called := map[string]bool{}
		collectCalls(fd.Body, called)
		for callee := range called {
			if !reachable[callee] {
				queue = append(queue, callee)
			}
		}
	}

	return reachable
}

// collectCalls walks node and every node it contains, recording the name
// of every Call it finds into out (spec §4.3). MethodCall/Reference never
// contribute a name — built-in method dispatch and built-in call names are
// resolved at lowering time, not by this coarse call-graph pass, matching
// the original generator's collect_calls.
func collectCalls(node ast.Node, out map[string]bool) {
	switch n := node.(type) {
	case nil:
		return
	case *ast.Program:
		for _, it := range n.Items {
			collectCalls(it, out)
		}
	case *ast.Block:
		for _, s := range n.Stmts {
			collectCalls(s, out)
		}
	case *ast.FunctionDef:
		collectCalls(n.Body, out)
	case *ast.LetBinding:
		collectCalls(n.Value, out)
	case *ast.Assignment:
		collectCalls(n.Value, out)
	case *ast.ArrayAssignment:
		collectCalls(n.Array, out)
		collectCalls(n.Index, out)
		collectCalls(n.Value, out)
	case *ast.If:
		collectCalls(n.Condition, out)
		collectCalls(n.Then, out)
		collectCalls(n.Else, out)
	case *ast.While:
		collectCalls(n.Condition, out)
		collectCalls(n.Body, out)
	case *ast.For:
		collectCalls(n.Start, out)
		collectCalls(n.End, out)
		collectCalls(n.Body, out)
	case *ast.Return:
		collectCalls(n.Value, out)
	case *ast.BinaryOp:
		collectCalls(n.Left, out)
		collectCalls(n.Right, out)
	case *ast.UnaryOp:
		collectCalls(n.Operand, out)
	case *ast.ExpressionStatement:
		collectCalls(n.Expr, out)
	case *ast.Match:
		collectCalls(n.Value, out)
		for _, arm := range n.Arms {
			collectCalls(arm.Body, out)
		}
	case *ast.ArrayLit:
		for _, e := range n.Elements {
			collectCalls(e, out)
		}
	case *ast.StructInit:
		for _, f := range n.Fields {
			collectCalls(f.Value, out)
		}
	case *ast.Index:
		collectCalls(n.Array, out)
		collectCalls(n.Index, out)
	case *ast.Reference:
		collectCalls(n.Inner, out)
	case *ast.EnumValue:
		collectCalls(n.Value, out)
	case *ast.MethodCall:
		collectCalls(n.Object, out)
		for _, a := range n.Args {
			collectCalls(a, out)
		}
	case *ast.MemberAccess:
		collectCalls(n.Object, out)
	case *ast.Call:
		out[n.Name] = true
		for _, a := range n.Args {
			collectCalls(a, out)
		}
	default:
		// Identifier, Number, Boolean, Character, StringLit, Break,
		// Continue, Import, StructDef, EnumDef: no calls possible.
	}
}
