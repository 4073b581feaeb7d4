package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brain-lang/brainc/internal/ast"
)

func block(stmts ...ast.Node) *ast.Block {
	return &ast.Block{Stmts: stmts}
}

func mainFn(stmts ...ast.Node) *ast.FunctionDef {
	return &ast.FunctionDef{Name: "main", ReturnType: "void", Body: block(stmts...)}
}

func generate(t *testing.T, items ...ast.Node) string {
	t.Helper()
	g := New(Linux, nil)
	ir, err := g.Generate(&ast.Program{Items: items})
	require.NoError(t, err)
	return ir
}

// fnBody returns the text of the function whose define line starts with
// header, up to its closing brace, so assertions are not satisfied by the
// runtime prelude's own malloc/getelementptr lines.
func fnBody(t *testing.T, ir, header string) string {
	t.Helper()
	start := strings.Index(ir, header)
	require.GreaterOrEqualf(t, start, 0, "no %q in IR", header)
	end := strings.Index(ir[start:], "\n}")
	require.GreaterOrEqual(t, end, 0)
	return ir[start : start+end]
}

// Scenario 1: Hello — spec §8.
func TestHello(t *testing.T) {
	ir := generate(t, mainFn(
		&ast.ExpressionStatement{Expr: &ast.Call{Name: "print", Args: []ast.Node{&ast.StringLit{Value: "hi"}}}},
	))

	assert.Contains(t, ir, `target triple = "x86_64-pc-linux-gnu"`)
	assert.Contains(t, ir, `c"hi\00"`)
	assert.Contains(t, ir, "call i32 @puts(i8*")
	assert.Contains(t, ir, "define i32 @main()")
}

// Identical literal bodies share one interned global constant (spec §3
// invariant), so printing "hi" twice must mint exactly one @.str.N for it.
func TestStringLiteralsAreInternedByContent(t *testing.T) {
	ir := generate(t, mainFn(
		&ast.ExpressionStatement{Expr: &ast.Call{Name: "print", Args: []ast.Node{&ast.StringLit{Value: "hi"}}}},
		&ast.ExpressionStatement{Expr: &ast.Call{Name: "print", Args: []ast.Node{&ast.StringLit{Value: "hi"}}}},
	))
	assert.Equal(t, 1, strings.Count(ir, `c"hi\00"`))
}

// Scenario 2: Fibonacci — recursion, reachability, user-function calls.
func TestFibonacci(t *testing.T) {
	fib := &ast.FunctionDef{
		Name: "fib", Params: []ast.Parameter{{Name: "n", Type: "int"}}, ReturnType: "int",
		Body: block(
			&ast.If{
				Condition: &ast.BinaryOp{Op: ast.Lt, Left: &ast.Identifier{Name: "n"}, Right: &ast.Number{Value: 2}},
				Then:      block(&ast.Return{Value: &ast.Identifier{Name: "n"}}),
				Else: block(&ast.Return{Value: &ast.BinaryOp{
					Op:   ast.Add,
					Left: &ast.Call{Name: "fib", Args: []ast.Node{&ast.BinaryOp{Op: ast.Sub, Left: &ast.Identifier{Name: "n"}, Right: &ast.Number{Value: 1}}}},
					Right: &ast.Call{Name: "fib", Args: []ast.Node{&ast.BinaryOp{Op: ast.Sub, Left: &ast.Identifier{Name: "n"}, Right: &ast.Number{Value: 2}}}},
				}}),
			},
		),
	}
	m := mainFn(
		&ast.ExpressionStatement{Expr: &ast.Call{Name: "print", Args: []ast.Node{&ast.Call{Name: "fib", Args: []ast.Node{&ast.Number{Value: 10}}}}}},
	)

	ir := generate(t, fib, m)
	assert.Contains(t, ir, "define i64 @brn_fib(i64 %arg_n)")
	assert.Contains(t, ir, "call i64 @brn_fib(i64")
}

// Scenario 3: string concat and free, with and without escape-promotion.
func TestStringConcatHeapAllocatesWhenEscaping(t *testing.T) {
	fn := &ast.FunctionDef{
		Name: "join", ReturnType: "string",
		Body: block(
			&ast.LetBinding{Name: "s", Value: &ast.BinaryOp{Op: ast.Add, Left: &ast.StringLit{Value: "a"}, Right: &ast.StringLit{Value: "b"}}},
			&ast.Return{Value: &ast.Identifier{Name: "s"}},
		),
	}
	m := mainFn(&ast.ExpressionStatement{Expr: &ast.Call{Name: "join"}})
	ir := generate(t, fn, m)
	assert.Contains(t, fnBody(t, ir, "define i8* @brn_join("), "call i8* @malloc(i64")
}

func TestStringConcatStackPromotedWhenNonEscaping(t *testing.T) {
	m := mainFn(
		&ast.LetBinding{Name: "s", Value: &ast.BinaryOp{Op: ast.Add, Left: &ast.StringLit{Value: "a"}, Right: &ast.StringLit{Value: "b"}}},
	)
	body := fnBody(t, generate(t, m), "define i32 @main()")
	assert.Contains(t, body, "alloca i8, i64")
	assert.NotContains(t, body, "call i8* @malloc(i64")
}

// Scenario 4: vector operations and header free on block exit.
func TestVector(t *testing.T) {
	m := mainFn(
		&ast.LetBinding{Name: "v", Value: &ast.Call{Name: "vec_new"}},
		&ast.ExpressionStatement{Expr: &ast.Call{Name: "vec_push", Args: []ast.Node{&ast.Identifier{Name: "v"}, &ast.Number{Value: 10}}}},
		&ast.ExpressionStatement{Expr: &ast.Call{Name: "vec_push", Args: []ast.Node{&ast.Identifier{Name: "v"}, &ast.Number{Value: 20}}}},
		&ast.ExpressionStatement{Expr: &ast.Call{
			Name: "print",
			Args: []ast.Node{&ast.Call{Name: "vec_get", Args: []ast.Node{&ast.Identifier{Name: "v"}, &ast.Number{Value: 1}}}},
		}},
	)
	ir := generate(t, m)
	assert.Contains(t, ir, "call i8* @vec_new_impl()")
	assert.Contains(t, ir, "call void @vec_push_impl(i8*")
	assert.Contains(t, ir, "call i64 @vec_get_impl(i8*")
	// vector header free sequence on block exit: free(data) then free(header)
	body := fnBody(t, ir, "define i32 @main()")
	assert.Contains(t, body, "getelementptr i8, i8* ")
	assert.Contains(t, body, "call void @free(i8*")
}

// Scenario 5: enum match dispatches on tag and binds the payload.
func TestEnumMatch(t *testing.T) {
	enumDef := &ast.EnumDef{Name: "E", Variants: []ast.EnumVariant{
		{Name: "A", PayloadType: "int"},
		{Name: "B"},
	}}
	m := mainFn(
		&ast.LetBinding{Name: "e", Value: &ast.EnumValue{Enum: "E", Variant: "A", Value: &ast.Number{Value: 7}}},
		&ast.ExpressionStatement{Expr: &ast.Match{
			Value: &ast.Identifier{Name: "e"},
			Arms: []ast.MatchArm{
				{
					Pattern: ast.Pattern{Kind: ast.PatternEnum, Enum: "E", Variant: "A", Binding: "x"},
					Body:    &ast.ExpressionStatement{Expr: &ast.Call{Name: "print", Args: []ast.Node{&ast.Identifier{Name: "x"}}}},
				},
				{
					Pattern: ast.Pattern{Kind: ast.PatternEnum, Enum: "E", Variant: "B"},
					Body:    &ast.ExpressionStatement{Expr: &ast.Call{Name: "print", Args: []ast.Node{&ast.Number{Value: 0}}}},
				},
			},
		}},
	)
	ir := generate(t, enumDef, m)
	assert.Contains(t, ir, "icmp eq i32")
	assert.Contains(t, ir, "getelementptr { i32, i64 }")
}

// Scenario 6: reachability/DCE — an unreferenced function is never emitted.
func TestUnreachableFunctionEliminated(t *testing.T) {
	unused := &ast.FunctionDef{Name: "unused", ReturnType: "void", Body: block()}
	m := mainFn()
	ir := generate(t, unused, m)
	assert.NotContains(t, ir, "@brn_unused")
}

// Invariant: every %t temp is assigned exactly once within a function. The
// temp counter restarts in each function, so this program has only main.
func TestTemporariesAreSingleAssignment(t *testing.T) {
	m := mainFn(
		&ast.LetBinding{Name: "x", Value: &ast.Number{Value: 1}},
		&ast.LetBinding{Name: "y", Value: &ast.BinaryOp{Op: ast.Add, Left: &ast.Identifier{Name: "x"}, Right: &ast.Number{Value: 2}}},
	)
	ir := generate(t, m)

	seen := map[string]int{}
	for _, line := range strings.Split(ir, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "%t") {
			continue
		}
		name := strings.Fields(trimmed)[0]
		seen[name]++
	}
	for name, count := range seen {
		assert.Equalf(t, 1, count, "temporary %s assigned %d times", name, count)
	}
}

func TestPureFunctionGetsReadonlyAttribute(t *testing.T) {
	fn := &ast.FunctionDef{
		Name: "square", Params: []ast.Parameter{{Name: "n", Type: "int"}}, ReturnType: "int",
		Body: block(&ast.Return{Value: &ast.BinaryOp{Op: ast.Mul, Left: &ast.Identifier{Name: "n"}, Right: &ast.Identifier{Name: "n"}}}),
	}
	m := mainFn(&ast.ExpressionStatement{Expr: &ast.Call{Name: "square", Args: []ast.Node{&ast.Number{Value: 3}}}})
	ir := generate(t, fn, m)
	assert.Contains(t, ir, "nounwind readonly willreturn")
}

func TestImpureFunctionSkipsReadonlyAttribute(t *testing.T) {
	fn := &ast.FunctionDef{
		Name: "shout", Params: []ast.Parameter{{Name: "s", Type: "string"}}, ReturnType: "void",
		Body: block(&ast.ExpressionStatement{Expr: &ast.Call{Name: "print", Args: []ast.Node{&ast.Identifier{Name: "s"}}}}),
	}
	m := mainFn(&ast.ExpressionStatement{Expr: &ast.Call{Name: "shout", Args: []ast.Node{&ast.StringLit{Value: "hi"}}}})
	ir := generate(t, fn, m)
	assert.Contains(t, ir, "define void @brn_shout(i8* noalias readonly %arg_s) nounwind {")
}
