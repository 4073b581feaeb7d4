package frontend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brain-lang/brainc/internal/ast"
)

func TestParseHello(t *testing.T) {
	prog, err := Parse("hello.brn", `fn main() { print("hi"); }`)
	require.NoError(t, err)
	require.Len(t, prog.Items, 1)

	fd, ok := prog.Items[0].(*ast.FunctionDef)
	require.True(t, ok)
	assert.Equal(t, "main", fd.Name)
	assert.Equal(t, "void", fd.ReturnType)
	require.Len(t, fd.Body.Stmts, 1)

	exprStmt, ok := fd.Body.Stmts[0].(*ast.ExpressionStatement)
	require.True(t, ok)
	call, ok := exprStmt.Expr.(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, "print", call.Name)
	require.Len(t, call.Args, 1)
	lit, ok := call.Args[0].(*ast.StringLit)
	require.True(t, ok)
	assert.Equal(t, "hi", lit.Value)
}

func TestParseFibonacci(t *testing.T) {
	src := `
fn fib(n: int) -> int {
    if n < 2 {
        return n;
    } else {
        return fib(n - 1) + fib(n - 2);
    }
}
`
	prog, err := Parse("fib.brn", src)
	require.NoError(t, err)
	require.Len(t, prog.Items, 1)

	fd, ok := prog.Items[0].(*ast.FunctionDef)
	require.True(t, ok)
	assert.Equal(t, "fib", fd.Name)
	require.Len(t, fd.Params, 1)
	assert.Equal(t, "n", fd.Params[0].Name)
	assert.Equal(t, "int", fd.Params[0].Type)
	assert.Equal(t, "int", fd.ReturnType)

	ifStmt, ok := fd.Body.Stmts[0].(*ast.If)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Else)
	elseBlock, ok := ifStmt.Else.(*ast.Block)
	require.True(t, ok)
	ret, ok := elseBlock.Stmts[0].(*ast.Return)
	require.True(t, ok)
	bin, ok := ret.Value.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, ast.Add, bin.Op)
}

func TestParseStructAndEnum(t *testing.T) {
	src := `
struct Point { x: int, y: int }
enum Shape { Circle(int), Origin }
fn main() {
    let p = Point { x: 1, y: 2 };
    let s = Shape::Circle(5);
    match s {
        Shape::Circle(r) => print(r),
        Shape::Origin => print(0),
    }
}
`
	prog, err := Parse("shapes.brn", src)
	require.NoError(t, err)
	require.Len(t, prog.Items, 3)

	sd, ok := prog.Items[0].(*ast.StructDef)
	require.True(t, ok)
	assert.Equal(t, "Point", sd.Name)
	require.Len(t, sd.Fields, 2)

	ed, ok := prog.Items[1].(*ast.EnumDef)
	require.True(t, ok)
	assert.Equal(t, "Shape", ed.Name)
	require.Len(t, ed.Variants, 2)
	assert.Equal(t, "int", ed.Variants[0].PayloadType)

	fd, ok := prog.Items[2].(*ast.FunctionDef)
	require.True(t, ok)
	exprStmt, ok := fd.Body.Stmts[2].(*ast.ExpressionStatement)
	require.True(t, ok)
	matchStmt, ok := exprStmt.Expr.(*ast.Match)
	require.True(t, ok)
	require.Len(t, matchStmt.Arms, 2)
	assert.Equal(t, ast.PatternEnum, matchStmt.Arms[0].Pattern.Kind)
	assert.Equal(t, "Shape", matchStmt.Arms[0].Pattern.Enum)
	assert.Equal(t, "Circle", matchStmt.Arms[0].Pattern.Variant)
	assert.Equal(t, "r", matchStmt.Arms[0].Pattern.Binding)
}

func TestParseForLoopAndArray(t *testing.T) {
	src := `
fn main() {
    let arr: [int; 3] = [1, 2, 3];
    for i in 0..3 {
        arr[i] = arr[i] + 1;
    }
}
`
	prog, err := Parse("loop.brn", src)
	require.NoError(t, err)
	fd := prog.Items[0].(*ast.FunctionDef)
	require.Len(t, fd.Body.Stmts, 2)

	let, ok := fd.Body.Stmts[0].(*ast.LetBinding)
	require.True(t, ok)
	assert.Equal(t, "[int; 3]", let.Type)
	arrLit, ok := let.Value.(*ast.ArrayLit)
	require.True(t, ok)
	assert.Len(t, arrLit.Elements, 3)

	forStmt, ok := fd.Body.Stmts[1].(*ast.For)
	require.True(t, ok)
	assert.Equal(t, "i", forStmt.Var)
	require.NotNil(t, forStmt.Start)
	require.NotNil(t, forStmt.End)

	assign, ok := forStmt.Body.Stmts[0].(*ast.ArrayAssignment)
	require.True(t, ok)
	arrIdent, ok := assign.Array.(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "arr", arrIdent.Name)
}

func TestParseReferenceParameter(t *testing.T) {
	prog, err := Parse("ref.brn", `fn bump(&mut counter: int) { counter = counter + 1; }`)
	require.NoError(t, err)
	fd := prog.Items[0].(*ast.FunctionDef)
	require.Len(t, fd.Params, 1)
	assert.True(t, fd.Params[0].IsReference)
	assert.True(t, fd.Params[0].IsMutable)
	assert.Equal(t, "int", fd.Params[0].Type)
}

func TestParseImport(t *testing.T) {
	prog, err := Parse("main.brn", `import { helper } from "util.brn";`)
	require.NoError(t, err)
	require.Len(t, prog.Items, 1)
	imp, ok := prog.Items[0].(*ast.Import)
	require.True(t, ok)
	assert.Equal(t, "util.brn", imp.Path)
	assert.Equal(t, []string{"helper"}, imp.Names)
}
