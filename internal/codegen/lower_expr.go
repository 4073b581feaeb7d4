package codegen

import (
	"strconv"
	"strings"

	"github.com/brain-lang/brainc/internal/ast"
)

func (g *Generator) lowerBinaryOp(n *ast.BinaryOp) string {
	left := g.lowerNode(n.Left)
	right := g.lowerNode(n.Right)

	switch n.Op {
	case ast.Add:
		if g.inferType(n.Left) == "string" {
			result := g.concatStrings(left, right)
			g.freeIfOwnedStringIdent(n.Right)
			g.freeIfOwnedStringIdent(n.Left)
			return result
		}
		return g.emitBinInst("add i64", left, right)
	case ast.Sub:
		return g.emitBinInst("sub i64", left, right)
	case ast.Mul:
		return g.emitBinInst("mul i64", left, right)
	case ast.Div:
		return g.emitBinInst("sdiv i64", left, right)
	case ast.Rem:
		return g.emitBinInst("srem i64", left, right)
	case ast.Eq:
		if g.inferType(n.Left) == "string" {
			return g.stringCompare(left, right, "eq")
		}
		return g.emitBinInst("icmp eq i64", left, right)
	case ast.Ne:
		if g.inferType(n.Left) == "string" {
			return g.stringCompare(left, right, "ne")
		}
		return g.emitBinInst("icmp ne i64", left, right)
	case ast.Lt:
		return g.emitBinInst("icmp slt i64", left, right)
	case ast.Le:
		return g.emitBinInst("icmp sle i64", left, right)
	case ast.Gt:
		return g.emitBinInst("icmp sgt i64", left, right)
	case ast.Ge:
		return g.emitBinInst("icmp sge i64", left, right)
	case ast.LogAnd:
		return g.emitBinInst("and i1", left, right)
	case ast.LogOr:
		return g.emitBinInst("or i1", left, right)
	default:
		return "0"
	}
}

func (g *Generator) emitBinInst(op, left, right string) string {
	result := g.newTemp()
	g.emit("  " + result + " = " + op + " " + left + ", " + right)
	return result
}

func (g *Generator) stringCompare(left, right, pred string) string {
	cmp := g.newTemp()
	g.emit("  " + cmp + " = call i32 @strcmp(i8* " + left + ", i8* " + right + ")")
	result := g.newTemp()
	g.emit("  " + result + " = icmp " + pred + " i32 " + cmp + ", 0")
	return result
}

// freeIfOwnedStringIdent frees the string a `+` operand identifier owns,
// i.e. a heap-tracked binding; string literals, stack-promoted strings and
// parameters are left alone. String `+` consumes both operands and always
// allocates a fresh result, so neither input survives the expression (spec
// §4.5 "string concatenation"). A freed binding is dropped from block-exit
// cleanup so it is not freed a second time.
func (g *Generator) freeIfOwnedStringIdent(node ast.Node) {
	name, ok := identName(node)
	if !ok {
		return
	}
	b := g.lookup(name)
	if b == nil || !b.isHeap || b.isStringLit {
		return
	}
	loaded := g.newTemp()
	g.emit("  " + loaded + " = load i8*, i8** " + b.llvmName)
	g.emit("  call void @free(i8* " + loaded + ")")
	b.isHeap = false
}

func (g *Generator) lowerUnaryOp(n *ast.UnaryOp) string {
	operand := g.lowerNode(n.Operand)
	result := g.newTemp()
	switch n.Op {
	case ast.Not:
		g.emit("  " + result + " = xor i1 " + operand + ", true")
	case ast.Neg:
		g.emit("  " + result + " = sub i64 0, " + operand)
	}
	return result
}

func (g *Generator) lowerStringLit(n *ast.StringLit) string {
	id := g.internString(n.Value)
	length := len(n.Value) + 1
	ptr := g.newTemp()
	lenStr := strconv.Itoa(length)
	g.emit("  " + ptr + " = getelementptr inbounds [" + lenStr + " x i8], [" + lenStr + " x i8]* @" + id + ", i64 0, i64 0")
	return ptr
}

func (g *Generator) lowerArrayLit(n *ast.ArrayLit) string {
	if len(n.Elements) == 0 {
		return "null"
	}
	size := len(n.Elements)
	sizeStr := strconv.Itoa(size)
	arrType := "[" + sizeStr + " x i64]"
	ptr := g.newTemp()
	g.emit("  " + ptr + " = alloca " + arrType)
	for i, elem := range n.Elements {
		value := g.lowerNode(elem)
		elemPtr := g.newTemp()
		g.emit("  " + elemPtr + " = getelementptr " + arrType + ", " + arrType + "* " + ptr + ", i64 0, i64 " + strconv.Itoa(i))
		g.emit("  store i64 " + value + ", i64* " + elemPtr)
	}
	return ptr
}

func (g *Generator) lowerIndex(n *ast.Index) string {
	indexVal := g.lowerNode(n.Index)

	var arrayPtr string
	arraySize := 100
	if name, ok := identName(n.Array); ok {
		b := g.lookup(name)
		if b == nil {
			g.log.Warnw("array not found", "error", errUnknownIdentifier, "name", name)
			return "0"
		}
		arrayPtr = b.llvmName
		if b.hasArraySize {
			arraySize = b.arraySize
		}
	} else {
		arrayPtr = g.lowerNode(n.Array)
	}

	sizeStr := strconv.Itoa(arraySize)
	elemPtr := g.newTemp()
	result := g.newTemp()
	g.emit("  " + elemPtr + " = getelementptr [" + sizeStr + " x i64], [" + sizeStr + " x i64]* " + arrayPtr + ", i64 0, i64 " + indexVal)
	g.emit("  " + result + " = load i64, i64* " + elemPtr)
	return result
}

func (g *Generator) lowerIdentifier(n *ast.Identifier) string {
	b := g.lookup(n.Name)
	if b == nil {
		g.log.Warnw("variable not found in current scope", "error", errUnknownIdentifier, "name", n.Name)
		return "0"
	}
	llvmType := g.typeToLLVM(b.varType)
	result := g.newTemp()
	g.emit("  " + result + " = load " + llvmType + ", " + llvmType + "* " + b.llvmName)
	return result
}

func (g *Generator) lowerReference(n *ast.Reference) string {
	name, ok := identName(n.Inner)
	if !ok {
		return g.lowerNode(n.Inner)
	}
	b := g.lookup(name)
	if b == nil {
		g.log.Warnw("variable not found for reference", "error", errUnknownIdentifier, "name", name)
		return "null"
	}
	if strings.HasPrefix(b.varType, "[") || b.varType == "array" || b.hasArraySize {
		return b.llvmName
	}
	llvmType := g.typeToLLVM(b.varType)
	result := g.newTemp()
	g.emit("  " + result + " = load " + llvmType + ", " + llvmType + "* " + b.llvmName)
	return result
}

// concatStrings implements `+` for strings: malloc (or, when the binding
// was proven non-escaping, a variable-length alloca) big enough for both
// operands plus a NUL, then two strcpy calls (spec §4.5, §9 "stack
// promotion").
func (g *Generator) concatStrings(left, right string) string {
	useStack := g.currentBinding != "" && g.nonEscaping[g.currentBinding]

	len1 := g.newTemp()
	len2 := g.newTemp()
	g.emit("  " + len1 + " = call i64 @strlen(i8* " + left + ")")
	g.emit("  " + len2 + " = call i64 @strlen(i8* " + right + ")")

	total := g.newTemp()
	totalPlusOne := g.newTemp()
	g.emit("  " + total + " = add i64 " + len1 + ", " + len2)
	g.emit("  " + totalPlusOne + " = add i64 " + total + ", 1")

	newPtr := g.newTemp()
	if useStack {
		g.emit("  " + newPtr + " = alloca i8, i64 " + totalPlusOne)
	} else {
		g.emit("  " + newPtr + " = call i8* @malloc(i64 " + totalPlusOne + ")")
	}

	temp1 := g.newTemp()
	g.emit("  " + temp1 + " = call i8* @strcpy(i8* " + newPtr + ", i8* " + left + ")")

	offsetPtr := g.newTemp()
	g.emit("  " + offsetPtr + " = getelementptr i8, i8* " + newPtr + ", i64 " + len1)

	temp2 := g.newTemp()
	g.emit("  " + temp2 + " = call i8* @strcpy(i8* " + offsetPtr + ", i8* " + right + ")")

	return newPtr
}
