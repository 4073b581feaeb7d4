package codegen

import (
	"strconv"

	"github.com/brain-lang/brainc/internal/ast"
)

// lowerBlock lowers a statement sequence and, on a non-terminating exit,
// frees every heap-tracked binding the block itself introduced (spec
// §4.5 "block cleanup"). A block exited via return/break/continue skips
// this cleanup entirely — the documented, accepted leak of spec §9 and
// SPEC_FULL.md's Open Question decision.
func (g *Generator) lowerBlock(b *ast.Block) string {
	before := g.snapshotVars()

	var last string
	for _, stmt := range b.Stmts {
		last = g.lowerNode(stmt)
	}

	if !g.blockTerminated {
		for name, bind := range g.vars {
			if _, existed := before[name]; existed {
				continue
			}
			if !bind.isHeap || bind.isStringLit {
				continue
			}
			g.freeBinding(bind)
		}
	}

	return last
}

// freeBinding emits the free sequence appropriate to a binding's surface
// type: a struct pointer, a Vec header (which owns a second, nested
// allocation for its data buffer), or a plain owned pointer (string).
func (g *Generator) freeBinding(b *binding) {
	switch {
	case g.reg.IsStruct(b.varType):
		structPtr := g.newTemp()
		g.emit("  " + structPtr + " = load %" + b.varType + "*, %" + b.varType + "** " + b.llvmName)
		i8ptr := g.newTemp()
		g.emit("  " + i8ptr + " = bitcast %" + b.varType + "* " + structPtr + " to i8*")
		g.emit("  call void @free(i8* " + i8ptr + ")")
	case b.varType == "Vec":
		ptrReg := g.newTemp()
		g.emit("  " + ptrReg + " = load i8*, i8** " + b.llvmName)
		dpRaw := g.newTemp()
		g.emit("  " + dpRaw + " = getelementptr i8, i8* " + ptrReg + ", i64 16")
		dp := g.newTemp()
		g.emit("  " + dp + " = bitcast i8* " + dpRaw + " to i8**")
		data := g.newTemp()
		g.emit("  " + data + " = load i8*, i8** " + dp)
		g.emit("  call void @free(i8* " + data + ")")
		g.emit("  call void @free(i8* " + ptrReg + ")")
	default:
		ptrReg := g.newTemp()
		g.emit("  " + ptrReg + " = load i8*, i8** " + b.llvmName)
		g.emit("  call void @free(i8* " + ptrReg + ")")
	}
}

// lowerLetBinding lowers the bound value, then records its binding
// metadata: whether it is a fixed array (whose slot IS the alloca'd
// pointer, with no extra indirection), and otherwise whether it is
// heap-tracked (a non-string-literal string, a Vec, or a struct) and not
// already stack-promoted by escape analysis (spec §4.4, §4.5).
func (g *Generator) lowerLetBinding(lb *ast.LetBinding) string {
	g.currentBinding = lb.Name
	valueReg := g.lowerNode(lb.Value)
	g.currentBinding = ""

	varType := g.inferType(lb.Value)
	_, isStringLit := lb.Value.(*ast.StringLit)
	isStruct := g.reg.IsStruct(varType)
	// Only struct initializers and string concatenations are stack-promoted
	// (lowerStructInit, concatStrings); any other heap value was allocated
	// by the runtime and stays heap-tracked even when it does not escape.
	_, isStructInit := lb.Value.(*ast.StructInit)
	bin, isBin := lb.Value.(*ast.BinaryOp)
	isConcat := isBin && bin.Op == ast.Add && varType == "string"
	stackPromote := g.nonEscaping[lb.Name] && (isStructInit || isConcat)

	isHeap := !stackPromote && ((varType == "string" && !isStringLit) || varType == "Vec" || isStruct)

	if arr, ok := lb.Value.(*ast.ArrayLit); ok {
		g.bind(lb.Name, &binding{
			llvmName:     valueReg,
			varType:      varType,
			arraySize:    len(arr.Elements),
			hasArraySize: true,
		})
		return valueReg
	}

	llvmType := g.typeToLLVM(varType)
	ptr := g.newTemp()
	g.emit("  " + ptr + " = alloca " + llvmType)
	g.emit("  store " + llvmType + " " + valueReg + ", " + llvmType + "* " + ptr)

	g.bind(lb.Name, &binding{
		llvmName:    ptr,
		varType:     varType,
		isHeap:      isHeap,
		isStringLit: isStringLit,
	})
	return ptr
}

func (g *Generator) lowerAssignment(a *ast.Assignment) string {
	valueReg := g.lowerNode(a.Value)
	if b := g.lookup(a.Name); b != nil {
		llvmType := g.typeToLLVM(b.varType)
		g.emit("  store " + llvmType + " " + valueReg + ", " + llvmType + "* " + b.llvmName)
	}
	return valueReg
}

func (g *Generator) lowerArrayAssignment(a *ast.ArrayAssignment) string {
	indexVal := g.lowerNode(a.Index)
	valueReg := g.lowerNode(a.Value)

	name, ok := identName(a.Array)
	if !ok {
		return valueReg
	}
	b := g.lookup(name)
	if b == nil {
		return valueReg
	}
	size := 100
	if b.hasArraySize {
		size = b.arraySize
	}
	elemPtr := g.newTemp()
	sizeStr := strconv.Itoa(size)
	g.emit("  " + elemPtr + " = getelementptr [" + sizeStr + " x i64], [" + sizeStr + " x i64]* " + b.llvmName + ", i64 0, i64 " + indexVal)
	g.emit("  store i64 " + valueReg + ", i64* " + elemPtr)
	return valueReg
}

func (g *Generator) lowerIf(n *ast.If) string {
	condReg := g.lowerNode(n.Condition)
	thenLabel := g.newLabel("then")
	elseLabel := g.newLabel("else")
	endLabel := g.newLabel("endif")

	if n.Else != nil {
		g.emit("  br i1 " + condReg + ", label %" + thenLabel + ", label %" + elseLabel)
	} else {
		g.emit("  br i1 " + condReg + ", label %" + thenLabel + ", label %" + endLabel)
	}

	g.emitAlways(thenLabel + ":")
	g.blockTerminated = false
	g.lowerNode(n.Then)
	thenTerminated := g.blockTerminated
	if !g.blockTerminated {
		g.emit("  br label %" + endLabel)
	}

	elseTerminated := false
	if n.Else != nil {
		g.emitAlways(elseLabel + ":")
		g.blockTerminated = false
		g.lowerNode(n.Else)
		elseTerminated = g.blockTerminated
		if !g.blockTerminated {
			g.emit("  br label %" + endLabel)
		}
	}

	g.emitAlways(endLabel + ":")
	if thenTerminated && elseTerminated {
		g.emitAlways("  unreachable")
	}
	g.blockTerminated = thenTerminated && elseTerminated
	return "0"
}

func (g *Generator) lowerWhile(n *ast.While) string {
	condLabel := g.newLabel("while_cond")
	bodyLabel := g.newLabel("while_body")
	endLabel := g.newLabel("while_end")

	g.pushLoop(condLabel, endLabel)

	g.emit("  br label %" + condLabel)
	g.emitAlways(condLabel + ":")
	condReg := g.lowerNode(n.Condition)
	g.emit("  br i1 " + condReg + ", label %" + bodyLabel + ", label %" + endLabel)

	g.emitAlways(bodyLabel + ":")
	g.blockTerminated = false
	g.lowerNode(n.Body)
	if !g.blockTerminated {
		g.emit("  br label %" + condLabel)
	}

	g.emitAlways(endLabel + ":")
	g.popLoop()
	g.blockTerminated = false
	return "0"
}

func (g *Generator) lowerFor(n *ast.For) string {
	var startVal, endVal string
	if n.Start != nil {
		startVal = g.lowerNode(n.Start)
		endVal = g.lowerNode(n.End)
	} else {
		startVal = "0"
		endVal = g.lowerNode(n.End)
	}

	startLabel := g.newLabel("for_start")
	bodyLabel := g.newLabel("for_body")
	incLabel := g.newLabel("for_inc")
	endLabel := g.newLabel("for_end")

	g.pushLoop(incLabel, endLabel)

	loopVar := g.newTemp()
	g.emit("  " + loopVar + " = alloca i64")
	g.emit("  store i64 " + startVal + ", i64* " + loopVar)

	endPtr := g.newTemp()
	g.emit("  " + endPtr + " = alloca i64")
	g.emit("  store i64 " + endVal + ", i64* " + endPtr)

	g.bind(n.Var, &binding{llvmName: loopVar, varType: "int"})

	g.emit("  br label %" + startLabel)
	g.emitAlways(startLabel + ":")

	current := g.newTemp()
	endLoaded := g.newTemp()
	g.emit("  " + current + " = load i64, i64* " + loopVar)
	g.emit("  " + endLoaded + " = load i64, i64* " + endPtr)

	cond := g.newTemp()
	g.emit("  " + cond + " = icmp slt i64 " + current + ", " + endLoaded)
	g.emit("  br i1 " + cond + ", label %" + bodyLabel + ", label %" + endLabel)

	g.emitAlways(bodyLabel + ":")
	g.lowerNode(n.Body)
	if !g.blockTerminated {
		g.emit("  br label %" + incLabel)
	}

	g.emitAlways(incLabel + ":")
	g.blockTerminated = false
	curr2 := g.newTemp()
	next := g.newTemp()
	g.emit("  " + curr2 + " = load i64, i64* " + loopVar)
	g.emit("  " + next + " = add i64 " + curr2 + ", 1")
	g.emit("  store i64 " + next + ", i64* " + loopVar)
	g.emit("  br label %" + startLabel)

	g.emitAlways(endLabel + ":")
	g.popLoop()
	g.blockTerminated = false
	return "0"
}

func (g *Generator) lowerReturn(r *ast.Return) string {
	if r.Value != nil {
		valueReg := g.lowerNode(r.Value)
		g.emit("  ret " + g.currentFnRet + " " + valueReg)
	} else if g.currentFnRet == "void" {
		g.emit("  ret void")
	} else {
		g.emit("  ret i64 0")
	}
	g.blockTerminated = true
	return "0"
}
