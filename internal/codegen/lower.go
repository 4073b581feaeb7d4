package codegen

import (
	"strconv"
	"strings"

	"github.com/kr/pretty"
	"github.com/pkg/errors"

	"github.com/brain-lang/brainc/internal/ast"
	btypes "github.com/brain-lang/brainc/internal/types"
)

// lowerFunction lowers one top-level function definition into a `define`
// block appended to g.out (spec §4.5, §4.6 — signature attributes come
// from the purity pass that already ran in Generate).
func (g *Generator) lowerFunction(fd *ast.FunctionDef) error {
	g.vars = make(map[string]*binding)
	g.tempCounter = 0
	g.labelCounter = 0
	g.blockTerminated = false
	g.currentFnName = fd.Name

	escaping := analyzeEscape(fd.Params, fd.Body)
	g.nonEscaping = make(map[string]bool)
	for _, stmt := range fd.Body.Stmts {
		if lb, ok := stmt.(*ast.LetBinding); ok && !escaping[lb.Name] {
			g.nonEscaping[lb.Name] = true
		}
	}

	retType := "void"
	if fd.Name == "main" {
		retType = "i32"
	} else if fd.ReturnType != "" {
		retType = g.typeToLLVM(fd.ReturnType)
	}
	g.funcSignatures[fd.Name] = retType
	g.currentFnRet = retType

	paramList, err := g.formatParams(fd.Params)
	if err != nil {
		return err
	}

	mangled := mangleFn(fd.Name)
	attrs := " nounwind"
	if fd.Name != "main" && g.pureFunctions[fd.Name] {
		attrs = " nounwind readonly willreturn"
	}

	g.emitAlways("")
	g.emitAlways("define " + retType + " @" + mangled + "(" + paramList + ")" + attrs + " {")
	g.emitAlways("entry:")

	g.bindParams(fd.Params)

	g.blockTerminated = false
	g.lowerNode(fd.Body)

	if fd.Name == "main" && !g.blockTerminated {
		g.emit("  ret i32 0")
	} else if retType == "void" && !g.blockTerminated {
		g.emit("  ret void")
	}

	g.emitAlways("}")
	return nil
}

// formatParams renders a function's parameter list, applying the
// noalias/readonly attributes a by-value heap-shaped or by-reference
// parameter earns (spec §4.5 "parameter passing conventions").
func (g *Generator) formatParams(params []ast.Parameter) (string, error) {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		isRef, isMut, inner := ast.StripRef(p.Type)
		isRef = isRef || p.IsReference
		isMut = isMut || p.IsMutable

		var paramType string
		if isRef {
			if n, _, ok := btypes.ParseArrayType(inner); ok {
				paramType = "[" + strconv.Itoa(n) + " x i64]*"
			} else {
				paramType = g.typeToLLVM(inner) + "*"
			}
		} else {
			paramType = g.typeToLLVM(p.Type)
		}

		isSimplePtr := isRef && !strings.HasPrefix(inner, "[")
		_, isArrayParam := btypes.ParseArrayType(inner)
		isOwnedPtr := !isRef && isPointerLLVMType(p.Type) && !isMut && !isArrayParam

		var attrs string
		switch {
		case isSimplePtr && !isMut:
			attrs = "noalias readonly"
		case isSimplePtr:
			attrs = "noalias"
		case isOwnedPtr:
			attrs = "noalias readonly"
		}

		if attrs == "" {
			parts = append(parts, paramType+" %arg_"+p.Name)
		} else {
			parts = append(parts, paramType+" "+attrs+" %arg_"+p.Name)
		}
	}
	return strings.Join(parts, ", "), nil
}

// bindParams materializes each parameter's binding metadata: reference
// parameters alias the caller's slot directly, by-value parameters get a
// fresh alloca the prologue stores %arg_name into (spec §4.5).
func (g *Generator) bindParams(params []ast.Parameter) {
	for _, p := range params {
		isRef, _, inner := ast.StripRef(p.Type)
		isRef = isRef || p.IsReference

		if isRef {
			arraySize, hasArraySize := 0, false
			if n, _, ok := btypes.ParseArrayType(inner); ok {
				arraySize, hasArraySize = n, true
			}
			g.bind(p.Name, &binding{
				llvmName:     "%arg_" + p.Name,
				varType:      inner,
				arraySize:    arraySize,
				hasArraySize: hasArraySize,
			})
			continue
		}

		llvmType := g.typeToLLVM(p.Type)
		ptr := g.newTemp()
		g.emit("  " + ptr + " = alloca " + llvmType)
		g.emit("  store " + llvmType + " %arg_" + p.Name + ", " + llvmType + "* " + ptr)
		g.bind(p.Name, &binding{llvmName: ptr, varType: p.Type})
	}
}

// lowerNode is the single recursive-descent dispatch over every AST node
// kind, mirroring the shape of the teacher's translateInst/instXXX family
// (one case per node kind, each reading its operand registers then
// emitting one or more instruction lines) generalized from x86 opcodes to
// Brain AST nodes. It returns the SSA value (a "%temp" register or a
// literal spelling like "0"/"null") an expression lowered to; for pure
// statements the return value is unused by the caller.
func (g *Generator) lowerNode(node ast.Node) string {
	switch n := node.(type) {
	case nil:
		return "0"

	case *ast.Import, *ast.StructDef, *ast.EnumDef:
		return "0"

	case *ast.FunctionDef:
		if err := g.lowerFunction(n); err != nil {
			g.log.Warnw("nested function lowering failed", "error", err)
		}
		return "0"

	case *ast.Block:
		return g.lowerBlock(n)

	case *ast.ExpressionStatement:
		return g.lowerNode(n.Expr)

	case *ast.LetBinding:
		return g.lowerLetBinding(n)

	case *ast.Assignment:
		return g.lowerAssignment(n)

	case *ast.ArrayAssignment:
		return g.lowerArrayAssignment(n)

	case *ast.If:
		return g.lowerIf(n)

	case *ast.While:
		return g.lowerWhile(n)

	case *ast.For:
		return g.lowerFor(n)

	case *ast.Break:
		if loop, ok := g.currentLoop(); ok {
			g.emit("  br label %" + loop.breakLabel)
			g.blockTerminated = true
		}
		return "0"

	case *ast.Continue:
		if loop, ok := g.currentLoop(); ok {
			g.emit("  br label %" + loop.continueLabel)
			g.blockTerminated = true
		}
		return "0"

	case *ast.Return:
		return g.lowerReturn(n)

	case *ast.BinaryOp:
		return g.lowerBinaryOp(n)

	case *ast.UnaryOp:
		return g.lowerUnaryOp(n)

	case *ast.Number:
		return strconv.FormatInt(n.Value, 10)

	case *ast.Boolean:
		if n.Value {
			return "1"
		}
		return "0"

	case *ast.Character:
		return strconv.Itoa(int(n.Value))

	case *ast.StringLit:
		return g.lowerStringLit(n)

	case *ast.ArrayLit:
		return g.lowerArrayLit(n)

	case *ast.Index:
		return g.lowerIndex(n)

	case *ast.Identifier:
		return g.lowerIdentifier(n)

	case *ast.Reference:
		return g.lowerReference(n)

	case *ast.Call:
		return g.lowerCall(n)

	case *ast.MethodCall:
		return g.lowerMethodCall(n)

	case *ast.StructInit:
		return g.lowerStructInit(n)

	case *ast.MemberAccess:
		return g.lowerMemberAccess(n)

	case *ast.EnumValue:
		return g.lowerEnumValue(n)

	case *ast.Match:
		return g.lowerMatch(n)

	default:
		pretty.Println(n)
		return "0"
	}
}

func mangleFn(name string) string {
	if name == "main" {
		return "main"
	}
	return "brn_" + name
}

func isPointerLLVMType(t string) bool {
	switch t {
	case "string", "Vec":
		return true
	case "int", "bool", "char", "void", "":
		return false
	default:
		return !strings.HasPrefix(t, "[")
	}
}

// typeToLLVM renders a Brain surface type as its textual LLVM spelling,
// used for every hand-emitted instruction line (spec §4.1). Struct
// spellings consult g.structFields, which registerStructs fills before any
// lowering, so a struct used before its declaration still prints "%Name*".
// A name that is not a declared struct falls back to "i64", unlike the
// registry's Lower(), which spells any unknown name as a struct pointer.
func (g *Generator) typeToLLVM(t string) string {
	switch t {
	case "int":
		return "i64"
	case "bool":
		return "i1"
	case "char":
		return "i8"
	case "string":
		return "i8*"
	case "array":
		return "i64*"
	case "Vec":
		return "i8*"
	case "void", "":
		return "void"
	case "enum":
		return "{ i32, i64 }*"
	}
	if strings.HasPrefix(t, "*") {
		return g.typeToLLVM(t[1:]) + "*"
	}
	if n, _, ok := btypes.ParseArrayType(t); ok {
		return "[" + strconv.Itoa(n) + " x i64]*"
	}
	if _, ok := g.structFields[t]; ok {
		return "%" + t + "*"
	}
	return "i64"
}

func llvmToType(llvm string) string {
	return btypes.FromLLVM(llvm)
}

// inferType infers the Brain surface type of an already-typed expression
// node using only locally-available information (current bindings,
// recorded function signatures) — a conservative, single-pass
// approximation, not a real type checker (spec §4.5, §9 "no separate
// type-checking pass").
func (g *Generator) inferType(node ast.Node) string {
	switch n := node.(type) {
	case *ast.Number:
		return "int"
	case *ast.Boolean:
		return "bool"
	case *ast.Character:
		return "char"
	case *ast.StringLit:
		return "string"
	case *ast.StructInit:
		return n.Name
	case *ast.BinaryOp:
		switch n.Op {
		case ast.Eq, ast.Ne, ast.Lt, ast.Le, ast.Gt, ast.Ge, ast.LogAnd, ast.LogOr:
			return "bool"
		default:
			return g.inferType(n.Left)
		}
	case *ast.Identifier:
		if b := g.lookup(n.Name); b != nil {
			return b.varType
		}
		return "int"
	case *ast.ArrayLit:
		return "array"
	case *ast.EnumValue:
		return "enum"
	case *ast.Call:
		switch n.Name {
		case "read_file", "int_to_string":
			return "string"
		case "write_file":
			return "int"
		case "vec_new":
			return "Vec"
		case "vec_get", "vec_len":
			return "int"
		default:
			if ret, ok := g.funcSignatures[n.Name]; ok {
				return llvmToType(ret)
			}
			return "int"
		}
	case *ast.Reference:
		return g.inferType(n.Inner)
	case *ast.MethodCall:
		switch n.Name {
		case "len", "char_at", "get":
			return "int"
		default:
			return g.inferType(n.Object)
		}
	default:
		return "int"
	}
}

func (g *Generator) inferStructName(node ast.Node) string {
	switch n := node.(type) {
	case *ast.Identifier:
		if b := g.lookup(n.Name); b != nil {
			return b.varType
		}
		return ""
	case *ast.StructInit:
		return n.Name
	default:
		return ""
	}
}

func identName(node ast.Node) (string, bool) {
	id, ok := node.(*ast.Identifier)
	if !ok {
		return "", false
	}
	return id.Name, true
}

var errUnknownIdentifier = errors.New("unknown identifier")
