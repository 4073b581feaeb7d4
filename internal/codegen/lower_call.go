package codegen

import (
	"strconv"
	"strings"

	"github.com/brain-lang/brainc/internal/ast"
)

// lowerCall dispatches a Call node: a fixed set of built-ins get a direct
// runtime-prelude call (spec §4.2's routines, one per builtin), anything
// else is a user function invocation through its mangled name (spec §4.5
// "name mangling").
func (g *Generator) lowerCall(n *ast.Call) string {
	switch {
	case n.Name == "print" && len(n.Args) > 0:
		return g.lowerPrint(n.Args[0])
	case n.Name == "read_file" && len(n.Args) > 0:
		filenameReg := g.lowerNode(n.Args[0])
		result := g.newTemp()
		g.emit("  " + result + " = call i8* @read_file_impl(i8* " + filenameReg + ")")
		return result
	case n.Name == "write_file" && len(n.Args) >= 2:
		filenameReg := g.lowerNode(n.Args[0])
		contentReg := g.lowerNode(n.Args[1])
		result := g.newTemp()
		g.emit("  " + result + " = call i32 @write_file_impl(i8* " + filenameReg + ", i8* " + contentReg + ")")
		result64 := g.newTemp()
		g.emit("  " + result64 + " = sext i32 " + result + " to i64")
		return result64
	case n.Name == "vec_new":
		result := g.newTemp()
		g.emit("  " + result + " = call i8* @vec_new_impl()")
		return result
	case n.Name == "vec_push" && len(n.Args) >= 2:
		vecReg := g.lowerNode(n.Args[0])
		valReg := g.lowerNode(n.Args[1])
		g.emit("  call void @vec_push_impl(i8* " + vecReg + ", i64 " + valReg + ")")
		return "0"
	case n.Name == "vec_get" && len(n.Args) >= 2:
		vecReg := g.lowerNode(n.Args[0])
		idxReg := g.lowerNode(n.Args[1])
		result := g.newTemp()
		g.emit("  " + result + " = call i64 @vec_get_impl(i8* " + vecReg + ", i64 " + idxReg + ")")
		return result
	case n.Name == "vec_set" && len(n.Args) >= 3:
		vecReg := g.lowerNode(n.Args[0])
		idxReg := g.lowerNode(n.Args[1])
		valReg := g.lowerNode(n.Args[2])
		g.emit("  call void @vec_set_impl(i8* " + vecReg + ", i64 " + idxReg + ", i64 " + valReg + ")")
		return "0"
	case n.Name == "vec_len" && len(n.Args) > 0:
		vecReg := g.lowerNode(n.Args[0])
		result := g.newTemp()
		g.emit("  " + result + " = call i64 @vec_len_impl(i8* " + vecReg + ")")
		return result
	case n.Name == "int_to_string" && len(n.Args) > 0:
		nReg := g.lowerNode(n.Args[0])
		result := g.newTemp()
		g.emit("  " + result + " = call i8* @int_to_string_impl(i64 " + nReg + ")")
		return result
	default:
		return g.lowerUserCall(n)
	}
}

// lowerPrint picks @puts for string arguments and @brn_print_int
// otherwise, matching the two distinct runtime entry points the prelude
// exposes for them (spec §4.2).
func (g *Generator) lowerPrint(arg ast.Node) string {
	if g.inferType(arg) == "string" {
		argReg := g.lowerNode(arg)
		result := g.newTemp()
		g.emit("  " + result + " = call i32 @puts(i8* " + argReg + ")")
		return result
	}
	argReg := g.lowerNode(arg)
	g.emit("  call void @brn_print_int(i64 " + argReg + ")")
	return "0"
}

// lowerUserCall lowers a call to a user-defined function. A Reference
// argument passes its referent's slot directly (array slots and structs
// pass their pointer, strings load through to pass i8*); any other
// string-typed argument is defensively copied first so the callee can
// free it independently of the caller's own binding (spec §4.5
// "ownership at call boundaries").
func (g *Generator) lowerUserCall(n *ast.Call) string {
	var argRegs, argTypes []string

	for _, argNode := range n.Args {
		if ref, ok := argNode.(*ast.Reference); ok {
			reg, typ := g.lowerRefArg(ref)
			argRegs = append(argRegs, reg)
			argTypes = append(argTypes, typ)
			continue
		}

		reg := g.lowerNode(argNode)
		argType := g.inferType(argNode)
		if argType == "string" {
			length := g.newTemp()
			length1 := g.newTemp()
			copyPtr := g.newTemp()
			copied := g.newTemp()
			g.emit("  " + length + " = call i64 @strlen(i8* " + reg + ")")
			g.emit("  " + length1 + " = add i64 " + length + ", 1")
			g.emit("  " + copyPtr + " = call i8* @malloc(i64 " + length1 + ")")
			g.emit("  " + copied + " = call i8* @strcpy(i8* " + copyPtr + ", i8* " + reg + ")")
			argRegs = append(argRegs, copyPtr)
		} else {
			argRegs = append(argRegs, reg)
		}
		argTypes = append(argTypes, g.typeToLLVM(argType))
	}

	parts := make([]string, len(argRegs))
	for i := range argRegs {
		parts[i] = argTypes[i] + " " + argRegs[i]
	}
	argsStr := strings.Join(parts, ", ")

	returnType := "i64"
	if rt, ok := g.funcSignatures[n.Name]; ok {
		returnType = rt
	}
	mangled := mangleFn(n.Name)

	if returnType == "void" {
		g.emit("  call void @" + mangled + "(" + argsStr + ")")
		return "0"
	}
	result := g.newTemp()
	g.emit("  " + result + " = call " + returnType + " @" + mangled + "(" + argsStr + ")")
	return result
}

func (g *Generator) lowerRefArg(ref *ast.Reference) (reg, typ string) {
	name, ok := identName(ref.Inner)
	if !ok {
		return g.lowerNode(ref.Inner), "i8*"
	}
	b := g.lookup(name)
	if b == nil {
		return "null", "i8*"
	}
	if b.hasArraySize {
		return b.llvmName, "[" + strconv.Itoa(b.arraySize) + " x i64]*"
	}
	if b.varType == "string" {
		loaded := g.newTemp()
		g.emit("  " + loaded + " = load i8*, i8** " + b.llvmName)
		return loaded, "i8*"
	}
	return b.llvmName, g.typeToLLVM(b.varType) + "*"
}

// lowerMethodCall desugars a `.method(...)` call to its equivalent
// built-in, the only form of method dispatch Brain supports (spec §4.5
// "no user-defined methods").
func (g *Generator) lowerMethodCall(n *ast.MethodCall) string {
	objType := g.inferType(n.Object)
	switch n.Name {
	case "len":
		objReg := g.lowerNode(n.Object)
		result := g.newTemp()
		if objType == "Vec" {
			g.emit("  " + result + " = call i64 @vec_len_impl(i8* " + objReg + ")")
		} else {
			g.emit("  " + result + " = call i64 @strlen(i8* " + objReg + ")")
		}
		return result
	case "char_at":
		if len(n.Args) == 0 {
			return "0"
		}
		objReg := g.lowerNode(n.Object)
		indexReg := g.lowerNode(n.Args[0])
		charPtr := g.newTemp()
		g.emit("  " + charPtr + " = getelementptr i8, i8* " + objReg + ", i64 " + indexReg)
		result := g.newTemp()
		g.emit("  " + result + " = load i8, i8* " + charPtr)
		extended := g.newTemp()
		g.emit("  " + extended + " = sext i8 " + result + " to i64")
		return extended
	case "push":
		if len(n.Args) == 0 {
			return "0"
		}
		objReg := g.lowerNode(n.Object)
		valReg := g.lowerNode(n.Args[0])
		g.emit("  call void @vec_push_impl(i8* " + objReg + ", i64 " + valReg + ")")
		return "0"
	case "get":
		if len(n.Args) == 0 {
			return "0"
		}
		objReg := g.lowerNode(n.Object)
		idxReg := g.lowerNode(n.Args[0])
		result := g.newTemp()
		g.emit("  " + result + " = call i64 @vec_get_impl(i8* " + objReg + ", i64 " + idxReg + ")")
		return result
	case "set":
		if len(n.Args) < 2 {
			return "0"
		}
		objReg := g.lowerNode(n.Object)
		idxReg := g.lowerNode(n.Args[0])
		valReg := g.lowerNode(n.Args[1])
		g.emit("  call void @vec_set_impl(i8* " + objReg + ", i64 " + idxReg + ", i64 " + valReg + ")")
		return "0"
	default:
		return "0"
	}
}

// lowerStructInit allocates storage for a struct literal — a stack alloca
// when the binding it's assigned to was proven non-escaping, malloc
// otherwise — and stores each initialized field, in initializer order, at
// the index its name has in the struct declaration (spec §4.4
// "stack promotion", §4.1 "struct layout").
func (g *Generator) lowerStructInit(n *ast.StructInit) string {
	fields := g.structFields[n.Name]

	stackPromote := g.currentBinding != "" && g.nonEscaping[g.currentBinding]

	structPtr := g.newTemp()
	if stackPromote {
		g.emit("  " + structPtr + " = alloca %" + n.Name)
	} else {
		size := len(fields) * 8
		rawPtr := g.newTemp()
		g.emit("  " + rawPtr + " = call i8* @malloc(i64 " + strconv.Itoa(size) + ")")
		g.emit("  " + structPtr + " = bitcast i8* " + rawPtr + " to %" + n.Name + "*")
	}

	for _, init := range n.Fields {
		valReg := g.lowerNode(init.Value)
		fieldIdx := 0
		fieldType := "int"
		for i, f := range fields {
			if f.Name == init.Name {
				fieldIdx = i
				fieldType = f.Type
				break
			}
		}
		llvmFieldType := g.typeToLLVM(fieldType)
		gep := g.newTemp()
		g.emit("  " + gep + " = getelementptr %" + n.Name + ", %" + n.Name + "* " + structPtr + ", i32 0, i32 " + strconv.Itoa(fieldIdx))
		g.emit("  store " + llvmFieldType + " " + valReg + ", " + llvmFieldType + "* " + gep)
	}

	return structPtr
}

func (g *Generator) lowerMemberAccess(n *ast.MemberAccess) string {
	objReg := g.lowerNode(n.Object)
	structName := g.inferStructName(n.Object)

	fields, ok := g.structFields[structName]
	if !ok {
		return "0"
	}
	fieldIdx := -1
	fieldType := "int"
	for i, f := range fields {
		if f.Name == n.Field {
			fieldIdx = i
			fieldType = f.Type
			break
		}
	}
	if fieldIdx < 0 {
		return "0"
	}

	llvmFieldType := g.typeToLLVM(fieldType)
	gep := g.newTemp()
	g.emit("  " + gep + " = getelementptr %" + structName + ", %" + structName + "* " + objReg + ", i32 0, i32 " + strconv.Itoa(fieldIdx))
	result := g.newTemp()
	g.emit("  " + result + " = load " + llvmFieldType + ", " + llvmFieldType + "* " + gep)
	return result
}

// lowerEnumValue constructs the uniform { i32 tag, i64 payload } pair
// every enum value lowers to (spec §9 "sum types are uniform").
func (g *Generator) lowerEnumValue(n *ast.EnumValue) string {
	tag := 0
	if variants, ok := g.enumVariants[n.Enum]; ok {
		for i, v := range variants {
			if v == n.Variant {
				tag = i
				break
			}
		}
	}

	ptr := g.newTemp()
	g.emit("  " + ptr + " = alloca { i32, i64 }")

	tagPtr := g.newTemp()
	g.emit("  " + tagPtr + " = getelementptr { i32, i64 }, { i32, i64 }* " + ptr + ", i32 0, i32 0")
	g.emit("  store i32 " + strconv.Itoa(tag) + ", i32* " + tagPtr)

	val := "0"
	if n.Value != nil {
		val = g.lowerNode(n.Value)
	}

	valPtr := g.newTemp()
	g.emit("  " + valPtr + " = getelementptr { i32, i64 }, { i32, i64 }* " + ptr + ", i32 0, i32 1")
	g.emit("  store i64 " + val + ", i64* " + valPtr)

	return ptr
}
