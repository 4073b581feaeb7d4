// Package types lowers Brain surface types to LLVM IR types (spec §4.1).
//
// Every lowering returns a types.Type from github.com/llir/llvm/ir/types,
// whose .String() gives its textual spelling. internal/codegen uses Lower
// for the field types of the struct declarations it emits; its instruction
// lines spell types through its own table (typeToLLVM in
// internal/codegen/lower.go).
package types

import (
	"strconv"
	"strings"

	"github.com/llir/llvm/ir/types"
)

// Known aggregate/enum pointee element types, registered as struct
// definitions are discovered. Struct types lower to a pointer to a named
// identified struct; enum types lower to a pointer to the uniform
// { i32, i64 } tag/payload pair (spec §4.1, §9 "sum types are uniform").
type Registry struct {
	structs map[string]*types.StructType
	enum    *types.StructType
}

// NewRegistry builds an empty type registry. The enum payload shape is
// fixed and needs no registration.
func NewRegistry() *Registry {
	return &Registry{
		structs: make(map[string]*types.StructType),
		enum:    types.NewStruct(types.I32, types.I64),
	}
}

// DeclareStruct registers name as a struct type with the given field
// types, in field order. Returns the identified struct type so the caller
// can format its declaration line.
func (r *Registry) DeclareStruct(name string, fields []types.Type) *types.StructType {
	st := types.NewStruct(fields...)
	st.TypeName = name
	r.structs[name] = st
	return st
}

// IsStruct reports whether name was registered via DeclareStruct.
func (r *Registry) IsStruct(name string) bool {
	_, ok := r.structs[name]
	return ok
}

// Struct returns the struct type registered under name, or nil.
func (r *Registry) Struct(name string) *types.StructType {
	return r.structs[name]
}

// EnumPayload returns the uniform { i32 tag, i64 payload } struct type
// every enum value lowers to.
func (r *Registry) EnumPayload() *types.StructType {
	return r.enum
}

// Lower maps a Brain surface type spelling to an LLVM type. Unknown names
// (including not-yet-declared struct names, which legitimately forward
// reference in source order) fall back to the struct-pointer convention:
// any bare identifier other than the primitives below is assumed to be a
// struct name and lowered to a pointer to an opaquely-named identified
// struct, matching the original generator's behavior of trusting the
// surface name.
func (r *Registry) Lower(brainType string) types.Type {
	switch brainType {
	case "int":
		return types.I64
	case "bool":
		return types.I1
	case "char":
		return types.I8
	case "string":
		return types.NewPointer(types.I8)
	case "Vec":
		return types.NewPointer(types.I8)
	case "void", "":
		return types.Void
	case "array":
		return types.NewPointer(types.I64)
	case "enum":
		return types.NewPointer(r.enum)
	}

	if strings.HasPrefix(brainType, "*") {
		return types.NewPointer(r.Lower(brainType[1:]))
	}
	if strings.HasPrefix(brainType, "[") {
		if n, elem, ok := ParseArrayType(brainType); ok {
			_ = elem
			return types.NewPointer(types.NewArray(uint64(n), types.I64))
		}
		return types.NewPointer(types.I64)
	}
	if st, ok := r.structs[brainType]; ok {
		return types.NewPointer(st)
	}
	// Forward-referenced or unknown struct name: still a struct pointer by
	// convention, using a fresh identified type carrying the same name so
	// the textual spelling ("%Name*") matches once the struct is declared.
	return types.NewPointer(&types.StructType{TypeName: brainType})
}

// ParseArrayType parses a Brain fixed-array surface spelling of the form
// "[elem; N]" and returns the element count, element type spelling, and
// whether parsing succeeded.
func ParseArrayType(t string) (n int, elem string, ok bool) {
	if !strings.HasPrefix(t, "[") || !strings.HasSuffix(t, "]") {
		return 0, "", false
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(t, "["), "]")
	parts := strings.SplitN(inner, ";", 2)
	if len(parts) != 2 {
		return 0, "", false
	}
	size, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, "", false
	}
	return size, strings.TrimSpace(parts[0]), true
}

// FromLLVM maps a lowered LLVM spelling back to its Brain surface name,
// used when a called function's signature is only known by its return
// type string (spec.md's original keeps this inverse table for exactly
// that case — inferring the surface type of a call expression from the
// callee's recorded LLVM return type).
func FromLLVM(llvm string) string {
	switch llvm {
	case "i64":
		return "int"
	case "i1":
		return "bool"
	case "i8":
		return "char"
	case "i8*":
		return "string"
	case "void":
		return "void"
	default:
		return "int"
	}
}
