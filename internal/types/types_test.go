package types

import (
	"testing"

	"github.com/llir/llvm/ir/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLowerPrimitives(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, "i64", r.Lower("int").String())
	assert.Equal(t, "i1", r.Lower("bool").String())
	assert.Equal(t, "i8", r.Lower("char").String())
	assert.Equal(t, "i8*", r.Lower("string").String())
	assert.Equal(t, "i8*", r.Lower("Vec").String())
	assert.Equal(t, "void", r.Lower("void").String())
}

func TestLowerStruct(t *testing.T) {
	r := NewRegistry()
	st := r.DeclareStruct("Point", []types.Type{types.I64, types.I64})
	assert.True(t, r.IsStruct("Point"))
	assert.Same(t, st, r.Struct("Point"))
	assert.Equal(t, "%Point*", r.Lower("Point").String())
}

func TestLowerForwardReferencedStruct(t *testing.T) {
	r := NewRegistry()
	// Not yet declared -- still lowers to a struct pointer by convention.
	assert.Equal(t, "%Node*", r.Lower("Node").String())
}

func TestLowerFixedArray(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, "[3 x i64]*", r.Lower("[int; 3]").String())
}

func TestLowerEnum(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, "{ i32, i64 }*", r.Lower("enum").String())
	assert.Same(t, r.EnumPayload(), r.Lower("enum").(*types.PointerType).ElemType.(*types.StructType))
}

func TestParseArrayType(t *testing.T) {
	n, elem, ok := ParseArrayType("[int; 10]")
	require.True(t, ok)
	assert.Equal(t, 10, n)
	assert.Equal(t, "int", elem)

	_, _, ok = ParseArrayType("int")
	assert.False(t, ok)
}

func TestFromLLVM(t *testing.T) {
	assert.Equal(t, "int", FromLLVM("i64"))
	assert.Equal(t, "bool", FromLLVM("i1"))
	assert.Equal(t, "string", FromLLVM("i8*"))
	assert.Equal(t, "void", FromLLVM("void"))
}
