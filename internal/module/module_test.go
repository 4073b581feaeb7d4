package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brain-lang/brainc/internal/ast"
)

func TestResolveInlinesExportedDefinitions(t *testing.T) {
	mathFile := &ast.Program{Items: []ast.Node{
		&ast.FunctionDef{Name: "double", Exported: true, ReturnType: "int", Body: &ast.Block{}},
		&ast.FunctionDef{Name: "helper", Exported: false, ReturnType: "int", Body: &ast.Block{}},
	}}
	mainFile := &ast.Program{Items: []ast.Node{
		&ast.Import{Path: "math.brn", Names: []string{"double"}},
		&ast.FunctionDef{Name: "main", ReturnType: "void", Body: &ast.Block{}},
	}}

	cache := NewCache([]File{
		{Path: "math.brn", Program: mathFile},
		{Path: "main.brn", Program: mainFile},
	})

	resolved, err := cache.Resolve("main.brn")
	require.NoError(t, err)

	var names []string
	for _, item := range resolved.Items {
		fd, ok := item.(*ast.FunctionDef)
		require.True(t, ok)
		names = append(names, fd.Name)
	}
	assert.Equal(t, []string{"double", "helper", "main"}, names)
}

func TestResolveRejectsUnexportedName(t *testing.T) {
	mathFile := &ast.Program{Items: []ast.Node{
		&ast.FunctionDef{Name: "secret", Exported: false, ReturnType: "int", Body: &ast.Block{}},
	}}
	mainFile := &ast.Program{Items: []ast.Node{
		&ast.Import{Path: "math.brn", Names: []string{"secret"}},
	}}

	cache := NewCache([]File{
		{Path: "math.brn", Program: mathFile},
		{Path: "main.brn", Program: mainFile},
	})

	_, err := cache.Resolve("main.brn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not exported")
}

func TestResolveDetectsCircularImport(t *testing.T) {
	a := &ast.Program{Items: []ast.Node{&ast.Import{Path: "b.brn", Names: nil}}}
	b := &ast.Program{Items: []ast.Node{&ast.Import{Path: "a.brn", Names: nil}}}

	cache := NewCache([]File{
		{Path: "a.brn", Program: a},
		{Path: "b.brn", Program: b},
	})

	_, err := cache.Resolve("a.brn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular import")
}

func TestResolveMissingModule(t *testing.T) {
	main := &ast.Program{Items: []ast.Node{&ast.Import{Path: "missing.brn"}}}
	cache := NewCache([]File{{Path: "main.brn", Program: main}})

	_, err := cache.Resolve("main.brn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot find module")
}
