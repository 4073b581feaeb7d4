// Package codegen lowers a Brain internal/ast.Program to textual LLVM IR
// (spec §2-§4, §7). New builds a Generator and Generate is the single
// lowering entry point; apart from Target and TripleFor, everything else is
// an unexported helper reachable only through them.
package codegen

import (
	"strconv"
	"strings"

	"github.com/llir/llvm/ir/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/brain-lang/brainc/internal/ast"
	btypes "github.com/brain-lang/brainc/internal/types"
)

// Target selects the runtime prelude and module triple (spec §4.2).
type Target int

const (
	Linux Target = iota
	Windows
	Darwin
)

// TripleFor returns the LLVM target triple for t (spec §4.7).
func TripleFor(t Target) string {
	switch t {
	case Windows:
		return "x86_64-pc-windows-msvc"
	case Darwin:
		return "x86_64-apple-macosx10.15.0"
	default:
		return "x86_64-pc-linux-gnu"
	}
}

// binding tracks how one in-scope name was lowered: its slot, its surface
// type, and the bookkeeping the lowerer needs to decide whether a block
// exit must free it (spec §3 "binding metadata").
type binding struct {
	llvmName     string
	varType      string
	isHeap       bool
	arraySize    int
	hasArraySize bool
	isStringLit  bool
}

type loopLabels struct {
	continueLabel string
	breakLabel    string
}

type internedString struct {
	id    string
	value string
}

// Generator holds all per-module and per-function state for one lowering
// pass. A Generator is used for exactly one Program and then discarded.
type Generator struct {
	reg *btypes.Registry
	log *zap.SugaredLogger

	target Target

	out strings.Builder

	structDecls []string
	strLits     []internedString
	strCounter  int
	internedIDs map[string]string // literal body -> already-minted .str.N id

	enumVariants map[string][]string
	structFields map[string][]ast.Field

	funcSignatures map[string]string // user fn name -> llvm return type spelling
	pureFunctions  map[string]bool
	reachable      map[string]bool

	// per-function state, reset at the start of each gen of a FunctionDef
	vars            map[string]*binding
	loopStack       []loopLabels
	nonEscaping     map[string]bool
	tempCounter     int
	labelCounter    int
	blockTerminated bool
	currentFnName   string
	currentFnRet    string
	currentBinding  string
}

// New builds a Generator targeting t. log may be nil, in which case
// diagnostics are discarded.
func New(target Target, log *zap.SugaredLogger) *Generator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Generator{
		reg:            btypes.NewRegistry(),
		log:            log,
		target:         target,
		enumVariants:   make(map[string][]string),
		structFields:   make(map[string][]ast.Field),
		funcSignatures: make(map[string]string),
		pureFunctions:  make(map[string]bool),
		reachable:      make(map[string]bool),
		internedIDs:    make(map[string]string),
	}
}

// Generate lowers prog to a complete textual LLVM IR module (spec §4.7).
func (g *Generator) Generate(prog *ast.Program) (string, error) {
	g.registerStructs(prog)
	g.registerEnums(prog)
	g.inferPurity(prog)
	g.reachable = collectReachable(prog)

	g.log.Debugw("starting lowering", "reachable", len(g.reachable))

	for _, item := range prog.Items {
		fd, ok := item.(*ast.FunctionDef)
		if !ok {
			continue
		}
		if !g.reachable[fd.Name] {
			g.log.Debugw("dead function eliminated", "name", fd.Name)
			continue
		}
		if err := g.lowerFunction(fd); err != nil {
			return "", errors.Wrapf(err, "generating function %q", fd.Name)
		}
	}

	return g.assemble(), nil
}

func (g *Generator) registerStructs(prog *ast.Program) {
	for _, item := range prog.Items {
		sd, ok := item.(*ast.StructDef)
		if !ok {
			continue
		}
		g.structFields[sd.Name] = sd.Fields
		fieldTypes := make([]types.Type, len(sd.Fields))
		for i, f := range sd.Fields {
			fieldTypes[i] = g.reg.Lower(f.Type)
		}
		st := g.reg.DeclareStruct(sd.Name, fieldTypes)
		g.structDecls = append(g.structDecls, formatStructDecl(sd.Name, st))
	}
}

func (g *Generator) registerEnums(prog *ast.Program) {
	for _, item := range prog.Items {
		ed, ok := item.(*ast.EnumDef)
		if !ok {
			continue
		}
		names := make([]string, len(ed.Variants))
		for i, v := range ed.Variants {
			names[i] = v.Name
		}
		g.enumVariants[ed.Name] = names
	}
}

func formatStructDecl(name string, st *types.StructType) string {
	fieldStrs := make([]string, len(st.Fields))
	for i, f := range st.Fields {
		fieldStrs[i] = f.String()
	}
	return "%" + name + " = type { " + strings.Join(fieldStrs, ", ") + " }"
}

// emit appends one already-formatted line (with its own trailing content,
// no newline) to the function body buffer, unless the current block has
// already been terminated (spec §4.5's block_terminated discipline — a
// terminator silently suppresses everything lexically after it until the
// next label reopens the block).
func (g *Generator) emit(line string) {
	if g.blockTerminated {
		return
	}
	g.out.WriteString(line)
	g.out.WriteByte('\n')
}

// emitAlways bypasses the block_terminated suppression — used for label
// lines, which must always appear so later branches can target them, for a
// function's define/entry/closing lines, and for the unreachable that
// closes an if whose arms both terminated.
func (g *Generator) emitAlways(line string) {
	g.out.WriteString(line)
	g.out.WriteByte('\n')
}

func (g *Generator) newTemp() string {
	t := "%t" + strconv.Itoa(g.tempCounter)
	g.tempCounter++
	return t
}

func (g *Generator) newLabel(prefix string) string {
	l := prefix + strconv.Itoa(g.labelCounter)
	g.labelCounter++
	return l
}
