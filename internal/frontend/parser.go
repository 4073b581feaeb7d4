package frontend

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/brain-lang/brainc/internal/ast"
)

// parser is a small hand-written recursive-descent, precedence-climbing
// parser over the token stream tokenize produces. Parsing proper is a
// Non-goal of the hard core (spec §1); this exists only to drive the
// code generator from real source text end to end, so it trades
// exhaustive diagnostics for a compact, direct implementation.
type parser struct {
	toks []rawToken
	pos  int
}

// Parse lexes and parses one Brain source file into a *ast.Program whose
// top-level Items are in source order, exactly as internal/ast expects.
func Parse(filename, source string) (*ast.Program, error) {
	toks, err := tokenize(filename, source)
	if err != nil {
		return nil, errors.Wrapf(err, "lexing %q", filename)
	}
	p := &parser{toks: toks}
	items, err := p.parseItems()
	if err != nil {
		return nil, err
	}
	return &ast.Program{Items: items}, nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	pos := "EOF"
	if p.pos < len(p.toks) {
		pos = p.toks[p.pos].pos.String()
	}
	return errors.Errorf("%s: "+format, append([]interface{}{pos}, args...)...)
}

func (p *parser) at(kind string) bool {
	return p.pos < len(p.toks) && p.toks[p.pos].kind == kind
}

func (p *parser) atKeyword(word string) bool {
	return p.pos < len(p.toks) && p.toks[p.pos].kind == "Ident" && p.toks[p.pos].value == word
}

func (p *parser) atPunct(lit string) bool {
	if p.pos >= len(p.toks) {
		return false
	}
	t := p.toks[p.pos]
	return (t.kind == "Punct" || t.kind == "Arrow" || t.kind == "PathSep" || t.kind == "DotDot" ||
		t.kind == "Eq" || t.kind == "Ne" || t.kind == "Le" || t.kind == "Ge" ||
		t.kind == "AndAnd" || t.kind == "OrOr" || t.kind == "FatArrow") && t.value == lit
}

func (p *parser) peek() rawToken {
	if p.pos >= len(p.toks) {
		return rawToken{kind: "EOF"}
	}
	return p.toks[p.pos]
}

func (p *parser) advance() rawToken {
	t := p.peek()
	p.pos++
	return t
}

func (p *parser) expectPunct(lit string) error {
	if !p.atPunct(lit) {
		return p.errorf("expected %q, found %q", lit, p.peek().value)
	}
	p.advance()
	return nil
}

func (p *parser) expectKeyword(word string) error {
	if !p.atKeyword(word) {
		return p.errorf("expected keyword %q, found %q", word, p.peek().value)
	}
	p.advance()
	return nil
}

func (p *parser) expectIdent() (string, error) {
	if !p.at("Ident") {
		return "", p.errorf("expected identifier, found %q", p.peek().value)
	}
	return p.advance().value, nil
}

func (p *parser) eof() bool {
	return p.pos >= len(p.toks)
}

// parseItems parses the top-level sequence of imports, function/struct/enum
// definitions and top-level let bindings (spec §3 "program").
func (p *parser) parseItems() ([]ast.Node, error) {
	var items []ast.Node
	for !p.eof() {
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (p *parser) parseItem() (ast.Node, error) {
	exported := false
	if p.atKeyword("export") {
		p.advance()
		exported = true
	}

	switch {
	case p.atKeyword("import"):
		if exported {
			return nil, p.errorf("import cannot be exported")
		}
		return p.parseImport()
	case p.atKeyword("fn"):
		return p.parseFunctionDef(exported)
	case p.atKeyword("struct"):
		return p.parseStructDef()
	case p.atKeyword("enum"):
		return p.parseEnumDef()
	case p.atKeyword("let"):
		lb, err := p.parseLetBinding(exported)
		if err != nil {
			return nil, err
		}
		return lb, nil
	}
	return nil, p.errorf("unexpected token %q at top level", p.peek().value)
}

// parseImport parses `import { a, b } from "path";`.
func (p *parser) parseImport() (ast.Node, error) {
	if err := p.expectKeyword("import"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var names []string
	for !p.atPunct("}") {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if p.atPunct(",") {
			p.advance()
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("from"); err != nil {
		return nil, err
	}
	if !p.at("String") {
		return nil, p.errorf("expected module path string after 'from'")
	}
	path := unquoteString(p.advance().value)
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return &ast.Import{Path: path, Names: names}, nil
}

func (p *parser) parseFunctionDef(exported bool) (ast.Node, error) {
	if err := p.expectKeyword("fn"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var params []ast.Parameter
	for !p.atPunct(")") {
		param, err := p.parseParameter()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		if p.atPunct(",") {
			p.advance()
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	retType := "void"
	if p.atPunct("->") {
		p.advance()
		retType, err = p.parseTypeName()
		if err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDef{Name: name, Params: params, ReturnType: retType, Body: body, Exported: exported}, nil
}

// parseParameter parses `mut? &? mut? name : type`, splitting the leading
// reference/mutability markers into Parameter.IsReference/IsMutable rather
// than leaving them embedded in Type (spec §3's Parameter contract).
func (p *parser) parseParameter() (ast.Parameter, error) {
	isRef := false
	isMut := false
	if p.atKeyword("mut") {
		p.advance()
		isMut = true
	}
	if p.atPunct("&") {
		p.advance()
		isRef = true
		if p.atKeyword("mut") {
			p.advance()
			isMut = true
		}
	}
	name, err := p.expectIdent()
	if err != nil {
		return ast.Parameter{}, err
	}
	if err := p.expectPunct(":"); err != nil {
		return ast.Parameter{}, err
	}
	typ, err := p.parseTypeName()
	if err != nil {
		return ast.Parameter{}, err
	}
	return ast.Parameter{Name: name, Type: typ, IsReference: isRef, IsMutable: isMut}, nil
}

// parseTypeName parses a non-reference type spelling: a bare name or a
// fixed array "[elem; N]" (spec §4.1's lowering domain).
func (p *parser) parseTypeName() (string, error) {
	if p.atPunct("[") {
		p.advance()
		elem, err := p.expectIdent()
		if err != nil {
			return "", err
		}
		if err := p.expectPunct(";"); err != nil {
			return "", err
		}
		if !p.at("Number") {
			return "", p.errorf("expected array size, found %q", p.peek().value)
		}
		size := p.advance().value
		if err := p.expectPunct("]"); err != nil {
			return "", err
		}
		return "[" + elem + "; " + size + "]", nil
	}
	return p.expectIdent()
}

func (p *parser) parseStructDef() (ast.Node, error) {
	if err := p.expectKeyword("struct"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var fields []ast.Field
	for !p.atPunct("}") {
		fname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		ftype, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.Field{Name: fname, Type: ftype})
		if p.atPunct(",") {
			p.advance()
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return &ast.StructDef{Name: name, Fields: fields}, nil
}

func (p *parser) parseEnumDef() (ast.Node, error) {
	if err := p.expectKeyword("enum"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var variants []ast.EnumVariant
	for !p.atPunct("}") {
		vname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		payload := ""
		if p.atPunct("(") {
			p.advance()
			payload, err = p.parseTypeName()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
		}
		variants = append(variants, ast.EnumVariant{Name: vname, PayloadType: payload})
		if p.atPunct(",") {
			p.advance()
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return &ast.EnumDef{Name: name, Variants: variants}, nil
}

func (p *parser) parseLetBinding(exported bool) (*ast.LetBinding, error) {
	if err := p.expectKeyword("let"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	typ := ""
	if p.atPunct(":") {
		p.advance()
		typ, err = p.parseTypeName()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectPunct("="); err != nil {
		return nil, err
	}
	value, err := p.parseExpr(true)
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return &ast.LetBinding{Name: name, Type: typ, Value: value, Exported: exported}, nil
}

// parseBlock parses a "{ stmt* }" sequence (spec §3 "block").
func (p *parser) parseBlock() (*ast.Block, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var stmts []ast.Node
	for !p.atPunct("}") {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return &ast.Block{Stmts: stmts}, nil
}

func (p *parser) parseStatement() (ast.Node, error) {
	switch {
	case p.atKeyword("let"):
		return p.parseLetBinding(false)
	case p.atKeyword("if"):
		return p.parseIf()
	case p.atKeyword("while"):
		return p.parseWhile()
	case p.atKeyword("for"):
		return p.parseFor()
	case p.atKeyword("return"):
		return p.parseReturn()
	case p.atKeyword("break"):
		p.advance()
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return &ast.Break{}, nil
	case p.atKeyword("continue"):
		p.advance()
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return &ast.Continue{}, nil
	case p.atPunct("{"):
		return p.parseBlock()
	}
	return p.parseSimpleStatement()
}

// parseSimpleStatement handles assignment, indexed assignment, and bare
// expression statements, all of which start with an expression and are
// disambiguated by what punctuation follows it (spec §4.5 "assignments").
func (p *parser) parseSimpleStatement() (ast.Node, error) {
	if p.at("Ident") && !isReservedWord(p.peek().value) {
		savedPos := p.pos
		name := p.advance().value

		if p.atPunct("[") {
			p.advance()
			index, err := p.parseExpr(true)
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			if p.atPunct("=") {
				p.advance()
				value, err := p.parseExpr(true)
				if err != nil {
					return nil, err
				}
				if err := p.expectPunct(";"); err != nil {
					return nil, err
				}
				return &ast.ArrayAssignment{Array: &ast.Identifier{Name: name}, Index: index, Value: value}, nil
			}
			p.pos = savedPos
		} else if p.atPunct("=") {
			p.advance()
			value, err := p.parseExpr(true)
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(";"); err != nil {
				return nil, err
			}
			return &ast.Assignment{Name: name, Value: value}, nil
		} else {
			p.pos = savedPos
		}
	}

	expr, err := p.parseExpr(true)
	if err != nil {
		return nil, err
	}
	if p.atPunct(";") {
		p.advance()
	}
	return &ast.ExpressionStatement{Expr: expr}, nil
}

func (p *parser) parseIf() (ast.Node, error) {
	if err := p.expectKeyword("if"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(false)
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseNode ast.Node
	if p.atKeyword("else") {
		p.advance()
		if p.atKeyword("if") {
			elseNode, err = p.parseIf()
		} else {
			elseNode, err = p.parseBlock()
		}
		if err != nil {
			return nil, err
		}
	}
	return &ast.If{Condition: cond, Then: then, Else: elseNode}, nil
}

func (p *parser) parseWhile() (ast.Node, error) {
	if err := p.expectKeyword("while"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(false)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.While{Condition: cond, Body: body}, nil
}

// parseFor parses `for v in a..b { }` or `for v in e { }` (the latter
// implicitly ranging 0..e, per spec §4.5).
func (p *parser) parseFor() (ast.Node, error) {
	if err := p.expectKeyword("for"); err != nil {
		return nil, err
	}
	varName, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	first, err := p.parseExpr(false)
	if err != nil {
		return nil, err
	}
	var start, end ast.Node
	if p.atPunct("..") {
		p.advance()
		end, err = p.parseExpr(false)
		if err != nil {
			return nil, err
		}
		start = first
	} else {
		end = first
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.For{Var: varName, Start: start, End: end, Body: body}, nil
}

func (p *parser) parseReturn() (ast.Node, error) {
	if err := p.expectKeyword("return"); err != nil {
		return nil, err
	}
	var value ast.Node
	if !p.atPunct(";") {
		v, err := p.parseExpr(true)
		if err != nil {
			return nil, err
		}
		value = v
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return &ast.Return{Value: value}, nil
}

// --- Expressions: precedence-climbing over ||, &&, ==/!=, relational,
// additive, multiplicative, unary, then postfix/primary (spec §4.5
// "operators"). allowStruct disables struct-literal parsing, needed while
// parsing the condition of if/while/for so a following "{" opens the
// statement body rather than being mistaken for a struct initializer.

func (p *parser) parseExpr(allowStruct bool) (ast.Node, error) {
	return p.parseLogOr(allowStruct)
}

func (p *parser) parseLogOr(allowStruct bool) (ast.Node, error) {
	left, err := p.parseLogAnd(allowStruct)
	if err != nil {
		return nil, err
	}
	for p.atPunct("||") {
		p.advance()
		right, err := p.parseLogAnd(allowStruct)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: ast.LogOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseLogAnd(allowStruct bool) (ast.Node, error) {
	left, err := p.parseEquality(allowStruct)
	if err != nil {
		return nil, err
	}
	for p.atPunct("&&") {
		p.advance()
		right, err := p.parseEquality(allowStruct)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: ast.LogAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseEquality(allowStruct bool) (ast.Node, error) {
	left, err := p.parseRelational(allowStruct)
	if err != nil {
		return nil, err
	}
	for p.atPunct("==") || p.atPunct("!=") {
		op := ast.Eq
		if p.atPunct("!=") {
			op = ast.Ne
		}
		p.advance()
		right, err := p.parseRelational(allowStruct)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseRelational(allowStruct bool) (ast.Node, error) {
	left, err := p.parseAdditive(allowStruct)
	if err != nil {
		return nil, err
	}
	for p.atPunct("<") || p.atPunct("<=") || p.atPunct(">") || p.atPunct(">=") {
		var op ast.BinOp
		switch {
		case p.atPunct("<="):
			op = ast.Le
		case p.atPunct(">="):
			op = ast.Ge
		case p.atPunct("<"):
			op = ast.Lt
		default:
			op = ast.Gt
		}
		p.advance()
		right, err := p.parseAdditive(allowStruct)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAdditive(allowStruct bool) (ast.Node, error) {
	left, err := p.parseMultiplicative(allowStruct)
	if err != nil {
		return nil, err
	}
	for p.atPunct("+") || p.atPunct("-") {
		op := ast.Add
		if p.atPunct("-") {
			op = ast.Sub
		}
		p.advance()
		right, err := p.parseMultiplicative(allowStruct)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative(allowStruct bool) (ast.Node, error) {
	left, err := p.parseUnary(allowStruct)
	if err != nil {
		return nil, err
	}
	for p.atPunct("*") || p.atPunct("/") || p.atPunct("%") {
		var op ast.BinOp
		switch {
		case p.atPunct("*"):
			op = ast.Mul
		case p.atPunct("/"):
			op = ast.Div
		default:
			op = ast.Rem
		}
		p.advance()
		right, err := p.parseUnary(allowStruct)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary(allowStruct bool) (ast.Node, error) {
	if p.atPunct("-") {
		p.advance()
		operand, err := p.parseUnary(allowStruct)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: ast.Neg, Operand: operand}, nil
	}
	if p.atPunct("!") {
		p.advance()
		operand, err := p.parseUnary(allowStruct)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: ast.Not, Operand: operand}, nil
	}
	if p.atPunct("&") {
		p.advance()
		operand, err := p.parseUnary(allowStruct)
		if err != nil {
			return nil, err
		}
		return &ast.Reference{Inner: operand}, nil
	}
	return p.parsePostfix(allowStruct)
}

func (p *parser) parsePostfix(allowStruct bool) (ast.Node, error) {
	expr, err := p.parsePrimary(allowStruct)
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.atPunct("."):
			p.advance()
			field, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			if p.atPunct("(") {
				args, err := p.parseArgList()
				if err != nil {
					return nil, err
				}
				expr = &ast.MethodCall{Object: expr, Name: field, Args: args}
			} else {
				expr = &ast.MemberAccess{Object: expr, Field: field}
			}
		case p.atPunct("["):
			p.advance()
			index, err := p.parseExpr(true)
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			expr = &ast.Index{Array: expr, Index: index}
		default:
			return expr, nil
		}
	}
}

func (p *parser) parseArgList() ([]ast.Node, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []ast.Node
	for !p.atPunct(")") {
		arg, err := p.parseExpr(true)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.atPunct(",") {
			p.advance()
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parsePrimary(allowStruct bool) (ast.Node, error) {
	t := p.peek()
	switch t.kind {
	case "Number":
		p.advance()
		n, err := strconv.ParseInt(t.value, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid integer literal %q", t.value)
		}
		return &ast.Number{Value: n}, nil
	case "String":
		p.advance()
		return &ast.StringLit{Value: unquoteString(t.value)}, nil
	case "Char":
		p.advance()
		return &ast.Character{Value: unquoteChar(t.value)}, nil
	case "Punct":
		if t.value == "(" {
			p.advance()
			inner, err := p.parseExpr(true)
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			return inner, nil
		}
		if t.value == "[" {
			return p.parseArrayLit()
		}
	}
	if p.atKeyword("true") {
		p.advance()
		return &ast.Boolean{Value: true}, nil
	}
	if p.atKeyword("false") {
		p.advance()
		return &ast.Boolean{Value: false}, nil
	}
	if p.atKeyword("match") {
		return p.parseMatch()
	}
	if p.at("Ident") {
		return p.parseIdentExpr(allowStruct)
	}
	return nil, p.errorf("unexpected token %q in expression", t.value)
}

func (p *parser) parseArrayLit() (ast.Node, error) {
	if err := p.expectPunct("["); err != nil {
		return nil, err
	}
	var elems []ast.Node
	for !p.atPunct("]") {
		el, err := p.parseExpr(true)
		if err != nil {
			return nil, err
		}
		elems = append(elems, el)
		if p.atPunct(",") {
			p.advance()
		}
	}
	if err := p.expectPunct("]"); err != nil {
		return nil, err
	}
	return &ast.ArrayLit{Elements: elems}, nil
}

// parseIdentExpr disambiguates a leading identifier into a call, an enum
// value, a struct initializer, or a bare identifier reference.
func (p *parser) parseIdentExpr(allowStruct bool) (ast.Node, error) {
	name := p.advance().value

	if p.atPunct("::") {
		p.advance()
		variant, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		var value ast.Node
		if p.atPunct("(") {
			p.advance()
			value, err = p.parseExpr(true)
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
		}
		return &ast.EnumValue{Enum: name, Variant: variant, Value: value}, nil
	}

	if p.atPunct("(") {
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		return &ast.Call{Name: name, Args: args}, nil
	}

	if allowStruct && p.atPunct("{") {
		return p.parseStructInit(name)
	}

	return &ast.Identifier{Name: name}, nil
}

func (p *parser) parseStructInit(name string) (ast.Node, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var fields []ast.FieldInit
	for !p.atPunct("}") {
		fname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		value, err := p.parseExpr(true)
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.FieldInit{Name: fname, Value: value})
		if p.atPunct(",") {
			p.advance()
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return &ast.StructInit{Name: name, Fields: fields}, nil
}

// parseMatch parses both the statement and expression forms of match;
// every arm body is either a block or a single expression (spec §4.5
// "match").
func (p *parser) parseMatch() (ast.Node, error) {
	if err := p.expectKeyword("match"); err != nil {
		return nil, err
	}
	value, err := p.parseExpr(false)
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var arms []ast.MatchArm
	for !p.atPunct("}") {
		pattern, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct("=>"); err != nil {
			return nil, err
		}
		var body ast.Node
		if p.atPunct("{") {
			body, err = p.parseBlock()
		} else {
			body, err = p.parseExpr(true)
		}
		if err != nil {
			return nil, err
		}
		arms = append(arms, ast.MatchArm{Pattern: pattern, Body: body})
		if p.atPunct(",") {
			p.advance()
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return &ast.Match{Value: value, Arms: arms}, nil
}

func (p *parser) parsePattern() (ast.Pattern, error) {
	if p.at("Ident") && p.peek().value == "_" {
		p.advance()
		return ast.Pattern{Kind: ast.PatternWildcard}, nil
	}
	if p.at("Number") {
		n, err := strconv.ParseInt(p.advance().value, 10, 64)
		if err != nil {
			return ast.Pattern{}, p.errorf("invalid integer pattern")
		}
		return ast.Pattern{Kind: ast.PatternInt, Int: n}, nil
	}
	if p.at("String") {
		s := unquoteString(p.advance().value)
		return ast.Pattern{Kind: ast.PatternString, Str: s}, nil
	}
	if p.at("Ident") {
		name := p.advance().value
		if p.atPunct("::") {
			p.advance()
			variant, err := p.expectIdent()
			if err != nil {
				return ast.Pattern{}, err
			}
			binding := ""
			if p.atPunct("(") {
				p.advance()
				binding, err = p.expectIdent()
				if err != nil {
					return ast.Pattern{}, err
				}
				if err := p.expectPunct(")"); err != nil {
					return ast.Pattern{}, err
				}
			}
			return ast.Pattern{Kind: ast.PatternEnum, Enum: name, Variant: variant, Binding: binding}, nil
		}
		return ast.Pattern{Kind: ast.PatternIdent, Binding: name}, nil
	}
	return ast.Pattern{}, p.errorf("unexpected token %q in pattern", p.peek().value)
}

var reservedWords = map[string]bool{
	"fn": true, "let": true, "struct": true, "enum": true, "if": true, "else": true,
	"while": true, "for": true, "in": true, "return": true, "break": true, "continue": true,
	"match": true, "export": true, "import": true, "from": true, "mut": true,
	"true": true, "false": true,
}

func isReservedWord(name string) bool {
	return reservedWords[name]
}

func unquoteString(lit string) string {
	inner := lit[1 : len(lit)-1]
	return unescapeBrain(inner)
}

func unquoteChar(lit string) byte {
	inner := lit[1 : len(lit)-1]
	unescaped := unescapeBrain(inner)
	if len(unescaped) == 0 {
		return 0
	}
	return unescaped[0]
}

// unescapeBrain resolves the small set of backslash escapes source text may
// contain: \n, \r, \t, \\, \", \'.
func unescapeBrain(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case '\'':
				b.WriteByte('\'')
			default:
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
