package ir

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"
	"unicode"
)

// isIdentRune extends the scanner's default identifier-rune predicate so
// that '%' is recognized as (only) the leading rune of register tokens
// like "%t0", matching the textual shape PrintFunction emits.
func isIdentRune(ch rune, i int) bool {
	if i == 0 && ch == '%' {
		return true
	}
	return unicode.IsLetter(ch) || ch == '_' || (unicode.IsDigit(ch) && i > 0)
}

// ParseModule parses a subset of the textual IR shape PrintFunction emits
// (plus a `type` declaration section for records), used by the CLI to load test
// functions from a file. This is a convenience for manual testing and bug
// reports; analysis/di never calls it — it only ever sees a *Module built
// through Builder or handed to it directly by a caller.
//
// Grammar (informal):
//
//	type Name { field0: Type0, field1: Type1, ... }
//	func Name(conv name: Type, ...) {
//	  label:
//	    <instruction>
//	    ...
//	}
//
// Instructions follow the textual shape used by the `String` methods in
// instruction.go, e.g. `%t0 = alloc_stack Int` or `store %t1 into %t0`.
// Parameters are referenced as `%<param name>` (PrintFunction prints them
// as `%argN`). Only alloc_stack, borrow, load, store, deinit,
// dealloc_stack, return, branch, cond_branch and unreachable are
// recognized; call, record, destructure and end_borrow are not.
func ParseModule(src string) (*Module, error) {
	p := &parser{types: map[string]Type{}}
	p.s.Init(strings.NewReader(src))
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanStrings
	p.s.IsIdentRune = isIdentRune
	p.next()

	mod := NewModule()
	for p.tok != scanner.EOF {
		switch p.text {
		case "type":
			if err := p.parseTypeDecl(); err != nil {
				return nil, err
			}
		case "func":
			fn, err := p.parseFunc()
			if err != nil {
				return nil, err
			}
			mod.AddFunction(fn)
		default:
			return nil, p.errorf("expected 'type' or 'func', got %q", p.text)
		}
	}
	return mod, nil
}

type parser struct {
	s       scanner.Scanner
	tok     rune
	text    string
	types   map[string]Type
	fn      *Function
	blocks  map[string]*Block
	regs    map[string]Register
	pending []func() error // resolved once every block exists (branch targets)
}

func (p *parser) next() {
	p.tok = p.s.Scan()
	p.text = p.s.TokenText()
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("ir: parse error at %s: %s", p.s.Position, fmt.Sprintf(format, args...))
}

func (p *parser) expect(text string) error {
	if text == "->" {
		// text/scanner yields '-' and '>' as separate tokens.
		if err := p.expect("-"); err != nil {
			return err
		}
		return p.expect(">")
	}
	if p.text != text {
		return p.errorf("expected %q, got %q", text, p.text)
	}
	p.next()
	return nil
}

func (p *parser) parseTypeDecl() error {
	p.next() // 'type'
	name := p.text
	p.next()
	if err := p.expect("{"); err != nil {
		return err
	}
	var fields []Field
	for p.text != "}" {
		fname := p.text
		p.next()
		if err := p.expect(":"); err != nil {
			return err
		}
		ftypeName := p.text
		p.next()
		ftype, ok := p.types[ftypeName]
		if !ok {
			ftype = Scalar(ftypeName)
		}
		fields = append(fields, Field{Name: fname, Type: ftype})
		if p.text == "," {
			p.next()
		}
	}
	p.next() // '}'
	p.types[name] = RecordType(name, fields...)
	return nil
}

func (p *parser) resolveType() Type {
	name := p.text
	p.next()
	if t, ok := p.types[name]; ok {
		return t
	}
	return Scalar(name)
}

func conventionOf(s string) (Convention, bool) {
	switch s {
	case "let":
		return Let, true
	case "inout":
		return Inout, true
	case "set":
		return Set, true
	case "sink":
		return Sink, true
	case "yielded":
		return Yielded, true
	default:
		return 0, false
	}
}

func (p *parser) parseFunc() (*Function, error) {
	p.next() // 'func'
	name := p.text
	p.next()
	if err := p.expect("("); err != nil {
		return nil, err
	}

	var params []Param
	for p.text != ")" {
		conv, ok := conventionOf(p.text)
		if !ok {
			return nil, p.errorf("expected a convention, got %q", p.text)
		}
		p.next()
		pname := p.text
		p.next()
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		ptype := p.resolveType()
		params = append(params, Param{Name: pname, Convention: conv, Type: ptype})
		if p.text == "," {
			p.next()
		}
	}
	p.next() // ')'

	fn := NewFunction(name, params...)
	p.fn = fn
	p.blocks = map[string]*Block{}
	p.regs = map[string]Register{}
	for i, param := range fn.Params {
		p.regs["%"+param.Name] = ParamRegister(i)
	}

	if err := p.expect("{"); err != nil {
		return nil, err
	}

	// First pass: discover block labels so forward branches resolve.
	labels, body, err := splitBlocks(p)
	if err != nil {
		return nil, err
	}
	for _, l := range labels {
		p.blocks[l] = fn.AddBlock(l)
	}
	for i, l := range labels {
		b := &parser{types: p.types, fn: fn, blocks: p.blocks, regs: cloneRegs(p.regs)}
		b.s.Init(strings.NewReader(body[i]))
		b.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanStrings
		b.s.IsIdentRune = isIdentRune
		b.next()
		if err := b.parseInstrs(p.blocks[l]); err != nil {
			return nil, err
		}
		// Registers defined in a block become visible to later blocks
		// parsed against the *original* register environment plus
		// everything seen so far, matching the dominance-based
		// visibility DI itself assumes.
		for k, v := range b.regs {
			p.regs[k] = v
		}
	}

	return fn, nil
}

func cloneRegs(m map[string]Register) map[string]Register {
	out := make(map[string]Register, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// splitBlocks scans the `label:` delimited body of a function, returning
// the labels in order and the raw instruction text belonging to each.
func splitBlocks(p *parser) ([]string, []string, error) {
	var labels []string
	var bodies []string
	var cur strings.Builder

	for p.text != "}" {
		if p.tok == scanner.EOF {
			return nil, nil, p.errorf("unexpected EOF in function body")
		}
		// A label is an identifier immediately followed by ':'.
		if p.tok == scanner.Ident {
			save := p.s
			saveTok, saveText := p.tok, p.text
			p.next()
			if p.text == ":" {
				if len(labels) > 0 {
					bodies = append(bodies, cur.String())
					cur.Reset()
				}
				labels = append(labels, saveText)
				p.next()
				continue
			}
			// Not a label; restore and fall through to generic token
			// accumulation using the token we already consumed.
			p.s = save
			p.tok, p.text = saveTok, saveText
		}
		cur.WriteString(p.text)
		cur.WriteString(" ")
		p.next()
	}
	bodies = append(bodies, cur.String())
	p.next() // '}'
	return labels, bodies, nil
}

func (p *parser) parseInstrs(b *Block) error {
	bu := NewBuilder(p.fn, b)
	for p.tok != scanner.EOF {
		if err := p.parseInstr(bu); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) reg(name string) (Register, error) {
	if r, ok := p.regs[name]; ok {
		return r, nil
	}
	return Register{}, p.errorf("undefined register %q", name)
}

func (p *parser) parsePath() Path {
	var path Path
	for p.text == "." {
		p.next()
		n, _ := strconv.Atoi(p.text)
		path = path.Append(n)
		p.next()
	}
	return path
}

func (p *parser) parseInstr(bu *Builder) error {
	rng := Range{Line: p.s.Pos().Line, Col: p.s.Pos().Column}

	// Forms starting with a destination register: "%tN = op ...".
	if strings.HasPrefix(p.text, "%") {
		dst := p.text
		p.next()
		if err := p.expect("="); err != nil {
			return err
		}
		op := p.text
		p.next()
		switch op {
		case "alloc_stack":
			t := p.resolveType()
			ins := bu.AllocStack(t, rng)
			p.regs[dst] = ResultRegister(ins, 0)
		case "borrow":
			conv, ok := conventionOf(p.text)
			if !ok {
				return p.errorf("expected capability, got %q", p.text)
			}
			p.next()
			src, err := p.reg(p.text)
			if err != nil {
				return err
			}
			p.next()
			path := p.parsePath()
			ins := bu.Borrow(conv, src, path, rng)
			p.regs[dst] = ResultRegister(ins, 0)
		case "load":
			if err := p.expect("("); err != nil {
				return err
			}
			t := p.resolveType()
			if err := p.expect(","); err != nil {
				return err
			}
			src, err := p.reg(p.text)
			if err != nil {
				return err
			}
			p.next()
			path := p.parsePath()
			if err := p.expect(")"); err != nil {
				return err
			}
			ins := bu.Load(t, src, path, rng)
			p.regs[dst] = ResultRegister(ins, 0)
		default:
			return p.errorf("unsupported instruction form %q", op)
		}
		return nil
	}

	switch p.text {
	case "store":
		p.next()
		obj, err := p.reg(p.text)
		if err != nil {
			return err
		}
		p.next()
		if err := p.expect("into"); err != nil {
			return err
		}
		target, err := p.reg(p.text)
		if err != nil {
			return err
		}
		p.next()
		bu.Store(obj, target, rng)
	case "deinit":
		p.next()
		obj, err := p.reg(p.text)
		if err != nil {
			return err
		}
		p.next()
		bu.Deinit(obj, rng)
	case "dealloc_stack":
		p.next()
		loc, err := p.reg(p.text)
		if err != nil {
			return err
		}
		p.next()
		bu.DeallocStack(loc, rng)
	case "return":
		p.next()
		if strings.HasPrefix(p.text, "%") {
			v, err := p.reg(p.text)
			if err != nil {
				return err
			}
			p.next()
			bu.Return(v, true, rng)
		} else {
			bu.Return(Register{}, false, rng)
		}
	case "branch":
		p.next()
		if err := p.expect("->"); err != nil {
			return err
		}
		target := p.blocks[p.text]
		p.next()
		bu.Branch(target, rng)
	case "cond_branch":
		p.next()
		cond, err := p.reg(p.text)
		if err != nil {
			return err
		}
		p.next()
		if err := p.expect("->"); err != nil {
			return err
		}
		t := p.blocks[p.text]
		p.next()
		if err := p.expect(","); err != nil {
			return err
		}
		f := p.blocks[p.text]
		p.next()
		bu.CondBranch(cond, t, f, rng)
	case "unreachable":
		p.next()
		bu.Unreachable(rng)
	default:
		return p.errorf("unsupported instruction form %q", p.text)
	}
	return nil
}
