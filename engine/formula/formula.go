// Package formula compiles the arithmetic expressions used in effect values
// (for example "floor(u.atk * 1.5 - t.def)") into programs that evaluate
// against a user actor, a target actor and a context bag.
//
// Compilation runs in three stages: Tokenize, ToRPN (shunting-yard) and
// identifier binding. Evaluation is a stack machine over the RPN stream.
package formula

import (
	"fmt"
	"math"
	"strings"

	"github.com/nathoo/battlecore/engine/state"
	"github.com/nathoo/battlecore/types"
)

// SyntaxError reports a malformed expression. Pos is a rune offset.
type SyntaxError struct {
	Expr string
	Pos  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("formula %q: %s at position %d", e.Expr, e.Msg, e.Pos)
}

// UnknownFunctionError reports a call to a name outside the function table.
type UnknownFunctionError struct {
	Expr string
	Name string
	Pos  int
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("formula %q: unknown function %q at position %d", e.Expr, e.Name, e.Pos)
}

// UnknownIdentifierError reports a path that cannot be resolved, either at
// compile time (bad root or field) or at evaluation time (missing ctx key).
type UnknownIdentifierError struct {
	Path string
}

func (e *UnknownIdentifierError) Error() string {
	return fmt.Sprintf("unknown identifier %q", e.Path)
}

// EvalError reports a failure while running a compiled program.
type EvalError struct {
	Expr string
	Msg  string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("formula %q: %s", e.Expr, e.Msg)
}

type function struct {
	minArgs int
	maxArgs int // -1 for variadic
	apply   func(args []float64) float64
}

var functions = map[string]function{
	"min": {1, -1, func(a []float64) float64 {
		m := a[0]
		for _, v := range a[1:] {
			m = math.Min(m, v)
		}
		return m
	}},
	"max": {1, -1, func(a []float64) float64 {
		m := a[0]
		for _, v := range a[1:] {
			m = math.Max(m, v)
		}
		return m
	}},
	"floor": {1, 1, func(a []float64) float64 { return math.Floor(a[0]) }},
	"ceil":  {1, 1, func(a []float64) float64 { return math.Ceil(a[0]) }},
	"abs":   {1, 1, func(a []float64) float64 { return math.Abs(a[0]) }},
	"round": {1, 1, func(a []float64) float64 { return math.Floor(a[0] + 0.5) }},
	"sqrt":  {1, 1, func(a []float64) float64 { return math.Sqrt(a[0]) }},
	"pow":   {2, 2, func(a []float64) float64 { return math.Pow(a[0], a[1]) }},
	"clamp": {3, 3, func(a []float64) float64 { return math.Max(a[1], math.Min(a[2], a[0])) }},
}

type root int

const (
	rootConst root = iota
	rootUser
	rootTarget
	rootCtx
)

type field int

const (
	fieldMetric field = iota // u.hpPct, u.atk
	fieldStat                // u.stats.atk (unmodified)
	fieldStatus              // u.status.poison (stack count)
	fieldTag                 // u.tag.undead (1 or 0)
)

// ref is a bound identifier.
type ref struct {
	root  root
	field field
	name  string
	value float64 // rootConst
	path  string
}

var constants = map[string]float64{
	"PI":    math.Pi,
	"E":     math.E,
	"true":  1,
	"false": 0,
}

func bind(path string) (ref, error) {
	if v, ok := constants[path]; ok {
		return ref{root: rootConst, value: v, path: path}, nil
	}
	parts := strings.Split(path, ".")
	r := ref{path: path}
	switch parts[0] {
	case "u":
		r.root = rootUser
	case "t":
		r.root = rootTarget
	case "ctx":
		if len(parts) != 2 {
			return ref{}, &UnknownIdentifierError{Path: path}
		}
		r.root = rootCtx
		r.name = parts[1]
		return r, nil
	default:
		return ref{}, &UnknownIdentifierError{Path: path}
	}

	switch {
	case len(parts) == 2 && state.IsMetric(parts[1]):
		r.field, r.name = fieldMetric, parts[1]
	case len(parts) == 3 && parts[1] == "stats":
		if _, ok := state.Stat(&types.Actor{}, parts[2]); !ok {
			return ref{}, &UnknownIdentifierError{Path: path}
		}
		r.field, r.name = fieldStat, parts[2]
	case len(parts) == 3 && parts[1] == "status":
		r.field, r.name = fieldStatus, parts[2]
	case len(parts) == 3 && parts[1] == "tag":
		r.field, r.name = fieldTag, parts[2]
	default:
		return ref{}, &UnknownIdentifierError{Path: path}
	}
	return r, nil
}

// Program is a compiled formula. It is immutable and safe to share.
type Program struct {
	src  string
	code []Token
	refs map[int]ref // index into code -> bound identifier
}

// Compile tokenizes, parses and binds expr. Every error it returns is a
// content error: *SyntaxError, *UnknownFunctionError or
// *UnknownIdentifierError.
func Compile(expr string) (*Program, error) {
	toks, err := Tokenize(expr)
	if err != nil {
		return nil, err
	}
	code, err := ToRPN(expr, toks)
	if err != nil {
		return nil, err
	}
	p := &Program{src: expr, code: code, refs: map[int]ref{}}
	for i, tok := range code {
		if tok.Kind != Ident {
			continue
		}
		r, err := bind(tok.Text)
		if err != nil {
			return nil, err
		}
		p.refs[i] = r
	}
	return p, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(expr string) *Program {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source expression.
func (p *Program) String() string { return p.src }

// Eval runs the program. The result may be non-finite (division by zero);
// callers decide how to treat that.
func (p *Program) Eval(user, target *types.Actor, ctx types.EvalContext) (float64, error) {
	stack := make([]float64, 0, 8)
	pop := func() float64 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}

	for i, tok := range p.code {
		switch tok.Kind {
		case Number:
			stack = append(stack, tok.Value)

		case Ident:
			v, err := p.lookup(p.refs[i], user, target, ctx)
			if err != nil {
				return 0, err
			}
			stack = append(stack, v)

		case Negate:
			if len(stack) < 1 {
				return 0, &EvalError{Expr: p.src, Msg: "stack underflow"}
			}
			stack = append(stack, -pop())

		case Operator:
			if len(stack) < 2 {
				return 0, &EvalError{Expr: p.src, Msg: "stack underflow"}
			}
			b, a := pop(), pop()
			stack = append(stack, binary(tok.Text, a, b))

		case Func:
			if len(stack) < tok.Argc {
				return 0, &EvalError{Expr: p.src, Msg: "stack underflow"}
			}
			args := make([]float64, tok.Argc)
			copy(args, stack[len(stack)-tok.Argc:])
			stack = stack[:len(stack)-tok.Argc]
			stack = append(stack, functions[tok.Text].apply(args))
		}
	}

	if len(stack) != 1 {
		return 0, &EvalError{Expr: p.src, Msg: fmt.Sprintf("malformed program leaves %d values", len(stack))}
	}
	return stack[0], nil
}

func binary(op string, a, b float64) float64 {
	switch op {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	case "/":
		return a / b
	case "%":
		return math.Mod(a, b)
	case "^":
		return math.Pow(a, b)
	}
	return math.NaN()
}

func (p *Program) lookup(r ref, user, target *types.Actor, ctx types.EvalContext) (float64, error) {
	var a *types.Actor
	switch r.root {
	case rootConst:
		return r.value, nil
	case rootCtx:
		v, ok := ctx[r.name]
		if !ok {
			return 0, &UnknownIdentifierError{Path: r.path}
		}
		return v, nil
	case rootUser:
		a = user
	case rootTarget:
		a = target
	}
	if a == nil {
		return 0, &EvalError{Expr: p.src, Msg: fmt.Sprintf("%q has no actor bound", r.path)}
	}

	switch r.field {
	case fieldMetric:
		v, _ := state.Metric(a, r.name)
		return v, nil
	case fieldStat:
		v, _ := state.Stat(a, r.name)
		return float64(v), nil
	case fieldStatus:
		return float64(state.StatusStacks(a, r.name)), nil
	case fieldTag:
		if state.HasTag(a, r.name) {
			return 1, nil
		}
		return 0, nil
	}
	return 0, &UnknownIdentifierError{Path: r.path}
}
