package formula

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/nathoo/battlecore/types"
)

func actor(atk, def, hp, maxHP int) *types.Actor {
	return &types.Actor{
		ID:    "a",
		Alive: true,
		Stats: types.Stats{Atk: atk, Def: def, HP: hp, MaxHP: maxHP, Level: 3},
		Tags:  []string{"undead"},
	}
}

func TestCompile_RoundTrip(t *testing.T) {
	p, err := Compile("floor(u.atk * 2 - t.def)")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	u, tg := actor(10, 0, 1, 1), actor(0, 3, 1, 1)

	first, err := p.Eval(u, tg, nil)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if first != 17 {
		t.Errorf("Eval = %v, want 17", first)
	}
	second, _ := p.Eval(u, tg, nil)
	if first != second {
		t.Errorf("second Eval = %v, want %v", second, first)
	}
}

func TestEval_Arithmetic(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 - 4 - 3", 3},
		{"2 ^ 3 ^ 2", 512},
		{"-2 ^ 2", 4},
		{"2 ^ -1", 0.5},
		{"--3", 3},
		{"+4", 4},
		{"7 % 4", 3},
		{"8 / 4 / 2", 1},
		{"-(1 + 2) * 2", -6},
		{"1.5e1", 15},
		{".5 * 4", 2},
		{"min(3, 1, 2)", 1},
		{"max(3, 9)", 9},
		{"max(4)", 4},
		{"ceil(1.2)", 2},
		{"abs(-5)", 5},
		{"round(2.5)", 3},
		{"round(-2.5)", -2},
		{"sqrt(16)", 4},
		{"pow(2, 10)", 1024},
		{"clamp(15, 0, 10)", 10},
		{"clamp(-1, 0, 10)", 0},
		{"max(1, min(5, 3) * 2)", 6},
		{"true + true", 2},
		{"false", 0},
		{"floor(PI)", 3},
	}
	for _, tt := range tests {
		p, err := Compile(tt.expr)
		if err != nil {
			t.Errorf("Compile(%q): %v", tt.expr, err)
			continue
		}
		got, err := p.Eval(nil, nil, nil)
		if err != nil {
			t.Errorf("Eval(%q): %v", tt.expr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Eval(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestEval_ActorPaths(t *testing.T) {
	u := actor(10, 2, 20, 40)
	u.Mods = map[string]float64{"atk": 5}
	u.Statuses = []types.Status{{ID: "poison", Turns: 2, Stacks: 3}}

	tests := []struct {
		expr string
		want float64
	}{
		{"u.hpPct", 0.5},
		{"u.atk", 15},
		{"u.stats.atk", 10},
		{"u.status.poison", 3},
		{"u.status.burn", 0},
		{"u.tag.undead", 1},
		{"u.tag.beast", 0},
		{"u.lv * 2", 6},
		{"ctx.power + 1", 5},
	}
	for _, tt := range tests {
		p, err := Compile(tt.expr)
		if err != nil {
			t.Errorf("Compile(%q): %v", tt.expr, err)
			continue
		}
		got, err := p.Eval(u, u, types.EvalContext{"power": 4})
		if err != nil {
			t.Errorf("Eval(%q): %v", tt.expr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Eval(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestEval_DivisionByZeroIsNonFinite(t *testing.T) {
	p := MustCompile("1 / 0")
	got, err := p.Eval(nil, nil, nil)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !math.IsInf(got, 1) {
		t.Errorf("Eval = %v, want +Inf", got)
	}
}

func TestEval_MissingContextKey(t *testing.T) {
	p := MustCompile("ctx.combo * 2")

	_, err := p.Eval(nil, nil, types.EvalContext{})
	var uie *UnknownIdentifierError
	if !errors.As(err, &uie) {
		t.Fatalf("err = %v, want UnknownIdentifierError", err)
	}
	if uie.Path != "ctx.combo" {
		t.Errorf("Path = %q, want %q", uie.Path, "ctx.combo")
	}
}

func TestEval_MissingActor(t *testing.T) {
	p := MustCompile("t.def")

	_, err := p.Eval(actor(1, 1, 1, 1), nil, nil)
	var ee *EvalError
	if !errors.As(err, &ee) {
		t.Fatalf("err = %v, want EvalError", err)
	}
}

func TestCompile_SyntaxErrors(t *testing.T) {
	tests := []struct {
		expr string
		msg  string
	}{
		{"", "empty expression"},
		{"1 +", "unexpected end"},
		{"* 2", "missing its left operand"},
		{"(1 + 2", "unmatched ("},
		{"1 + 2)", "unmatched )"},
		{"1 2", "unexpected number"},
		{"floor()", "expected a value"},
		{"floor(1, 2)", "floor expects 1"},
		{"pow(2)", "pow expects 2"},
		{"clamp(1, 2)", "clamp expects 3"},
		{"(1, 2)", "comma outside"},
		{"1 $ 2", "unexpected character"},
		{"u.", "malformed identifier"},
		{"1.2.3", "malformed number"},
	}
	for _, tt := range tests {
		_, err := Compile(tt.expr)
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Errorf("Compile(%q) err = %v, want SyntaxError", tt.expr, err)
			continue
		}
		if !strings.Contains(se.Msg, tt.msg) {
			t.Errorf("Compile(%q) msg = %q, want containing %q", tt.expr, se.Msg, tt.msg)
		}
	}
}

func TestCompile_UnknownFunction(t *testing.T) {
	_, err := Compile("hypot(3, 4)")
	var ufe *UnknownFunctionError
	if !errors.As(err, &ufe) {
		t.Fatalf("err = %v, want UnknownFunctionError", err)
	}
	if ufe.Name != "hypot" {
		t.Errorf("Name = %q, want %q", ufe.Name, "hypot")
	}
}

func TestCompile_UnknownIdentifier(t *testing.T) {
	for _, expr := range []string{"x + 1", "u", "u.charisma", "u.stats.luck", "ctx", "ctx.a.b", "q.atk"} {
		_, err := Compile(expr)
		var uie *UnknownIdentifierError
		if !errors.As(err, &uie) {
			t.Errorf("Compile(%q) err = %v, want UnknownIdentifierError", expr, err)
		}
	}
}

func TestToRPN_Order(t *testing.T) {
	toks, err := Tokenize("max(1, 2 * -3) ^ 2")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	rpn, err := ToRPN("", toks)
	if err != nil {
		t.Fatalf("ToRPN: %v", err)
	}

	var got []string
	for _, tok := range rpn {
		got = append(got, tok.Text)
	}
	want := "1 2 3 - * max 2 ^"
	if strings.Join(got, " ") != want {
		t.Errorf("RPN = %q, want %q", strings.Join(got, " "), want)
	}
	for _, tok := range rpn {
		if tok.Kind == Func && tok.Argc != 2 {
			t.Errorf("max Argc = %d, want 2", tok.Argc)
		}
	}
}

func TestTokenize_UnaryMinus(t *testing.T) {
	toks, err := Tokenize("-1 - -u.atk")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	kinds := []Kind{Negate, Number, Operator, Negate, Ident}
	if len(toks) != len(kinds) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(kinds))
	}
	for i, k := range kinds {
		if toks[i].Kind != k {
			t.Errorf("token %d kind = %v, want %v", i, toks[i].Kind, k)
		}
	}
}
