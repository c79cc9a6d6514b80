package formula

import "fmt"

func precedence(t Token) int {
	if t.Kind == Negate {
		return 4
	}
	switch t.Text {
	case "+", "-":
		return 1
	case "*", "/", "%":
		return 2
	case "^":
		return 3
	}
	return 0
}

func rightAssoc(t Token) bool {
	return t.Kind == Negate || t.Text == "^"
}

// frame tracks one open parenthesis. call is set when the paren opens a
// function's argument list.
type frame struct {
	call bool
	argc int
}

// ToRPN converts an infix token stream into postfix order using the
// shunting-yard algorithm. Function tokens are emitted when their closing
// paren is reached, carrying their argument count, which is checked
// against the function table.
func ToRPN(expr string, toks []Token) ([]Token, error) {
	out := make([]Token, 0, len(toks))
	var ops []Token
	var frames []frame

	for i, tok := range toks {
		switch tok.Kind {
		case Number, Ident:
			out = append(out, tok)

		case Func:
			ops = append(ops, tok)

		case Negate:
			ops = append(ops, tok)

		case Operator:
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				if top.Kind != Operator && top.Kind != Negate {
					break
				}
				if precedence(top) > precedence(tok) || (precedence(top) == precedence(tok) && !rightAssoc(tok)) {
					out = append(out, top)
					ops = ops[:len(ops)-1]
					continue
				}
				break
			}
			ops = append(ops, tok)

		case LParen:
			call := i > 0 && toks[i-1].Kind == Func
			frames = append(frames, frame{call: call})
			ops = append(ops, tok)

		case Comma:
			if len(frames) == 0 || !frames[len(frames)-1].call {
				return nil, &SyntaxError{Expr: expr, Pos: tok.Pos, Msg: "comma outside a function call"}
			}
			for len(ops) > 0 && ops[len(ops)-1].Kind != LParen {
				out = append(out, ops[len(ops)-1])
				ops = ops[:len(ops)-1]
			}
			frames[len(frames)-1].argc++

		case RParen:
			for len(ops) > 0 && ops[len(ops)-1].Kind != LParen {
				out = append(out, ops[len(ops)-1])
				ops = ops[:len(ops)-1]
			}
			if len(ops) == 0 || len(frames) == 0 {
				return nil, &SyntaxError{Expr: expr, Pos: tok.Pos, Msg: "unmatched )"}
			}
			ops = ops[:len(ops)-1]
			fr := frames[len(frames)-1]
			frames = frames[:len(frames)-1]
			if fr.call {
				fn := ops[len(ops)-1]
				ops = ops[:len(ops)-1]
				fn.Argc = fr.argc + 1
				if err := checkArity(expr, fn); err != nil {
					return nil, err
				}
				out = append(out, fn)
			}
		}
	}

	for len(ops) > 0 {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		if top.Kind == LParen || top.Kind == Func {
			return nil, &SyntaxError{Expr: expr, Pos: top.Pos, Msg: "unmatched ("}
		}
		out = append(out, top)
	}
	return out, nil
}

func checkArity(expr string, fn Token) error {
	spec := functions[fn.Text]
	if fn.Argc < spec.minArgs || (spec.maxArgs >= 0 && fn.Argc > spec.maxArgs) {
		var want string
		switch {
		case spec.maxArgs < 0:
			want = fmt.Sprintf("at least %d", spec.minArgs)
		case spec.minArgs == spec.maxArgs:
			want = fmt.Sprintf("%d", spec.minArgs)
		default:
			want = fmt.Sprintf("%d to %d", spec.minArgs, spec.maxArgs)
		}
		return &SyntaxError{Expr: expr, Pos: fn.Pos, Msg: fmt.Sprintf("%s expects %s argument(s), got %d", fn.Text, want, fn.Argc)}
	}
	return nil
}
