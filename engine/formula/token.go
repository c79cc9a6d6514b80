package formula

import (
	"strconv"
	"unicode"
)

// Kind classifies a token.
type Kind int

const (
	Number Kind = iota
	Ident
	Operator // binary + - * / % ^
	Negate   // unary minus
	Func
	LParen
	RParen
	Comma
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Ident:
		return "identifier"
	case Operator:
		return "operator"
	case Negate:
		return "negate"
	case Func:
		return "function"
	case LParen:
		return "("
	case RParen:
		return ")"
	case Comma:
		return ","
	}
	return "unknown"
}

// Token is one lexical unit of a formula. Argc is filled in by ToRPN for
// function tokens.
type Token struct {
	Kind  Kind
	Text  string
	Value float64
	Pos   int
	Argc  int
}

// Tokenize scans expr into tokens. A '-' is a unary negate when a value is
// expected (start of input, after an operator, '(' or ','), and binary
// otherwise. A unary '+' is dropped. Identifiers may be dotted; a bare
// name followed by '(' must be a known function.
func Tokenize(expr string) ([]Token, error) {
	var toks []Token
	src := []rune(expr)
	expectValue := true
	i := 0

	value := func(tok Token) error {
		if !expectValue {
			return &SyntaxError{Expr: expr, Pos: tok.Pos, Msg: "unexpected " + tok.Kind.String() + " " + strconv.Quote(tok.Text)}
		}
		toks = append(toks, tok)
		expectValue = false
		return nil
	}

	for i < len(src) {
		c := src[i]
		switch {
		case unicode.IsSpace(c):
			i++

		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			start := i
			for i < len(src) && (isDigit(src[i]) || src[i] == '.') {
				i++
			}
			if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
				j := i + 1
				if j < len(src) && (src[j] == '+' || src[j] == '-') {
					j++
				}
				if j < len(src) && isDigit(src[j]) {
					i = j
					for i < len(src) && isDigit(src[i]) {
						i++
					}
				}
			}
			text := string(src[start:i])
			n, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, &SyntaxError{Expr: expr, Pos: start, Msg: "malformed number " + strconv.Quote(text)}
			}
			if err := value(Token{Kind: Number, Text: text, Value: n, Pos: start}); err != nil {
				return nil, err
			}

		case isIdentStart(c):
			start := i
			for i < len(src) && (isIdentPart(src[i]) || src[i] == '.') {
				if src[i] == '.' && (i+1 >= len(src) || !isIdentStart(src[i+1])) {
					return nil, &SyntaxError{Expr: expr, Pos: i, Msg: "malformed identifier"}
				}
				i++
			}
			name := string(src[start:i])
			j := i
			for j < len(src) && unicode.IsSpace(src[j]) {
				j++
			}
			if j < len(src) && src[j] == '(' {
				if _, ok := functions[name]; !ok {
					return nil, &UnknownFunctionError{Expr: expr, Name: name, Pos: start}
				}
				if !expectValue {
					return nil, &SyntaxError{Expr: expr, Pos: start, Msg: "unexpected function " + strconv.Quote(name)}
				}
				toks = append(toks, Token{Kind: Func, Text: name, Pos: start})
				continue
			}
			if err := value(Token{Kind: Ident, Text: name, Pos: start}); err != nil {
				return nil, err
			}

		case c == '+' || c == '-' || c == '*' || c == '/' || c == '%' || c == '^':
			pos := i
			i++
			if expectValue {
				switch c {
				case '-':
					toks = append(toks, Token{Kind: Negate, Text: "-", Pos: pos})
					continue
				case '+':
					continue
				}
				return nil, &SyntaxError{Expr: expr, Pos: pos, Msg: "operator " + strconv.Quote(string(c)) + " is missing its left operand"}
			}
			toks = append(toks, Token{Kind: Operator, Text: string(c), Pos: pos})
			expectValue = true

		case c == '(':
			if !expectValue {
				return nil, &SyntaxError{Expr: expr, Pos: i, Msg: "unexpected ("}
			}
			toks = append(toks, Token{Kind: LParen, Text: "(", Pos: i})
			i++

		case c == ')':
			if expectValue {
				return nil, &SyntaxError{Expr: expr, Pos: i, Msg: "expected a value before )"}
			}
			toks = append(toks, Token{Kind: RParen, Text: ")", Pos: i})
			i++

		case c == ',':
			if expectValue {
				return nil, &SyntaxError{Expr: expr, Pos: i, Msg: "expected a value before ,"}
			}
			toks = append(toks, Token{Kind: Comma, Text: ",", Pos: i})
			expectValue = true
			i++

		default:
			return nil, &SyntaxError{Expr: expr, Pos: i, Msg: "unexpected character " + strconv.QuoteRune(c)}
		}
	}

	if len(toks) == 0 {
		return nil, &SyntaxError{Expr: expr, Pos: 0, Msg: "empty expression"}
	}
	if expectValue {
		return nil, &SyntaxError{Expr: expr, Pos: len(src), Msg: "unexpected end of expression"}
	}
	return toks, nil
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

func isIdentStart(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

func isIdentPart(c rune) bool {
	return isIdentStart(c) || isDigit(c)
}
