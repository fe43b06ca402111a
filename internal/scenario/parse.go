package scenario

import (
	"strings"
	"unicode"

	"github.com/TinsPHP/tins-symbols-sub001/inference/bindings"
	"github.com/TinsPHP/tins-symbols-sub001/inference/symbols"
	"github.com/pkg/errors"
)

// typeEnv resolves the names used in type expressions
type typeEnv struct {
	factory *symbols.Factory
	named   map[string]symbols.TypeSymbol
	// owner and typeVariables resolve the {as X} forms where X is a variable
	// or a type parameter rather than a type
	owner         *bindings.Collection
	typeVariables func(name string) (string, bool)
}

func (e *typeEnv) with(owner *bindings.Collection, typeVariables func(string) (string, bool)) *typeEnv {
	return &typeEnv{factory: e.factory, named: e.named, owner: owner, typeVariables: typeVariables}
}

func tokenize(expr string) ([]string, error) {
	var tokens []string
	runes := []rune(expr)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case strings.ContainsRune("|&(){}", r):
			tokens = append(tokens, string(r))
			i++
		case isIdentRune(r):
			start := i
			for i < len(runes) && isIdentRune(runes[i]) {
				i++
			}
			tokens = append(tokens, string(runes[start:i]))
		default:
			return nil, errors.Errorf("unexpected character %q in type %q", r, expr)
		}
	}
	return tokens, nil
}

func isIdentRune(r rune) bool {
	return r == '$' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

type typeParser struct {
	env    *typeEnv
	expr   string
	tokens []string
	pos    int
}

// parseType parses expressions such as int, int|float, num&scalar, {as num} and {as $x}
func (e *typeEnv) parseType(expr string) (symbols.TypeSymbol, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, errors.Errorf("empty type")
	}
	p := &typeParser{env: e, expr: expr, tokens: tokens}
	t, err := p.union()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, errors.Errorf("unexpected %q in type %q", p.tokens[p.pos], expr)
	}
	return t, nil
}

func (p *typeParser) peek() string {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return ""
}

func (p *typeParser) expect(token string) error {
	if p.peek() != token {
		return errors.Errorf("expected %q in type %q", token, p.expr)
	}
	p.pos++
	return nil
}

func (p *typeParser) union() (symbols.TypeSymbol, error) {
	first, err := p.intersection()
	if err != nil || p.peek() != "|" {
		return first, err
	}
	u := p.env.factory.CreateUnionTypeSymbol(first)
	for p.peek() == "|" {
		p.pos++
		next, err := p.intersection()
		if err != nil {
			return nil, err
		}
		u.AddTypeSymbol(next)
	}
	return u, nil
}

func (p *typeParser) intersection() (symbols.TypeSymbol, error) {
	first, err := p.atom()
	if err != nil || p.peek() != "&" {
		return first, err
	}
	i := p.env.factory.CreateIntersectionTypeSymbol(first)
	for p.peek() == "&" {
		p.pos++
		next, err := p.atom()
		if err != nil {
			return nil, err
		}
		i.AddTypeSymbol(next)
	}
	return i, nil
}

func (p *typeParser) atom() (symbols.TypeSymbol, error) {
	token := p.peek()
	switch token {
	case "":
		return nil, errors.Errorf("unexpected end of type %q", p.expr)
	case "(":
		p.pos++
		t, err := p.union()
		if err != nil {
			return nil, err
		}
		return t, p.expect(")")
	case "{":
		p.pos++
		if err := p.expect("as"); err != nil {
			return nil, err
		}
		conv, err := p.convertible()
		if err != nil {
			return nil, err
		}
		return conv, p.expect("}")
	}
	p.pos++
	if token == symbols.NothingName {
		return p.env.factory.CreateUnionTypeSymbol(), nil
	}
	if t, ok := p.env.named[token]; ok {
		return t, nil
	}
	return nil, errors.Errorf("unknown type %q in %q", token, p.expr)
}

func (p *typeParser) convertible() (symbols.TypeSymbol, error) {
	if p.env.typeVariables != nil && p.pos+1 < len(p.tokens) && p.tokens[p.pos+1] == "}" {
		if tv, ok := p.env.typeVariables(p.tokens[p.pos]); ok {
			p.pos++
			conv := p.env.factory.CreateConvertibleType()
			conv.Bind(p.env.owner, tv)
			return conv, nil
		}
	}
	target, err := p.union()
	if err != nil {
		return nil, err
	}
	return p.env.factory.CreateConvertibleTypeOf(target), nil
}

type statementKind int

const (
	upperBoundStatement statementKind = iota
	callStatement
)

// statement is one line of a function body:
//
//	$x <: num            upper bound
//	$x :> int            lower bound
//	$x <: $y             ref bound
//	rtrn = plus($x, $y)  call
type statement struct {
	kind statementKind
	// lower <: upper
	lower, upper string
	// lhs = callee(arguments...)
	lhs, callee string
	arguments   []string
}

func parseStatement(s string) (statement, error) {
	if lower, upper, ok := strings.Cut(s, "<:"); ok {
		return statement{kind: upperBoundStatement, lower: strings.TrimSpace(lower), upper: strings.TrimSpace(upper)}, nil
	}
	if upper, lower, ok := strings.Cut(s, ":>"); ok {
		return statement{kind: upperBoundStatement, lower: strings.TrimSpace(lower), upper: strings.TrimSpace(upper)}, nil
	}
	lhs, rhs, ok := strings.Cut(s, "=")
	if !ok {
		return statement{}, errors.Errorf("statement %q is neither a bound nor a call", s)
	}
	rhs = strings.TrimSpace(rhs)
	open, end := strings.IndexByte(rhs, '('), strings.LastIndexByte(rhs, ')')
	if open <= 0 || end != len(rhs)-1 {
		return statement{}, errors.Errorf("malformed call %q", s)
	}
	st := statement{
		kind:   callStatement,
		lhs:    strings.TrimSpace(lhs),
		callee: strings.TrimSpace(rhs[:open]),
	}
	if args := strings.TrimSpace(rhs[open+1 : end]); args != "" {
		for _, arg := range strings.Split(args, ",") {
			st.arguments = append(st.arguments, strings.TrimSpace(arg))
		}
	}
	if !isVariable(st.lhs) {
		return statement{}, errors.Errorf("call %q must be assigned to a variable", s)
	}
	return st, nil
}

func isVariable(s string) bool {
	return strings.HasPrefix(s, "$") || s == bindings.ReturnVariableName
}
