package scenario

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/TinsPHP/tins-symbols-sub001/inference/bindings"
	"github.com/TinsPHP/tins-symbols-sub001/inference/constraints"
	"github.com/TinsPHP/tins-symbols-sub001/inference/inferr"
	"github.com/TinsPHP/tins-symbols-sub001/inference/symbols"
	"github.com/pkg/errors"
)

type Options struct {
	// DefaultConversions adds symbols.DefaultConversions to those of the scenario
	DefaultConversions bool
}

// Result of inferring one function. Error is set instead of the signature
// when inference failed, and Mismatches lists the unmet expectations.
type Result struct {
	Name           string   `yaml:"name"`
	Signature      string   `yaml:"signature,omitempty"`
	TypeParameters []string `yaml:"typeParameters,omitempty"`
	Bindings       string   `yaml:"bindings,omitempty"`
	Error          string   `yaml:"error,omitempty"`
	Mismatches     []string `yaml:"mismatches,omitempty"`
}

func (r Result) Failed() bool { return len(r.Mismatches) > 0 }

type runner struct {
	factory  *symbols.Factory
	env      *typeEnv
	resolver *constraints.Resolver
}

// Run infers the functions of f in order. The returned error reports a
// malformed scenario; type errors are reported in the results.
func Run(f *File, opts Options) ([]Result, error) {
	r, err := newRunner(f, opts)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(f.Functions))
	for _, fn := range f.Functions {
		res, err := r.infer(fn)
		if err != nil {
			return nil, errors.Wrapf(err, "in function %s", fn.Name)
		}
		results = append(results, res)
	}
	return results, nil
}

func newRunner(f *File, opts Options) (*runner, error) {
	helper := symbols.NewTypeHelper()
	if opts.DefaultConversions {
		for _, c := range symbols.DefaultConversions() {
			helper.AddConversion(c)
		}
	}
	r := &runner{
		factory:  symbols.NewFactory(helper),
		resolver: constraints.NewResolver(),
	}
	r.env = &typeEnv{factory: r.factory, named: symbols.Builtins()}

	for _, alias := range f.Aliases {
		if _, ok := r.env.named[alias.Name]; ok || alias.Name == symbols.NothingName {
			return nil, errors.Errorf("type %s is already defined", alias.Name)
		}
		target, err := r.env.parseType(alias.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "in alias %s", alias.Name)
		}
		r.env.named[alias.Name] = symbols.NewAliasTypeSymbol(alias.Name, target)
	}
	for _, c := range f.Conversions {
		from, ok := r.env.named[c.From]
		if !ok {
			return nil, errors.Errorf("unknown type %q in conversion", c.From)
		}
		to, ok := r.env.named[c.To]
		if !ok {
			return nil, errors.Errorf("unknown type %q in conversion", c.To)
		}
		helper.AddConversion(symbols.Conversion{From: from, To: to})
	}
	for _, o := range f.Overloads {
		ft, err := r.overload(o)
		if err != nil {
			return nil, errors.Wrapf(err, "in overload %s", o.Name)
		}
		r.resolver.Register(ft)
	}
	return r, nil
}

func (r *runner) overload(o Overload) (*constraints.FunctionType, error) {
	ob := bindings.NewOverloadBindings(r.factory)
	typeParameters := make(map[string]string, len(o.TypeParameters))
	for _, tp := range o.TypeParameters {
		if _, ok := typeParameters[tp.Name]; ok {
			return nil, errors.Errorf("type parameter %s is declared twice", tp.Name)
		}
		typeParameters[tp.Name] = ob.CreateTypeVariable()
	}
	env := r.env.with(ob, func(name string) (string, bool) {
		tv, ok := typeParameters[name]
		return tv, ok
	})
	for _, tp := range o.TypeParameters {
		if err := addBounds(env, ob, typeParameters[tp.Name], tp.Lower, tp.Upper); err != nil {
			return nil, errors.Wrapf(err, "in type parameter %s", tp.Name)
		}
	}

	params := make([]constraints.Variable, 0, len(o.Parameters))
	for i, expr := range o.Parameters {
		id := "$p" + strconv.Itoa(i+1)
		params = append(params, constraints.Variable{ID: id})
		if tv, ok := typeParameters[expr]; ok {
			ob.AddVariable(id, bindings.NewTypeVariableReference(tv))
			continue
		}
		tv := ob.CreateTypeVariable()
		ob.AddVariable(id, bindings.NewTypeVariableReference(tv))
		if err := addBounds(env, ob, tv, "", expr); err != nil {
			return nil, errors.Wrapf(err, "in parameter %d", i+1)
		}
		ob.FixTypeParameter(tv)
	}

	switch tv, ok := typeParameters[o.Return]; {
	case o.Return == "":
	case ok:
		ob.AddVariable(bindings.ReturnVariableName, bindings.NewTypeVariableReference(tv))
	default:
		tv := ob.CreateTypeVariable()
		ob.AddVariable(bindings.ReturnVariableName, bindings.NewTypeVariableReference(tv))
		if err := addBounds(env, ob, tv, o.Return, ""); err != nil {
			return nil, errors.Wrap(err, "in return type")
		}
		ob.FixType(bindings.ReturnVariableName)
	}
	return constraints.NewFunctionType(o.Name, ob, params...), nil
}

func addBounds(env *typeEnv, b *bindings.Collection, tv, lower, upper string) error {
	if upper != "" {
		t, err := env.parseType(upper)
		if err != nil {
			return err
		}
		if _, err := b.AddUpperTypeBound(tv, t); err != nil {
			return err
		}
	}
	if lower != "" {
		t, err := env.parseType(lower)
		if err != nil {
			return err
		}
		if _, err := b.AddLowerTypeBound(tv, t); err != nil {
			return err
		}
	}
	return nil
}

// function is the state of one function being inferred. b is replaced by the
// resolved copy after every call.
type function struct {
	r *runner
	b *bindings.Collection
}

func (f *function) declare(id string) string {
	if !f.b.ContainsVariable(id) {
		f.b.AddVariable(id, bindings.NewTypeVariableReference(f.b.NextTypeVariable()))
	}
	return f.b.TypeVariable(id)
}

func (f *function) env() *typeEnv {
	return f.r.env.with(f.b, func(name string) (string, bool) {
		if !isVariable(name) {
			return "", false
		}
		return f.declare(name), true
	})
}

func (r *runner) infer(fn Function) (Result, error) {
	res := Result{Name: fn.Name}
	f := &function{r: r, b: bindings.New(r.factory)}
	params := make([]constraints.Variable, 0, len(fn.Parameters))
	for _, p := range fn.Parameters {
		if !strings.HasPrefix(p, "$") {
			return res, errors.Errorf("parameter %q must start with $", p)
		}
		if f.b.ContainsVariable(p) {
			return res, errors.Errorf("parameter %s is declared twice", p)
		}
		f.declare(p)
		params = append(params, constraints.Variable{ID: p})
	}

	for _, line := range fn.Body {
		err := f.apply(line)
		var ie inferr.InferError
		if errors.As(err, &ie) {
			res.Error = inferr.FormatWithCode(ie)
			logger.Info("inference failed", "function", fn.Name, "statement", line, "error", err)
			fn.Expect.check(&res)
			return res, nil
		}
		if err != nil {
			return res, errors.Wrapf(err, "in %q", line)
		}
	}

	tvs := make([]string, 0, len(params))
	for _, p := range params {
		tvs = append(tvs, f.b.TypeVariable(p.ID))
	}
	f.b.TryToFix(tvs)
	ft := constraints.NewFunctionType(fn.Name, f.b, params...)
	r.resolver.Register(ft)

	res.Signature = ft.Signature()
	res.TypeParameters = ft.TypeParameters()
	res.Bindings = f.b.String()
	logger.Info("inferred function", "function", fn.Name, "signature", res.Signature)
	fn.Expect.check(&res)
	return res, nil
}

func (f *function) apply(line string) error {
	st, err := parseStatement(line)
	if err != nil {
		return err
	}
	if st.kind == callStatement {
		c := constraints.Constraint{LeftHandSide: constraints.Variable{ID: st.lhs}, Callee: st.callee}
		f.declare(st.lhs)
		for _, arg := range st.arguments {
			if !isVariable(arg) {
				return errors.Errorf("argument %q is not a variable", arg)
			}
			f.declare(arg)
			c.Arguments = append(c.Arguments, constraints.Variable{ID: arg})
		}
		resolved, _, err := f.r.resolver.Resolve(f.b, c)
		if err != nil {
			return err
		}
		f.b = resolved
		return nil
	}

	lowerIsVariable, upperIsVariable := isVariable(st.lower), isVariable(st.upper)
	switch {
	case lowerIsVariable && upperIsVariable:
		lower, upper := f.declare(st.lower), f.declare(st.upper)
		_, err = f.b.AddLowerRefBound(upper, lower)
	case upperIsVariable:
		tv := f.declare(st.upper)
		err = addBounds(f.env(), f.b, tv, st.lower, "")
	case lowerIsVariable:
		tv := f.declare(st.lower)
		err = addBounds(f.env(), f.b, tv, "", st.upper)
	default:
		err = errors.Errorf("bound %q does not mention a variable", line)
	}
	return err
}

func (e *Expectation) check(res *Result) {
	if e == nil {
		return
	}
	mismatch := func(what string, want, got any) {
		res.Mismatches = append(res.Mismatches, fmt.Sprintf("%s: expected %v, got %v", what, want, got))
	}
	if e.Error != "" {
		if !strings.Contains(res.Error, e.Error) {
			mismatch("error", e.Error, res.Error)
		}
		return
	}
	if res.Error != "" {
		mismatch("error", "none", res.Error)
		return
	}
	if e.Signature != "" && e.Signature != res.Signature {
		mismatch("signature", e.Signature, res.Signature)
	}
	if e.TypeParameters != nil && !slices.Equal(e.TypeParameters, res.TypeParameters) {
		mismatch("type parameters", e.TypeParameters, res.TypeParameters)
	}
	if e.Bindings != "" && e.Bindings != res.Bindings {
		mismatch("bindings", e.Bindings, res.Bindings)
	}
}
