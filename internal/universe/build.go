package universe

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"fortio.org/safecast"

	"castor/internal/diag"
	"castor/internal/dialect"
	"castor/internal/source"
	"castor/internal/types"
)

// ErrInvalidUniverse is returned by Build when a declaration was rejected;
// the details went to the reporter.
var ErrInvalidUniverse = errors.New("invalid type universe")

// Universe is a built manifest: an interner plus the names it declared.
type Universe struct {
	Name     string
	Dialect  dialect.Kind
	Types    *types.Interner
	Manifest *Manifest

	names map[string]types.TypeID
	// pending holds generic definitions whose hierarchy is not complete
	// yet; instantiating them would copy a partial declaration.
	pending map[types.TypeID]bool
}

var wellKnown = map[string]func(types.Builtins) types.TypeID{
	"System.Object":            func(b types.Builtins) types.TypeID { return b.Object },
	"System.String":            func(b types.Builtins) types.TypeID { return b.String },
	"System.ValueType":         func(b types.Builtins) types.TypeID { return b.ValueType },
	"System.Enum":              func(b types.Builtins) types.TypeID { return b.Enum },
	"System.Array":             func(b types.Builtins) types.TypeID { return b.Array },
	"System.Delegate":          func(b types.Builtins) types.TypeID { return b.Delegate },
	"System.MulticastDelegate": func(b types.Builtins) types.TypeID { return b.MulticastDelegate },
}

// Build validates m and declares its types in a fresh interner. Problems
// with individual declarations are reported to r, which may be nil, and
// make Build return ErrInvalidUniverse; warnings do not. Repeated
// identical reports for one declaration are dropped. Declaration spans use
// file and the ordinal of the declaration in the manifest.
func Build(m *Manifest, file source.FileID, r diag.Reporter) (*Universe, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if r == nil {
		r = diag.NopReporter{}
	}
	d, err := dialect.Parse(m.Dialect)
	if err != nil {
		return nil, err
	}
	b := &builder{
		u: &Universe{
			Name:     m.Name,
			Dialect:  d,
			Types:    types.NewInterner(nil),
			Manifest: m,
			names:    make(map[string]types.TypeID, len(m.Types)+len(m.Params)),
			pending:  make(map[types.TypeID]bool),
		},
		file:     file,
		reporter: diag.NewDedupReporter(r),
	}
	b.declare()
	b.complete()
	b.constrain()
	b.checkCycles()
	if b.errors > 0 {
		return nil, fmt.Errorf("%w: %d declaration errors", ErrInvalidUniverse, b.errors)
	}
	return b.u, nil
}

type builder struct {
	u        *Universe
	file     source.FileID
	reporter diag.Reporter
	errors   int
	ids      []types.TypeID // per m.Types entry
}

func (b *builder) span(ordinal int) source.Span {
	n, err := safecast.Conv[uint32](ordinal)
	if err != nil {
		panic(fmt.Errorf("declaration ordinal overflow: %w", err))
	}
	return source.Span{File: b.file, Start: n, End: n + 1}
}

func (b *builder) errorf(code diag.Code, at source.Span, format string, args ...any) {
	b.errors++
	diag.ReportError(b.reporter, code, at, fmt.Sprintf(format, args...)).Emit()
}

// declare registers every parameter and nominal type so later references
// may point forward.
func (b *builder) declare() {
	in := b.u.Types
	m := b.u.Manifest
	for _, p := range m.Params {
		b.u.names[p.Name] = in.RegisterTypeParam(p.Name, parseVariance(p.Variance))
	}
	b.ids = make([]types.TypeID, len(m.Types))
	for i, t := range m.Types {
		sp := b.span(i)
		var id types.TypeID
		switch t.Kind {
		case "class":
			id = in.RegisterClass(t.Name, sp)
		case "struct":
			id = in.RegisterStruct(t.Name, sp)
		case "interface":
			id = in.RegisterInterface(t.Name, sp)
		case "delegate":
			id = in.RegisterDelegate(t.Name, sp)
		case "enum":
			underlying := types.NoTypeID
			if t.Underlying != "" {
				k, _ := types.ParseKind(t.Underlying)
				underlying = in.Primitive(k)
			}
			id = in.RegisterEnum(t.Name, sp, underlying)
		}
		b.ids[i] = id
		b.u.names[t.Name] = id
		var flags types.NominalFlags
		if t.Sealed {
			flags |= types.FlagSealed
		}
		if t.Abstract {
			flags |= types.FlagAbstract
		}
		if t.Static {
			flags |= types.FlagStatic | types.FlagSealed | types.FlagAbstract
		}
		if t.BoxedScalar {
			flags |= types.FlagBoxedScalar
			if !b.u.Dialect.IsExtended() {
				diag.ReportWarning(b.reporter, diag.UnivDialectIgnored, sp,
					fmt.Sprintf("boxed_scalar on %s has no effect in the %s dialect", t.Name, b.u.Dialect)).Emit()
			}
		}
		if flags != 0 {
			in.SetFlags(id, flags)
		}
		if len(t.Params) > 0 {
			params := make([]types.TypeID, len(t.Params))
			for j, name := range t.Params {
				params[j] = b.u.names[name]
			}
			in.SetTypeParams(id, params...)
			b.u.pending[id] = true
		}
	}
}

// complete fills in bases, interfaces and operators in declaration order.
// A generic definition can be instantiated once its own entry is done.
func (b *builder) complete() {
	in := b.u.Types
	for i, t := range b.u.Manifest.Types {
		id, sp := b.ids[i], b.span(i)
		if t.Base != "" {
			if base, ok := b.ref(t.Base, sp); ok {
				switch {
				case in.Kind(base) != types.KindClass && in.Kind(base) != types.KindObject:
					b.errorf(diag.UnivInvalidDecl, sp, "%s cannot derive from %s '%s'", t.Name, in.Kind(base), in.Label(base))
				case in.IsSealed(base):
					b.errorf(diag.UnivInvalidDecl, sp, "%s cannot derive from sealed class '%s'", t.Name, in.Label(base))
				default:
					in.SetBase(id, base)
				}
			}
		}
		for _, name := range t.Interfaces {
			iface, ok := b.ref(name, sp)
			if !ok {
				continue
			}
			if in.Kind(iface) != types.KindInterface {
				b.errorf(diag.UnivInvalidDecl, sp, "%s lists '%s', which is not an interface", t.Name, in.Label(iface))
				continue
			}
			in.AddInterfaces(id, iface)
		}
		for j, op := range t.Operators {
			b.operator(id, t, j, op, sp)
		}
		delete(b.u.pending, id)
	}
}

func (b *builder) operator(id types.TypeID, t TypeDecl, j int, op OperatorDecl, sp source.Span) {
	in := b.u.Types
	if in.Kind(id) == types.KindInterface {
		b.errorf(diag.ConvUserOnInterface, sp, "interface %s cannot declare conversion operators", t.Name)
		return
	}
	if in.Kind(id) != types.KindClass && in.Kind(id) != types.KindStruct {
		b.errorf(diag.UnivInvalidDecl, sp, "%s %s cannot declare conversion operators", t.Kind, t.Name)
		return
	}
	param, ok1 := b.ref(op.From, sp)
	result, ok2 := b.ref(op.To, sp)
	if !ok1 || !ok2 {
		return
	}
	declaring := func(x types.TypeID) bool { return in.Unwrap(x) == id }
	switch {
	case param == result:
		b.errorf(diag.UnivInvalidDecl, sp, "operators[%d] of %s converts '%s' to itself", j, t.Name, in.Label(param))
	case !declaring(param) && !declaring(result):
		b.errorf(diag.UnivInvalidDecl, sp, "operators[%d] of %s must convert from or to %s", j, t.Name, t.Name)
	default:
		in.AddConversionOperator(id, op.Implicit, param, result, sp)
	}
}

// constrain sets type parameter constraints once every type is complete.
func (b *builder) constrain() {
	in := b.u.Types
	for i, p := range b.u.Manifest.Params {
		sp := b.span(len(b.u.Manifest.Types) + i)
		var cons []types.TypeID
		for _, name := range p.Constraints {
			c, ok := b.ref(name, sp)
			if !ok {
				continue
			}
			switch in.Kind(c) {
			case types.KindClass, types.KindInterface, types.KindTypeParam, types.KindObject:
				cons = append(cons, c)
			default:
				b.errorf(diag.UnivInvalidDecl, sp, "'%s' is not a valid constraint for %s", in.Label(c), p.Name)
			}
		}
		if len(cons) == 0 && p.Special == "" {
			continue
		}
		in.SetConstraints(b.u.names[p.Name], parseSpecial(p.Special), cons...)
	}
}

// checkCycles rejects circular base class chains.
func (b *builder) checkCycles() {
	in := b.u.Types
	for i, id := range b.ids {
		if in.Kind(id) != types.KindClass {
			continue
		}
		seen := []types.TypeID{id}
		for cur := in.BaseClass(id); cur != types.NoTypeID; cur = in.BaseClass(cur) {
			if slices.Contains(seen, in.Definition(cur)) {
				b.errorf(diag.UnivInvalidDecl, b.span(i), "circular base class dependency involving %s", in.Label(id))
				break
			}
			seen = append(seen, in.Definition(cur))
		}
	}
}

func (b *builder) ref(expr string, at source.Span) (types.TypeID, bool) {
	id, err := b.u.resolve(expr)
	if err != nil {
		code := diag.UnivInvalidDecl
		var unknown *UnknownTypeError
		if errors.As(err, &unknown) {
			code = diag.UnivUnknownType
		}
		b.errorf(code, at, "%v", err)
		return types.NoTypeID, false
	}
	return id, true
}

// UnknownTypeError names a type expression that refers to no declaration.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type '%s'", e.Name)
}

// Resolve turns a type expression such as "Money?", "int[,]" or
// "List<Dog>" into a TypeID, interning the constructed types. It mutates
// the interner and must not run concurrently with conversion queries.
func (u *Universe) Resolve(expr string) (types.TypeID, error) {
	return u.resolve(expr)
}

// Lookup returns the type or type parameter declared under name.
func (u *Universe) Lookup(name string) (types.TypeID, bool) {
	id, ok := u.names[name]
	return id, ok
}

// Names lists every declared type and type parameter name, sorted.
func (u *Universe) Names() []string {
	out := make([]string, 0, len(u.names))
	for name := range u.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (u *Universe) resolve(expr string) (types.TypeID, error) {
	r, err := parseRef(expr)
	if err != nil {
		return types.NoTypeID, err
	}
	return u.resolveRef(r)
}

func (u *Universe) resolveRef(r *typeRef) (types.TypeID, error) {
	in := u.Types
	id, err := u.resolveName(r)
	if err != nil {
		return types.NoTypeID, err
	}
	for _, s := range r.suffixes {
		switch s.op {
		case '?':
			if in.IsNullable(id) || !in.IsValueType(id) {
				return types.NoTypeID, fmt.Errorf("'%s' cannot be made nullable", in.Label(id))
			}
			id = in.Nullable(id)
		case '*':
			id = in.Pointer(id)
		case '[':
			id = in.Array(id, s.rank)
		}
	}
	return id, nil
}

func (u *Universe) resolveName(r *typeRef) (types.TypeID, error) {
	in := u.Types
	if len(r.args) == 0 {
		if k, ok := types.ParseKind(r.name); ok {
			return in.Primitive(k), nil
		}
		if wk, ok := wellKnown[r.name]; ok {
			return wk(in.Builtins()), nil
		}
		if id, ok := u.names[r.name]; ok {
			if info, ok := in.NominalInfo(id); ok && len(info.TypeParams) > 0 {
				return types.NoTypeID, fmt.Errorf("generic type '%s' needs %d type arguments", r.name, len(info.TypeParams))
			}
			return id, nil
		}
		return types.NoTypeID, &UnknownTypeError{Name: r.name}
	}

	def, ok := u.names[r.name]
	if !ok {
		return types.NoTypeID, &UnknownTypeError{Name: r.name}
	}
	info, _ := in.NominalInfo(def)
	if info == nil || len(info.TypeParams) != len(r.args) {
		return types.NoTypeID, fmt.Errorf("'%s' does not take %d type arguments", r.name, len(r.args))
	}
	args := make([]types.TypeID, len(r.args))
	for i, a := range r.args {
		id, err := u.resolveRef(a)
		if err != nil {
			return types.NoTypeID, err
		}
		args[i] = id
	}
	if slices.Equal(args, info.TypeParams) {
		// The definition named over its own parameters.
		return def, nil
	}
	if u.pending[def] {
		return types.NoTypeID, fmt.Errorf("'%s' is instantiated before its declaration is complete", r.name)
	}
	return in.Instantiate(def, args...), nil
}

func parseVariance(s string) types.Variance {
	switch s {
	case "out":
		return types.Covariant
	case "in":
		return types.Contravariant
	}
	return types.Invariant
}

func parseSpecial(s string) types.SpecialConstraint {
	switch s {
	case "class":
		return types.ConstraintClass
	case "struct":
		return types.ConstraintStruct
	}
	return types.ConstraintNone
}
