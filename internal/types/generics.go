package types

import "slices"

// Instantiate returns def<args...>, reusing an existing instance when one
// with the same arguments is already interned. Base class, interfaces and
// conversion operators of def are substituted into the instance, so def
// must be fully declared before it is instantiated.
func (in *Interner) Instantiate(def TypeID, args ...TypeID) TypeID {
	defInfo := in.nominal(def)
	if defInfo == nil || len(defInfo.TypeParams) == 0 {
		internalf("%s is not a generic definition", in.Label(def))
	}
	if len(args) != len(defInfo.TypeParams) {
		internalf("%s expects %d type arguments, got %d", in.Label(def), len(defInfo.TypeParams), len(args))
	}
	if id, ok := in.FindInstance(def, args); ok {
		return id
	}
	decl := *defInfo

	slot := in.appendNominal(NominalInfo{
		Name:           decl.Name,
		Decl:           decl.Decl,
		Flags:          decl.Flags,
		Definition:     def,
		TypeArgs:       slices.Clone(args),
		EnumUnderlying: decl.EnumUnderlying,
	})
	id := in.internRaw(Type{Kind: in.Kind(def), Payload: slot})

	subst := make(map[TypeID]TypeID, len(args))
	for i, p := range decl.TypeParams {
		subst[p] = args[i]
	}
	base := in.Substitute(decl.Base, subst)
	ifaces := make([]TypeID, 0, len(decl.Interfaces))
	for _, iface := range decl.Interfaces {
		ifaces = append(ifaces, in.Substitute(iface, subst))
	}
	ops := make([]ConversionOperator, 0, len(decl.Operators))
	for _, op := range decl.Operators {
		ops = append(ops, ConversionOperator{
			Declaring: id,
			Implicit:  op.Implicit,
			Param:     in.Substitute(op.Param, subst),
			Result:    in.Substitute(op.Result, subst),
			Decl:      op.Decl,
		})
	}

	// Substitution may have appended nominals; refetch.
	info := in.nominal(id)
	info.Base = base
	info.Interfaces = ifaces
	info.Operators = ops
	return id
}

// FindInstance returns the instance of def whose type arguments equal args.
func (in *Interner) FindInstance(def TypeID, args []TypeID) (TypeID, bool) {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		if !in.types[id].Kind.IsNominal() {
			continue
		}
		info := in.nominal(id)
		if info == nil || info.Definition != def {
			continue
		}
		if slices.Equal(info.TypeArgs, args) {
			return id, true
		}
	}
	return NoTypeID, false
}

// Definition returns the generic definition of an instance, or id itself.
func (in *Interner) Definition(id TypeID) TypeID {
	if info := in.nominal(id); info != nil && info.Definition != NoTypeID {
		return info.Definition
	}
	return id
}

// TypeArgs returns a copy of the type arguments of an instance.
func (in *Interner) TypeArgs(id TypeID) []TypeID {
	info := in.nominal(id)
	if info == nil || len(info.TypeArgs) == 0 {
		return nil
	}
	return slices.Clone(info.TypeArgs)
}

// Substitute replaces type parameters inside id according to subst.
func (in *Interner) Substitute(id TypeID, subst map[TypeID]TypeID) TypeID {
	if id == NoTypeID || len(subst) == 0 {
		return id
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return id
	}
	switch tt.Kind {
	case KindTypeParam:
		if repl, ok := subst[id]; ok {
			return repl
		}
	case KindArray:
		return in.Array(in.Substitute(tt.Elem, subst), tt.Rank)
	case KindPointer:
		return in.Pointer(in.Substitute(tt.Elem, subst))
	case KindNullable:
		return in.Nullable(in.Substitute(tt.Elem, subst))
	default:
		info := in.nominal(id)
		if info == nil {
			return id
		}
		if len(info.TypeArgs) == 0 {
			// A definition named inside its own body stands for the instance
			// over its own parameters.
			if len(info.TypeParams) == 0 {
				return id
			}
			args := make([]TypeID, len(info.TypeParams))
			for i, p := range info.TypeParams {
				repl, ok := subst[p]
				if !ok {
					return id
				}
				args[i] = repl
			}
			return in.Instantiate(id, args...)
		}
		def := info.Definition
		args := slices.Clone(info.TypeArgs)
		changed := false
		for i, a := range args {
			if r := in.Substitute(a, subst); r != a {
				args[i] = r
				changed = true
			}
		}
		if changed {
			return in.Instantiate(def, args...)
		}
	}
	return id
}
