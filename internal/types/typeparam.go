package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"castor/internal/source"
)

// SpecialConstraint is the class/struct constraint of a type parameter.
type SpecialConstraint uint8

const (
	ConstraintNone SpecialConstraint = iota
	ConstraintClass
	ConstraintStruct
)

// TypeParamInfo stores metadata for a generic type parameter.
type TypeParamInfo struct {
	Name        source.StringID
	Owner       TypeID
	Variance    Variance
	Special     SpecialConstraint
	Constraints []TypeID

	// dependsOn is the transitive closure of type parameters reachable
	// through Constraints. It is rebuilt eagerly whenever constraints change.
	dependsOn []TypeID
}

// RegisterTypeParam allocates a type parameter.
func (in *Interner) RegisterTypeParam(name string, variance Variance) TypeID {
	in.params = append(in.params, TypeParamInfo{
		Name:     in.Strings.Intern(name),
		Variance: variance,
	})
	slot, err := safecast.Conv[uint32](len(in.params) - 1)
	if err != nil {
		panic(fmt.Errorf("type parameter overflow: %w", err))
	}
	return in.internRaw(Type{Kind: KindTypeParam, Payload: slot})
}

// SetTypeParams turns def into a generic definition over params.
func (in *Interner) SetTypeParams(def TypeID, params ...TypeID) {
	info := in.nominal(def)
	if info == nil {
		internalf("type parameters on non-nominal %s", in.Label(def))
	}
	for _, p := range params {
		tp := in.typeParam(p)
		if tp == nil {
			internalf("%s is not a type parameter", in.Label(p))
		}
		tp.Owner = def
	}
	info.TypeParams = slices.Clone(params)
}

// SetConstraints records the constraints of tp and recomputes the
// dependency closure of every type parameter.
func (in *Interner) SetConstraints(tp TypeID, special SpecialConstraint, constraints ...TypeID) {
	info := in.typeParam(tp)
	if info == nil {
		internalf("%s is not a type parameter", in.Label(tp))
	}
	info.Special = special
	info.Constraints = slices.Clone(constraints)
	in.closeDependencies()
}

// TypeParamInfo returns metadata for a type parameter.
func (in *Interner) TypeParamInfo(id TypeID) (*TypeParamInfo, bool) {
	info := in.typeParam(id)
	return info, info != nil
}

// HasDependencyOn reports whether tp depends, directly or transitively, on
// other through its constraints.
func (in *Interner) HasDependencyOn(tp, other TypeID) bool {
	info := in.typeParam(tp)
	return info != nil && slices.Contains(info.dependsOn, other)
}

// DependentSet returns the closed dependency set of tp.
func (in *Interner) DependentSet(tp TypeID) []TypeID {
	info := in.typeParam(tp)
	if info == nil {
		return nil
	}
	return slices.Clone(info.dependsOn)
}

func (in *Interner) closeDependencies() {
	for slot := 1; slot < len(in.params); slot++ {
		seen := make(map[TypeID]struct{})
		var reached []TypeID
		stack := in.paramConstraintParams(&in.params[slot])
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, ok := seen[cur]; ok {
				continue
			}
			seen[cur] = struct{}{}
			reached = append(reached, cur)
			if next := in.typeParam(cur); next != nil {
				stack = append(stack, in.paramConstraintParams(next)...)
			}
		}
		slices.Sort(reached)
		in.params[slot].dependsOn = reached
	}
}

func (in *Interner) paramConstraintParams(info *TypeParamInfo) []TypeID {
	var out []TypeID
	for _, c := range info.Constraints {
		if in.Kind(c) == KindTypeParam {
			out = append(out, c)
		}
	}
	return out
}

// EffectiveBaseClass is the most derived class a type parameter is known to
// derive from: System.ValueType for struct-constrained parameters, the class
// constraint if any (looking through parameter constraints), else object.
func (in *Interner) EffectiveBaseClass(tp TypeID) TypeID {
	seen := make(map[TypeID]struct{})
	return in.effectiveBase(tp, seen)
}

func (in *Interner) effectiveBase(tp TypeID, seen map[TypeID]struct{}) TypeID {
	info := in.typeParam(tp)
	if info == nil {
		return in.builtins.Object
	}
	if _, ok := seen[tp]; ok {
		return in.builtins.Object
	}
	seen[tp] = struct{}{}
	if info.Special == ConstraintStruct {
		return in.builtins.ValueType
	}
	best := in.builtins.Object
	for _, c := range info.Constraints {
		var cand TypeID
		switch in.Kind(c) {
		case KindTypeParam:
			cand = in.effectiveBase(c, seen)
		case KindClass, KindString, KindArray, KindDelegate:
			cand = c
		default:
			continue
		}
		if best == in.builtins.Object || in.IsSubclassOf(cand, best) {
			best = cand
		}
	}
	return best
}

// EffectiveInterfaces lists interface constraints of tp including those
// inherited through type-parameter constraints.
func (in *Interner) EffectiveInterfaces(tp TypeID) []TypeID {
	var out []TypeID
	seen := make(map[TypeID]struct{})
	var walk func(TypeID)
	walk = func(id TypeID) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		info := in.typeParam(id)
		if info == nil {
			return
		}
		for _, c := range info.Constraints {
			switch in.Kind(c) {
			case KindInterface:
				if !slices.Contains(out, c) {
					out = append(out, c)
				}
			case KindTypeParam:
				walk(c)
			}
		}
	}
	walk(tp)
	return out
}

func (in *Interner) typeParam(id TypeID) *TypeParamInfo {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindTypeParam {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.params) {
		return nil
	}
	return &in.params[tt.Payload]
}
