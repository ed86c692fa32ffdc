package types

import (
	"iter"
	"slices"
)

// maxHierarchyDepth bounds every walk over base classes and interfaces so
// malformed (cyclic) declarations terminate.
const maxHierarchyDepth = 256

// IsReferenceType reports types whose values are references.
func (in *Interner) IsReferenceType(id TypeID) bool {
	switch in.Kind(id) {
	case KindClass, KindInterface, KindDelegate, KindArray, KindString, KindObject, KindDynamic, KindAny:
		return true
	case KindTypeParam:
		info := in.typeParam(id)
		if info == nil {
			return false
		}
		if info.Special == ConstraintClass {
			return true
		}
		if info.Special == ConstraintStruct {
			return false
		}
		base := in.EffectiveBaseClass(id)
		b := in.builtins
		return base != b.Object && base != b.ValueType && base != b.Enum
	}
	return false
}

// IsValueType reports simple types, structs, enums, nullables and
// struct-constrained type parameters.
func (in *Interner) IsValueType(id TypeID) bool {
	k := in.Kind(id)
	switch {
	case k.IsSimple(), k == KindStruct, k == KindEnum, k == KindNullable:
		return true
	case k == KindTypeParam:
		info := in.typeParam(id)
		return info != nil && info.Special == ConstraintStruct
	}
	return false
}

// IsNullable reports T? types.
func (in *Interner) IsNullable(id TypeID) bool {
	return in.Kind(id) == KindNullable
}

// Unwrap returns T for T?, and id itself otherwise.
func (in *Interner) Unwrap(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if ok && tt.Kind == KindNullable {
		return tt.Elem
	}
	return id
}

// ElementType returns the element of an array or pointer, or the
// underlying type of a nullable.
func (in *Interner) ElementType(id TypeID) (TypeID, bool) {
	tt, ok := in.Lookup(id)
	if !ok {
		return NoTypeID, false
	}
	switch tt.Kind {
	case KindArray, KindPointer, KindNullable:
		return tt.Elem, true
	}
	return NoTypeID, false
}

// ArrayRank returns the rank of an array type, 0 for non-arrays.
func (in *Interner) ArrayRank(id TypeID) uint8 {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindArray {
		return 0
	}
	return tt.Rank
}

// IsSealed reports types that cannot be derived from.
func (in *Interner) IsSealed(id TypeID) bool {
	k := in.Kind(id)
	if k.IsSimple() || k == KindStruct || k == KindEnum || k == KindString || k == KindDelegate || k == KindArray {
		return true
	}
	return in.HasFlag(id, FlagSealed)
}

// IsSubclassOf walks the base-class chain of id looking for base. A type is
// not its own subclass.
func (in *Interner) IsSubclassOf(id, base TypeID) bool {
	if id == base {
		return false
	}
	cur := in.directBase(id)
	for depth := 0; cur != NoTypeID && depth < maxHierarchyDepth; depth++ {
		if cur == base {
			return true
		}
		cur = in.directBase(cur)
	}
	return false
}

func (in *Interner) directBase(id TypeID) TypeID {
	switch in.Kind(id) {
	case KindTypeParam:
		base := in.EffectiveBaseClass(id)
		if base == id {
			return NoTypeID
		}
		return base
	case KindArray:
		return in.builtins.Array
	case KindNullable:
		return in.builtins.ValueType
	case KindInterface:
		return NoTypeID
	}
	return in.BaseClass(id)
}

// AllBaseTypes yields the base-class chain of id followed by every interface
// it implements (declared on itself, inherited from its bases, or inherited
// by those interfaces). Each type is yielded once; the walk is bounded.
func (in *Interner) AllBaseTypes(id TypeID) iter.Seq[TypeID] {
	return func(yield func(TypeID) bool) {
		seen := map[TypeID]struct{}{id: {}}
		var chain []TypeID
		cur := in.directBase(id)
		for depth := 0; cur != NoTypeID && depth < maxHierarchyDepth; depth++ {
			if _, dup := seen[cur]; dup {
				break
			}
			seen[cur] = struct{}{}
			chain = append(chain, cur)
			if !yield(cur) {
				return
			}
			cur = in.directBase(cur)
		}

		queue := in.declaredInterfaces(id)
		for _, c := range chain {
			queue = append(queue, in.declaredInterfaces(c)...)
		}
		for steps := 0; len(queue) > 0 && steps < maxHierarchyDepth*4; steps++ {
			iface := queue[0]
			queue = queue[1:]
			if _, dup := seen[iface]; dup {
				continue
			}
			seen[iface] = struct{}{}
			if !yield(iface) {
				return
			}
			queue = append(queue, in.declaredInterfaces(iface)...)
		}
	}
}

func (in *Interner) declaredInterfaces(id TypeID) []TypeID {
	if in.Kind(id) == KindTypeParam {
		return in.EffectiveInterfaces(id)
	}
	info := in.nominal(id)
	if info == nil {
		return nil
	}
	return slices.Clone(info.Interfaces)
}

// ImplementsInterface reports whether id implements iface. With variance
// set, a generic interface matches when its definition is the same and each
// type argument is compatible under the parameter's variance annotation.
func (in *Interner) ImplementsInterface(id, iface TypeID, variance bool) bool {
	return in.implementsInterface(id, iface, variance, 0)
}

func (in *Interner) implementsInterface(id, iface TypeID, variance bool, depth int) bool {
	if depth > maxVarianceDepth || in.Kind(iface) != KindInterface {
		return false
	}
	if id == iface {
		return true
	}
	if variance && in.varianceCompatible(id, iface, depth) {
		return true
	}
	for b := range in.AllBaseTypes(id) {
		if b == iface {
			return true
		}
		if variance && in.Kind(b) == KindInterface && in.varianceCompatible(b, iface, depth) {
			return true
		}
	}
	return false
}
