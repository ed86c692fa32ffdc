package types

// maxVarianceDepth bounds nested variance checks (IEnumerable<IEnumerable<...>>).
const maxVarianceDepth = 32

// VarianceConvertible reports whether the generic instance src converts to
// dst through variance alone: same definition, and every type argument
// identical (invariant), reference-convertible (out) or reverse
// reference-convertible (in).
func (in *Interner) VarianceConvertible(src, dst TypeID) bool {
	return in.varianceCompatible(src, dst, 0)
}

func (in *Interner) varianceCompatible(src, dst TypeID, depth int) bool {
	if src == dst {
		return true
	}
	k := in.Kind(dst)
	if k != KindInterface && k != KindDelegate {
		return false
	}
	srcInfo, dstInfo := in.nominal(src), in.nominal(dst)
	if srcInfo == nil || dstInfo == nil {
		return false
	}
	if srcInfo.Definition == NoTypeID || srcInfo.Definition != dstInfo.Definition {
		return false
	}
	defInfo := in.nominal(srcInfo.Definition)
	if defInfo == nil || len(defInfo.TypeParams) != len(srcInfo.TypeArgs) || len(srcInfo.TypeArgs) != len(dstInfo.TypeArgs) {
		return false
	}
	for i, p := range defInfo.TypeParams {
		a, b := srcInfo.TypeArgs[i], dstInfo.TypeArgs[i]
		if a == b {
			continue
		}
		pinfo := in.typeParam(p)
		if pinfo == nil {
			return false
		}
		switch pinfo.Variance {
		case Covariant:
			if !in.referenceConvertible(a, b, depth+1) {
				return false
			}
		case Contravariant:
			if !in.referenceConvertible(b, a, depth+1) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// referenceConvertible is the identity-or-implicit-reference relation used
// for variant type arguments. Both sides must be reference types.
func (in *Interner) referenceConvertible(src, dst TypeID, depth int) bool {
	if src == dst {
		return true
	}
	if depth > maxVarianceDepth || !in.IsReferenceType(src) || !in.IsReferenceType(dst) {
		return false
	}
	if dst == in.builtins.Object {
		return true
	}
	switch in.Kind(dst) {
	case KindInterface:
		return in.implementsInterface(src, dst, true, depth+1)
	case KindDelegate:
		return in.varianceCompatible(src, dst, depth+1)
	case KindArray:
		se, sok := in.ElementType(src)
		de, dok := in.ElementType(dst)
		if !sok || !dok || in.Kind(src) != KindArray || in.ArrayRank(src) != in.ArrayRank(dst) {
			return false
		}
		return in.referenceConvertible(se, de, depth+1)
	}
	return in.IsSubclassOf(src, dst)
}
