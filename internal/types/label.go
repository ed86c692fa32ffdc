package types

import (
	"strings"
)

// Label renders id the way diagnostics show types: int?, string[], List<T>.
func (in *Interner) Label(id TypeID) string {
	var sb strings.Builder
	in.writeLabel(&sb, id, 0)
	return sb.String()
}

func (in *Interner) writeLabel(sb *strings.Builder, id TypeID, depth int) {
	if depth > 32 {
		sb.WriteString("...")
		return
	}
	tt, ok := in.Lookup(id)
	if !ok {
		sb.WriteString("<invalid>")
		return
	}
	switch tt.Kind {
	case KindArray:
		in.writeLabel(sb, tt.Elem, depth+1)
		sb.WriteByte('[')
		for i := uint8(1); i < tt.Rank; i++ {
			sb.WriteByte(',')
		}
		sb.WriteByte(']')
	case KindPointer:
		in.writeLabel(sb, tt.Elem, depth+1)
		sb.WriteByte('*')
	case KindNullable:
		in.writeLabel(sb, tt.Elem, depth+1)
		sb.WriteByte('?')
	case KindTypeParam:
		if info := in.typeParam(id); info != nil {
			sb.WriteString(in.Strings.MustLookup(info.Name))
		}
	case KindVoid, KindNull, KindDynamic, KindAny, KindError:
		sb.WriteString(tt.Kind.String())
	default:
		info := in.nominal(id)
		if info == nil {
			sb.WriteString(tt.Kind.String())
			return
		}
		sb.WriteString(in.Strings.MustLookup(info.Name))
		params := info.TypeArgs
		if len(params) == 0 {
			params = info.TypeParams
		}
		if len(params) == 0 {
			return
		}
		sb.WriteByte('<')
		for i, a := range params {
			if i > 0 {
				sb.WriteString(", ")
			}
			in.writeLabel(sb, a, depth+1)
		}
		sb.WriteByte('>')
	}
}
