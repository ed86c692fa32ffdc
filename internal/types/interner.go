package types

import (
	"fmt"

	"fortio.org/safecast"

	"castor/internal/source"
)

// Builtins stores TypeIDs for the predefined types.
type Builtins struct {
	Invalid TypeID
	Void    TypeID
	Null    TypeID
	Dynamic TypeID
	Any     TypeID
	Bool    TypeID
	Char    TypeID
	SByte   TypeID
	Byte    TypeID
	Short   TypeID
	UShort  TypeID
	Int     TypeID
	UInt    TypeID
	Long    TypeID
	ULong   TypeID
	Float   TypeID
	Double  TypeID
	Decimal TypeID
	String  TypeID
	Object  TypeID

	ValueType         TypeID // System.ValueType
	Enum              TypeID // System.Enum
	Array             TypeID // System.Array
	Delegate          TypeID // System.Delegate
	MulticastDelegate TypeID // System.MulticastDelegate
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Building the universe is single-threaded; once built, every query method
// is read-only and safe for concurrent use.
type Interner struct {
	Strings *source.Interner

	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
	nominals []NominalInfo
	params   []TypeParamInfo
	kinds    [kindCount]TypeID
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Rank    uint8
	Payload uint32
}

// NewInterner constructs an interner seeded with built-in types. A nil
// strings interner gets a fresh one.
func NewInterner(strs *source.Interner) *Interner {
	if strs == nil {
		strs = source.NewInterner()
	}
	in := &Interner{
		Strings: strs,
		index:   make(map[typeKey]TypeID, 128),
	}
	in.nominals = append(in.nominals, NominalInfo{})
	in.params = append(in.params, TypeParamInfo{})
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})

	b := &in.builtins
	b.Void = in.builtinKind(KindVoid)
	b.Null = in.builtinKind(KindNull)
	b.Dynamic = in.builtinKind(KindDynamic)
	b.Any = in.builtinKind(KindAny)

	b.Object = in.builtinNominal(KindObject, "object", NoTypeID, 0)
	b.ValueType = in.builtinNominal(KindClass, "System.ValueType", b.Object, FlagAbstract)
	b.Enum = in.builtinNominal(KindClass, "System.Enum", b.ValueType, FlagAbstract)
	b.Array = in.builtinNominal(KindClass, "System.Array", b.Object, FlagAbstract)
	b.Delegate = in.builtinNominal(KindClass, "System.Delegate", b.Object, FlagAbstract)
	b.MulticastDelegate = in.builtinNominal(KindClass, "System.MulticastDelegate", b.Delegate, FlagAbstract)
	b.String = in.builtinNominal(KindString, "string", b.Object, FlagSealed)

	simple := []*TypeID{&b.Bool, &b.Char, &b.SByte, &b.Byte, &b.Short, &b.UShort, &b.Int,
		&b.UInt, &b.Long, &b.ULong, &b.Float, &b.Double, &b.Decimal}
	for i, dst := range simple {
		k := KindBool + Kind(i)
		*dst = in.builtinNominal(k, k.String(), b.ValueType, FlagSealed)
	}
	return in
}

func (in *Interner) builtinKind(k Kind) TypeID {
	id := in.Intern(Type{Kind: k})
	in.kinds[k] = id
	return id
}

func (in *Interner) builtinNominal(k Kind, name string, base TypeID, flags NominalFlags) TypeID {
	slot := in.appendNominal(NominalInfo{
		Name:  in.Strings.Intern(name),
		Base:  base,
		Flags: flags,
	})
	id := in.internRaw(Type{Kind: k, Payload: slot})
	if k != KindClass {
		in.kinds[k] = id
	}
	return id
}

// Builtins returns TypeIDs for predefined types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Primitive returns the single predefined type of a keyword kind.
func (in *Interner) Primitive(k Kind) TypeID {
	if k >= kindCount {
		return NoTypeID
	}
	return in.kinds[k]
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[typeKey(t)]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(n)
	in.types = append(in.types, t)
	in.index[typeKey(t)] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if in == nil || id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		internalf("invalid TypeID %d", id)
	}
	return tt
}

// Kind returns the kind of id, KindInvalid for unknown IDs.
func (in *Interner) Kind(id TypeID) Kind {
	tt, ok := in.Lookup(id)
	if !ok {
		return KindInvalid
	}
	return tt.Kind
}

// Len reports how many descriptors exist, including the invalid sentinel.
func (in *Interner) Len() int {
	return len(in.types)
}

// Array interns elem[] with the given rank.
func (in *Interner) Array(elem TypeID, rank uint8) TypeID {
	switch in.Kind(elem) {
	case KindInvalid, KindVoid, KindNull:
		internalf("array of %s", in.Kind(elem))
	}
	return in.Intern(MakeArray(elem, rank))
}

// Pointer interns elem*.
func (in *Interner) Pointer(elem TypeID) TypeID {
	if in.Kind(elem) == KindInvalid {
		internalf("pointer to invalid type")
	}
	return in.Intern(MakePointer(elem))
}

// Nullable interns elem?. Only non-nullable value types may be wrapped.
func (in *Interner) Nullable(elem TypeID) TypeID {
	k := in.Kind(elem)
	if k == KindNullable {
		internalf("nullable of nullable %s", in.Label(elem))
	}
	if !in.IsValueType(elem) {
		internalf("nullable of non-value type %s", in.Label(elem))
	}
	return in.Intern(MakeNullable(elem))
}
