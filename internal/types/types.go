package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types. Exactly one kind is active
// for any descriptor.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindNull // type of the null literal
	KindDynamic
	KindAny // untyped marker of the extended dialect
	KindBool
	KindChar
	KindSByte
	KindByte
	KindShort
	KindUShort
	KindInt
	KindUInt
	KindLong
	KindULong
	KindFloat
	KindDouble
	KindDecimal
	KindString
	KindObject
	KindStruct
	KindClass
	KindInterface
	KindEnum
	KindDelegate
	KindArray
	KindPointer
	KindTypeParam
	KindNullable
	KindError

	kindCount
)

var kindNames = [kindCount]string{
	KindInvalid:   "invalid",
	KindVoid:      "void",
	KindNull:      "null",
	KindDynamic:   "dynamic",
	KindAny:       "*",
	KindBool:      "bool",
	KindChar:      "char",
	KindSByte:     "sbyte",
	KindByte:      "byte",
	KindShort:     "short",
	KindUShort:    "ushort",
	KindInt:       "int",
	KindUInt:      "uint",
	KindLong:      "long",
	KindULong:     "ulong",
	KindFloat:     "float",
	KindDouble:    "double",
	KindDecimal:   "decimal",
	KindString:    "string",
	KindObject:    "object",
	KindStruct:    "struct",
	KindClass:     "class",
	KindInterface: "interface",
	KindEnum:      "enum",
	KindDelegate:  "delegate",
	KindArray:     "array",
	KindPointer:   "pointer",
	KindTypeParam: "type-parameter",
	KindNullable:  "nullable",
	KindError:     "error",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind resolves a builtin keyword ("int", "double", ...) to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k := KindVoid; k < kindCount; k++ {
		if kindNames[k] == name && k.IsBuiltinKeyword() {
			return k, true
		}
	}
	return KindInvalid, false
}

// IsBuiltinKeyword reports kinds that have exactly one, keyword-named type.
func (k Kind) IsBuiltinKeyword() bool {
	switch k {
	case KindVoid, KindNull, KindDynamic, KindAny, KindString, KindObject:
		return true
	}
	return k.IsSimple()
}

// IsSimple reports bool, char and the numeric primitives.
func (k Kind) IsSimple() bool {
	return k >= KindBool && k <= KindDecimal
}

// IsNumeric reports integral, floating and decimal kinds. char counts as
// integral for conversion purposes.
func (k Kind) IsNumeric() bool {
	return k >= KindChar && k <= KindDecimal
}

// IsIntegral reports char and the integer kinds.
func (k Kind) IsIntegral() bool {
	return k >= KindChar && k <= KindULong
}

// IsUnsigned reports char and the unsigned integer kinds.
func (k Kind) IsUnsigned() bool {
	switch k {
	case KindChar, KindByte, KindUShort, KindUInt, KindULong:
		return true
	}
	return false
}

// IsFloating reports float and double.
func (k Kind) IsFloating() bool {
	return k == KindFloat || k == KindDouble
}

// IsNominal reports kinds carrying NominalInfo declared by the binder.
func (k Kind) IsNominal() bool {
	switch k {
	case KindStruct, KindClass, KindInterface, KindEnum, KindDelegate:
		return true
	}
	return false
}

// Bits returns the storage width of integral and floating kinds.
func (k Kind) Bits() int {
	switch k {
	case KindSByte, KindByte:
		return 8
	case KindShort, KindUShort, KindChar:
		return 16
	case KindInt, KindUInt, KindFloat:
		return 32
	case KindLong, KindULong, KindDouble:
		return 64
	case KindDecimal:
		return 128
	}
	return 0
}

// Variance annotates a generic type parameter.
type Variance uint8

const (
	Invariant Variance = iota
	Covariant
	Contravariant
)

func (v Variance) String() string {
	switch v {
	case Covariant:
		return "out"
	case Contravariant:
		return "in"
	default:
		return "invariant"
	}
}

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind    Kind
	Elem    TypeID // arrays, pointers, nullables
	Rank    uint8  // arrays
	Payload uint32 // slot in nominal or type-parameter storage
}

// MakeArray describes elem[] (rank 1) or elem[,...] for higher ranks.
func MakeArray(elem TypeID, rank uint8) Type {
	if rank == 0 {
		rank = 1
	}
	return Type{Kind: KindArray, Elem: elem, Rank: rank}
}

// MakePointer describes elem*. Use the void builtin for void*.
func MakePointer(elem TypeID) Type {
	return Type{Kind: KindPointer, Elem: elem}
}

// MakeNullable describes elem?.
func MakeNullable(elem TypeID) Type {
	return Type{Kind: KindNullable, Elem: elem}
}
