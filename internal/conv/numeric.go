package conv

import "castor/internal/types"

// NumericOp is the machine operation that realises a numeric conversion.
// Unsigned sources converting to floating point need the ConvRUn forms:
// the plain forms would read the bit pattern as signed.
type NumericOp uint8

const (
	NumNop NumericOp = iota // representation already matches
	ConvI1
	ConvU1
	ConvI2
	ConvU2
	ConvI4
	ConvU4
	ConvI8
	ConvU8
	ConvR4
	ConvR8
	ConvRUnR4 // unsigned integral to float
	ConvRUnR8 // unsigned integral to double
	ConvToDecimal
	ConvFromDecimal
	ConvFromBool // extended dialect: false/true to 0/1
)

var numericOpNames = [...]string{
	NumNop:          "nop",
	ConvI1:          "conv.i1",
	ConvU1:          "conv.u1",
	ConvI2:          "conv.i2",
	ConvU2:          "conv.u2",
	ConvI4:          "conv.i4",
	ConvU4:          "conv.u4",
	ConvI8:          "conv.i8",
	ConvU8:          "conv.u8",
	ConvR4:          "conv.r4",
	ConvR8:          "conv.r8",
	ConvRUnR4:       "conv.r.un+conv.r4",
	ConvRUnR8:       "conv.r.un+conv.r8",
	ConvToDecimal:   "decimal.from",
	ConvFromDecimal: "decimal.to",
	ConvFromBool:    "bool.to",
}

func (op NumericOp) String() string {
	if int(op) < len(numericOpNames) {
		return numericOpNames[op]
	}
	return "conv.?"
}

type kindPair struct {
	from, to types.Kind
}

const (
	kSByte   = types.KindSByte
	kByte    = types.KindByte
	kShort   = types.KindShort
	kUShort  = types.KindUShort
	kInt     = types.KindInt
	kUInt    = types.KindUInt
	kLong    = types.KindLong
	kULong   = types.KindULong
	kChar    = types.KindChar
	kFloat   = types.KindFloat
	kDouble  = types.KindDouble
	kDecimal = types.KindDecimal
	kBool    = types.KindBool
)

// implicitNumeric is the widening graph. It is closed under composition:
// whenever a->b and b->c are present, a->c is present too.
var implicitNumeric = map[kindPair]NumericOp{
	{kSByte, kShort}:   NumNop,
	{kSByte, kInt}:     NumNop,
	{kSByte, kLong}:    ConvI8,
	{kSByte, kFloat}:   ConvR4,
	{kSByte, kDouble}:  ConvR8,
	{kSByte, kDecimal}: ConvToDecimal,

	{kByte, kShort}:   NumNop,
	{kByte, kUShort}:  NumNop,
	{kByte, kInt}:     NumNop,
	{kByte, kUInt}:    NumNop,
	{kByte, kLong}:    ConvU8,
	{kByte, kULong}:   ConvU8,
	{kByte, kFloat}:   ConvR4,
	{kByte, kDouble}:  ConvR8,
	{kByte, kDecimal}: ConvToDecimal,

	{kShort, kInt}:     NumNop,
	{kShort, kLong}:    ConvI8,
	{kShort, kFloat}:   ConvR4,
	{kShort, kDouble}:  ConvR8,
	{kShort, kDecimal}: ConvToDecimal,

	{kUShort, kInt}:     NumNop,
	{kUShort, kUInt}:    NumNop,
	{kUShort, kLong}:    ConvU8,
	{kUShort, kULong}:   ConvU8,
	{kUShort, kFloat}:   ConvR4,
	{kUShort, kDouble}:  ConvR8,
	{kUShort, kDecimal}: ConvToDecimal,

	{kInt, kLong}:    ConvI8,
	{kInt, kFloat}:   ConvR4,
	{kInt, kDouble}:  ConvR8,
	{kInt, kDecimal}: ConvToDecimal,

	{kUInt, kLong}:    ConvU8,
	{kUInt, kULong}:   ConvU8,
	{kUInt, kFloat}:   ConvRUnR4,
	{kUInt, kDouble}:  ConvRUnR8,
	{kUInt, kDecimal}: ConvToDecimal,

	{kLong, kFloat}:   ConvR4,
	{kLong, kDouble}:  ConvR8,
	{kLong, kDecimal}: ConvToDecimal,

	{kULong, kFloat}:   ConvRUnR4,
	{kULong, kDouble}:  ConvRUnR8,
	{kULong, kDecimal}: ConvToDecimal,

	{kChar, kUShort}:  NumNop,
	{kChar, kInt}:     NumNop,
	{kChar, kUInt}:    NumNop,
	{kChar, kLong}:    ConvU8,
	{kChar, kULong}:   ConvU8,
	{kChar, kFloat}:   ConvR4,
	{kChar, kDouble}:  ConvR8,
	{kChar, kDecimal}: ConvToDecimal,

	{kFloat, kDouble}: ConvR8,
}

// explicitNumeric lists the narrowing conversions a cast admits on top of
// implicitNumeric.
var explicitNumeric = map[kindPair]NumericOp{
	{kSByte, kByte}:   ConvU1,
	{kSByte, kUShort}: ConvU2,
	{kSByte, kUInt}:   ConvU4,
	{kSByte, kULong}:  ConvI8,
	{kSByte, kChar}:   ConvU2,

	{kByte, kSByte}: ConvI1,
	{kByte, kChar}:  ConvU2,

	{kShort, kSByte}:  ConvI1,
	{kShort, kByte}:   ConvU1,
	{kShort, kUShort}: ConvU2,
	{kShort, kUInt}:   ConvU4,
	{kShort, kULong}:  ConvI8,
	{kShort, kChar}:   ConvU2,

	{kUShort, kSByte}: ConvI1,
	{kUShort, kByte}:  ConvU1,
	{kUShort, kShort}: ConvI2,
	{kUShort, kChar}:  ConvU2,

	{kInt, kSByte}:  ConvI1,
	{kInt, kByte}:   ConvU1,
	{kInt, kShort}:  ConvI2,
	{kInt, kUShort}: ConvU2,
	{kInt, kUInt}:   ConvU4,
	{kInt, kULong}:  ConvI8,
	{kInt, kChar}:   ConvU2,

	{kUInt, kSByte}:  ConvI1,
	{kUInt, kByte}:   ConvU1,
	{kUInt, kShort}:  ConvI2,
	{kUInt, kUShort}: ConvU2,
	{kUInt, kInt}:    ConvI4,
	{kUInt, kChar}:   ConvU2,

	{kLong, kSByte}:  ConvI1,
	{kLong, kByte}:   ConvU1,
	{kLong, kShort}:  ConvI2,
	{kLong, kUShort}: ConvU2,
	{kLong, kInt}:    ConvI4,
	{kLong, kUInt}:   ConvU4,
	{kLong, kULong}:  ConvU8,
	{kLong, kChar}:   ConvU2,

	{kULong, kSByte}:  ConvI1,
	{kULong, kByte}:   ConvU1,
	{kULong, kShort}:  ConvI2,
	{kULong, kUShort}: ConvU2,
	{kULong, kInt}:    ConvI4,
	{kULong, kUInt}:   ConvU4,
	{kULong, kLong}:   ConvI8,
	{kULong, kChar}:   ConvU2,

	{kChar, kSByte}: ConvI1,
	{kChar, kByte}:  ConvU1,
	{kChar, kShort}: ConvI2,

	{kFloat, kSByte}:   ConvI1,
	{kFloat, kByte}:    ConvU1,
	{kFloat, kShort}:   ConvI2,
	{kFloat, kUShort}:  ConvU2,
	{kFloat, kInt}:     ConvI4,
	{kFloat, kUInt}:    ConvU4,
	{kFloat, kLong}:    ConvI8,
	{kFloat, kULong}:   ConvU8,
	{kFloat, kChar}:    ConvU2,
	{kFloat, kDecimal}: ConvToDecimal,

	{kDouble, kSByte}:   ConvI1,
	{kDouble, kByte}:    ConvU1,
	{kDouble, kShort}:   ConvI2,
	{kDouble, kUShort}:  ConvU2,
	{kDouble, kInt}:     ConvI4,
	{kDouble, kUInt}:    ConvU4,
	{kDouble, kLong}:    ConvI8,
	{kDouble, kULong}:   ConvU8,
	{kDouble, kChar}:    ConvU2,
	{kDouble, kFloat}:   ConvR4,
	{kDouble, kDecimal}: ConvToDecimal,

	{kDecimal, kSByte}:  ConvFromDecimal,
	{kDecimal, kByte}:   ConvFromDecimal,
	{kDecimal, kShort}:  ConvFromDecimal,
	{kDecimal, kUShort}: ConvFromDecimal,
	{kDecimal, kInt}:    ConvFromDecimal,
	{kDecimal, kUInt}:   ConvFromDecimal,
	{kDecimal, kLong}:   ConvFromDecimal,
	{kDecimal, kULong}:  ConvFromDecimal,
	{kDecimal, kChar}:   ConvFromDecimal,
	{kDecimal, kFloat}:  ConvFromDecimal,
	{kDecimal, kDouble}: ConvFromDecimal,
}

// extendedNumeric holds the extended dialect's implicit narrowing between
// its int, uint and Number (double) types plus the 64-bit kinds, and the
// bool to number coercion. Truth testing (number to bool) is not a table
// entry: it compares against the source kind's zero.
var extendedNumeric = map[kindPair]NumericOp{
	{kInt, kUInt}:  NumNop,
	{kInt, kULong}: ConvI8,
	{kUInt, kInt}:  NumNop,

	{kLong, kInt}:   ConvI4,
	{kLong, kUInt}:  ConvU4,
	{kLong, kULong}: NumNop,

	{kULong, kInt}:  ConvI4,
	{kULong, kUInt}: ConvU4,
	{kULong, kLong}: NumNop,

	{kFloat, kInt}:   ConvI4,
	{kFloat, kUInt}:  ConvU4,
	{kFloat, kLong}:  ConvI8,
	{kFloat, kULong}: ConvU8,

	{kDouble, kInt}:   ConvI4,
	{kDouble, kUInt}:  ConvU4,
	{kDouble, kLong}:  ConvI8,
	{kDouble, kULong}: ConvU8,
	{kDouble, kFloat}: ConvR4,

	{kBool, kInt}:    ConvFromBool,
	{kBool, kUInt}:   ConvFromBool,
	{kBool, kLong}:   ConvFromBool,
	{kBool, kULong}:  ConvFromBool,
	{kBool, kFloat}:  ConvFromBool,
	{kBool, kDouble}: ConvFromBool,
}

// ImplicitNumericOp looks up the widening graph.
func ImplicitNumericOp(from, to types.Kind) (NumericOp, bool) {
	op, ok := implicitNumeric[kindPair{from, to}]
	return op, ok
}

// ExplicitNumericOp looks up the full explicit table, widening included.
func ExplicitNumericOp(from, to types.Kind) (NumericOp, bool) {
	if op, ok := implicitNumeric[kindPair{from, to}]; ok {
		return op, true
	}
	op, ok := explicitNumeric[kindPair{from, to}]
	return op, ok
}

// ExtendedNumericOp looks up the extended dialect's loose conversions.
func ExtendedNumericOp(from, to types.Kind) (NumericOp, bool) {
	op, ok := extendedNumeric[kindPair{from, to}]
	return op, ok
}

// enumNumericOp derives the op of an explicit enum conversion from the
// underlying kinds; equal kinds need nothing.
func enumNumericOp(from, to types.Kind) (NumericOp, bool) {
	if from == to {
		return NumNop, true
	}
	return ExplicitNumericOp(from, to)
}
