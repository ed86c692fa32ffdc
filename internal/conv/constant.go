package conv

import (
	"fmt"
	"strconv"

	"castor/internal/types"
)

// ConstKind tags the representation of a Constant.
type ConstKind uint8

const (
	ConstInvalid ConstKind = iota
	ConstInt               // signed integral value in IntValue
	ConstUint              // unsigned integral value in UintValue
	ConstFloat
	ConstBool
	ConstString
	ConstNull
)

// Constant is a folded compile-time value. Its type is carried by the
// expression, not by the constant.
type Constant struct {
	Kind        ConstKind
	IntValue    int64
	UintValue   uint64
	FloatValue  float64
	BoolValue   bool
	StringValue string
}

func IntConst(v int64) Constant     { return Constant{Kind: ConstInt, IntValue: v} }
func UintConst(v uint64) Constant   { return Constant{Kind: ConstUint, UintValue: v} }
func FloatConst(v float64) Constant { return Constant{Kind: ConstFloat, FloatValue: v} }
func BoolConst(v bool) Constant     { return Constant{Kind: ConstBool, BoolValue: v} }
func StringConst(v string) Constant { return Constant{Kind: ConstString, StringValue: v} }
func NullConst() Constant           { return Constant{Kind: ConstNull} }

// IsIntegral reports integer constants.
func (c Constant) IsIntegral() bool {
	return c.Kind == ConstInt || c.Kind == ConstUint
}

// IsZero reports an integral zero.
func (c Constant) IsZero() bool {
	switch c.Kind {
	case ConstInt:
		return c.IntValue == 0
	case ConstUint:
		return c.UintValue == 0
	}
	return false
}

func (c Constant) String() string {
	switch c.Kind {
	case ConstInt:
		return strconv.FormatInt(c.IntValue, 10)
	case ConstUint:
		return strconv.FormatUint(c.UintValue, 10)
	case ConstFloat:
		return strconv.FormatFloat(c.FloatValue, 'g', -1, 64)
	case ConstBool:
		return strconv.FormatBool(c.BoolValue)
	case ConstString:
		return strconv.Quote(c.StringValue)
	case ConstNull:
		return "null"
	}
	return fmt.Sprintf("Constant(%d)", c.Kind)
}

// implicitConstant admits an int constant into sbyte, byte, short, ushort,
// uint or ulong when it fits, a non-negative long constant into ulong, and
// an integral zero into any enum.
func (c *Classifier) implicitConstant(src, dst types.TypeID, cst Constant) (Result, bool) {
	in := c.types
	sk, dk := in.Kind(src), in.Kind(dst)
	if !cst.IsIntegral() || !sk.IsIntegral() || sk == types.KindChar {
		return Result{}, false
	}
	if dk == types.KindEnum && cst.IsZero() {
		return simple(EnumZero, src, dst), true
	}
	switch sk {
	case types.KindInt:
		switch dk {
		case types.KindSByte, types.KindByte, types.KindShort, types.KindUShort, types.KindUInt, types.KindULong:
			if Representable(cst, dk) {
				return simple(ImplicitConstant, src, dst), true
			}
		}
	case types.KindLong:
		if dk == types.KindULong && Representable(cst, dk) {
			return simple(ImplicitConstant, src, dst), true
		}
	}
	return Result{}, false
}
