package conv

import (
	"errors"
	"math"

	"fortio.org/safecast"

	"castor/internal/types"
)

var (
	errFoldOverflow = errors.New("value out of range")
	errFoldMode     = errors.New("overflow mode unspecified")
	errNotFoldable  = errors.New("not foldable")
)

type integer interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64
}

// Representable reports whether an integral constant fits kind exactly.
func Representable(c Constant, kind types.Kind) bool {
	_, err := FoldNumeric(c, kind, Checked)
	return err == nil
}

// FoldNumeric converts a numeric constant to kind. Out-of-range integral
// results fail under Checked, wrap (two's complement) under Unchecked and
// are an error under OverflowUnspecified. Floating values outside the
// 64-bit integral range, NaN and infinities never fold into an integral
// kind. decimal is not folded.
func FoldNumeric(c Constant, kind types.Kind, mode Overflow) (Constant, error) {
	switch c.Kind {
	case ConstInt, ConstUint, ConstFloat:
	case ConstBool:
		return foldBool(c, kind)
	default:
		return Constant{}, errNotFoldable
	}
	switch kind {
	case types.KindFloat:
		return FloatConst(float64(float32(asFloat(c)))), nil
	case types.KindDouble:
		return FloatConst(asFloat(c)), nil
	case types.KindDecimal:
		return Constant{}, errNotFoldable
	}
	if !kind.IsIntegral() {
		return Constant{}, errNotFoldable
	}
	if c.Kind == ConstFloat {
		n, ok := truncateFloat(c.FloatValue)
		if !ok {
			return Constant{}, errFoldOverflow
		}
		c = n
	}
	switch kind {
	case types.KindSByte:
		return signed[int8](c, mode)
	case types.KindShort:
		return signed[int16](c, mode)
	case types.KindInt:
		return signed[int32](c, mode)
	case types.KindLong:
		return signed[int64](c, mode)
	case types.KindByte:
		return unsigned[uint8](c, mode)
	case types.KindUShort, types.KindChar:
		return unsigned[uint16](c, mode)
	case types.KindUInt:
		return unsigned[uint32](c, mode)
	default:
		return unsigned[uint64](c, mode)
	}
}

func signed[T int8 | int16 | int32 | int64](c Constant, mode Overflow) (Constant, error) {
	v, err := narrow[T](c, mode)
	return IntConst(int64(v)), err
}

func unsigned[T uint8 | uint16 | uint32 | uint64](c Constant, mode Overflow) (Constant, error) {
	v, err := narrow[T](c, mode)
	return UintConst(uint64(v)), err
}

func narrow[T integer](c Constant, mode Overflow) (T, error) {
	var (
		v   T
		err error
	)
	if c.Kind == ConstInt {
		v, err = safecast.Conv[T](c.IntValue)
	} else {
		v, err = safecast.Conv[T](c.UintValue)
	}
	if err == nil {
		return v, nil
	}
	switch mode {
	case Unchecked:
		if c.Kind == ConstInt {
			return T(c.IntValue), nil
		}
		return T(c.UintValue), nil
	case Checked:
		return 0, errFoldOverflow
	default:
		return 0, errFoldMode
	}
}

// truncateFloat rounds toward zero into the 64-bit integral range.
func truncateFloat(f float64) (Constant, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Constant{}, false
	}
	t := math.Trunc(f)
	switch {
	case t >= math.MinInt64 && t < math.MaxInt64:
		return IntConst(int64(t)), true
	case t >= 0 && t < math.MaxUint64:
		return UintConst(uint64(t)), true
	}
	return Constant{}, false
}

func asFloat(c Constant) float64 {
	switch c.Kind {
	case ConstInt:
		return float64(c.IntValue)
	case ConstUint:
		return float64(c.UintValue)
	}
	return c.FloatValue
}

// foldBool is the extended dialect's bool to number coercion.
func foldBool(c Constant, kind types.Kind) (Constant, error) {
	var n int64
	if c.BoolValue {
		n = 1
	}
	switch {
	case kind.IsFloating():
		return FloatConst(float64(n)), nil
	case kind.IsUnsigned():
		return UintConst(uint64(n)), nil
	case kind.IsIntegral():
		return IntConst(n), nil
	}
	return Constant{}, errNotFoldable
}

// truthOf folds a numeric constant's truth value.
func truthOf(c Constant) (Constant, bool) {
	switch c.Kind {
	case ConstInt:
		return BoolConst(c.IntValue != 0), true
	case ConstUint:
		return BoolConst(c.UintValue != 0), true
	case ConstFloat:
		return BoolConst(c.FloatValue != 0 && !math.IsNaN(c.FloatValue)), true
	}
	return Constant{}, false
}
