package conv_test

import (
	"errors"
	"math"
	"testing"

	"castor/internal/conv"
	"castor/internal/types"
)

func withOverflow(ctx conv.Context, o conv.Overflow) conv.Context {
	ctx.Overflow = o
	return ctx
}

func TestConstantFolding(t *testing.T) {
	u := newUniverse(t)
	e := u.engine()
	b := u.b
	tests := []struct {
		name string
		v    conv.Expr
		dst  types.TypeID
		ctx  conv.Context
		want conv.Constant
	}{
		{"fits byte", conv.Const(b.Int, conv.IntConst(200)), b.Byte, implicitStd(), conv.UintConst(200)},
		{"fits byte unchecked", conv.Const(b.Int, conv.IntConst(200)), b.Byte, withOverflow(explicitStd(), conv.Unchecked), conv.UintConst(200)},
		{"wraps byte", conv.Const(b.Int, conv.IntConst(300)), b.Byte, withOverflow(explicitStd(), conv.Unchecked), conv.UintConst(44)},
		{"wraps sbyte", conv.Const(b.Int, conv.IntConst(200)), b.SByte, withOverflow(explicitStd(), conv.Unchecked), conv.IntConst(-56)},
		{"wraps uint", conv.Const(b.Int, conv.IntConst(-1)), b.UInt, withOverflow(explicitStd(), conv.Unchecked), conv.UintConst(math.MaxUint32)},
		{"ulong to long", conv.Const(b.ULong, conv.UintConst(math.MaxUint64)), b.Long, withOverflow(explicitStd(), conv.Unchecked), conv.IntConst(-1)},
		{"truncates double", conv.Const(b.Double, conv.FloatConst(3.9)), b.Int, withOverflow(explicitStd(), conv.Checked), conv.IntConst(3)},
		{"truncates negative", conv.Const(b.Double, conv.FloatConst(-3.9)), b.Int, withOverflow(explicitStd(), conv.Checked), conv.IntConst(-3)},
		{"widens to double", conv.Const(b.Int, conv.IntConst(5)), b.Double, implicitStd(), conv.FloatConst(5)},
		{"rounds to float", conv.Const(b.Double, conv.FloatConst(0.1)), b.Float, withOverflow(explicitStd(), conv.Checked), conv.FloatConst(float64(float32(0.1)))},
		{"long to ulong", conv.Const(b.Long, conv.IntConst(9)), b.ULong, implicitStd(), conv.UintConst(9)},
		{"enum zero", conv.Const(b.Int, conv.IntConst(0)), u.color, implicitStd(), conv.IntConst(0)},
		{"enum cast", conv.Const(b.Int, conv.IntConst(3)), u.color, explicitStd(), conv.IntConst(3)},
		{"enum to byte", conv.Const(u.color, conv.IntConst(3)), b.Byte, explicitStd(), conv.UintConst(3)},
	}
	for _, tt := range tests {
		op, _, err := e.Convert(tt.v, tt.dst, tt.ctx, conv.Report)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if op.Kind != conv.OpConst || op.Value == nil || *op.Value != tt.want {
			t.Fatalf("%s: got %s, want const[%s]", tt.name, op, tt.want)
		}
	}
}

func TestConstantOverflow(t *testing.T) {
	u := newUniverse(t)
	b := u.b
	tests := []struct {
		name string
		v    conv.Expr
		dst  types.TypeID
		ctx  conv.Context
		kind conv.ErrorKind
	}{
		{"checked byte", conv.Const(b.Int, conv.IntConst(300)), b.Byte, withOverflow(explicitStd(), conv.Checked), conv.ErrConstantOverflow},
		{"checked negative", conv.Const(b.Int, conv.IntConst(-1)), b.ULong, withOverflow(explicitStd(), conv.Checked), conv.ErrConstantOverflow},
		{"no overflow mode", conv.Const(b.Int, conv.IntConst(300)), b.Byte, explicitStd(), conv.ErrOverflowContext},
		{"huge double unchecked", conv.Const(b.Double, conv.FloatConst(1e20)), b.Int, withOverflow(explicitStd(), conv.Unchecked), conv.ErrConstantOverflow},
		{"nan", conv.Const(b.Double, conv.FloatConst(math.NaN())), b.Long, withOverflow(explicitStd(), conv.Unchecked), conv.ErrConstantOverflow},
		{"checked double", conv.Const(b.Double, conv.FloatConst(3e9)), b.Int, withOverflow(explicitStd(), conv.Checked), conv.ErrConstantOverflow},
	}
	for _, tt := range tests {
		e, bag := u.reportingEngine()
		_, _, err := e.Convert(tt.v, tt.dst, tt.ctx, conv.Report)
		if !errors.Is(err, tt.kind) {
			t.Fatalf("%s: got %v, want %v", tt.name, err, tt.kind)
		}
		var cerr *conv.Error
		if !errors.As(err, &cerr) || cerr.Target != tt.dst {
			t.Fatalf("%s: error does not carry the conversion: %v", tt.name, err)
		}
		if bag.Len() != 1 {
			t.Fatalf("%s: expected one diagnostic, got %d", tt.name, bag.Len())
		}
	}
}

func TestOperationTrees(t *testing.T) {
	u := newOpUniverse(t)
	e := u.engine()
	b := u.b
	nInt, nLong := u.in.Nullable(b.Int), u.in.Nullable(b.Long)
	ext := implicitExt()
	tests := []struct {
		name string
		v    conv.Expr
		dst  types.TypeID
		ctx  conv.Context
		want string
	}{
		{"identity", conv.Var(b.Int), b.Int, implicitStd(), "nop"},
		{"widen", conv.Var(b.Int), b.Long, implicitStd(), "numeric[conv.i8]"},
		{"unsigned to float", conv.Var(b.ULong), b.Double, implicitStd(), "numeric[conv.r.un+conv.r8]"},
		{"narrow", conv.Var(b.Int), b.Byte, explicitStd(), "numeric[conv.u1]"},
		{"narrow checked", conv.Var(b.Int), b.Byte, withOverflow(explicitStd(), conv.Checked), "numeric[conv.u1,ovf]"},
		{"decimal is not folded", conv.Const(b.Int, conv.IntConst(5)), b.Decimal, implicitStd(), "numeric[decimal.from]"},
		{"box", conv.Var(b.Int), b.Object, implicitStd(), "box"},
		{"unbox", conv.Var(b.Object), b.Int, explicitStd(), "unbox"},
		{"upcast", conv.Var(u.dog), u.animal, implicitStd(), "upcast"},
		{"downcast", conv.Var(u.animal), u.dog, explicitStd(), "downcast"},
		{"null", conv.Const(b.Null, conv.NullConst()), b.String, implicitStd(), "const[null]"},
		{"wrap", conv.Var(b.Int), nLong, implicitStd(), "wrap(numeric[conv.i8])"},
		{"wrap constant", conv.Const(b.Int, conv.IntConst(5)), nLong, implicitStd(), "wrap(const[5])"},
		{"lift", conv.Var(nInt), nLong, implicitStd(), "lift{numeric[conv.i8]}"},
		{"unwrap", conv.Var(nLong), b.Int, explicitStd(), "numeric[conv.i4](unwrap)"},
		{"box nullable", conv.Var(nInt), b.Object, implicitStd(), "lift{box}"},
		{"dynamic", conv.Var(b.Dynamic), b.Int, explicitStd(), "dyncast"},
		{"user-defined", conv.Var(b.Int), u.money, implicitStd(), "call(numeric[conv.i8])"},
		{"user-defined constant", conv.Const(b.Int, conv.IntConst(5)), u.money, implicitStd(), "call(const[5])"},
		{"user-defined unwrap", conv.Var(u.in.Nullable(u.money)), b.Decimal, explicitStd(), "call(unwrap)"},
		{"user-defined lifted", conv.Var(nLong), u.in.Nullable(u.money), implicitStd(), "lift{call}"},
		{"truth constant", conv.Const(b.Int, conv.IntConst(0)), b.Bool, ext, "const[false]"},
		{"truth numeric", conv.Var(b.Double), b.Bool, ext, "nonzero[0]"},
		{"truth reference", conv.Var(u.dog), b.Bool, ext, "nonnull"},
		{"truth boxed scalar", conv.Var(u.boxed), b.Bool, ext, "truth"},
		{"truth dynamic", conv.Var(b.Dynamic), b.Bool, ext, "truth"},
		{"to string", conv.Var(b.Int), b.String, ext, "tostring"},
		{"string constant", conv.Const(b.String, conv.StringConst("x")), b.String, ext, "nop"},
		{"bool to number", conv.Const(b.Bool, conv.BoolConst(true)), b.Int, ext, "const[1]"},
		{"loose narrowing", conv.Const(b.Double, conv.FloatConst(2.5)), b.Int, ext, "const[2]"},
	}
	for _, tt := range tests {
		op, _, err := e.Convert(tt.v, tt.dst, tt.ctx, conv.Report)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if got := op.String(); got != tt.want {
			t.Fatalf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestRuntimeCheckedOperations(t *testing.T) {
	u := newUniverse(t)
	e := u.engine()
	b := u.b
	op, r, err := e.Convert(conv.Var(u.in.Nullable(b.Long)), b.Int, explicitStd(), conv.Report)
	if err != nil {
		t.Fatal(err)
	}
	if !r.RuntimeChecked || op.Operand == nil || op.Operand.Kind != conv.OpUnwrap || !op.Operand.RuntimeChecked {
		t.Fatalf("unwrap must be run-time checked: %s", op)
	}
	op, _, err = e.Convert(conv.Var(b.Object), u.point, explicitStd(), conv.Report)
	if err != nil {
		t.Fatal(err)
	}
	if op.Kind != conv.OpUnbox || !op.RuntimeChecked {
		t.Fatalf("unbox must be run-time checked: %s", op)
	}
}

func TestApplyRejectsMissingConversions(t *testing.T) {
	u := newUniverse(t)
	c := conv.NewClassifier(u.in, nil)
	a := conv.NewApplier(c)
	r := c.Classify(u.b.String, u.b.Int, explicitStd())
	if _, err := a.Apply(r, conv.Var(u.b.String), explicitStd()); !errors.Is(err, conv.ErrNoConversion) {
		t.Fatalf("string -> int: got %v", err)
	}
	r = c.Classify(u.in.Pointer(u.b.Int), u.in.Pointer(u.b.Void), implicitStd())
	if _, err := a.Apply(r, conv.Var(r.Source), implicitStd()); !errors.Is(err, conv.ErrInvalidPointer) {
		t.Fatalf("int* -> void* outside unsafe: got %v", err)
	}
}

func TestFoldNumeric(t *testing.T) {
	tests := []struct {
		c    conv.Constant
		kind types.Kind
		mode conv.Overflow
		want conv.Constant
		ok   bool
	}{
		{conv.IntConst(127), types.KindSByte, conv.Checked, conv.IntConst(127), true},
		{conv.IntConst(128), types.KindSByte, conv.Checked, conv.Constant{}, false},
		{conv.IntConst(128), types.KindSByte, conv.Unchecked, conv.IntConst(-128), true},
		{conv.IntConst(65601), types.KindChar, conv.Unchecked, conv.UintConst(65), true},
		{conv.UintConst(1 << 40), types.KindUInt, conv.Unchecked, conv.UintConst(0), true},
		{conv.IntConst(1), types.KindFloat, conv.OverflowUnspecified, conv.FloatConst(1), true},
		{conv.FloatConst(-0.5), types.KindUInt, conv.Checked, conv.UintConst(0), true},
		{conv.FloatConst(-1.5), types.KindUInt, conv.Checked, conv.Constant{}, false},
		{conv.FloatConst(math.Inf(1)), types.KindLong, conv.Unchecked, conv.Constant{}, false},
		{conv.FloatConst(1.8e19), types.KindULong, conv.Checked, conv.UintConst(18000000000000000000), true},
		{conv.BoolConst(true), types.KindDouble, conv.Checked, conv.FloatConst(1), true},
		{conv.StringConst("1"), types.KindInt, conv.Unchecked, conv.Constant{}, false},
	}
	for _, tt := range tests {
		got, err := conv.FoldNumeric(tt.c, tt.kind, tt.mode)
		if (err == nil) != tt.ok {
			t.Fatalf("fold %s to %s (%s): err=%v, want ok=%t", tt.c, tt.kind, tt.mode, err, tt.ok)
		}
		if tt.ok && got != tt.want {
			t.Fatalf("fold %s to %s (%s): got %s, want %s", tt.c, tt.kind, tt.mode, got, tt.want)
		}
	}
	if !conv.Representable(conv.IntConst(255), types.KindByte) || conv.Representable(conv.IntConst(256), types.KindByte) {
		t.Fatalf("byte range check is off")
	}
}
