package conv_test

import (
	"testing"

	"castor/internal/conv"
	"castor/internal/types"
)

func TestIdentityInEveryContext(t *testing.T) {
	u := newUniverse(t)
	c := conv.NewClassifier(u.in, nil)
	ctxs := []conv.Context{implicitStd(), explicitStd(), implicitExt(), explicitExt()}
	for _, id := range u.all() {
		for _, ctx := range ctxs {
			if r := c.Classify(id, id, ctx); r.Kind != conv.Identity {
				t.Fatalf("%s -> %s (explicit=%t, %s): got %s, want Identity", u.label(id), u.label(id), ctx.Explicit, ctx.Dialect, r)
			}
		}
	}
}

func TestErrorTypeConvertsSilently(t *testing.T) {
	u := newUniverse(t)
	c := conv.NewClassifier(u.in, nil)
	for _, id := range []types.TypeID{u.b.Int, u.dog, u.in.Nullable(u.b.Int)} {
		if r := c.Classify(u.errT, id, implicitStd()); r.Kind != conv.Identity {
			t.Fatalf("error -> %s: got %s", u.label(id), r)
		}
		if r := c.Classify(id, u.errT, implicitStd()); r.Kind != conv.Identity {
			t.Fatalf("%s -> error: got %s", u.label(id), r)
		}
	}
}

func TestNumericWideningIsTransitive(t *testing.T) {
	u := newUniverse(t)
	c := conv.NewClassifier(u.in, nil)
	var numeric []types.TypeID
	for k := types.KindChar; k <= types.KindDecimal; k++ {
		numeric = append(numeric, u.in.Primitive(k))
	}
	widens := func(a, b types.TypeID) bool {
		return c.Classify(a, b, implicitStd()).Kind == conv.ImplicitNumeric
	}
	for _, s := range numeric {
		for _, m := range numeric {
			if !widens(s, m) {
				continue
			}
			for _, d := range numeric {
				if widens(m, d) && !widens(s, d) {
					t.Fatalf("%s -> %s -> %s widens but %s -> %s does not",
						u.label(s), u.label(m), u.label(d), u.label(s), u.label(d))
				}
			}
		}
	}
}

func TestNumericOpcodes(t *testing.T) {
	u := newUniverse(t)
	c := conv.NewClassifier(u.in, nil)
	b := u.b
	tests := []struct {
		src, dst types.TypeID
		ctx      conv.Context
		kind     conv.ResultKind
		op       conv.NumericOp
	}{
		{b.SByte, b.Int, implicitStd(), conv.ImplicitNumeric, conv.NumNop},
		{b.Int, b.Long, implicitStd(), conv.ImplicitNumeric, conv.ConvI8},
		{b.UInt, b.Long, implicitStd(), conv.ImplicitNumeric, conv.ConvU8},
		{b.UInt, b.Float, implicitStd(), conv.ImplicitNumeric, conv.ConvRUnR4},
		{b.ULong, b.Double, implicitStd(), conv.ImplicitNumeric, conv.ConvRUnR8},
		{b.Long, b.Double, implicitStd(), conv.ImplicitNumeric, conv.ConvR8},
		{b.Int, b.Decimal, implicitStd(), conv.ImplicitNumeric, conv.ConvToDecimal},
		{b.Int, b.SByte, explicitStd(), conv.ExplicitNumeric, conv.ConvI1},
		{b.Double, b.Float, explicitStd(), conv.ExplicitNumeric, conv.ConvR4},
		{b.Decimal, b.Int, explicitStd(), conv.ExplicitNumeric, conv.ConvFromDecimal},
		{b.Char, b.Byte, explicitStd(), conv.ExplicitNumeric, conv.ConvU1},
		{b.Int, b.Long, explicitStd(), conv.ImplicitNumeric, conv.ConvI8},
	}
	for _, tt := range tests {
		r := c.Classify(tt.src, tt.dst, tt.ctx)
		if r.Kind != tt.kind || r.Numeric != tt.op {
			t.Fatalf("%s -> %s: got %s/%s, want %s/%s", u.label(tt.src), u.label(tt.dst), r.Kind, r.Numeric, tt.kind, tt.op)
		}
	}
}

func TestNumericScenarios(t *testing.T) {
	u := newUniverse(t)
	c := conv.NewClassifier(u.in, nil)
	b := u.b
	if r := c.Classify(b.SByte, b.Int, implicitStd()); r.Kind != conv.ImplicitNumeric {
		t.Fatalf("sbyte -> int: got %s", r)
	}
	if r := c.Classify(b.Int, b.SByte, implicitStd()); r.Kind != conv.None {
		t.Fatalf("int -> sbyte implicit: got %s", r)
	}
	if r := c.Classify(b.Int, b.SByte, explicitStd()); r.Kind != conv.ExplicitNumeric {
		t.Fatalf("int -> sbyte explicit: got %s", r)
	}
	if r := c.Classify(b.Bool, b.Int, explicitStd()); r.Kind != conv.None {
		t.Fatalf("bool -> int must not exist in the standard dialect: got %s", r)
	}
	if r := c.Classify(b.Char, b.Int, implicitStd()); r.Kind != conv.ImplicitNumeric {
		t.Fatalf("char -> int: got %s", r)
	}
	if r := c.Classify(b.Int, b.Char, implicitStd()); r.Kind != conv.None {
		t.Fatalf("int -> char implicit: got %s", r)
	}
}

func TestExplicitSubsumesImplicit(t *testing.T) {
	u := newUniverse(t)
	c := conv.NewClassifier(u.in, nil)
	pairs := []struct{ implicit, explicit conv.Context }{
		{implicitStd(), explicitStd()},
		{implicitExt(), explicitExt()},
	}
	ids := u.all()
	for _, p := range pairs {
		for _, s := range ids {
			for _, d := range ids {
				ir := c.Classify(s, d, p.implicit)
				mustInvariants(t, u.in, ir)
				er := c.Classify(s, d, p.explicit)
				mustInvariants(t, u.in, er)
				if !ir.Exists() {
					continue
				}
				if er.Kind != ir.Kind {
					t.Fatalf("%s -> %s (%s): implicit %s but explicit %s", u.label(s), u.label(d), p.implicit.Dialect, ir, er)
				}
				if !ir.IsImplicit() {
					t.Fatalf("%s -> %s: implicit context produced a cast-only result %s", u.label(s), u.label(d), ir)
				}
			}
		}
	}
}

func TestBoxingAndUnboxing(t *testing.T) {
	u := newUniverse(t)
	c := conv.NewClassifier(u.in, nil)
	for _, v := range []types.TypeID{u.b.Int, u.b.Double, u.b.Bool, u.point, u.color} {
		if r := c.Classify(v, u.b.Object, implicitStd()); r.Kind != conv.Boxing {
			t.Fatalf("%s -> object implicit: got %s", u.label(v), r)
		}
		if r := c.Classify(v, u.b.Object, explicitStd()); r.Kind != conv.Boxing {
			t.Fatalf("%s -> object explicit: got %s", u.label(v), r)
		}
		if r := c.Classify(u.b.Object, v, implicitStd()); r.Kind != conv.None {
			t.Fatalf("object -> %s implicit: got %s", u.label(v), r)
		}
		r := c.Classify(u.b.Object, v, explicitStd())
		if r.Kind != conv.Unboxing || !r.RuntimeChecked {
			t.Fatalf("object -> %s explicit: got %s (checked=%t)", u.label(v), r, r.RuntimeChecked)
		}
		if r := c.Classify(v, u.b.ValueType, implicitStd()); r.Kind != conv.Boxing {
			t.Fatalf("%s -> System.ValueType: got %s", u.label(v), r)
		}
	}
	if r := c.Classify(u.point, u.shape, implicitStd()); r.Kind != conv.Boxing {
		t.Fatalf("Point -> IShape: got %s", r)
	}
	if r := c.Classify(u.shape, u.point, explicitStd()); r.Kind != conv.Unboxing {
		t.Fatalf("IShape -> Point: got %s", r)
	}
	if r := c.Classify(u.color, u.b.Enum, implicitStd()); r.Kind != conv.Boxing {
		t.Fatalf("Color -> System.Enum: got %s", r)
	}
	if r := c.Classify(u.b.Int, u.b.Enum, implicitStd()); r.Kind != conv.None {
		t.Fatalf("int -> System.Enum: got %s", r)
	}
	if r := c.Classify(u.b.Object, u.in.Nullable(u.b.Int), explicitStd()); r.Kind != conv.Unboxing {
		t.Fatalf("object -> int?: got %s", r)
	}
	r := c.Classify(u.in.Nullable(u.b.Int), u.b.Object, implicitStd())
	if r.Kind != conv.NullableLift || r.Inner.Kind != conv.Boxing {
		t.Fatalf("int? -> object: got %s", r)
	}
}

func TestNullableConversions(t *testing.T) {
	u := newUniverse(t)
	c := conv.NewClassifier(u.in, nil)
	for _, v := range []types.TypeID{u.b.Int, u.b.Double, u.point, u.color} {
		nv := u.in.Nullable(v)
		wrap := c.Classify(v, nv, implicitStd())
		if wrap.Kind != conv.NullableWrap || wrap.Inner.Kind != conv.Identity {
			t.Fatalf("%s -> %s: got %s", u.label(v), u.label(nv), wrap)
		}
		unwrap := c.Classify(nv, v, explicitStd())
		if unwrap.Kind != conv.NullableUnwrap || unwrap.Inner.Kind != conv.Identity || !unwrap.RuntimeChecked {
			t.Fatalf("%s -> %s: got %s", u.label(nv), u.label(v), unwrap)
		}
		if r := c.Classify(nv, v, implicitStd()); r.Kind != conv.None {
			t.Fatalf("%s -> %s implicit: got %s", u.label(nv), u.label(v), r)
		}
		if r := c.Classify(u.b.Null, nv, implicitStd()); r.Kind != conv.NullLiteral {
			t.Fatalf("null -> %s: got %s", u.label(nv), r)
		}
	}

	b := u.b
	nInt, nLong := u.in.Nullable(b.Int), u.in.Nullable(b.Long)
	tests := []struct {
		src, dst types.TypeID
		ctx      conv.Context
		kind     conv.ResultKind
		inner    conv.ResultKind
	}{
		{b.Int, nLong, implicitStd(), conv.NullableWrap, conv.ImplicitNumeric},
		{nInt, nLong, implicitStd(), conv.NullableLift, conv.ImplicitNumeric},
		{nLong, nInt, explicitStd(), conv.NullableLift, conv.ExplicitNumeric},
		{nLong, b.Int, explicitStd(), conv.NullableUnwrap, conv.ExplicitNumeric},
		{b.Long, nInt, explicitStd(), conv.NullableWrap, conv.ExplicitNumeric},
	}
	for _, tt := range tests {
		r := c.Classify(tt.src, tt.dst, tt.ctx)
		if r.Kind != tt.kind || r.Inner == nil || r.Inner.Kind != tt.inner {
			t.Fatalf("%s -> %s: got %s, want %s(%s)", u.label(tt.src), u.label(tt.dst), r, tt.kind, tt.inner)
		}
		mustInvariants(t, u.in, r)
	}
	if r := c.Classify(nLong, nInt, implicitStd()); r.Kind != conv.None {
		t.Fatalf("long? -> int? implicit: got %s", r)
	}
}

func TestNullLiteral(t *testing.T) {
	u := newUniverse(t)
	c := conv.NewClassifier(u.in, nil)
	if r := c.Classify(u.b.Null, u.in.Nullable(u.b.Int), implicitStd()); !r.Exists() {
		t.Fatalf("null -> int?: got %s", r)
	}
	if r := c.Classify(u.b.Null, u.b.Int, implicitStd()); r.Kind != conv.None {
		t.Fatalf("null -> int: got %s", r)
	}
	for _, d := range []types.TypeID{u.b.String, u.b.Object, u.dog, u.shape, u.handler, u.in.Array(u.b.Int, 1), u.in.Pointer(u.b.Int)} {
		if r := c.Classify(u.b.Null, d, implicitStd()); r.Kind != conv.NullLiteral {
			t.Fatalf("null -> %s: got %s", u.label(d), r)
		}
	}
	if r := c.Classify(u.b.Null, u.u, implicitStd()); r.Kind != conv.None {
		t.Fatalf("null -> unconstrained U: got %s", r)
	}
}

func TestReferenceConversions(t *testing.T) {
	u := newUniverse(t)
	c := conv.NewClassifier(u.in, nil)
	b := u.b
	dogs, animals := u.in.Array(u.dog, 1), u.in.Array(u.animal, 1)
	tests := []struct {
		name     string
		src, dst types.TypeID
		ctx      conv.Context
		kind     conv.ResultKind
	}{
		{"upcast", u.dog, u.animal, implicitStd(), conv.ImplicitReference},
		{"to object", u.dog, b.Object, implicitStd(), conv.ImplicitReference},
		{"to dynamic", u.dog, b.Dynamic, implicitStd(), conv.ImplicitReference},
		{"downcast implicit", u.animal, u.dog, implicitStd(), conv.None},
		{"downcast", u.animal, u.dog, explicitStd(), conv.ExplicitReference},
		{"sibling", u.dog, u.cat, explicitStd(), conv.None},
		{"class to interface", u.dog, u.shape, explicitStd(), conv.ExplicitReference},
		{"sealed to interface", u.cat, u.shape, explicitStd(), conv.None},
		{"interface to class", u.shape, u.dog, explicitStd(), conv.ExplicitReference},
		{"interface to sealed", u.shape, u.cat, explicitStd(), conv.None},
		{"array covariance", dogs, animals, implicitStd(), conv.ImplicitReference},
		{"array downcast", animals, dogs, explicitStd(), conv.ExplicitReference},
		{"array rank", animals, u.in.Array(u.animal, 2), explicitStd(), conv.None},
		{"value array", u.in.Array(b.Int, 1), u.in.Array(b.Object, 1), explicitStd(), conv.None},
		{"array to System.Array", dogs, b.Array, implicitStd(), conv.ImplicitReference},
		{"delegate base", u.handler, b.Delegate, implicitStd(), conv.ImplicitReference},
		{"string to object", b.String, b.Object, implicitStd(), conv.ImplicitReference},
		{"object to string", b.Object, b.String, explicitStd(), conv.ExplicitReference},
	}
	for _, tt := range tests {
		r := c.Classify(tt.src, tt.dst, tt.ctx)
		if r.Kind != tt.kind {
			t.Fatalf("%s: %s -> %s got %s, want %s", tt.name, u.label(tt.src), u.label(tt.dst), r, tt.kind)
		}
		if r.Kind == conv.ExplicitReference && !r.RuntimeChecked {
			t.Fatalf("%s: downcast must be run-time checked", tt.name)
		}
	}
}

func TestArrayCovarianceAtVarargsCallSite(t *testing.T) {
	u := newUniverse(t)
	c := conv.NewClassifier(u.in, nil)
	strs, objs := u.in.Array(u.b.String, 1), u.in.Array(u.b.Object, 1)

	if r := c.Classify(strs, objs, implicitStd()); r.Kind != conv.ImplicitReference {
		t.Fatalf("string[] -> object[] standard: got %s", r)
	}
	varargs := implicitStd()
	varargs.VarargsCallSite = true
	if r := c.Classify(strs, objs, varargs); r.Kind != conv.ImplicitReference {
		t.Fatalf("standard dialect ignores the call-site flag: got %s", r)
	}
	if r := c.Classify(strs, objs, implicitExt()); r.Kind != conv.ImplicitReference {
		t.Fatalf("string[] -> object[] extended: got %s", r)
	}
	varargs = implicitExt()
	varargs.VarargsCallSite = true
	if r := c.Classify(strs, objs, varargs); r.Kind != conv.None {
		t.Fatalf("extended varargs call site must suppress covariance: got %s", r)
	}
}

func TestEnumConversions(t *testing.T) {
	u := newUniverse(t)
	c := conv.NewClassifier(u.in, nil)
	b := u.b
	tests := []struct {
		src, dst types.TypeID
		ctx      conv.Context
		kind     conv.ResultKind
		op       conv.NumericOp
	}{
		{u.color, b.Int, implicitStd(), conv.None, conv.NumNop},
		{u.color, b.Int, explicitStd(), conv.ExplicitNumeric, conv.NumNop},
		{u.color, b.Long, explicitStd(), conv.ExplicitNumeric, conv.ConvI8},
		{b.Int, u.color, explicitStd(), conv.ExplicitNumeric, conv.NumNop},
		{b.Long, u.small, explicitStd(), conv.ExplicitNumeric, conv.ConvU1},
		{u.color, u.small, explicitStd(), conv.ExplicitNumeric, conv.ConvU1},
		{u.small, u.color, explicitStd(), conv.ExplicitNumeric, conv.NumNop},
		{b.Double, u.color, explicitStd(), conv.ExplicitNumeric, conv.ConvI4},
	}
	for _, tt := range tests {
		r := c.Classify(tt.src, tt.dst, tt.ctx)
		if r.Kind != tt.kind || r.Numeric != tt.op {
			t.Fatalf("%s -> %s: got %s/%s, want %s/%s", u.label(tt.src), u.label(tt.dst), r.Kind, r.Numeric, tt.kind, tt.op)
		}
	}

	if r := c.ClassifyConstant(b.Int, u.color, conv.IntConst(0), implicitStd()); r.Kind != conv.EnumZero {
		t.Fatalf("0 -> Color: got %s", r)
	}
	if r := c.ClassifyConstant(b.Int, u.color, conv.IntConst(1), implicitStd()); r.Kind != conv.None {
		t.Fatalf("1 -> Color: got %s", r)
	}
	r := c.ClassifyConstant(b.Int, u.in.Nullable(u.color), conv.IntConst(0), implicitStd())
	if r.Kind != conv.NullableWrap || r.Inner.Kind != conv.EnumZero {
		t.Fatalf("0 -> Color?: got %s", r)
	}
}

func TestConstantConversions(t *testing.T) {
	u := newUniverse(t)
	c := conv.NewClassifier(u.in, nil)
	b := u.b
	tests := []struct {
		src, dst types.TypeID
		cst      conv.Constant
		kind     conv.ResultKind
	}{
		{b.Int, b.Byte, conv.IntConst(200), conv.ImplicitConstant},
		{b.Int, b.Byte, conv.IntConst(300), conv.None},
		{b.Int, b.SByte, conv.IntConst(-128), conv.ImplicitConstant},
		{b.Int, b.UInt, conv.IntConst(-1), conv.None},
		{b.Int, b.ULong, conv.IntConst(7), conv.ImplicitConstant},
		{b.Long, b.ULong, conv.IntConst(7), conv.ImplicitConstant},
		{b.Long, b.UInt, conv.IntConst(7), conv.None},
		{b.Int, b.Char, conv.IntConst(65), conv.None},
		{b.Int, b.Long, conv.IntConst(300), conv.ImplicitNumeric},
	}
	for _, tt := range tests {
		r := c.ClassifyConstant(tt.src, tt.dst, tt.cst, implicitStd())
		if r.Kind != tt.kind {
			t.Fatalf("const %s %s -> %s: got %s, want %s", u.label(tt.src), tt.cst, u.label(tt.dst), r, tt.kind)
		}
	}
	if r := c.ClassifyConstant(b.Int, u.in.Nullable(b.Byte), conv.IntConst(5), implicitStd()); r.Kind != conv.NullableWrap {
		t.Fatalf("5 -> byte?: got %s", r)
	}
	if r := c.Classify(b.Int, b.Byte, implicitStd()); r.Kind != conv.None {
		t.Fatalf("non-constant int -> byte: got %s", r)
	}
}

func TestDynamicConversions(t *testing.T) {
	u := newUniverse(t)
	c := conv.NewClassifier(u.in, nil)
	b := u.b
	if r := c.Classify(b.Object, b.Dynamic, implicitStd()); r.Kind != conv.Identity {
		t.Fatalf("object -> dynamic: got %s", r)
	}
	if r := c.Classify(b.Int, b.Dynamic, implicitStd()); r.Kind != conv.Boxing {
		t.Fatalf("int -> dynamic: got %s", r)
	}
	if r := c.Classify(b.Dynamic, b.Int, implicitStd()); r.Kind != conv.None {
		t.Fatalf("dynamic -> int implicit: got %s", r)
	}
	for _, d := range []types.TypeID{b.Int, u.dog, b.String, u.in.Nullable(b.Int)} {
		r := c.Classify(b.Dynamic, d, explicitStd())
		if r.Kind != conv.DynamicConversion || !r.RuntimeChecked {
			t.Fatalf("dynamic -> %s: got %s", u.label(d), r)
		}
	}
}

func TestTypeParameterConversions(t *testing.T) {
	u := newUniverse(t)
	c := conv.NewClassifier(u.in, nil)
	b := u.b
	tests := []struct {
		name     string
		src, dst types.TypeID
		ctx      conv.Context
		kind     conv.ResultKind
	}{
		{"to effective base", u.tAnimal, u.animal, implicitStd(), conv.ImplicitReference},
		{"to object", u.tAnimal, b.Object, implicitStd(), conv.ImplicitReference},
		{"unconstrained to object", u.u, b.Object, implicitStd(), conv.Boxing},
		{"to subclass", u.tAnimal, u.dog, implicitStd(), conv.None},
		{"from base", u.animal, u.tAnimal, explicitStd(), conv.ExplicitReference},
		{"from object", b.Object, u.u, explicitStd(), conv.Unboxing},
		{"to interface", u.u, u.shape, explicitStd(), conv.ExplicitReference},
		{"from interface", u.shape, u.tAnimal, explicitStd(), conv.ExplicitReference},
		{"unrelated class", u.dog, u.u, explicitStd(), conv.None},
	}
	for _, tt := range tests {
		r := c.Classify(tt.src, tt.dst, tt.ctx)
		if r.Kind != tt.kind {
			t.Fatalf("%s: %s -> %s got %s, want %s", tt.name, u.label(tt.src), u.label(tt.dst), r, tt.kind)
		}
	}
}

func TestTypeParameterDependency(t *testing.T) {
	in := types.NewInterner(nil)
	tp := in.RegisterTypeParam("T", types.Invariant)
	up := in.RegisterTypeParam("U", types.Invariant)
	in.SetConstraints(tp, types.ConstraintNone, up)
	in.SetConstraints(up, types.ConstraintNone, tp) // mutually recursive constraints
	c := conv.NewClassifier(in, nil)
	if r := c.Classify(tp, up, conv.Context{}); !r.Exists() {
		t.Fatalf("T -> U where T : U: got %s", r)
	}
	if r := c.Classify(up, tp, conv.Context{}); !r.Exists() {
		t.Fatalf("U -> T where U : T: got %s", r)
	}
}

func TestDialectCoercions(t *testing.T) {
	u := newUniverse(t)
	c := conv.NewClassifier(u.in, nil)
	b := u.b
	if r := c.Classify(b.Int, b.Bool, implicitExt()); r.Kind != conv.DialectTruth {
		t.Fatalf("int -> bool extended: got %s", r)
	}
	if r := c.Classify(b.Int, b.Bool, implicitStd()); r.Kind != conv.None {
		t.Fatalf("int -> bool standard: got %s", r)
	}
	upOnly := implicitExt()
	upOnly.UpconvertOnly = true
	if r := c.Classify(b.Int, b.Bool, upOnly); r.Kind != conv.None {
		t.Fatalf("int -> bool with upconvert-only: got %s", r)
	}
	if r := c.Classify(b.Int, b.UInt, upOnly); r.Kind != conv.None {
		t.Fatalf("int -> uint with upconvert-only: got %s", r)
	}

	tests := []struct {
		src, dst types.TypeID
		kind     conv.ResultKind
		op       conv.NumericOp
	}{
		{b.Int, b.UInt, conv.ImplicitNumeric, conv.NumNop},
		{b.Double, b.Int, conv.ImplicitNumeric, conv.ConvI4},
		{b.Long, b.Int, conv.ImplicitNumeric, conv.ConvI4},
		{b.Bool, b.Double, conv.ImplicitNumeric, conv.ConvFromBool},
		{u.dog, b.Bool, conv.DialectTruth, conv.NumNop},
		{u.dog, b.String, conv.DialectString, conv.NumNop},
		{b.Int, b.String, conv.DialectString, conv.NumNop},
		{b.Dynamic, b.Any, conv.DialectErasure, conv.NumNop},
		{b.Any, b.Dynamic, conv.DialectErasure, conv.NumNop},
		{b.Int, b.Short, conv.None, conv.NumNop},
	}
	for _, tt := range tests {
		r := c.Classify(tt.src, tt.dst, implicitExt())
		if r.Kind != tt.kind || r.Numeric != tt.op {
			t.Fatalf("%s -> %s extended: got %s, want %s(%s)", u.label(tt.src), u.label(tt.dst), r, tt.kind, tt.op)
		}
		if tt.kind == conv.None {
			continue
		}
		if r := c.Classify(tt.src, tt.dst, implicitStd()); r.Kind == tt.kind {
			t.Fatalf("%s -> %s leaked %s into the standard dialect", u.label(tt.src), u.label(tt.dst), r)
		}
	}
	if r := c.Classify(b.Any, u.dog, explicitExt()); r.Kind != conv.DynamicConversion {
		t.Fatalf("* -> Dog explicit: got %s", r)
	}
}

func TestPointerConversions(t *testing.T) {
	u := newUniverse(t)
	c := conv.NewClassifier(u.in, nil)
	b := u.b
	intPtr, voidPtr, longPtr := u.in.Pointer(b.Int), u.in.Pointer(b.Void), u.in.Pointer(b.Long)
	dogPtr := u.in.Pointer(u.dog)
	unsafeImplicit := implicitStd()
	unsafeImplicit.Unsafe = true
	unsafeExplicit := explicitStd()
	unsafeExplicit.Unsafe = true

	tests := []struct {
		name     string
		src, dst types.TypeID
		ctx      conv.Context
		kind     conv.ResultKind
		failure  conv.Failure
		explicit bool
	}{
		{"safe context", intPtr, voidPtr, implicitStd(), conv.None, conv.FailInvalidPointer, false},
		{"safe cast", b.Int, intPtr, explicitStd(), conv.None, conv.FailInvalidPointer, false},
		{"to void*", intPtr, voidPtr, unsafeImplicit, conv.Pointer, conv.FailNone, false},
		{"pointer to pointer implicit", intPtr, longPtr, unsafeImplicit, conv.None, conv.FailNone, false},
		{"pointer to pointer", intPtr, longPtr, unsafeExplicit, conv.Pointer, conv.FailNone, true},
		{"integral to pointer", b.Long, intPtr, unsafeExplicit, conv.Pointer, conv.FailNone, true},
		{"pointer to integral", intPtr, b.ULong, unsafeExplicit, conv.Pointer, conv.FailNone, true},
		{"char to pointer", b.Char, intPtr, unsafeExplicit, conv.None, conv.FailInvalidPointer, false},
		{"double to pointer", b.Double, intPtr, unsafeExplicit, conv.None, conv.FailInvalidPointer, false},
		{"managed element", dogPtr, intPtr, unsafeExplicit, conv.None, conv.FailInvalidPointer, false},
		{"pointer to object", intPtr, b.Object, unsafeExplicit, conv.None, conv.FailInvalidPointer, false},
		{"null to pointer", b.Null, intPtr, implicitStd(), conv.NullLiteral, conv.FailNone, false},
	}
	for _, tt := range tests {
		r := c.Classify(tt.src, tt.dst, tt.ctx)
		if r.Kind != tt.kind || r.Failure != tt.failure || r.ExplicitPointer != tt.explicit {
			t.Fatalf("%s: got %s failure=%s explicit=%t", tt.name, r, r.Failure, r.ExplicitPointer)
		}
		mustInvariants(t, u.in, r)
	}
}
