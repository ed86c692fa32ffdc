package types

import (
	"errors"
	"slices"
	"testing"

	"castor/internal/source"
)

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	if b.Int == NoTypeID || b.Object == NoTypeID || b.Null == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	if got := in.Kind(b.Int); got != KindInt {
		t.Fatalf("expected int kind, got %v", got)
	}
	if in.Primitive(KindDouble) != b.Double {
		t.Fatalf("Primitive(double) mismatch")
	}
	if in.BaseClass(b.Int) != b.ValueType || in.BaseClass(b.ValueType) != b.Object {
		t.Fatalf("int must derive from System.ValueType which derives from object")
	}
}

func TestInternerDeduplicatesDescriptors(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	if in.Array(b.String, 1) != in.Array(b.String, 1) {
		t.Fatalf("array types should be deduplicated")
	}
	if in.Array(b.String, 1) == in.Array(b.String, 2) {
		t.Fatalf("rank must affect identity")
	}
	if in.Nullable(b.Int) != in.Nullable(b.Int) {
		t.Fatalf("nullable types should be deduplicated")
	}
	if in.Pointer(b.Void) != in.Pointer(b.Void) {
		t.Fatalf("pointer types should be deduplicated")
	}
}

func TestNullableInvariants(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	expectInternal := func(name string, fn func()) {
		t.Helper()
		defer func() {
			r := recover()
			err, ok := r.(error)
			var ie *InternalError
			if !ok || !errors.As(err, &ie) {
				t.Fatalf("%s: expected *InternalError panic, got %v", name, r)
			}
		}()
		fn()
	}
	expectInternal("nullable of nullable", func() { in.Nullable(in.Nullable(b.Int)) })
	expectInternal("nullable of class", func() { in.Nullable(b.String) })
}

func TestLabels(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	tp := in.RegisterTypeParam("T", Covariant)
	list := in.RegisterInterface("IEnumerable", source.Span{})
	in.SetTypeParams(list, tp)
	inst := in.Instantiate(list, b.String)

	tests := []struct {
		id   TypeID
		want string
	}{
		{in.Nullable(b.Int), "int?"},
		{in.Array(b.String, 1), "string[]"},
		{in.Array(b.Int, 3), "int[,,]"},
		{in.Pointer(b.Void), "void*"},
		{list, "IEnumerable<T>"},
		{inst, "IEnumerable<string>"},
		{b.Null, "null"},
	}
	for _, tt := range tests {
		if got := in.Label(tt.id); got != tt.want {
			t.Fatalf("Label = %q, want %q", got, tt.want)
		}
	}
}

func TestInstantiateSubstitutesHierarchy(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	tp := in.RegisterTypeParam("T", Invariant)
	iface := in.RegisterInterface("IBox", source.Span{})
	itp := in.RegisterTypeParam("U", Invariant)
	in.SetTypeParams(iface, itp)

	box := in.RegisterClass("Box", source.Span{})
	in.SetTypeParams(box, tp)
	in.AddInterfaces(box, in.Instantiate(iface, tp))
	in.AddConversionOperator(box, true, tp, box, source.Span{})

	inst := in.Instantiate(box, b.Int)
	if again := in.Instantiate(box, b.Int); again != inst {
		t.Fatalf("instances must be reused")
	}
	want := in.Instantiate(iface, b.Int)
	if !in.ImplementsInterface(inst, want, false) {
		t.Fatalf("Box<int> must implement IBox<int>")
	}
	ops := in.ConversionOperators(inst)
	if len(ops) != 1 || ops[0].Param != b.Int || ops[0].Declaring != inst {
		t.Fatalf("operators not substituted: %+v", ops)
	}
}

func TestAllBaseTypesOrderAndDedup(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	ia := in.RegisterInterface("IA", source.Span{})
	ib := in.RegisterInterface("IB", source.Span{})
	in.AddInterfaces(ib, ia)
	base := in.RegisterClass("Base", source.Span{})
	in.AddInterfaces(base, ia)
	derived := in.RegisterClass("Derived", source.Span{})
	in.SetBase(derived, base)
	in.AddInterfaces(derived, ib)

	got := slices.Collect(in.AllBaseTypes(derived))
	want := []TypeID{base, b.Object, ib, ia}
	if !slices.Equal(got, want) {
		t.Fatalf("AllBaseTypes = %v, want %v", got, want)
	}
}

func TestAllBaseTypesTerminatesOnCycle(t *testing.T) {
	in := NewInterner(nil)
	a := in.RegisterClass("A", source.Span{})
	c := in.RegisterClass("C", source.Span{})
	in.SetBase(a, c)
	in.SetBase(c, a)
	n := 0
	for range in.AllBaseTypes(a) {
		n++
	}
	if n > 2 {
		t.Fatalf("cyclic hierarchy yielded %d types", n)
	}
	if in.IsSubclassOf(a, in.Builtins().Object) {
		t.Fatalf("cycle never reaches object")
	}
}

func TestVariantInterfaceMatching(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	out := in.RegisterTypeParam("T", Covariant)
	seq := in.RegisterInterface("ISeq", source.Span{})
	in.SetTypeParams(seq, out)
	inT := in.RegisterTypeParam("T", Contravariant)
	sink := in.RegisterInterface("ISink", source.Span{})
	in.SetTypeParams(sink, inT)

	seqString := in.Instantiate(seq, b.String)
	seqObject := in.Instantiate(seq, b.Object)
	sinkString := in.Instantiate(sink, b.String)
	sinkObject := in.Instantiate(sink, b.Object)
	seqInt := in.Instantiate(seq, b.Int)
	seqValue := in.Instantiate(seq, b.ValueType)

	if !in.ImplementsInterface(seqString, seqObject, true) {
		t.Fatalf("covariant ISeq<string> -> ISeq<object>")
	}
	if in.ImplementsInterface(seqString, seqObject, false) {
		t.Fatalf("variance disabled must not match")
	}
	if in.ImplementsInterface(seqObject, seqString, true) {
		t.Fatalf("covariance is one-directional")
	}
	if !in.ImplementsInterface(sinkObject, sinkString, true) {
		t.Fatalf("contravariant ISink<object> -> ISink<string>")
	}
	if in.ImplementsInterface(seqInt, seqValue, true) {
		t.Fatalf("variance never applies to value-type arguments")
	}
}

func TestTypeParamDependenciesClosed(t *testing.T) {
	in := NewInterner(nil)
	tt := in.RegisterTypeParam("T", Invariant)
	u := in.RegisterTypeParam("U", Invariant)
	v := in.RegisterTypeParam("V", Invariant)
	in.SetConstraints(tt, ConstraintNone, u)
	in.SetConstraints(u, ConstraintNone, v)
	if !in.HasDependencyOn(tt, v) {
		t.Fatalf("T depends on V through U")
	}
	if in.HasDependencyOn(v, tt) {
		t.Fatalf("V has no constraints")
	}

	// Mutual constraints must terminate.
	in.SetConstraints(v, ConstraintNone, tt)
	if !in.HasDependencyOn(tt, tt) {
		t.Fatalf("cycle T -> U -> V -> T must be visible")
	}
	if got := in.EffectiveBaseClass(tt); got != in.Builtins().Object {
		t.Fatalf("cyclic constraints fall back to object, got %s", in.Label(got))
	}
}

func TestTypeParamReferenceness(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	animal := in.RegisterClass("Animal", source.Span{})
	plain := in.RegisterTypeParam("T", Invariant)
	cls := in.RegisterTypeParam("C", Invariant)
	st := in.RegisterTypeParam("S", Invariant)
	derived := in.RegisterTypeParam("D", Invariant)
	in.SetConstraints(cls, ConstraintClass)
	in.SetConstraints(st, ConstraintStruct)
	in.SetConstraints(derived, ConstraintNone, animal)

	if in.IsReferenceType(plain) || in.IsValueType(plain) {
		t.Fatalf("unconstrained T is neither reference nor value type")
	}
	if !in.IsReferenceType(cls) || !in.IsValueType(st) {
		t.Fatalf("class/struct constraints decide the category")
	}
	if !in.IsReferenceType(derived) || in.EffectiveBaseClass(derived) != animal {
		t.Fatalf("class constraint makes T a reference type")
	}
	if in.EffectiveBaseClass(st) != b.ValueType {
		t.Fatalf("struct constraint implies System.ValueType")
	}
}
