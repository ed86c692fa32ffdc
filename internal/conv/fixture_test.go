package conv_test

import (
	"testing"

	"castor/internal/conv"
	"castor/internal/diag"
	"castor/internal/dialect"
	"castor/internal/source"
	"castor/internal/testkit"
	"castor/internal/types"
)

// universe is a small hand-built type graph shared by the conversion tests.
type universe struct {
	in *types.Interner
	b  types.Builtins

	animal  types.TypeID // class Animal
	dog     types.TypeID // class Dog : Animal
	cat     types.TypeID // sealed class Cat : Animal
	shape   types.TypeID // interface IShape
	point   types.TypeID // struct Point : IShape
	color   types.TypeID // enum Color : int
	small   types.TypeID // enum Small : byte
	handler types.TypeID // delegate Handler
	boxed   types.TypeID // class Number, a boxed scalar of the extended dialect
	errT    types.TypeID

	tAnimal types.TypeID // T where T : Animal
	u       types.TypeID // U, unconstrained
}

func newUniverse(t *testing.T) *universe {
	t.Helper()
	in := types.NewInterner(nil)
	u := &universe{in: in, b: in.Builtins()}
	sp := func(start uint32) source.Span { return source.Span{File: 1, Start: start, End: start + 1} }

	u.animal = in.RegisterClass("Animal", sp(1))
	u.dog = in.RegisterClass("Dog", sp(2))
	in.SetBase(u.dog, u.animal)
	u.cat = in.RegisterClass("Cat", sp(3))
	in.SetBase(u.cat, u.animal)
	in.SetFlags(u.cat, types.FlagSealed)
	u.shape = in.RegisterInterface("IShape", sp(4))
	u.point = in.RegisterStruct("Point", sp(5))
	in.AddInterfaces(u.point, u.shape)
	u.color = in.RegisterEnum("Color", sp(6), types.NoTypeID)
	u.small = in.RegisterEnum("Small", sp(7), u.b.Byte)
	u.handler = in.RegisterDelegate("Handler", sp(8))
	u.boxed = in.RegisterClass("Number", sp(9))
	in.SetFlags(u.boxed, types.FlagBoxedScalar)
	u.errT = in.Intern(types.Type{Kind: types.KindError})

	u.tAnimal = in.RegisterTypeParam("T", types.Invariant)
	in.SetConstraints(u.tAnimal, types.ConstraintNone, u.animal)
	u.u = in.RegisterTypeParam("U", types.Invariant)
	return u
}

// all lists a representative type of every shape the classifier handles.
func (u *universe) all() []types.TypeID {
	in, b := u.in, u.b
	ids := []types.TypeID{
		b.Bool, b.Char, b.SByte, b.Byte, b.Short, b.UShort, b.Int, b.UInt,
		b.Long, b.ULong, b.Float, b.Double, b.Decimal,
		b.String, b.Object, b.Dynamic, b.Any, b.Null, b.ValueType, b.Enum, b.Array, b.Delegate,
		u.animal, u.dog, u.cat, u.shape, u.point, u.color, u.small, u.handler, u.boxed,
		u.tAnimal, u.u,
		in.Nullable(b.Int), in.Nullable(b.Long), in.Nullable(u.point), in.Nullable(u.color),
		in.Array(b.Int, 1), in.Array(b.String, 1), in.Array(b.Object, 1),
		in.Array(u.dog, 1), in.Array(u.animal, 1), in.Array(u.animal, 2),
		in.Pointer(b.Int), in.Pointer(b.Void),
	}
	return ids
}

func (u *universe) label(id types.TypeID) string { return u.in.Label(id) }

func (u *universe) engine(opts ...conv.Option) *conv.Engine {
	return conv.New(u.in, opts...)
}

// reportingEngine returns an engine whose diagnostics land in the returned bag.
func (u *universe) reportingEngine() (*conv.Engine, *diag.Bag) {
	bag := diag.NewBag(64)
	return conv.New(u.in, conv.WithReporter(diag.BagReporter{Bag: bag})), bag
}

func implicitStd() conv.Context { return conv.ImplicitContext(dialect.Standard) }
func explicitStd() conv.Context { return conv.ExplicitContext(dialect.Standard) }
func implicitExt() conv.Context { return conv.ImplicitContext(dialect.Extended) }
func explicitExt() conv.Context { return conv.ExplicitContext(dialect.Extended) }

func mustInvariants(t *testing.T, in *types.Interner, r conv.Result) {
	t.Helper()
	if err := testkit.CheckResultInvariants(in, r); err != nil {
		t.Fatalf("result invariants: %v", err)
	}
}
