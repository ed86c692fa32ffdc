package conv

import (
	"errors"
	"fmt"
	"strings"

	"castor/internal/types"
)

// Value is the narrow view of an expression the Applier needs: its static
// type and, for compile-time constants, its value.
type Value interface {
	Type() types.TypeID
	Constant() (Constant, bool)
}

// Expr is a ready-made Value.
type Expr struct {
	T types.TypeID
	C *Constant
}

// Var is a non-constant expression of type t.
func Var(t types.TypeID) Expr { return Expr{T: t} }

// Const is a constant expression of type t.
func Const(t types.TypeID, c Constant) Expr { return Expr{T: t, C: &c} }

func (e Expr) Type() types.TypeID { return e.T }

func (e Expr) Constant() (Constant, bool) {
	if e.C == nil {
		return Constant{}, false
	}
	return *e.C, true
}

// OpKind is one step of run-time work.
type OpKind uint8

const (
	OpNop OpKind = iota
	OpNumeric
	OpBox
	OpUnbox
	OpUpcast
	OpDowncast
	OpWrap
	OpUnwrap
	OpLift
	OpCall
	OpConst
	OpTruthTest
	OpNullCompare
	OpZeroCompare
	OpToString
	OpDynamicCast
	OpPointerCast
)

var opKindNames = [...]string{
	OpNop:         "nop",
	OpNumeric:     "numeric",
	OpBox:         "box",
	OpUnbox:       "unbox",
	OpUpcast:      "upcast",
	OpDowncast:    "downcast",
	OpWrap:        "wrap",
	OpUnwrap:      "unwrap",
	OpLift:        "lift",
	OpCall:        "call",
	OpConst:       "const",
	OpTruthTest:   "truth",
	OpNullCompare: "nonnull",
	OpZeroCompare: "nonzero",
	OpToString:    "tostring",
	OpDynamicCast: "dyncast",
	OpPointerCast: "ptrcast",
}

func (k OpKind) String() string {
	if int(k) < len(opKindNames) {
		return opKindNames[k]
	}
	return "op?"
}

// Operation is a node of the conversion tree. Operand is the input
// (nil means the original value); OpLift applies Body to the unwrapped
// value when it is not null.
type Operation struct {
	Kind           OpKind
	From           types.TypeID
	To             types.TypeID
	Numeric        NumericOp
	CheckOverflow  bool
	RuntimeChecked bool
	Operator       *types.ConversionOperator
	Value          *Constant
	Operand        *Operation
	Body           *Operation
}

// String renders the tree innermost-first, e.g. "wrap(numeric[conv.i8])".
func (o *Operation) String() string {
	if o == nil {
		return "value"
	}
	var sb strings.Builder
	o.write(&sb)
	return sb.String()
}

func (o *Operation) write(sb *strings.Builder) {
	sb.WriteString(o.Kind.String())
	switch o.Kind {
	case OpNumeric:
		fmt.Fprintf(sb, "[%s", o.Numeric)
		if o.CheckOverflow {
			sb.WriteString(",ovf")
		}
		sb.WriteByte(']')
	case OpConst, OpZeroCompare:
		if o.Value != nil {
			fmt.Fprintf(sb, "[%s]", o.Value)
		}
	case OpLift:
		sb.WriteByte('{')
		if o.Body != nil {
			o.Body.write(sb)
		} else {
			sb.WriteString("value")
		}
		sb.WriteByte('}')
	}
	if o.Operand != nil {
		sb.WriteByte('(')
		o.Operand.write(sb)
		sb.WriteByte(')')
	}
}

// Applier turns a classification into an Operation tree, folding
// constants on the way.
type Applier struct {
	types      *types.Interner
	classifier *Classifier
}

func NewApplier(c *Classifier) *Applier {
	return &Applier{types: c.types, classifier: c}
}

// Apply materialises r for v. Constant folding honours ctx.Overflow.
func (a *Applier) Apply(r Result, v Value, ctx Context) (*Operation, error) {
	var cst *Constant
	if c, ok := v.Constant(); ok {
		cst = &c
	}
	op, _, err := a.apply(r, nil, cst, ctx)
	if err != nil {
		return nil, err
	}
	if op == nil {
		op = &Operation{Kind: OpNop, From: r.Source, To: r.Target}
	}
	return op, nil
}

// apply returns the operation for r over operand and the constant value
// that results, if any.
func (a *Applier) apply(r Result, operand *Operation, cst *Constant, ctx Context) (*Operation, *Constant, error) {
	node := func(k OpKind) *Operation {
		return &Operation{Kind: k, From: r.Source, To: r.Target, Operand: operand, RuntimeChecked: r.RuntimeChecked}
	}
	switch r.Kind {
	case None:
		if r.Failure == FailInvalidPointer {
			return nil, nil, newError(a.types, ErrInvalidPointer, r.Source, r.Target, "")
		}
		return nil, nil, newError(a.types, ErrNoConversion, r.Source, r.Target, "")
	case Ambiguous:
		return nil, nil, newError(a.types, ErrAmbiguous, r.Source, r.Target, "")

	case Identity:
		return operand, cst, nil

	case ImplicitNumeric, ExplicitNumeric, ImplicitConstant:
		if cst != nil {
			folded, err := a.fold(r, *cst, ctx)
			switch {
			case err == nil:
				return &Operation{Kind: OpConst, From: r.Source, To: r.Target, Value: &folded}, &folded, nil
			case !errors.Is(err, errNotFoldable):
				return nil, nil, err
			}
		}
		if r.Kind == ImplicitConstant {
			return nil, nil, newError(a.types, ErrNoConversion, r.Source, r.Target, "constant conversion of a non-constant value")
		}
		n := node(OpNumeric)
		n.Numeric = r.Numeric
		n.CheckOverflow = r.Kind == ExplicitNumeric && ctx.Overflow == Checked
		return n, nil, nil

	case EnumZero:
		zero := IntConst(0)
		return &Operation{Kind: OpConst, From: r.Source, To: r.Target, Value: &zero}, &zero, nil

	case NullLiteral:
		null := NullConst()
		return &Operation{Kind: OpConst, From: r.Source, To: r.Target, Value: &null}, nil, nil

	case ImplicitReference:
		return node(OpUpcast), nil, nil
	case ExplicitReference:
		return node(OpDowncast), nil, nil
	case Boxing:
		return node(OpBox), nil, nil
	case Unboxing:
		return node(OpUnbox), nil, nil
	case Pointer:
		return node(OpPointerCast), nil, nil
	case DynamicConversion:
		return node(OpDynamicCast), nil, nil
	case DialectErasure:
		return node(OpNop), cst, nil
	case DialectString:
		if cst != nil && cst.Kind == ConstString {
			return operand, cst, nil
		}
		return node(OpToString), nil, nil

	case DialectTruth:
		kind := a.classifier.truthOp(r.Source)
		if kind == OpZeroCompare && cst != nil {
			if b, ok := truthOf(*cst); ok {
				return &Operation{Kind: OpConst, From: r.Source, To: r.Target, Value: &b}, &b, nil
			}
		}
		n := node(kind)
		if kind == OpZeroCompare {
			zero := zeroOf(a.types.Kind(r.Source))
			n.Value = &zero
		}
		return n, nil, nil

	case NullableWrap:
		inner, _, err := a.apply(*r.Inner, operand, cst, ctx)
		if err != nil {
			return nil, nil, err
		}
		return &Operation{Kind: OpWrap, From: r.Inner.Target, To: r.Target, Operand: inner}, nil, nil

	case NullableUnwrap:
		unwrap := &Operation{
			Kind: OpUnwrap, From: r.Source, To: a.types.Unwrap(r.Source),
			Operand: operand, RuntimeChecked: true,
		}
		inner, _, err := a.apply(*r.Inner, unwrap, nil, ctx)
		if err != nil {
			return nil, nil, err
		}
		return inner, nil, nil

	case NullableLift:
		body, _, err := a.apply(*r.Inner, nil, nil, ctx)
		if err != nil {
			return nil, nil, err
		}
		if body == nil {
			body = &Operation{Kind: OpNop, From: r.Inner.Source, To: r.Inner.Target}
		}
		n := node(OpLift)
		n.Body = body
		return n, nil, nil

	case UserDefined:
		pre, _, err := a.apply(*r.Pre, operand, cst, ctx)
		if err != nil {
			return nil, nil, err
		}
		call := &Operation{
			Kind: OpCall, From: r.Operator.Param, To: r.Operator.Result,
			Operator: r.Operator, Operand: pre,
		}
		post, _, err := a.apply(*r.Post, call, nil, ctx)
		if err != nil {
			return nil, nil, err
		}
		return post, nil, nil
	}
	return nil, nil, newError(a.types, ErrNoConversion, r.Source, r.Target, "unsupported result %s", r.Kind)
}

// fold folds a numeric conversion of cst, looking through enums.
func (a *Applier) fold(r Result, cst Constant, ctx Context) (Constant, error) {
	to := a.classifier.numericKind(r.Target)
	if r.Kind == ImplicitConstant && a.types.Kind(r.Target) == types.KindEnum {
		return cst, nil
	}
	folded, err := FoldNumeric(cst, to, ctx.Overflow)
	switch {
	case err == nil, errors.Is(err, errNotFoldable):
		return folded, err
	case errors.Is(err, errFoldMode):
		return Constant{}, newError(a.types, ErrOverflowContext, r.Source, r.Target, "value %s", cst)
	default:
		return Constant{}, newError(a.types, ErrConstantOverflow, r.Source, r.Target, "value %s", cst)
	}
}

func zeroOf(k types.Kind) Constant {
	switch {
	case k.IsFloating():
		return FloatConst(0)
	case k.IsUnsigned():
		return UintConst(0)
	}
	return IntConst(0)
}
