package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"castor/internal/source"
)

// NominalFlags carry declaration modifiers relevant to conversions.
type NominalFlags uint8

const (
	FlagSealed NominalFlags = 1 << iota
	FlagAbstract
	FlagStatic
	// FlagBoxedScalar marks the extended dialect's boxed scalar wrappers,
	// whose truth value is computed by a runtime helper rather than a null
	// test.
	FlagBoxedScalar
)

// ConversionOperator is one user-declared implicit or explicit operator.
type ConversionOperator struct {
	Declaring TypeID
	Implicit  bool
	Param     TypeID
	Result    TypeID
	Decl      source.Span
}

// NominalInfo stores metadata for classes, structs, interfaces, enums,
// delegates and the predefined types that behave like them.
type NominalInfo struct {
	Name       source.StringID
	Decl       source.Span
	Base       TypeID
	Interfaces []TypeID
	Flags      NominalFlags

	// Generic definitions list their parameters; instances point back at the
	// definition and carry arguments in the same order.
	TypeParams []TypeID
	Definition TypeID
	TypeArgs   []TypeID

	EnumUnderlying TypeID
	Operators      []ConversionOperator
}

// RegisterClass declares a class deriving from object until SetBase says otherwise.
func (in *Interner) RegisterClass(name string, decl source.Span) TypeID {
	return in.registerNominal(KindClass, name, decl, in.builtins.Object, 0)
}

// RegisterStruct declares a struct. Structs are implicitly sealed.
func (in *Interner) RegisterStruct(name string, decl source.Span) TypeID {
	return in.registerNominal(KindStruct, name, decl, in.builtins.ValueType, FlagSealed)
}

// RegisterInterface declares an interface.
func (in *Interner) RegisterInterface(name string, decl source.Span) TypeID {
	return in.registerNominal(KindInterface, name, decl, NoTypeID, FlagAbstract)
}

// RegisterEnum declares an enum over an integral underlying type; NoTypeID means int.
func (in *Interner) RegisterEnum(name string, decl source.Span, underlying TypeID) TypeID {
	if underlying == NoTypeID {
		underlying = in.builtins.Int
	}
	if k := in.Kind(underlying); !k.IsIntegral() || k == KindChar {
		internalf("enum %s over non-integral %s", name, in.Label(underlying))
	}
	id := in.registerNominal(KindEnum, name, decl, in.builtins.Enum, FlagSealed)
	in.nominal(id).EnumUnderlying = underlying
	return id
}

// RegisterDelegate declares a delegate type.
func (in *Interner) RegisterDelegate(name string, decl source.Span) TypeID {
	return in.registerNominal(KindDelegate, name, decl, in.builtins.MulticastDelegate, FlagSealed)
}

func (in *Interner) registerNominal(k Kind, name string, decl source.Span, base TypeID, flags NominalFlags) TypeID {
	slot := in.appendNominal(NominalInfo{
		Name:  in.Strings.Intern(name),
		Decl:  decl,
		Base:  base,
		Flags: flags,
	})
	return in.internRaw(Type{Kind: k, Payload: slot})
}

// SetBase replaces the base class of a class declaration.
func (in *Interner) SetBase(id, base TypeID) {
	info := in.nominal(id)
	if info == nil {
		return
	}
	if in.Kind(id) != KindClass {
		internalf("base class on %s %s", in.Kind(id), in.Label(id))
	}
	info.Base = base
}

// AddInterfaces appends declared interfaces; duplicates are ignored.
func (in *Interner) AddInterfaces(id TypeID, ifaces ...TypeID) {
	info := in.nominal(id)
	if info == nil {
		return
	}
	for _, iface := range ifaces {
		if !slices.Contains(info.Interfaces, iface) {
			info.Interfaces = append(info.Interfaces, iface)
		}
	}
}

// SetFlags ors modifiers into the declaration.
func (in *Interner) SetFlags(id TypeID, flags NominalFlags) {
	if info := in.nominal(id); info != nil {
		info.Flags |= flags
	}
}

// AddConversionOperator declares an operator on id. Interfaces may not
// declare conversions.
func (in *Interner) AddConversionOperator(id TypeID, implicit bool, param, result TypeID, decl source.Span) {
	info := in.nominal(id)
	if info == nil {
		return
	}
	if in.Kind(id) == KindInterface {
		internalf("conversion operator on interface %s", in.Label(id))
	}
	info.Operators = append(info.Operators, ConversionOperator{
		Declaring: id,
		Implicit:  implicit,
		Param:     param,
		Result:    result,
		Decl:      decl,
	})
}

// ConversionOperators returns the operators declared on id. The slice is a
// copy; callers own it.
func (in *Interner) ConversionOperators(id TypeID) []ConversionOperator {
	info := in.nominal(id)
	if info == nil || len(info.Operators) == 0 {
		return nil
	}
	return slices.Clone(info.Operators)
}

// NominalInfo returns metadata for a nominal or predefined type.
func (in *Interner) NominalInfo(id TypeID) (*NominalInfo, bool) {
	info := in.nominal(id)
	return info, info != nil
}

// Name returns the declared name of a nominal type.
func (in *Interner) Name(id TypeID) string {
	info := in.nominal(id)
	if info == nil {
		return ""
	}
	s, _ := in.Strings.Lookup(info.Name)
	return s
}

// HasFlag reports whether the declaration of id carries flag.
func (in *Interner) HasFlag(id TypeID, flag NominalFlags) bool {
	info := in.nominal(id)
	return info != nil && info.Flags&flag != 0
}

// EnumUnderlying returns the underlying integral type of an enum.
func (in *Interner) EnumUnderlying(id TypeID) (TypeID, bool) {
	if in.Kind(id) != KindEnum {
		return NoTypeID, false
	}
	return in.nominal(id).EnumUnderlying, true
}

// BaseClass returns the direct base class, NoTypeID for object and interfaces.
func (in *Interner) BaseClass(id TypeID) TypeID {
	if info := in.nominal(id); info != nil {
		return info.Base
	}
	return NoTypeID
}

func (in *Interner) nominal(id TypeID) *NominalInfo {
	tt, ok := in.Lookup(id)
	if !ok || tt.Payload == 0 {
		return nil
	}
	switch tt.Kind {
	case KindTypeParam, KindArray, KindPointer, KindNullable:
		return nil
	}
	if int(tt.Payload) >= len(in.nominals) {
		return nil
	}
	return &in.nominals[tt.Payload]
}

func (in *Interner) appendNominal(info NominalInfo) uint32 {
	in.nominals = append(in.nominals, info)
	slot, err := safecast.Conv[uint32](len(in.nominals) - 1)
	if err != nil {
		panic(fmt.Errorf("nominal info overflow: %w", err))
	}
	return slot
}
