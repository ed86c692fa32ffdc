package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Conversion classification and resolution.
	ConvInfo                    Code = 1000
	ConvNoImplicit              Code = 1001
	ConvNoExplicit              Code = 1002
	ConvAmbiguousUserConversion Code = 1003
	ConvInvalidPointer          Code = 1004
	ConvUserOnInterface         Code = 1005

	// Constant folding.
	ConstInfo            Code = 2000
	ConvConstantOverflow Code = 2001
	ConstNotValue        Code = 2002

	// Type universe fixtures.
	UnivInfo            Code = 3000
	UnivInvalidDecl     Code = 3001
	UnivUnknownType     Code = 3002
	UnivDuplicateType   Code = 3003
	UnivSnapshotVersion Code = 3004
	UnivDialectIgnored  Code = 3005
)

var codeDescription = map[Code]string{
	UnknownCode:                 "Unknown error",
	ConvInfo:                    "Conversion information",
	ConvNoImplicit:              "no implicit conversion exists",
	ConvNoExplicit:              "no explicit conversion exists",
	ConvAmbiguousUserConversion: "ambiguous user-defined conversion",
	ConvInvalidPointer:          "invalid pointer conversion",
	ConvUserOnInterface:         "user-defined conversion declared on an interface",
	ConstInfo:                   "Constant information",
	ConvConstantOverflow:        "constant value cannot be converted (overflow in checked context)",
	ConstNotValue:               "expression is not a compile-time constant",
	UnivInfo:                    "Universe information",
	UnivInvalidDecl:             "invalid type declaration",
	UnivUnknownType:             "unknown type reference",
	UnivDuplicateType:           "duplicate type declaration",
	UnivSnapshotVersion:         "unsupported snapshot schema version",
	UnivDialectIgnored:          "declaration has no effect in this dialect",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("CNV%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("CST%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("UNI%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
