// Package universe loads declarative type universes from TOML, YAML or
// msgpack snapshots and builds them into a types.Interner. Tests and the
// castor CLI describe the types a conversion query runs against this way.
package universe

// Manifest is the declarative form of a type universe.
type Manifest struct {
	Name    string      `toml:"name" yaml:"name" msgpack:"name" validate:"omitempty,max=128"`
	Dialect string      `toml:"dialect" yaml:"dialect" msgpack:"dialect" validate:"omitempty,oneof=standard extended csharp playscript"`
	Params  []ParamDecl `toml:"params" yaml:"params" msgpack:"params" validate:"dive"`
	Types   []TypeDecl  `toml:"types" yaml:"types" msgpack:"types" validate:"dive"`
}

// TypeDecl declares one class, struct, interface, enum or delegate.
type TypeDecl struct {
	Name        string         `toml:"name" yaml:"name" msgpack:"name" validate:"required,typename"`
	Kind        string         `toml:"kind" yaml:"kind" msgpack:"kind" validate:"required,oneof=class struct interface enum delegate"`
	Base        string         `toml:"base" yaml:"base" msgpack:"base" validate:"omitempty,typeref"`
	Interfaces  []string       `toml:"interfaces" yaml:"interfaces" msgpack:"interfaces" validate:"dive,typeref"`
	Params      []string       `toml:"params" yaml:"params" msgpack:"params" validate:"dive,typename"`
	Underlying  string         `toml:"underlying" yaml:"underlying" msgpack:"underlying" validate:"omitempty,oneof=sbyte byte short ushort int uint long ulong"`
	Sealed      bool           `toml:"sealed" yaml:"sealed" msgpack:"sealed"`
	Abstract    bool           `toml:"abstract" yaml:"abstract" msgpack:"abstract"`
	Static      bool           `toml:"static" yaml:"static" msgpack:"static"`
	BoxedScalar bool           `toml:"boxed_scalar" yaml:"boxed_scalar" msgpack:"boxed_scalar"`
	Operators   []OperatorDecl `toml:"operators" yaml:"operators" msgpack:"operators" validate:"dive"`
}

// ParamDecl declares a type parameter. Generic types list the parameters
// they own by name; the rest stay free for queries such as T -> object.
type ParamDecl struct {
	Name        string   `toml:"name" yaml:"name" msgpack:"name" validate:"required,typename"`
	Variance    string   `toml:"variance" yaml:"variance" msgpack:"variance" validate:"omitempty,oneof=in out invariant"`
	Special     string   `toml:"special" yaml:"special" msgpack:"special" validate:"omitempty,oneof=class struct"`
	Constraints []string `toml:"constraints" yaml:"constraints" msgpack:"constraints" validate:"dive,typeref"`
}

// OperatorDecl is an implicit or explicit conversion operator.
type OperatorDecl struct {
	Implicit bool   `toml:"implicit" yaml:"implicit" msgpack:"implicit"`
	From     string `toml:"from" yaml:"from" msgpack:"from" validate:"required,typeref"`
	To       string `toml:"to" yaml:"to" msgpack:"to" validate:"required,typeref"`
}
