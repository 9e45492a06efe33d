package rosidl

// Kind identifies which definition format a spec was parsed from.
type Kind int

const (
	KindMessage Kind = iota
	KindService
	KindAction
)

// String returns the lowercase kind name used in logs and file layout.
func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindService:
		return "service"
	case KindAction:
		return "action"
	default:
		return "unknown"
	}
}

// builtinTypes is the set of scalar type names that carry no package
// dependency. The TypeScript surface intentionally supports a narrower
// table; parsing accepts the full set.
var builtinTypes = map[string]bool{
	"bool":     true,
	"byte":     true,
	"char":     true,
	"float32":  true,
	"float64":  true,
	"int8":     true,
	"uint8":    true,
	"int16":    true,
	"uint16":   true,
	"int32":    true,
	"uint32":   true,
	"int64":    true,
	"uint64":   true,
	"string":   true,
	"wstring":  true,
	"time":     true,
	"duration": true,
}

// IsBuiltinType reports whether name is a scalar wire type requiring no
// package dependency.
func IsBuiltinType(name string) bool {
	return builtinTypes[name]
}

// Type describes the type of a single field or constant.
type Type struct {
	// Name is the base type name, e.g. "int32" or "Pose".
	Name string
	// Pkg is the package that owns the referenced message. It is empty for
	// builtins and always populated for message references, including
	// same-package ones.
	Pkg string
	// IsBuiltin marks scalar wire types that carry no package dependency.
	IsBuiltin bool
	// IsArray marks array types of any flavour.
	IsArray bool
	// ArraySize is the fixed size or upper bound for sized arrays, 0 when
	// unbounded.
	ArraySize int
	// IsUpperBound distinguishes "[<=N]" from "[N]".
	IsUpperBound bool
	// StringBound is the maximum length for bounded strings, 0 when
	// unbounded.
	StringBound int
}

// Field is one named, typed slot in a message definition, in declaration
// order.
type Field struct {
	Name    string
	Type    Type
	Default string
}

// Constant is a named compile-time value declared alongside fields.
// Constant types are always builtin scalars.
type Constant struct {
	Name  string
	Type  Type
	Value string
}
