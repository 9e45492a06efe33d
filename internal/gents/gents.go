// Package gents generates the consolidated TypeScript declaration surface
// for a package cache: one namespace per package, one interface per message,
// with every field mapped to a fixed builtin-type table entry or a
// package-qualified reference to another message interface.
package gents

import (
	"fmt"
	"strings"

	"github.com/robokit/msggen/internal/cache"
	"github.com/robokit/msggen/internal/rosidl"
)

// UnknownBuiltinTypeError reports a scalar kind absent from the builtin
// table. This signals a stale table in the generator, never bad input data,
// and is fatal.
type UnknownBuiltinTypeError struct {
	TypeName string
}

// Error implements the error interface.
func (e *UnknownBuiltinTypeError) Error() string {
	return fmt.Sprintf("no TypeScript mapping for builtin type %q", e.TypeName)
}

// timeShape is the structured declaration shared by time and duration.
const timeShape = "{ sec: number, nanosec: number }"

// builtinTable is the fixed 16-entry mapping from builtin scalar types to
// TypeScript. time and duration deliberately share one shape.
var builtinTable = map[string]string{
	"int8":     "number",
	"int16":    "number",
	"int32":    "number",
	"int64":    "number",
	"uint8":    "number",
	"uint16":   "number",
	"uint32":   "number",
	"uint64":   "number",
	"float32":  "number",
	"float64":  "number",
	"bool":     "boolean",
	"byte":     "number",
	"char":     "number",
	"string":   "string",
	"time":     timeShape,
	"duration": timeShape,
}

// FieldType maps one field type to its TypeScript surface: a builtin table
// entry or a package-qualified message reference, with an array suffix when
// applicable.
func FieldType(t rosidl.Type) (string, error) {
	var base string
	if t.IsBuiltin {
		mapped, ok := builtinTable[t.Name]
		if !ok {
			return "", &UnknownBuiltinTypeError{TypeName: t.Name}
		}
		base = mapped
	} else {
		base = t.Pkg + ".msg." + t.Name
	}

	if t.IsArray {
		if strings.HasPrefix(base, "{") {
			base = "(" + base + ")"
		}
		return base + "[]", nil
	}
	return base, nil
}

// Declarations renders the full declaration file for a cache. Output is
// byte-identical for identical cache contents: packages and definitions are
// enumerated in sorted order.
func Declarations(c *cache.Cache) (string, error) {
	var b strings.Builder
	b.WriteString("// Generated by msggen. Do not edit.\n")

	for _, pkg := range c.PackageNames() {
		entry := c.Packages[pkg]
		if len(entry.Messages) == 0 && len(entry.Services) == 0 {
			continue
		}

		fmt.Fprintf(&b, "\ndeclare namespace %s {\n", pkg)

		if len(entry.Messages) > 0 {
			b.WriteString("  namespace msg {\n")
			for _, name := range entry.MessageNames() {
				if err := writeInterface(&b, c, pkg, entry.Messages[name].Spec, "    "); err != nil {
					return "", err
				}
			}
			b.WriteString("  }\n")
		}

		if len(entry.Services) > 0 {
			b.WriteString("  namespace srv {\n")
			for _, name := range entry.ServiceNames() {
				srv := entry.Services[name].Spec
				if err := writeInterface(&b, c, pkg, srv.Request, "    "); err != nil {
					return "", err
				}
				if err := writeInterface(&b, c, pkg, srv.Response, "    "); err != nil {
					return "", err
				}
			}
			b.WriteString("  }\n")
		}

		b.WriteString("}\n")
	}

	return b.String(), nil
}

// writeInterface renders one message spec as a TypeScript interface,
// validating that every message reference resolves in the cache.
func writeInterface(b *strings.Builder, c *cache.Cache, pkg string, spec *rosidl.MessageSpec, indent string) error {
	fmt.Fprintf(b, "%sinterface %s {\n", indent, spec.Name)
	for _, f := range spec.Fields {
		if !f.Type.IsBuiltin {
			if _, err := c.Message(pkg, f.Type.Pkg, f.Type.Name); err != nil {
				return err
			}
		}
		fieldType, err := FieldType(f.Type)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "%s  %s: %s;\n", indent, f.Name, fieldType)
	}
	fmt.Fprintf(b, "%s}\n", indent)
	return nil
}
