// Package genjs generates JavaScript binding source text for parsed
// interface definitions. Output is deterministic: it depends only on the
// spec contents, never on generation order.
package genjs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/robokit/msggen/internal/rosidl"
)

const header = "// Generated by msggen. Do not edit.\n'use strict';\n"

// Generate produces the binding source for one definition.
func Generate(spec rosidl.Spec) (string, error) {
	switch s := spec.(type) {
	case *rosidl.MessageSpec:
		return generateMessage(s), nil
	case *rosidl.ServiceSpec:
		return generateService(s), nil
	case *rosidl.ActionSpec:
		return generateAction(s), nil
	default:
		return "", fmt.Errorf("unknown spec type %T", spec)
	}
}

// generateMessage emits a class with one typed slot per field, constants as
// static properties, and requires for every referenced message type.
func generateMessage(s *rosidl.MessageSpec) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")

	requires := requireLines("msg", s)
	for _, line := range requires {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(requires) > 0 {
		b.WriteString("\n")
	}

	writeClass(&b, s)

	fmt.Fprintf(&b, "%s.interfaceName = '%s/msg/%s';\n", s.Name, s.Pkg, s.Name)
	fmt.Fprintf(&b, "module.exports = %s;\n", s.Name)
	return b.String()
}

// generateService emits a module holding the request and response classes
// inline. Only actions synthesize standalone sub-messages; a service's
// request and response exist nowhere else, so the binding file is
// self-contained apart from requires for referenced message types.
func generateService(s *rosidl.ServiceSpec) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")

	requires := requireLines("srv", s.Request, s.Response)
	for _, line := range requires {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(requires) > 0 {
		b.WriteString("\n")
	}

	writeClass(&b, s.Request)
	writeClass(&b, s.Response)

	fmt.Fprintf(&b, "module.exports = {\n")
	fmt.Fprintf(&b, "  interfaceName: '%s/srv/%s',\n", s.Pkg, s.Name)
	fmt.Fprintf(&b, "  Request: %s,\n", s.Request.Name)
	fmt.Fprintf(&b, "  Response: %s,\n", s.Response.Name)
	b.WriteString("};\n")
	return b.String()
}

// generateAction emits a module exposing the synthesized Goal/Result/Feedback
// message classes of an action. The classes themselves are generated as
// ordinary messages in the package's msg directory.
func generateAction(s *rosidl.ActionSpec) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for _, suffix := range []string{"Goal", "Result", "Feedback"} {
		fmt.Fprintf(&b, "const %s_%s = require('../msg/%s_%s.js');\n", s.Name, suffix, s.Name, suffix)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "module.exports = {\n")
	fmt.Fprintf(&b, "  interfaceName: '%s/action/%s',\n", s.Pkg, s.Name)
	fmt.Fprintf(&b, "  Goal: %s_Goal,\n", s.Name)
	fmt.Fprintf(&b, "  Result: %s_Result,\n", s.Name)
	fmt.Fprintf(&b, "  Feedback: %s_Feedback,\n", s.Name)
	b.WriteString("};\n")
	return b.String()
}

// writeClass emits one message class with its constants as static
// properties.
func writeClass(b *strings.Builder, s *rosidl.MessageSpec) {
	fmt.Fprintf(b, "class %s {\n", s.Name)
	b.WriteString("  constructor() {\n")
	for _, f := range s.Fields {
		fmt.Fprintf(b, "    this.%s = %s;\n", f.Name, initialValue(f))
	}
	b.WriteString("  }\n")
	b.WriteString("}\n")

	for _, c := range s.Constants {
		fmt.Fprintf(b, "%s.%s = %s;\n", s.Name, c.Name, jsLiteral(c.Type, c.Value))
	}
	b.WriteString("\n")
}

// requireLines builds the sorted, deduplicated require statements for every
// message type referenced by the given specs' fields. fromDir is the
// package-relative directory the generated file lives in ("msg", "srv" or
// "action") and determines the relative path back to same-package messages.
func requireLines(fromDir string, specs ...*rosidl.MessageSpec) []string {
	samePkgPrefix := "./"
	if fromDir != "msg" {
		samePkgPrefix = "../msg/"
	}

	seen := make(map[string]string)
	for _, s := range specs {
		for _, f := range s.Fields {
			if f.Type.IsBuiltin {
				continue
			}
			target := f.Type.Pkg + "/" + f.Type.Name
			if _, ok := seen[target]; ok {
				continue
			}
			if f.Type.Pkg == s.Pkg {
				seen[target] = fmt.Sprintf("const %s = require('%s%s.js');", f.Type.Name, samePkgPrefix, f.Type.Name)
			} else {
				seen[target] = fmt.Sprintf("const %s = require('../../%s/msg/%s.js');", f.Type.Name, f.Type.Pkg, f.Type.Name)
			}
		}
	}

	lines := make([]string, 0, len(seen))
	for _, line := range seen {
		lines = append(lines, line)
	}
	sort.Strings(lines)
	return lines
}

// initialValue returns the constructor initializer for a field: its declared
// default when present, otherwise the type's zero value.
func initialValue(f rosidl.Field) string {
	if f.Type.IsArray {
		if f.Default != "" {
			return jsArrayLiteral(f.Default)
		}
		return "[]"
	}
	if f.Default != "" {
		return jsLiteral(f.Type, f.Default)
	}

	if !f.Type.IsBuiltin {
		return fmt.Sprintf("new %s()", f.Type.Name)
	}
	switch f.Type.Name {
	case "bool":
		return "false"
	case "string", "wstring":
		return "''"
	case "time", "duration":
		return "{ sec: 0, nanosec: 0 }"
	default:
		return "0"
	}
}

// jsLiteral renders a definition-file literal as JavaScript source.
func jsLiteral(t rosidl.Type, value string) string {
	switch t.Name {
	case "string", "wstring":
		return "'" + strings.ReplaceAll(strings.Trim(value, `"'`), "'", `\'`) + "'"
	case "bool":
		if value == "true" || value == "1" {
			return "true"
		}
		return "false"
	default:
		return value
	}
}

// jsArrayLiteral rewrites a "[a, b, c]" default into JavaScript array syntax.
func jsArrayLiteral(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		return trimmed
	}
	return "[" + trimmed + "]"
}
