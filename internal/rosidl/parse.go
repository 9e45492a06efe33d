package rosidl

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// sectionSeparator splits service and action definitions into their parts.
const sectionSeparator = "---"

// ParseFile parses one on-disk definition file of the given kind into a Spec.
func ParseFile(pkg, name string, kind Kind, path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition %s: %w", path, err)
	}

	spec, err := Parse(pkg, name, kind, string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}

// Parse parses definition source text of the given kind into a Spec.
func Parse(pkg, name string, kind Kind, src string) (Spec, error) {
	sections := splitSections(src)

	switch kind {
	case KindMessage:
		if len(sections) != 1 {
			return nil, fmt.Errorf("message %s/%s: unexpected %q separator", pkg, name, sectionSeparator)
		}
		return parseSection(pkg, name, sections[0])

	case KindService:
		if len(sections) != 2 {
			return nil, fmt.Errorf("service %s/%s: expected 2 sections, got %d", pkg, name, len(sections))
		}
		request, err := parseSection(pkg, name+"_Request", sections[0])
		if err != nil {
			return nil, err
		}
		response, err := parseSection(pkg, name+"_Response", sections[1])
		if err != nil {
			return nil, err
		}
		return &ServiceSpec{Pkg: pkg, Name: name, Request: request, Response: response}, nil

	case KindAction:
		if len(sections) != 3 {
			return nil, fmt.Errorf("action %s/%s: expected 3 sections, got %d", pkg, name, len(sections))
		}
		goal, err := parseSection(pkg, name+"_Goal", sections[0])
		if err != nil {
			return nil, err
		}
		result, err := parseSection(pkg, name+"_Result", sections[1])
		if err != nil {
			return nil, err
		}
		feedback, err := parseSection(pkg, name+"_Feedback", sections[2])
		if err != nil {
			return nil, err
		}
		return &ActionSpec{Pkg: pkg, Name: name, Goal: goal, Result: result, Feedback: feedback}, nil

	default:
		return nil, fmt.Errorf("unknown definition kind %d", kind)
	}
}

// splitSections splits source text on lines consisting solely of the section
// separator.
func splitSections(src string) [][]string {
	sections := [][]string{nil}
	for _, line := range strings.Split(src, "\n") {
		if strings.TrimSpace(line) == sectionSeparator {
			sections = append(sections, nil)
			continue
		}
		sections[len(sections)-1] = append(sections[len(sections)-1], line)
	}
	return sections
}

// parseSection parses one message-shaped block of lines into a MessageSpec.
func parseSection(pkg, name string, lines []string) (*MessageSpec, error) {
	spec := &MessageSpec{Pkg: pkg, Name: name}

	for lineNo, raw := range lines {
		line := stripComment(raw)
		if line == "" {
			continue
		}

		typeToken, rest, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("%s/%s line %d: expected \"type name\", got %q", pkg, name, lineNo+1, line)
		}

		fieldType, err := parseType(pkg, typeToken)
		if err != nil {
			return nil, fmt.Errorf("%s/%s line %d: %w", pkg, name, lineNo+1, err)
		}

		rest = strings.TrimSpace(rest)
		if constName, value, isConst := splitConstant(rest); isConst {
			if !fieldType.IsBuiltin {
				return nil, fmt.Errorf("%s/%s line %d: constant %s must have a builtin type", pkg, name, lineNo+1, constName)
			}
			spec.Constants = append(spec.Constants, Constant{Name: constName, Type: fieldType, Value: value})
			continue
		}

		fieldName, defaultValue, _ := strings.Cut(rest, " ")
		spec.Fields = append(spec.Fields, Field{
			Name:    fieldName,
			Type:    fieldType,
			Default: strings.TrimSpace(defaultValue),
		})
	}

	return spec, nil
}

// stripComment removes a trailing "#" comment and surrounding whitespace,
// and normalises tabs to spaces. A "#" inside a quoted default value is kept.
func stripComment(line string) string {
	line = strings.ReplaceAll(line, "\t", " ")
	inQuote := byte(0)
	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case inQuote != 0 && c == inQuote:
			inQuote = 0
		case inQuote == 0 && (c == '\'' || c == '"'):
			inQuote = c
		case inQuote == 0 && c == '#':
			return strings.TrimSpace(line[:i])
		}
	}
	return strings.TrimSpace(line)
}

// splitConstant recognises "NAME=value" declarations. Constant names are
// upper-case by convention; the "=" is what actually distinguishes them from
// fields with defaults.
func splitConstant(rest string) (name, value string, ok bool) {
	eq := strings.IndexByte(rest, '=')
	if eq < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(rest[:eq])
	if name == "" || strings.ContainsAny(name, " \t") {
		return "", "", false
	}
	return name, strings.TrimSpace(rest[eq+1:]), true
}

// parseType parses a type token such as "int32", "string<=10",
// "geometry_msgs/Point", "Point[]", "float64[9]" or "uint8[<=128]".
// An unqualified non-builtin name refers to a message in the owning package.
func parseType(ownPkg, token string) (Type, error) {
	t := Type{}

	base := token
	if open := strings.IndexByte(token, '['); open >= 0 {
		if !strings.HasSuffix(token, "]") {
			return Type{}, fmt.Errorf("malformed array type %q", token)
		}
		size := token[open+1 : len(token)-1]
		base = token[:open]
		t.IsArray = true
		if size != "" {
			if bound, found := strings.CutPrefix(size, "<="); found {
				size = bound
				t.IsUpperBound = true
			}
			n, err := strconv.Atoi(size)
			if err != nil || n <= 0 {
				return Type{}, fmt.Errorf("malformed array size in %q", token)
			}
			t.ArraySize = n
		}
	}

	if bound, found := strings.CutPrefix(base, "string<="); found {
		n, err := strconv.Atoi(bound)
		if err != nil || n <= 0 {
			return Type{}, fmt.Errorf("malformed string bound in %q", token)
		}
		base = "string"
		t.StringBound = n
	}

	if pkg, msg, qualified := strings.Cut(base, "/"); qualified {
		if pkg == "" || msg == "" || strings.Contains(msg, "/") {
			return Type{}, fmt.Errorf("malformed type reference %q", token)
		}
		t.Name = msg
		t.Pkg = pkg
		return t, nil
	}

	if IsBuiltinType(base) {
		t.Name = base
		t.IsBuiltin = true
		return t, nil
	}

	// Unqualified message name: a reference within the owning package.
	t.Name = base
	t.Pkg = ownPkg
	return t, nil
}
