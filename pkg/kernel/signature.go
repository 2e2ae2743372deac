package kernel

import (
	"fmt"
	"regexp"
	"strings"
)

// ElemType is the element type of a kernel parameter.
type ElemType int

const (
	Float32 ElemType = iota
	Float64
	Int32
	Int64
	Uint32
	Uint64
)

func (t ElemType) String() string {
	switch t {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	}
	return fmt.Sprintf("ElemType(%d)", int(t))
}

// Param describes one declared kernel parameter.
type Param struct {
	// Name is the declared parameter name; may be empty for unnamed
	// parameters.
	Name string

	// Type is the element type (of the pointee for pointer parameters).
	Type ElemType

	// Pointer marks device-memory parameters; false means a by-value
	// scalar.
	Pointer bool

	// Output marks parameters the kernel may write through. A pointer
	// qualified const is input-only; any other pointer is treated as
	// output-capable. Scalars are never outputs.
	Output bool
}

// Signature is the ordered parameter list of a kernel entry point, derived
// by lexical inspection of the source.
type Signature []Param

// Arity returns the number of declared parameters.
func (s Signature) Arity() int { return len(s) }

// Outputs returns how many parameters are output-capable.
func (s Signature) Outputs() int {
	n := 0
	for _, p := range s {
		if p.Output {
			n++
		}
	}
	return n
}

func (s Signature) String() string {
	parts := make([]string, len(s))
	for i, p := range s {
		dir := "in"
		if p.Output {
			dir = "out"
		}
		kind := "scalar"
		if p.Pointer {
			kind = "ptr"
		}
		name := p.Name
		if name == "" {
			name = "_"
		}
		parts[i] = fmt.Sprintf("%s %s %s %s", name, dir, kind, p.Type)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// SignatureError reports that an entry point was absent or its parameter
// list could not be understood.
type SignatureError struct {
	Entry  string
	Reason string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("kernel: entry point %q: %s", e.Entry, e.Reason)
}

var elemTypes = map[string]ElemType{
	"float":    Float32,
	"double":   Float64,
	"int":      Int32,
	"long":     Int64,
	"unsigned": Uint32,
	"uint":     Uint32,
	"size_t":   Uint64,
}

// ParseSignature finds the __global__ entry point named entry in source and
// derives its Signature from the declared parameter list.
func ParseSignature(source, entry string) (Signature, error) {
	re := regexp.MustCompile(`__global__\s+void\s+` + regexp.QuoteMeta(entry) + `\s*\(`)
	loc := re.FindStringIndex(source)
	if loc == nil {
		return nil, &SignatureError{Entry: entry, Reason: "not found in source"}
	}

	params, ok := parenSpan(source[loc[1]:])
	if !ok {
		return nil, &SignatureError{Entry: entry, Reason: "unbalanced parameter list"}
	}

	params = strings.TrimSpace(params)
	if params == "" || params == "void" {
		return Signature{}, nil
	}

	var sig Signature
	for _, decl := range strings.Split(params, ",") {
		p, err := parseParam(decl, entry)
		if err != nil {
			return nil, err
		}
		sig = append(sig, p)
	}
	return sig, nil
}

// parenSpan returns the text up to the parenthesis matching the one just
// before rest, handling nested parens defensively.
func parenSpan(rest string) (string, bool) {
	depth := 1
	for i, r := range rest {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return rest[:i], true
			}
		}
	}
	return "", false
}

func parseParam(decl, entry string) (Param, error) {
	// Pad '*' so "float* a", "float *a" and "float*a" tokenize the same.
	decl = strings.ReplaceAll(decl, "*", " * ")
	fields := strings.Fields(decl)
	if len(fields) == 0 {
		return Param{}, &SignatureError{Entry: entry, Reason: "empty parameter declaration"}
	}

	var p Param
	hasConst := false
	typeName := ""
	for _, f := range fields {
		switch f {
		case "const":
			hasConst = true
		case "*":
			p.Pointer = true
		case "__restrict__", "restrict", "volatile", "signed", "struct":
			// qualifiers that carry no signature information
		case "int", "char", "short":
			// widen a preceding "unsigned"/"long"; otherwise the base type
			if typeName == "" && f == "int" {
				typeName = "int"
			}
		default:
			if _, ok := elemTypes[f]; ok && typeName == "" {
				typeName = f
			} else {
				// last identifier wins as the parameter name
				p.Name = f
			}
		}
	}

	t, ok := elemTypes[typeName]
	if !ok {
		return Param{}, &SignatureError{
			Entry:  entry,
			Reason: fmt.Sprintf("unsupported parameter type in %q", strings.TrimSpace(decl)),
		}
	}
	p.Type = t
	p.Output = p.Pointer && !hasConst
	return p, nil
}
