package abi

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/wippyai/abi-bindgen/errors"
)

// Literal is a compound literal such as CLITERAL(Color){ 255, 0, 0, 255 },
// decoded into the struct name and its positional values.
type Literal struct {
	Type   string
	Values []float64
}

var literalRe = regexp.MustCompile(`^\s*(?:CLITERAL\(\s*(\w+)\s*\)|\(\s*(\w+)\s*\))\s*\{([^}]*)\}\s*$`)

// ParseLiteral decodes a compound literal value.
func ParseLiteral(value string) (Literal, error) {
	m := literalRe.FindStringSubmatch(value)
	if m == nil {
		return Literal{}, errors.InvalidData(errors.PhaseParse, nil, "not a compound literal: "+value)
	}

	lit := Literal{Type: m[1]}
	if lit.Type == "" {
		lit.Type = m[2]
	}

	for _, part := range strings.Split(m[3], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimRight(part, "fF"), 64)
		if err != nil {
			return Literal{}, errors.New(errors.PhaseParse, errors.KindInvalidData).
				Detail("literal component %q", part).
				Cause(err).
				Build()
		}
		lit.Values = append(lit.Values, v)
	}
	return lit, nil
}
