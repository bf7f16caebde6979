// Package render turns reconstructed graphs into text, JSON or YAML.
//
// All output is deterministic for a given graph so it can be checked in as
// golden files.
package render

import (
	"fmt"
	"strings"
)

// Format selects the dump encoding.
type Format uint8

const (
	FormatText Format = iota
	FormatJSON
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "text"
	}
}

// ParseFormat converts a flag or config value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return FormatText, fmt.Errorf("invalid format: %q (expected: text|json|yaml)", s)
	}
}
