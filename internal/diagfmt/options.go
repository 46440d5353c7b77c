// Package diagfmt renders check reports as coloured text, JSON or msgpack.
package diagfmt

import (
	"fmt"
	"strings"
)

// Format selects a renderer.
type Format uint8

const (
	FormatPretty Format = iota
	FormatJSON
	FormatMsgpack
)

func (f Format) String() string {
	switch f {
	case FormatPretty:
		return "pretty"
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	default:
		return fmt.Sprintf("Format(%d)", f)
	}
}

// ParseFormat converts a flag or config value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pretty":
		return FormatPretty, nil
	case "json":
		return FormatJSON, nil
	case "msgpack":
		return FormatMsgpack, nil
	default:
		return FormatPretty, fmt.Errorf("invalid report format: %q (expected: pretty|json|msgpack)", s)
	}
}

// PrettyOpts configures the text renderer.
type PrettyOpts struct {
	Color bool
	// Verbose prints the matcher notes of passing cases too.
	Verbose bool
	// Max caps the diagnostics printed, 0 for no limit; counts are unaffected.
	Max int
	// Timings appends the phase table when the report carries one.
	Timings bool
}

// JSONOpts configures the JSON and msgpack renderers.
type JSONOpts struct {
	Max    int // обрезка вывода, не отчёта
	Indent bool
}
