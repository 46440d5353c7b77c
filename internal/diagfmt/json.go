package diagfmt

import (
	"encoding/json"
	"io"
)

// JSON writes the report as one JSON document.
func JSON(w io.Writer, r *Report, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	if opts.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(BuildOutput(r, opts))
}
