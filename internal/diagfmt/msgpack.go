package diagfmt

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Msgpack writes the report in msgpack, field names as in the JSON form.
func Msgpack(w io.Writer, r *Report, opts JSONOpts) error {
	enc := msgpack.NewEncoder(w)
	enc.UseCompactInts(true)
	return enc.Encode(BuildOutput(r, opts))
}

// DecodeMsgpack reads a report written by Msgpack.
func DecodeMsgpack(rd io.Reader) (Output, error) {
	var out Output
	err := msgpack.NewDecoder(rd).Decode(&out)
	return out, err
}
