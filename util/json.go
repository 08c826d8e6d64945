package util

import (
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var jsoniterconfiged = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// JSONLineWriter writes one json document per line.
type JSONLineWriter struct {
	enc *jsoniter.Encoder
}

func NewJSONLineWriter(w io.Writer) *JSONLineWriter {
	return &JSONLineWriter{enc: jsoniterconfiged.NewEncoder(w)}
}

func (w *JSONLineWriter) Write(v interface{}) error {
	return errors.WithStack(w.enc.Encode(v))
}
