package util

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type testJSON struct {
	suite.Suite
}

func (t *testJSON) TestLineWriter() {
	var buf bytes.Buffer

	w := NewJSONLineWriter(&buf)
	t.NoError(w.Write(map[string]int{"a": 1}))
	t.NoError(w.Write(map[string]int{"b": 2}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	t.Equal([]string{`{"a":1}`, `{"b":2}`}, lines)
}

func (t *testJSON) TestSortedKeysNoEscape() {
	var buf bytes.Buffer

	w := NewJSONLineWriter(&buf)
	t.NoError(w.Write(map[string]interface{}{"b": 1, "a": "<showme>"}))

	t.Equal(`{"a":"<showme>","b":1}`, strings.TrimSpace(buf.String()))
}

func TestJSON(t *testing.T) {
	suite.Run(t, new(testJSON))
}
