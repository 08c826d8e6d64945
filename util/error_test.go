package util

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type testError struct {
	suite.Suite
}

func (t *testError) TestIs() {
	e := NewError("showme")

	e0 := e.Call()
	t.Equal("showme", e0.Error())

	t.True(errors.Is(e0, e))
	t.True(errors.Is(e0, e0))
	t.False(errors.Is(e0, NewError("showme").Call()))
	t.False(errors.Is(e0, NewError("findme").Call()))
	t.True(errors.Is(e0, e0.Errorf("showme")))
}

func (t *testError) TestErrorf() {
	e := NewError("showme")

	e0 := e.Errorf("%d apples", 3)
	t.Equal("showme - 3 apples", e0.Error())
	t.True(errors.Is(e0, e))
}

func (t *testError) TestAs() {
	e0 := NewError("showme").Call()

	var e1 Error
	t.True(errors.As(e0, &e1))

	t.True(errors.Is(e0, e1))
	t.True(errors.Is(e1, e0))
	t.Equal(e0.Error(), e1.Error())
}

func (t *testError) TestWrap() {
	e := NewError("showme")

	pe := &os.PathError{Op: "not found", Path: "/tmp", Err: errors.Errorf("???")}
	e1 := e.Wrap(pe)

	t.True(errors.Is(e1, e))
	t.True(errors.Is(e1, pe))
	t.Equal("showme; not found /tmp: ???", e1.Error())

	var npe *os.PathError
	t.True(errors.As(e1, &npe))
	t.Equal(pe.Error(), npe.Error())
}

func (t *testError) TestWrapf() {
	e := NewError("showme")

	e1 := e.Wrapf(errors.Errorf("findme"), "killme")
	t.Equal("showme - killme; findme", e1.Error())
}

func (t *testError) TestStackTrace() {
	e0 := NewError("showme").Call()
	t.NotEmpty(e0.StackTrace())

	s := fmt.Sprintf("%+v", e0)
	t.True(strings.HasPrefix(s, "showme"))
	t.Contains(s, "error_test.go")

	wrapped := errors.New("findme")
	e1 := Error{msg: "plain", wrapped: wrapped}
	t.NotEmpty(e1.StackTrace())
}

func TestError(t *testing.T) {
	suite.Run(t, new(testError))
}
