package util

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type testULID struct {
	suite.Suite
}

func (t *testULID) TestMonotonic() {
	a := ULID()
	b := ULID()

	t.True(a.Compare(b) < 0)
	t.NotEqual(a.String(), b.String())
}

func TestULID(t *testing.T) {
	suite.Run(t, new(testULID))
}
