package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type testTime struct {
	suite.Suite
}

func (t *testTime) TestRFC3339() {
	a := time.Date(2013, 12, 11, 10, 9, 8, 7000000, time.FixedZone("", 6*60*60))

	s := RFC3339(a)
	t.Equal("2013-12-11T10:09:08.007000000+06:00", s)

	b, err := time.Parse(time.RFC3339Nano, s)
	t.NoError(err)
	t.True(a.Equal(b))
}

func (t *testTime) TestWholeSecond() {
	a := time.Date(2013, 12, 11, 10, 9, 8, 0, time.UTC)

	t.Equal("2013-12-11T10:09:08.000000000Z", RFC3339(a))
}

func TestTime(t *testing.T) {
	suite.Run(t, new(testTime))
}
