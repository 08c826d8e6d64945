package util

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

type testLocked struct {
	suite.Suite
}

func (t *testLocked) TestValue() {
	l := NewLocked(3)
	t.Equal(3, l.Value())

	t.Equal(4, l.SetValue(4).Value())
}

func (t *testLocked) TestConcurrentSetValue() {
	l := NewLocked(0)

	var wg sync.WaitGroup
	wg.Add(100)

	for i := 0; i < 100; i++ {
		i := i

		go func() {
			defer wg.Done()

			_ = l.SetValue(i + 1)
			_ = l.Value()
		}()
	}

	wg.Wait()

	v := l.Value()
	t.True(v > 0 && v <= 100, "%d", v)
}

func TestLocked(t *testing.T) {
	suite.Run(t, new(testLocked))
}
