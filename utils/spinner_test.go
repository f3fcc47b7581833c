package utils

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUtils_Spinner(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	s := NewSpinnerWriter(&buf, "working", time.Millisecond, true)
	s.StopMsg = "done"

	s.Stop()
	assert.Empty(buf.String())

	s.Start()
	s.Start()
	time.Sleep(10 * time.Millisecond)
	s.Stop()
	s.Stop()

	out := buf.String()
	assert.True(strings.HasPrefix(out, "\033[?25l"))
	assert.Contains(out, "working")
	assert.True(strings.HasSuffix(out, "done"))
	assert.Equal(1, strings.Count(out, "done"))
}
