package logger

import (
	"bytes"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestDebugGate(t *testing.T) {
	c := qt.New(t)
	var buf bytes.Buffer

	quiet := NewWithWriter(false, &buf)
	quiet.Printf("hidden %d", 1)
	quiet.Println("hidden")
	c.Assert(buf.Len(), qt.Equals, 0)

	quiet.Errorf("shown %d", 2)
	c.Assert(strings.Contains(buf.String(), "error: shown 2"), qt.IsTrue)

	buf.Reset()
	loud := NewWithWriter(true, &buf)
	loud.Printf("visible")
	c.Assert(strings.Contains(buf.String(), "visible"), qt.IsTrue)
}

func TestWithPrefix(t *testing.T) {
	c := qt.New(t)
	var buf bytes.Buffer

	l := NewWithWriter(true, &buf).With("[greet]").With("[abc]")
	l.Printf("loaded")
	c.Assert(strings.Contains(buf.String(), "[greet] [abc] loaded"), qt.IsTrue)
	c.Assert(l.Debug(), qt.IsTrue)
}
