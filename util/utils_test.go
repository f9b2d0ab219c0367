package util

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestRandomBytes(t *testing.T) {
	c := qt.New(t)
	a, b := RandomBytes(32), RandomBytes(32)
	c.Assert(a, qt.HasLen, 32)
	c.Assert(a, qt.Not(qt.DeepEquals), b)
	c.Assert(RandomBytes(0), qt.HasLen, 0)
}

func TestTrimHex(t *testing.T) {
	c := qt.New(t)
	c.Assert(TrimHex("0xabcd"), qt.Equals, "abcd")
	c.Assert(TrimHex("0Xabcd"), qt.Equals, "abcd")
	c.Assert(TrimHex("abcd"), qt.Equals, "abcd")
	c.Assert(TrimHex("0x"), qt.Equals, "")
	c.Assert(TrimHex("0"), qt.Equals, "0")
}
