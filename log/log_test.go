package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

// captureLogs initializes the logger at level writing to a buffer and
// restores the default logger when the test ends.
func captureLogs(t *testing.T, level string, errorOutput io.Writer) *bytes.Buffer {
	buf := &bytes.Buffer{}
	logTestWriter = buf
	Init(level, logTestWriterName, errorOutput)
	t.Cleanup(func() {
		logTestWriter = io.Discard
		Init(LogLevelError, "stderr", nil)
	})
	buf.Reset()
	return buf
}

// records decodes the JSON lines written to buf.
func records(c *qt.C, buf *bytes.Buffer) []map[string]any {
	var res []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		rec := map[string]any{}
		c.Assert(json.Unmarshal([]byte(line), &rec), qt.IsNil, qt.Commentf("%s", line))
		res = append(res, rec)
	}
	return res
}

func TestKeyValues(t *testing.T) {
	c := qt.New(t)
	buf := captureLogs(t, LogLevelDebug, nil)

	Infow("vote cast", "proposalId", 7, "voter", "0x00000000000000000000000000000000000000aa")
	Errorw(errors.New("proposal not found"), "finalize failed", "proposalId", 9)

	recs := records(c, buf)
	c.Assert(recs, qt.HasLen, 2)
	c.Assert(recs[0]["level"], qt.Equals, "info")
	c.Assert(recs[0]["message"], qt.Equals, "vote cast")
	c.Assert(recs[0]["proposalId"], qt.Equals, float64(7))
	c.Assert(recs[0]["voter"], qt.Equals, "0x00000000000000000000000000000000000000aa")
	c.Assert(recs[1]["level"], qt.Equals, "error")
	c.Assert(recs[1]["error"], qt.Equals, "proposal not found")
}

func TestLevels(t *testing.T) {
	c := qt.New(t)
	errs := &bytes.Buffer{}
	buf := captureLogs(t, LogLevelInfo, errs)
	c.Assert(Level(), qt.Equals, LogLevelInfo)

	Debugw("scope opened")
	Infof("granted %d handles", 4)
	Warnw("ignoring configured owner", "owner", "0x01")

	recs := records(c, buf)
	c.Assert(recs, qt.HasLen, 2)
	c.Assert(recs[0]["message"], qt.Equals, "granted 4 handles")
	// only warnings and errors reach the error output
	c.Assert(strings.Contains(errs.String(), "ignoring configured owner"), qt.IsTrue)
	c.Assert(strings.Contains(errs.String(), "granted 4 handles"), qt.IsFalse)

	c.Assert(ValidLevel("WARN"), qt.IsTrue)
	c.Assert(ValidLevel("trace"), qt.IsFalse)
	c.Assert(func() { Init("trace", logTestWriterName, nil) }, qt.PanicMatches, `invalid log level: "trace"`)
}

func TestCheckInvalidChars(t *testing.T) {
	c := qt.New(t)
	t.Cleanup(func() { panicOnInvalidChars = false })
	v := []byte{'h', 'e', 'l', 'l', 'o', 0xff, 'w', 'o', 'r', 'l', 'd'}

	panicOnInvalidChars = false
	captureLogs(t, LogLevelDebug, nil)
	Debugf("%s", v)

	panicOnInvalidChars = true
	captureLogs(t, LogLevelDebug, nil)
	c.Assert(func() { Debugf("%s", v) }, qt.PanicMatches, "log line contains invalid characters.*")
	Debugw("vote cast", "proposalId", 1)
}

func BenchmarkLogger(b *testing.B) {
	logTestWriter = io.Discard
	Init(LogLevelDebug, logTestWriterName, nil)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Infow("vote cast", "proposalId", i, "voter", "0x00000000000000000000000000000000000000aa")
	}
}
