package artifactory

import (
	"io/ioutil"
	"testing"

	"github.com/sirupsen/logrus"
)

// This is so that unit tests can get the logging output instead of logging
// directly to stdout
type unitTestLogWriter struct {
	t *testing.T
}

// The package logger stops writing to t once the test is over
func newUnitTestLogWriter(t *testing.T) unitTestLogWriter {
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	t.Cleanup(func() {
		logger.SetOutput(ioutil.Discard)
	})
	return unitTestLogWriter{t: t}
}

func (utlw unitTestLogWriter) Write(p []byte) (n int, err error) {
	utlw.t.Logf("%s", p)
	return len(p), nil
}

// logEntry is one message captured by a recordingLog
type logEntry struct {
	level logrus.Level
	msg   string
}

// recordingLog is a LogFunc target which keeps every message so that tests
// can assert on what a Client reported
type recordingLog struct {
	t       *testing.T
	entries []logEntry
}

func (r *recordingLog) log(level logrus.Level, msg string) {
	if r.t != nil {
		r.t.Logf("[%s] %s", level, msg)
	}
	r.entries = append(r.entries, logEntry{level, msg})
}

func (r *recordingLog) messages() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.msg
	}
	return out
}
