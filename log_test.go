package artifactory

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLogging(t *testing.T) {
	t.Run("logrus sink honours the logger's level", func(t *testing.T) {
		var buf bytes.Buffer
		l := logrus.New()
		l.SetOutput(&buf)
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
		l.SetLevel(logrus.ErrorLevel)

		sink := LogrusSink(l)
		sink(logrus.InfoLevel, "Uploading build info to Artifactory...")
		sink(logrus.ErrorLevel, "Could not publish the build-info object: boom")

		out := buf.String()
		if strings.Contains(out, "Uploading") {
			t.Errorf("info message written at error level: %q", out)
		}
		if !strings.Contains(out, "level=error") || !strings.Contains(out, "boom") {
			t.Errorf("expected the error message, got %q", out)
		}
	})

	t.Run("clients write through a replaced package logger", func(t *testing.T) {
		old := logger
		defer func() { logger = old }()

		var buf bytes.Buffer
		l := logrus.New()
		l.SetOutput(&buf)
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
		if err := SetLogger(l); err != nil {
			t.Fatal(err)
		}

		client := New("http://localhost", "", "", nil)
		defer client.Close()

		client.logf(logrus.DebugLevel, "hidden")
		SetLogLevel(logrus.DebugLevel)
		client.logf(logrus.DebugLevel, "shown")

		out := buf.String()
		if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("nil loggers are rejected", func(t *testing.T) {
		if err := SetLogger(nil); err == nil {
			t.Error("expected an error")
		}
	})
}
