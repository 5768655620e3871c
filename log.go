package artifactory

import (
	"errors"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// LogFunc is the logging capability handed to a Client.  It receives every
// caller-visible message along with its severity.
type LogFunc func(level logrus.Level, msg string)

// By default, we're creating a logger which is used to print to standard
// output so that consumers of this library get useful logs for debugging.
// Users can change where logging goes with the methods below or pass their
// own LogFunc to New.
var logger = newDefaultLogger()

func newDefaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLogOutput changes where the package logger writes.  To unconditionally
// supress all logs from this library:
//  SetLogOutput(ioutil.Discard)
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}

// SetLogLevel changes the minimum level written by the package logger
func SetLogLevel(level logrus.Level) {
	logger.SetLevel(level)
}

// SetLogger replaces the package logger with the logger specified
func SetLogger(l *logrus.Logger) error {
	if l == nil {
		return errors.New("new logger must be non-nil")
	}
	logger = l
	return nil
}

// LogrusSink adapts a logrus logger into a LogFunc
func LogrusSink(l *logrus.Logger) LogFunc {
	return func(level logrus.Level, msg string) {
		l.Log(level, msg)
	}
}

// The package logger is looked up on every call so that SetLogger and
// SetLogOutput affect clients which were already created
func packageLog(level logrus.Level, msg string) {
	logger.Log(level, msg)
}
