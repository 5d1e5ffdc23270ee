package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const defaultLevel = logrus.WarnLevel

var (
	lg   *logrus.Entry
	once sync.Once
)

// Logger returns the logger for chaincode
func Logger() *logrus.Entry {
	once.Do(func() {
		lg = New(os.Getenv("CORE_CHAINCODE_LOGGING_LEVEL"), os.Getenv("CORE_CHAINCODE_LOGGING_FORMAT"))
	})
	return lg
}

// New builds a chaincode logger writing to stderr. An unknown level falls
// back to warning; format "json" selects the JSON formatter.
func New(levelStr, format string) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = defaultLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000 MST",
		})
	}

	return l.WithField("module", "chaincode")
}
