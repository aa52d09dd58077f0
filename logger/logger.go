package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log là logger dùng chung cho toàn bộ service.
var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = os.Stdout
	l.Formatter = &logrus.TextFormatter{
		DisableLevelTruncation: true,
		PadLevelText:           true,
		TimestampFormat:        "2006/01/02 15:04:05",
		FullTimestamp:          true,
	}
	return l
}

// Setup cấu hình level ("debug", "info", ...) và format ("text" | "json").
func Setup(level, format string) {
	if lv, err := logrus.ParseLevel(strings.TrimSpace(level)); err == nil {
		Log.SetLevel(lv)
	} else if level != "" {
		Log.Warnf("logger: level %q không hợp lệ, dùng info", level)
	}

	if strings.EqualFold(format, "json") {
		Log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05Z07:00"})
	}
}

func WithField(key string, value any) *logrus.Entry {
	return Log.WithField(key, value)
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log.WithFields(fields)
}

func WithError(err error) *logrus.Entry {
	return Log.WithError(err)
}
