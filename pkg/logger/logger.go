package logger

import (
	"os"

	"github.com/labstack/gommon/log"
)

var std = log.New("droplink")

func init() {
	std.SetOutput(os.Stdout)
	std.SetHeader("${time_rfc3339} ${level} ${short_file}:${line}")
	if os.Getenv("ENVIRONMENT") == "development" {
		std.SetLevel(log.DEBUG)
	} else {
		std.SetLevel(log.INFO)
	}
}

// Logger exposes the shared logger so echo can write through it.
func Logger() *log.Logger {
	return std
}

func Info(format string, v ...interface{}) {
	std.Infof(format, v...)
}

func Error(format string, v ...interface{}) {
	std.Errorf(format, v...)
}

func Debug(format string, v ...interface{}) {
	std.Debugf(format, v...)
}

func Warn(format string, v ...interface{}) {
	std.Warnf(format, v...)
}
