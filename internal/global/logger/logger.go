package logger

import "gitlab.com/fcv-judge.net/internal/adapter/logging"

var Logger = logging.NewZapLogger()

// SetDebug swaps the process-wide logger for one at debug level.
func SetDebug(debug bool) {
	if debug {
		Logger = logging.NewZapLoggerWithLevel(true)
	}
}

func Info(msg string, args ...interface{}) {
	Logger.Info(msg, args...)
}

func Error(msg string, args ...interface{}) {
	Logger.Error(msg, args...)
}

func Debug(msg string, args ...interface{}) {
	Logger.Debug(msg, args...)
}

func Warn(msg string, args ...interface{}) {
	Logger.Warn(msg, args...)
}
