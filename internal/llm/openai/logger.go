package openai

import (
	"fmt"
	"log/slog"
	"strings"
)

// restyLogger routes resty's internal messages into slog.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) {
	slog.Error(restyMessage(format, v), "component", "openai")
}

func (restyLogger) Warnf(format string, v ...interface{}) {
	slog.Warn(restyMessage(format, v), "component", "openai")
}

func (restyLogger) Debugf(format string, v ...interface{}) {
	slog.Debug(restyMessage(format, v), "component", "openai")
}

func restyMessage(format string, v []interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(format, v...))
}
