package events

import (
	"github.com/ThreeDotsLabs/watermill"

	"github.com/LENAX/plan-engine/pkg/logx"
)

// watermillLogger 将 watermill 日志转发到 logx
type watermillLogger struct {
	log logx.Logger
}

// NewWatermillLogger 创建 watermill.LoggerAdapter
func NewWatermillLogger(log logx.Logger) watermill.LoggerAdapter {
	return &watermillLogger{log: log}
}

func toFields(fields watermill.LogFields) []logx.Field {
	out := make([]logx.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, logx.Any(k, v))
	}
	return out
}

func (l *watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	l.log.Error(msg, append(toFields(fields), logx.Err(err))...)
}

func (l *watermillLogger) Info(msg string, fields watermill.LogFields) {
	// watermill 的 Info 日志较多（订阅/关闭），降为Debug
	l.log.Debug(msg, toFields(fields)...)
}

func (l *watermillLogger) Debug(msg string, fields watermill.LogFields) {
	l.log.Debug(msg, toFields(fields)...)
}

func (l *watermillLogger) Trace(msg string, fields watermill.LogFields) {
	l.log.Trace(msg, toFields(fields)...)
}

func (l *watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillLogger{log: l.log.With(toFields(fields)...)}
}
