package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogSink writes notifications to the structured log. It is always permitted.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.L()
	}
	return &LogSink{logger: logger.Named("notify")}
}

func (s *LogSink) RequestPermission(context.Context) (Permission, error) {
	return PermissionGranted, nil
}

func (s *LogSink) Notify(_ context.Context, n Notification) error {
	s.logger.Info(n.Title,
		zap.String("body", n.Body),
		zap.String("tag", n.Tag),
		zap.Bool("silent", n.Silent),
		zap.Bool("require_interaction", n.RequireInteraction),
	)
	return nil
}
