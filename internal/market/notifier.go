package market

import "go.uber.org/zap"

// Notifier shows transient messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	Log *zap.Logger
}

func (n LogNotifier) Success(msg string) { n.Log.Info("notify", zap.String("kind", "success"), zap.String("message", msg)) }
func (n LogNotifier) Error(msg string)   { n.Log.Warn("notify", zap.String("kind", "error"), zap.String("message", msg)) }

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}
