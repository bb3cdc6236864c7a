package service

import "context"

// Notifier shows short user-visible status messages (toasts).
type Notifier interface {
	Success(ctx context.Context, msg string)
	Error(ctx context.Context, msg string)
}

// NopNotifier discards every notification.
type NopNotifier struct{}

func (NopNotifier) Success(context.Context, string) {}
func (NopNotifier) Error(context.Context, string)   {}
