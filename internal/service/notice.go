package service

import (
	"context"
	"log/slog"
	"sync"
)

// NoticeLevel tells the UI how to style a notice.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
	NoticeInfo    NoticeLevel = "info"
)

// Notice is a transient customer-facing message, the toast of a web UI.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// Notifier delivers notices to whatever is showing the storefront.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notice)

func (f NotifierFunc) Notify(ctx context.Context, n Notice) { f(ctx, n) }

// LogNotifier writes notices to a logger. Used when nothing renders them.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Notify(ctx context.Context, n Notice) {
	level := slog.LevelInfo
	if n.Level == NoticeError {
		level = slog.LevelWarn
	}
	l.Logger.Log(ctx, level, n.Message, slog.String("notice", string(n.Level)))
}

// NoticeRecorder keeps every notice. It is safe for concurrent use.
type NoticeRecorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *NoticeRecorder) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

// Notices returns a copy of what was recorded.
func (r *NoticeRecorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Last returns the most recent notice.
func (r *NoticeRecorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

func success(msg string) Notice { return Notice{Level: NoticeSuccess, Message: msg} }
func failure(msg string) Notice { return Notice{Level: NoticeError, Message: msg} }
