// Package notify delivers best-effort desktop notifications. Failures never
// escape BestEffort; they only produce a log line.
package notify

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Severity maps onto the desktop urgency of a notification.
type Severity int

const (
	Normal Severity = iota
	Critical
)

// String returns the urgency name understood by notify-send.
func (s Severity) String() string {
	if s == Critical {
		return "critical"
	}
	return "normal"
}

// Notification is one desktop alert.
type Notification struct {
	Title    string
	Message  string
	Severity Severity
}

// Notifier sends notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// DefaultTimeout bounds a single desktop notification.
const DefaultTimeout = 5 * time.Second

// Desktop sends notifications through notify-send (libnotify).
type Desktop struct {
	AppName string
	Timeout time.Duration
	// Binary overrides the notify-send executable.
	Binary string
}

// NewDesktop returns a notifier for appName.
func NewDesktop(appName string, timeout time.Duration) *Desktop {
	return &Desktop{AppName: appName, Timeout: timeout}
}

// Notify shells out to notify-send and waits at most Timeout for it.
func (d *Desktop) Notify(ctx context.Context, n Notification) error {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	binary := d.Binary
	if binary == "" {
		binary = "notify-send"
	}
	out, err := exec.CommandContext(ctx, binary, d.args(n)...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("notify: %s: %w: %s", binary, err, msg)
		}
		return fmt.Errorf("notify: %s: %w", binary, err)
	}
	return nil
}

func (d *Desktop) args(n Notification) []string {
	args := []string{"--urgency=" + n.Severity.String()}
	if d.AppName != "" {
		args = append(args, "--app-name="+d.AppName)
	}
	return append(args, "--", n.Title, n.Message)
}

// Nop discards every notification.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, Notification) error { return nil }

// BestEffort sends n and logs, but otherwise ignores, any failure.
func BestEffort(ctx context.Context, notifier Notifier, logger *zap.Logger, n Notification) {
	if notifier == nil {
		return
	}
	if err := notifier.Notify(ctx, n); err != nil && logger != nil {
		logger.Warn("notification failed", zap.String("title", n.Title), zap.Error(err))
	}
}
