// Package notify sends desktop notifications over the session bus.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	dest   = "org.freedesktop.Notifications"
	path   = "/org/freedesktop/Notifications"
	method = "org.freedesktop.Notifications.Notify"

	appName = "greenrec"
	appIcon = "media-record"
	summary = "Green Recorder"
)

type caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Notifier posts notifications to the desktop's notification daemon.
type Notifier struct {
	obj     caller
	timeout time.Duration
}

// New returns a notifier bound to conn.
func New(conn *dbus.Conn) *Notifier {
	return newNotifier(conn.Object(dest, dbus.ObjectPath(path)))
}

func newNotifier(obj caller) *Notifier {
	return &Notifier{obj: obj, timeout: 5 * time.Second}
}

// Notify shows body under the application's summary line.
func (n *Notifier) Notify(ctx context.Context, body string) error {
	call := n.obj.CallWithContext(ctx, method, 0,
		appName, uint32(0), appIcon, summary, body,
		[]string{}, map[string]dbus.Variant{}, int32(n.timeout/time.Millisecond))
	if call.Err != nil {
		return fmt.Errorf("sending notification: %w", call.Err)
	}
	return nil
}

// Nop discards notifications. It is used when no session bus is reachable.
type Nop struct{}

func (Nop) Notify(context.Context, string) error { return nil }
