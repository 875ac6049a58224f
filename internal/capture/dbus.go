package capture

import (
	"context"

	"github.com/godbus/dbus/v5"
)

// busCaller is the part of dbus.BusObject the backends use.
type busCaller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

const (
	screencastDest  = "org.gnome.Shell.Screencast"
	screencastPath  = "/org/gnome/Shell/Screencast"
	screencastIface = "org.gnome.Shell.Screencast"

	screenshotDest  = "org.gnome.Shell.Screenshot"
	screenshotPath  = "/org/gnome/Shell/Screenshot"
	screenshotIface = "org.gnome.Shell.Screenshot"
)

// ScreencastObject returns the GNOME Shell screencast service on conn.
func ScreencastObject(conn *dbus.Conn) dbus.BusObject {
	return conn.Object(screencastDest, dbus.ObjectPath(screencastPath))
}

// ScreenshotObject returns the GNOME Shell screenshot service on conn.
func ScreenshotObject(conn *dbus.Conn) dbus.BusObject {
	return conn.Object(screenshotDest, dbus.ObjectPath(screenshotPath))
}

// ScreencastAvailable reports whether the GNOME Shell screencast service is
// owned on conn.
func ScreencastAvailable(ctx context.Context, conn *dbus.Conn) (bool, error) {
	var owned bool
	err := conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.NameHasOwner", 0, screencastDest).Store(&owned)
	return owned, err
}
