// Package dbus is a small client for the org.freedesktop.Notifications
// D-Bus interface. wallpaperd uses it to surface backend failures and
// fallback changes as desktop notifications.
package dbus
