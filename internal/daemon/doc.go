// Package daemon provides the rotation core of wallpaperd.
// It owns the shared wallpaper state, the interval scheduler, the image
// directory watcher, and desktop notifications about daemon events.
package daemon
