package server

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/wallpaperd/internal/daemon"
	"github.com/jmylchreest/wallpaperd/internal/images"
	"github.com/jmylchreest/wallpaperd/internal/model"
	"github.com/jmylchreest/wallpaperd/internal/protocol"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// socketPath returns a path short enough for sun_path.
func socketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "wpd")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "ctl.sock")
}

func newState() *daemon.State {
	return daemon.NewState(daemon.StateConfig{
		DefaultImage: "/img/d.png",
		Mode:         model.ModeLinear,
		Interval:     time.Minute,
		HistorySize:  50,
	}, images.Static{"/img/a.png", "/img/b.png", "/img/c.png"}, nil, discardLogger())
}

type running struct {
	srv    *Server
	path   string
	cancel context.CancelFunc
	errCh  chan error
}

func (r *running) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-r.errCh:
		return err
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
		return nil
	}
}

func startServer(t *testing.T, state *daemon.State, path string) *running {
	t.Helper()

	srv := New(state, path, discardLogger())
	ready := make(chan struct{})
	srv.SetReadyCallback(func() { close(ready) })

	ctx, cancel := context.WithCancel(context.Background())
	r := &running{srv: srv, path: path, cancel: cancel, errCh: make(chan error, 1)}
	go func() { r.errCh <- srv.Serve(ctx) }()

	select {
	case <-ready:
	case err := <-r.errCh:
		cancel()
		t.Fatalf("server failed to start: %v", err)
	case <-time.After(3 * time.Second):
		cancel()
		t.Fatal("server not ready")
	}
	t.Cleanup(cancel)
	return r
}

func send(t *testing.T, path, text string) string {
	t.Helper()
	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, protocol.WriteFrame(conn, text))
	resp, err := io.ReadAll(conn)
	require.NoError(t, err)
	return string(resp)
}

func TestServer_EndToEnd(t *testing.T) {
	state := newState()
	r := startServer(t, state, socketPath(t))

	assert.Equal(t, "/img/d.png", send(t, r.path, "get wallpaper"))

	assert.Empty(t, send(t, r.path, "next"))
	assert.Equal(t, "/img/a.png", send(t, r.path, "get wallpaper"))
	assert.Empty(t, send(t, r.path, "NEXT"))
	assert.Equal(t, "/img/b.png", send(t, r.path, "get wallpaper"))
	assert.Empty(t, send(t, r.path, "prev"))
	assert.Equal(t, "/img/a.png", send(t, r.path, "get wallpaper"))

	assert.Equal(t, "Linear", send(t, r.path, "get mode"))
	assert.Empty(t, send(t, r.path, "mode random"))
	assert.Equal(t, "Random", send(t, r.path, "get mode"))

	assert.Equal(t, "60 seconds", send(t, r.path, "get duration"))
	assert.Empty(t, send(t, r.path, "interval 90"))
	assert.Equal(t, "90 seconds", send(t, r.path, "get duration"))

	assert.Equal(t, "false", send(t, r.path, "get fallback"))
	assert.Empty(t, send(t, r.path, "fallback"))
	assert.Equal(t, "true", send(t, r.path, "get fallback"))
	assert.Equal(t, "/img/d.png", send(t, r.path, "get wallpaper"))
	assert.Equal(t, "Static", send(t, r.path, "get mode"))
	assert.Empty(t, send(t, r.path, "fallback"))
	assert.Equal(t, "/img/a.png", send(t, r.path, "get wallpaper"))
	assert.Equal(t, "Random", send(t, r.path, "get mode"))

	assert.Empty(t, send(t, r.path, "mode static /img/My Photo.PNG"))
	assert.Equal(t, "/img/My Photo.PNG", send(t, r.path, "get wallpaper"))

	assert.Equal(t, "3 images", send(t, r.path, "update"))
	assert.Equal(t, protocol.HelpText, send(t, r.path, "help"))
}

func TestServer_UnknownCommand(t *testing.T) {
	state := newState()
	r := startServer(t, state, socketPath(t))

	before := state.Status()
	assert.Equal(t, "I do not understand", send(t, r.path, "frobnicate"))
	assert.Equal(t, before, state.Status())

	resp := send(t, r.path, "interval 0")
	assert.True(t, strings.HasPrefix(resp, "I do not understand: "), resp)
	assert.Equal(t, time.Minute, state.Interval())
}

func TestServer_TruncatedFrame(t *testing.T) {
	state := newState()
	r := startServer(t, state, socketPath(t))

	conn, err := net.Dial("unix", r.path)
	require.NoError(t, err)
	defer conn.Close()

	header := make([]byte, protocol.HeaderSize)
	binary.NativeEndian.PutUint64(header, 10)
	_, err = conn.Write(append(header, "nex"...))
	require.NoError(t, err)
	require.NoError(t, conn.(*net.UnixConn).CloseWrite())

	resp, err := io.ReadAll(conn)
	require.NoError(t, err)
	assert.Empty(t, resp)
	assert.Equal(t, "/img/d.png", state.CurrentImage())

	// The server keeps serving.
	assert.Equal(t, "Linear", send(t, r.path, "get mode"))
}

func TestServer_ReadTimeout(t *testing.T) {
	state := newState()
	path := socketPath(t)

	srv := New(state, path, discardLogger())
	srv.SetReadTimeout(50 * time.Millisecond)
	ready := make(chan struct{})
	srv.SetReadyCallback(func() { close(ready) })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.Serve(ctx) }()
	<-ready

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()

	// Send nothing; the server gives up and closes.
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	resp, err := io.ReadAll(conn)
	require.NoError(t, err)
	assert.Empty(t, resp)
}

func TestServer_Stop(t *testing.T) {
	r := startServer(t, newState(), socketPath(t))

	assert.Empty(t, send(t, r.path, "stop"))
	require.NoError(t, r.wait(t))

	select {
	case <-r.srv.Stopped():
	default:
		t.Fatal("Stopped not closed")
	}
	_, err := os.Stat(r.path)
	assert.True(t, errors.Is(err, os.ErrNotExist), "socket file should be removed")
}

func TestServer_ContextCancel(t *testing.T) {
	r := startServer(t, newState(), socketPath(t))

	r.cancel()
	require.NoError(t, r.wait(t))

	_, err := os.Stat(r.path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestServer_RemovesStaleSocket(t *testing.T) {
	path := socketPath(t)

	l, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	require.NoError(t, err)
	l.SetUnlinkOnClose(false)
	require.NoError(t, l.Close())
	_, err = os.Stat(path)
	require.NoError(t, err, "stale socket file should exist")

	r := startServer(t, newState(), path)
	assert.Equal(t, "Linear", send(t, r.path, "get mode"))
}

func TestServer_RefusesLiveSocket(t *testing.T) {
	path := socketPath(t)
	first := startServer(t, newState(), path)

	second := New(newState(), path, discardLogger())
	err := second.Serve(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	// The running daemon is unaffected.
	assert.Equal(t, "Linear", send(t, first.path, "get mode"))
}

func TestServer_ConcurrentClients(t *testing.T) {
	state := newState()
	r := startServer(t, state, socketPath(t))

	const clients = 20
	var wg sync.WaitGroup
	for range clients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, err := net.Dial("unix", r.path)
			if !assert.NoError(t, err) {
				return
			}
			defer conn.Close()
			if !assert.NoError(t, protocol.WriteFrame(conn, "next")) {
				return
			}
			resp, err := io.ReadAll(conn)
			assert.NoError(t, err)
			assert.Empty(t, resp)
		}()
	}
	wg.Wait()

	assert.Len(t, state.History(), clients+1)
}
