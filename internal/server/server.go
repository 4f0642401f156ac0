// Package server hosts the wallpaperd control socket.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/wallpaperd/internal/daemon"
	"github.com/jmylchreest/wallpaperd/internal/protocol"
)

// DefaultReadTimeout bounds how long a peer may take to send its command.
const DefaultReadTimeout = 5 * time.Second

// ErrAlreadyRunning is returned when another daemon answers on the socket.
var ErrAlreadyRunning = errors.New("daemon already running")

// Server accepts control connections and applies their commands to the
// daemon state. Each connection carries exactly one command.
type Server struct {
	state      *daemon.State
	logger     *slog.Logger
	socketPath string

	readTimeout   time.Duration
	writeTimeout  time.Duration
	readyCallback func()

	mu       sync.Mutex
	listener net.Listener

	stopOnce sync.Once
	stopCh   chan struct{}
	handlers sync.WaitGroup
}

// New creates a Server for state listening on socketPath.
func New(state *daemon.State, socketPath string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		state:        state,
		logger:       logger,
		socketPath:   socketPath,
		readTimeout:  DefaultReadTimeout,
		writeTimeout: DefaultReadTimeout,
		stopCh:       make(chan struct{}),
	}
}

// SetReadTimeout sets the deadline for reading one command. Zero disables it.
func (s *Server) SetReadTimeout(d time.Duration) {
	s.readTimeout = d
}

// SetReadyCallback sets a function invoked once the socket is accepting.
func (s *Server) SetReadyCallback(callback func()) {
	s.readyCallback = callback
}

// SocketPath returns the path of the control socket.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Stopped is closed once a stop command has been handled.
func (s *Server) Stopped() <-chan struct{} {
	return s.stopCh
}

// Serve listens on the control socket until ctx is cancelled or a stop
// command is received. In-flight handlers are waited for and the socket
// file is removed before it returns.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.prepareSocket(); err != nil {
		return err
	}
	s.logger.Info("control server listening", "socket", s.socketPath)
	defer s.cleanup()

	if s.readyCallback != nil {
		s.readyCallback()
	}

	go func() {
		select {
		case <-ctx.Done():
		case <-s.stopCh:
		}
		s.mu.Lock()
		if s.listener != nil {
			s.listener.Close()
		}
		s.mu.Unlock()
	}()

	for {
		conn, err := s.accept(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, net.ErrClosed) || ctx.Err() != nil || s.stopping() {
				s.handlers.Wait()
				return nil
			}
			s.logger.Error("control accept error", "error", err)
			continue
		}
		s.handlers.Add(1)
		go s.handle(ctx, conn)
	}
}

func (s *Server) accept(ctx context.Context) (net.Conn, error) {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		return nil, context.Canceled
	}
	conn, err := listener.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return conn, nil
}

func (s *Server) stopping() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

func (s *Server) requestStop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// prepareSocket binds the control socket. A leftover socket file is
// removed unless a live daemon still answers on it.
func (s *Server) prepareSocket() error {
	dir := filepath.Dir(s.socketPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create socket dir: %w", err)
	}

	if _, err := os.Lstat(s.socketPath); err == nil {
		if conn, err := net.DialTimeout("unix", s.socketPath, 500*time.Millisecond); err == nil {
			conn.Close()
			return fmt.Errorf("%w on %s", ErrAlreadyRunning, s.socketPath)
		}
		s.logger.Debug("removing stale socket", "socket", s.socketPath)
		if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove stale socket: %w", err)
		}
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen on control socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		listener.Close()
		return fmt.Errorf("chmod control socket: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	return nil
}

func (s *Server) cleanup() {
	s.mu.Lock()
	listener := s.listener
	s.listener = nil
	s.mu.Unlock()
	if listener != nil {
		listener.Close()
	}
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to remove control socket", "socket", s.socketPath, "error", err)
	}
	s.logger.Info("control server stopped")
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer s.handlers.Done()
	defer conn.Close()

	logger := s.logger.With("conn", ulid.Make().String())

	if s.readTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	}
	text, err := protocol.ReadFrame(conn)
	if err != nil {
		// Truncated or oversized frames get an empty response.
		logger.Debug("failed to read command", "error", err)
		return
	}

	result := Execute(ctx, s.state, text, logger)

	if s.writeTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	if _, err := io.WriteString(conn, result.Response); err != nil {
		logger.Debug("failed to write response", "error", err)
	}

	if result.Stop {
		logger.Info("stop requested")
		s.requestStop()
	}
}
