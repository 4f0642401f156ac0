package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/jmylchreest/wallpaperd/internal/backend"
	"github.com/jmylchreest/wallpaperd/internal/history"
	"github.com/jmylchreest/wallpaperd/internal/images"
	"github.com/jmylchreest/wallpaperd/internal/model"
)

var (
	// ErrNoImages is returned when the image directory has no candidates.
	ErrNoImages = errors.New("no images available")
	// ErrNoPrevious is returned when there is nothing to rewind to.
	ErrNoPrevious = errors.New("no previous image")
	// ErrRotationBlocked is returned while the static mode or fallback holds the image.
	ErrRotationBlocked = errors.New("rotation blocked")
	// ErrInvalidInterval is returned by SetInterval for non-positive durations.
	ErrInvalidInterval = errors.New("interval must be positive")
)

// Display receives the image to show after every change.
// Submit must not block; *backend.Queue satisfies it.
type Display interface {
	Submit(req backend.Request)
}

// StateConfig holds the startup values of the daemon state.
type StateConfig struct {
	DefaultImage string
	Mode         model.Mode
	Interval     time.Duration
	HistorySize  int

	// RescanOnNext re-lists the image directory before every forward
	// rotation instead of relying on the cached listing.
	RescanOnNext bool
}

// State is the rotation state shared by the scheduler and connection handlers.
// Every operation runs under a single lock, including the enqueue of the
// resulting display request, so display updates follow lock order.
type State struct {
	mu     sync.Mutex
	logger *slog.Logger

	history      *history.Buffer
	mode         model.Mode
	previousMode model.Mode
	fallback     bool
	interval     time.Duration
	defaultImage string
	lastChanged  time.Time

	lister       images.Lister
	listing      []string
	rescanOnNext bool
	display      Display

	onFallbackCallback func(active bool, image string)

	intn func(n int) int
	now  func() time.Time
}

// NewState creates the daemon state seeded with the default image.
func NewState(cfg StateConfig, lister images.Lister, display Display, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	capacity := cfg.HistorySize
	switch {
	case capacity < 1:
		capacity = history.DefaultCapacity
	case capacity < history.MinRoundTripCapacity:
		// Fallback must be able to restore the image it covers.
		capacity = history.MinRoundTripCapacity
	}
	return &State{
		logger:       logger,
		history:      history.New(cfg.DefaultImage, capacity),
		mode:         cfg.Mode,
		previousMode: cfg.Mode,
		interval:     cfg.Interval,
		defaultImage: cfg.DefaultImage,
		rescanOnNext: cfg.RescanOnNext,
		lister:       lister,
		display:      display,
		intn:         rand.IntN,
		now:          time.Now,
	}
}

// SetFallbackCallback sets the function invoked after fallback is toggled.
// It runs outside the state lock.
func (s *State) SetFallbackCallback(callback func(active bool, image string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFallbackCallback = callback
}

// ChangeImage moves to the next or previous image.
func (s *State) ChangeImage(ctx context.Context, dir model.Direction) error {
	if dir == model.DirectionNext && (s.rescanOnNext || s.listingLen() == 0) {
		if _, err := s.RefreshDirectoryListing(ctx); err != nil {
			s.logger.Warn("failed to list images", "error", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == model.ModeStatic || s.fallback {
		s.logger.Debug("rotation blocked", "direction", dir, "mode", s.mode, "fallback", s.fallback)
		return ErrRotationBlocked
	}

	switch dir {
	case model.DirectionPrevious:
		if !s.history.Rewind() {
			s.logger.Debug("no previous image", "current", s.history.Current())
			return ErrNoPrevious
		}
	default:
		if s.history.HasRedo() {
			s.history.Advance("")
			break
		}
		candidate, ok := s.candidate()
		if !ok {
			s.logger.Warn("no images to rotate to")
			return ErrNoImages
		}
		s.history.Advance(candidate)
	}

	s.showCurrent()
	return nil
}

// candidate picks the next image for the current mode. Must hold mu.
func (s *State) candidate() (string, bool) {
	n := len(s.listing)
	if n == 0 {
		return "", false
	}
	if s.mode == model.ModeRandom {
		return s.listing[s.intn(n)], true
	}
	i := slices.Index(s.listing, s.history.Current())
	if i < 0 {
		return s.listing[0], true
	}
	return s.listing[(i+1)%n], true
}

// UpdateMode sets the rotation mode. A non-empty image is appended to the
// history and displayed; without one the current image is kept.
func (s *State) UpdateMode(mode model.Mode, image string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.mode
	s.mode = mode
	s.logger.Info("mode changed", "from", old, "to", mode, "image", image)

	if image != "" {
		s.history.AppendForced(image)
		s.showCurrent()
	}
}

// ToggleFallback switches the fallback image on or off and returns the new state.
func (s *State) ToggleFallback() bool {
	s.mu.Lock()

	s.fallback = !s.fallback
	if s.fallback {
		s.previousMode = s.mode
		s.mode = model.ModeStatic
		s.history.AppendForced(s.defaultImage)
	} else {
		s.mode = s.previousMode
		s.history.PopTail()
	}
	s.showCurrent()

	active := s.fallback
	image := s.history.Current()
	callback := s.onFallbackCallback
	s.logger.Info("fallback toggled", "active", active, "mode", s.mode, "image", image)
	s.mu.Unlock()

	if callback != nil {
		callback(active, image)
	}
	return active
}

// SetInterval replaces the rotation interval. The scheduler picks it up on
// its next cycle.
func (s *State) SetInterval(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, d)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = d
	s.logger.Info("interval changed", "interval", d)
	return nil
}

// RefreshDirectoryListing re-reads the image directory and returns the number
// of candidates. The listing is read outside the lock. On failure the
// previous listing is kept.
func (s *State) RefreshDirectoryListing(ctx context.Context) (int, error) {
	if s.lister == nil {
		return 0, nil
	}

	listing, err := s.lister.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to refresh image listing: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.listing = listing
	s.logger.Debug("image listing refreshed", "count", len(listing))
	return len(listing), nil
}

// Redisplay sends the current image to the display again.
func (s *State) Redisplay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showCurrent()
}

// CurrentImage returns the image being displayed.
func (s *State) CurrentImage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Current()
}

// Mode returns the rotation mode.
func (s *State) Mode() model.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Interval returns the rotation interval.
func (s *State) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// FallbackActive reports whether the fallback image is being held.
func (s *State) FallbackActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fallback
}

// History returns a copy of the shown entries, oldest first.
func (s *State) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Shown()
}

// Status returns a consistent snapshot of the state.
func (s *State) Status() model.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Status{
		Wallpaper:   s.history.Current(),
		Mode:        s.mode,
		Interval:    s.interval,
		Fallback:    s.fallback,
		LastChanged: s.lastChanged,
	}
}

func (s *State) listingLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listing)
}

// showCurrent queues the current image for display. Must hold mu.
func (s *State) showCurrent() {
	s.lastChanged = s.now()
	req := backend.Request{
		Path: s.history.Current(),
		Tail: s.history.Tail(backend.TailSize),
	}
	s.logger.Debug("displaying image", "path", req.Path)
	if s.display != nil {
		s.display.Submit(req)
	}
}
