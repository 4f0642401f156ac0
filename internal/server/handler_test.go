package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/wallpaperd/internal/daemon"
	"github.com/jmylchreest/wallpaperd/internal/images"
	"github.com/jmylchreest/wallpaperd/internal/model"
)

func TestExecute(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Result
	}{
		{"next", "next", Result{}},
		{"stop", "stop", Result{Stop: true}},
		{"get mode", "get mode", Result{Response: "Linear"}},
		{"get duration", "get duration", Result{Response: "60 seconds"}},
		{"get fallback", "get fallback", Result{Response: "false"}},
		{"get changed before any change", "get changed", Result{Response: "never"}},
		{"unknown", "frobnicate", Result{Response: "I do not understand"}},
		{"empty", "", Result{Response: "I do not understand"}},
		{"bad mode", "mode shuffle", Result{Response: `I do not understand: mode: unknown mode "shuffle"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Execute(context.Background(), newState(), tt.input, discardLogger()))
		})
	}
}

func TestExecute_NavigationNoOpsRespondEmpty(t *testing.T) {
	state := newState()

	// Nothing to rewind to.
	assert.Equal(t, Result{}, Execute(context.Background(), state, "prev", nil))

	state.UpdateMode(model.ModeStatic, "")
	assert.Equal(t, Result{}, Execute(context.Background(), state, "next", nil))
	assert.Equal(t, "/img/d.png", state.CurrentImage())
}

func TestExecute_EmptyDirectory(t *testing.T) {
	state := daemon.NewState(daemon.StateConfig{
		DefaultImage: "/img/d.png",
		Interval:     time.Minute,
	}, images.Static{}, nil, discardLogger())

	assert.Equal(t, Result{}, Execute(context.Background(), state, "next", nil))
	assert.Equal(t, "/img/d.png", state.CurrentImage())
	assert.Equal(t, Result{Response: "0 images"}, Execute(context.Background(), state, "update", nil))
}

func TestExecute_GetChanged(t *testing.T) {
	state := newState()
	assert.Equal(t, Result{}, Execute(context.Background(), state, "next", nil))

	resp := Execute(context.Background(), state, "get changed", nil).Response
	changed, err := time.Parse(time.RFC3339, resp)
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now(), changed, 2*time.Second)
}

func TestFormatChanged(t *testing.T) {
	assert.Equal(t, "never", FormatChanged(time.Time{}))

	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "2026-03-01T11:30:00Z", FormatChanged(at))
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "60 seconds", FormatSeconds(time.Minute))
	assert.Equal(t, "1 seconds", FormatSeconds(1500*time.Millisecond))
}
