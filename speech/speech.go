// Package speech provides the spoken-output pipeline: a channel selector
// that decides between the local engine and the cloud synthesizer, a cloud
// synthesis client, a local engine adapter and the narration sequencer.
package speech

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Channel identifies which synthesis backend handles an utterance.
type Channel string

const (
	ChannelLocal Channel = "local"
	ChannelCloud Channel = "cloud"
)

// ErrAudioLocked is returned when cloud playback is requested before audio
// output has been unlocked for this runtime.
var ErrAudioLocked = errors.New("audio output is locked")

// ErrChannelUnavailable is returned when the chosen channel cannot produce
// audio for the request.
var ErrChannelUnavailable = errors.New("speech channel unavailable")

// Runtime holds the mutable speech state shared across requests: the audio
// unlock flag and the cloud reachability probe cache. A single Runtime is
// created at startup and injected wherever speech state is needed.
type Runtime struct {
	audioUnlocked atomic.Bool

	mu        sync.Mutex
	probedAt  time.Time
	reachable bool

	probeGroup singleflight.Group
}

// NewRuntime returns a Runtime with audio locked and no cached probe.
func NewRuntime() *Runtime {
	return &Runtime{}
}

// UnlockAudio marks audio output as unlocked. Idempotent.
func (r *Runtime) UnlockAudio() {
	r.audioUnlocked.Store(true)
}

// LockAudio re-locks audio output.
func (r *Runtime) LockAudio() {
	r.audioUnlocked.Store(false)
}

// AudioUnlocked reports whether cloud playback is allowed.
func (r *Runtime) AudioUnlocked() bool {
	return r.audioUnlocked.Load()
}

// cachedProbe returns the cached reachability verdict if it is younger than
// ttl, measured against now.
func (r *Runtime) cachedProbe(now time.Time, ttl time.Duration) (reachable bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.probedAt.IsZero() || now.Sub(r.probedAt) >= ttl {
		return false, false
	}
	return r.reachable, true
}

// storeProbe records a fresh probe verdict.
func (r *Runtime) storeProbe(now time.Time, reachable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.probedAt = now
	r.reachable = reachable
}
