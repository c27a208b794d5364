package speech

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
)

// Utterance describes one piece of text to synthesize locally.
type Utterance struct {
	Text     string
	Language string
	Rate     float64 // 1.0 is normal speed
	Pitch    float64 // 1.0 is normal pitch
	Volume   float64 // 0.0 to 1.0
}

// Synthesizer is a local speech engine. Speak blocks until the utterance
// finishes, is cancelled through the context, or fails. Cancel stops the
// in-flight utterance, if any, and is safe to call at any time.
type Synthesizer interface {
	Speak(ctx context.Context, u Utterance) error
	Cancel()
}

// StartFunc begins one utterance on a callback-style engine. onEnd fires
// when playback completes, onError on failure; exactly one of the two is
// invoked. The returned stop function aborts playback.
type StartFunc func(u Utterance, onEnd func(), onError func(error)) (stop func())

// CallbackSynthesizer adapts a callback-style engine into the blocking
// Synthesizer contract.
type CallbackSynthesizer struct {
	start StartFunc

	mu   sync.Mutex
	stop func()
}

var _ Synthesizer = (*CallbackSynthesizer)(nil)

// NewCallbackSynthesizer wraps a callback-style engine.
func NewCallbackSynthesizer(start StartFunc) *CallbackSynthesizer {
	return &CallbackSynthesizer{start: start}
}

// Speak starts the utterance and blocks until it ends, errors, or the
// context is cancelled. Starting a new utterance stops the previous one.
func (c *CallbackSynthesizer) Speak(ctx context.Context, u Utterance) error {
	done := make(chan error, 1)
	var once sync.Once
	finish := func(err error) {
		once.Do(func() { done <- err })
	}

	stop := c.start(u,
		func() { finish(nil) },
		func(err error) { finish(err) },
	)

	c.mu.Lock()
	if c.stop != nil {
		c.stop()
	}
	c.stop = stop
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.stop != nil {
			c.stop()
			c.stop = nil
		}
		c.mu.Unlock()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel stops the in-flight utterance, if any.
func (c *CallbackSynthesizer) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
}

// ESpeakSynthesizer synthesizes speech by shelling out to espeak-ng and
// streaming the WAV output to a sink, typically the audio device writer.
type ESpeakSynthesizer struct {
	binary string
	sink   io.Writer

	mu     sync.Mutex
	cancel context.CancelFunc
}

var _ Synthesizer = (*ESpeakSynthesizer)(nil)

// NewESpeakSynthesizer creates a local engine writing WAV audio to sink.
func NewESpeakSynthesizer(sink io.Writer) *ESpeakSynthesizer {
	return &ESpeakSynthesizer{
		binary: "espeak-ng",
		sink:   sink,
	}
}

// Speak runs espeak-ng for one utterance and blocks until it exits.
// A previously running utterance is cancelled first.
func (e *ESpeakSynthesizer) Speak(ctx context.Context, u Utterance) error {
	runCtx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	e.cancel = cancel
	e.mu.Unlock()

	defer func() {
		cancel()
		e.mu.Lock()
		if e.cancel != nil {
			e.cancel = nil
		}
		e.mu.Unlock()
	}()

	args := []string{
		"-v", espeakVoice(u.Language),
		"-s", strconv.Itoa(espeakRate(u.Rate)),
		"-p", strconv.Itoa(espeakPitch(u.Pitch)),
		"-a", espeakAmplitude(u.Volume),
		"--stdout",
		u.Text,
	}
	cmd := exec.CommandContext(runCtx, e.binary, args...)
	cmd.Stdout = e.sink

	if err := cmd.Run(); err != nil {
		if runCtx.Err() != nil {
			return runCtx.Err()
		}
		return fmt.Errorf("espeak-ng failed: %w", err)
	}
	return nil
}

// Cancel stops the in-flight utterance, if any.
func (e *ESpeakSynthesizer) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func espeakVoice(language string) string {
	if tag := primarySubtag(language); tag != "" {
		return tag
	}
	return "en"
}

// espeakRate maps the 1.0-normal rate onto espeak words per minute,
// where 175 is the engine default.
func espeakRate(rate float64) int {
	if rate <= 0 {
		rate = 1.0
	}
	return int(175 * rate)
}

// espeakPitch maps the 1.0-normal pitch onto the engine's 0-99 scale,
// where 50 is the default.
func espeakPitch(pitch float64) int {
	if pitch <= 0 {
		pitch = 1.0
	}
	p := int(50 * pitch)
	if p > 99 {
		p = 99
	}
	return p
}

func espeakAmplitude(volume float64) string {
	if volume <= 0 || volume > 1 {
		volume = 1.0
	}
	return strconv.Itoa(int(volume * 100))
}
