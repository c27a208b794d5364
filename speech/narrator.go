package speech

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/medassist/medassist-api/logging"
	"github.com/medassist/medassist-api/metrics"
)

// defaultSequenceDelay is the pause between utterances in a sequence, long
// enough for engines that misbehave on back-to-back submissions.
const defaultSequenceDelay = 250 * time.Millisecond

// Player renders synthesized cloud audio. Play blocks until playback ends
// or the context is cancelled; Stop aborts the in-flight playback.
type Player interface {
	Play(ctx context.Context, audio []byte, contentType string) error
	Stop()
}

// WriterPlayer streams audio bytes to a writer, typically an audio device
// or pipe. Stop works through context cancellation only.
type WriterPlayer struct {
	mu sync.Mutex
	w  io.Writer
}

var _ Player = (*WriterPlayer)(nil)

// NewWriterPlayer creates a Player writing raw audio to w.
func NewWriterPlayer(w io.Writer) *WriterPlayer {
	return &WriterPlayer{w: w}
}

// Play writes the audio to the underlying writer.
func (p *WriterPlayer) Play(ctx context.Context, audio []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.w.Write(audio); err != nil {
		return fmt.Errorf("writing audio output: %w", err)
	}
	return nil
}

// Stop is a no-op; cancellation happens through the Play context.
func (p *WriterPlayer) Stop() {}

// Narrator sequences spoken output. At most one utterance is active at any
// time across the whole process: starting new speech cancels whatever is
// in flight. Utterance faults are logged and never crash the caller.
type Narrator struct {
	selector *Selector
	local    Synthesizer
	cloud    *CloudClient
	player   Player
	runtime  *Runtime
	delay    time.Duration

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	spoken     bool
}

// NarratorOption configures a Narrator.
type NarratorOption func(*Narrator)

// WithSequenceDelay overrides the pause between sequence utterances.
func WithSequenceDelay(d time.Duration) NarratorOption {
	return func(n *Narrator) { n.delay = d }
}

// NewNarrator creates a Narrator. cloud and player may be nil when no cloud
// channel is configured; the selector then always picks the local engine.
func NewNarrator(selector *Selector, local Synthesizer, cloud *CloudClient, player Player, runtime *Runtime, opts ...NarratorOption) *Narrator {
	n := &Narrator{
		selector: selector,
		local:    local,
		cloud:    cloud,
		player:   player,
		runtime:  runtime,
		delay:    defaultSequenceDelay,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Speak voices one utterance, cancelling any speech already in flight.
// Empty text is a no-op. A cloud failure is returned as-is; the utterance
// is not retried on the local engine.
func (n *Narrator) Speak(ctx context.Context, text, language string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	utterCtx, gen := n.begin(ctx)
	defer n.finish(gen)
	return n.speakOne(utterCtx, text, language)
}

// SpeakSequence voices each utterance in order with a short pause between
// them. Empty entries are skipped. A failing utterance is logged and the
// sequence continues; only cancellation stops it early.
func (n *Narrator) SpeakSequence(ctx context.Context, texts []string, language string) error {
	seqCtx, gen := n.begin(ctx)
	defer n.finish(gen)

	first := true
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		if !first {
			select {
			case <-time.After(n.delay):
			case <-seqCtx.Done():
				return seqCtx.Err()
			}
		}
		first = false

		if err := n.speakOne(seqCtx, text, language); err != nil {
			if seqCtx.Err() != nil {
				return seqCtx.Err()
			}
			logging.Warn("Utterance failed, continuing sequence", "error", err)
		}
	}
	return nil
}

// SpeakOnce voices the sequence only if nothing has been spoken through it
// since the last ResetSpoken or Cancel.
func (n *Narrator) SpeakOnce(ctx context.Context, texts []string, language string) error {
	n.mu.Lock()
	if n.spoken {
		n.mu.Unlock()
		return nil
	}
	n.spoken = true
	n.mu.Unlock()

	return n.SpeakSequence(ctx, texts, language)
}

// ResetSpoken clears the speak-once latch.
func (n *Narrator) ResetSpoken() {
	n.mu.Lock()
	n.spoken = false
	n.mu.Unlock()
}

// Cancel stops any in-flight speech and clears the speak-once latch.
// Safe to call at any time, including when nothing is speaking.
func (n *Narrator) Cancel() {
	n.mu.Lock()
	cancel := n.cancel
	n.cancel = nil
	n.spoken = false
	n.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	n.local.Cancel()
	if n.player != nil {
		n.player.Stop()
	}
}

// begin takes ownership of the single utterance slot, cancelling the
// previous owner.
func (n *Narrator) begin(ctx context.Context) (context.Context, uint64) {
	newCtx, cancel := context.WithCancel(ctx)

	n.mu.Lock()
	prev := n.cancel
	n.cancel = cancel
	n.generation++
	gen := n.generation
	n.mu.Unlock()

	if prev != nil {
		prev()
	}
	return newCtx, gen
}

// finish releases the utterance slot if this caller still owns it.
func (n *Narrator) finish(gen uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.generation == gen && n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}
}

func (n *Narrator) speakOne(ctx context.Context, text, language string) error {
	channel := n.selector.Choose(ctx, language)

	var err error
	switch channel {
	case ChannelCloud:
		err = n.speakCloud(ctx, text, language)
	default:
		err = n.local.Speak(ctx, Utterance{Text: text, Language: language, Rate: 1, Pitch: 1, Volume: 1})
	}

	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.SpeechUtteranceTotals.WithLabelValues(string(channel), result).Inc()
	return err
}

func (n *Narrator) speakCloud(ctx context.Context, text, language string) error {
	if !n.runtime.AudioUnlocked() {
		return ErrAudioLocked
	}
	audio, contentType, err := n.cloud.Synthesize(ctx, text, language)
	if err != nil {
		return err
	}
	return n.player.Play(ctx, audio, contentType)
}
