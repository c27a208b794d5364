// Package mock provides scriptable speech collaborators for tests.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/medassist/medassist-api/speech"
)

// Synthesizer records every utterance it is asked to speak. Err, when set,
// is returned from each Speak call. Block, when set, makes Speak wait for
// context cancellation, simulating a long utterance.
type Synthesizer struct {
	Err   error
	Block bool

	mu       sync.Mutex
	spoken   []speech.Utterance
	spokenAt []time.Time
	cancels  int
}

var _ speech.Synthesizer = (*Synthesizer)(nil)

func (s *Synthesizer) Speak(ctx context.Context, u speech.Utterance) error {
	s.mu.Lock()
	s.spoken = append(s.spoken, u)
	s.spokenAt = append(s.spokenAt, time.Now())
	s.mu.Unlock()

	if s.Block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.Err
}

func (s *Synthesizer) Cancel() {
	s.mu.Lock()
	s.cancels++
	s.mu.Unlock()
}

// Spoken returns a copy of all utterances spoken so far.
func (s *Synthesizer) Spoken() []speech.Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]speech.Utterance, len(s.spoken))
	copy(out, s.spoken)
	return out
}

// SpokenTimes returns when each utterance arrived, in call order.
func (s *Synthesizer) SpokenTimes() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Time, len(s.spokenAt))
	copy(out, s.spokenAt)
	return out
}

// Cancels returns how many times Cancel was called.
func (s *Synthesizer) Cancels() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancels
}

// Player records played audio payloads.
type Player struct {
	Err error

	mu     sync.Mutex
	played [][]byte
	stops  int
}

var _ speech.Player = (*Player)(nil)

func (p *Player) Play(ctx context.Context, audio []byte, contentType string) error {
	p.mu.Lock()
	p.played = append(p.played, audio)
	p.mu.Unlock()
	return p.Err
}

func (p *Player) Stop() {
	p.mu.Lock()
	p.stops++
	p.mu.Unlock()
}

// Played returns how many payloads were played.
func (p *Player) Played() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.played)
}
