package speech

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/medassist/medassist-api/logging"
	"github.com/medassist/medassist-api/metrics"
)

const (
	// defaultProbeTimeout bounds the reachability check so a dead endpoint
	// cannot stall an utterance.
	defaultProbeTimeout = 2 * time.Second

	// defaultProbeTTL is how long a probe verdict stays valid. An endpoint
	// found unreachable is retried lazily after this interval.
	defaultProbeTTL = 60 * time.Second
)

// Selector decides which channel should carry an utterance: the cloud
// synthesizer when the language is cloud-supported and the endpoint is
// reachable, the local engine otherwise.
type Selector struct {
	endpoint       string
	cloudLanguages map[string]bool
	probeTimeout   time.Duration
	probeTTL       time.Duration
	client         *http.Client
	runtime        *Runtime
	now            func() time.Time
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithProbeTimeout overrides the probe timeout.
func WithProbeTimeout(d time.Duration) SelectorOption {
	return func(s *Selector) { s.probeTimeout = d }
}

// WithProbeTTL overrides how long a probe verdict is cached.
func WithProbeTTL(d time.Duration) SelectorOption {
	return func(s *Selector) { s.probeTTL = d }
}

// WithHTTPClient overrides the probe HTTP client.
func WithHTTPClient(c *http.Client) SelectorOption {
	return func(s *Selector) { s.client = c }
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) SelectorOption {
	return func(s *Selector) { s.now = now }
}

// NewSelector creates a Selector for the given cloud endpoint and the set
// of language subtags the cloud synthesizer supports ("hi", "mr", ...).
// An empty endpoint disables the cloud channel entirely.
func NewSelector(endpoint string, cloudLanguages []string, runtime *Runtime, opts ...SelectorOption) *Selector {
	langs := make(map[string]bool, len(cloudLanguages))
	for _, l := range cloudLanguages {
		langs[strings.ToLower(strings.TrimSpace(l))] = true
	}
	s := &Selector{
		endpoint:       endpoint,
		cloudLanguages: langs,
		probeTimeout:   defaultProbeTimeout,
		probeTTL:       defaultProbeTTL,
		client:         &http.Client{},
		runtime:        runtime,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Choose returns the channel for one utterance in the given language.
// The language is matched on its primary subtag, so "hi-IN" selects the
// cloud channel when "hi" is cloud-supported.
func (s *Selector) Choose(ctx context.Context, language string) Channel {
	if s.endpoint == "" || !s.cloudLanguages[primarySubtag(language)] {
		return ChannelLocal
	}
	if s.endpointReachable(ctx) {
		return ChannelCloud
	}
	return ChannelLocal
}

// endpointReachable answers from the cached probe when it is fresh,
// otherwise runs one HEAD probe. Concurrent callers share a single probe.
func (s *Selector) endpointReachable(ctx context.Context) bool {
	if reachable, ok := s.runtime.cachedProbe(s.now(), s.probeTTL); ok {
		return reachable
	}
	// A caller that is already cancelled gets no fresh probe; answering
	// false here without caching keeps the verdict about the endpoint,
	// not about the caller.
	if ctx.Err() != nil {
		return false
	}

	v, _, _ := s.runtime.probeGroup.Do("probe", func() (any, error) {
		reachable := s.probe()
		s.runtime.storeProbe(s.now(), reachable)
		metrics.CloudProbeTotals.WithLabelValues(strconv.FormatBool(reachable)).Inc()
		return reachable, nil
	})
	reachable, _ := v.(bool)
	return reachable
}

// probe runs detached from any caller context. The verdict is cached and
// shared across utterances, so a cancelled or expiring caller must not
// mark a healthy endpoint unreachable for the whole TTL.
func (s *Selector) probe() bool {
	probeCtx, cancel := context.WithTimeout(context.Background(), s.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, s.endpoint, nil)
	if err != nil {
		logging.Warn("Invalid cloud speech endpoint", "endpoint", s.endpoint, "error", err)
		return false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		logging.Debug("Cloud speech endpoint unreachable", "endpoint", s.endpoint, "error", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

// primarySubtag extracts the language part of a BCP-47 style tag,
// lowercased: "hi-IN" becomes "hi".
func primarySubtag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexByte(tag, '-'); i > 0 {
		return tag[:i]
	}
	return tag
}
