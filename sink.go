package meterface

import (
	"time"

	catrate "github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/meterface/internal/runtimeutil"
)

type (
	// Sink is the pair of logging channels meters emit to: a human-readable
	// message channel, and a machine-parsable data channel (always emitted
	// at trace level). Both are [logiface.Logger] instances, shared
	// read-only between any number of meters.
	//
	// The zero Sink (and a nil *Sink) is valid, and discards everything.
	Sink[E logiface.Event] struct {
		message *logiface.Logger[E]
		data    *logiface.Logger[E]
		limiter *catrate.Limiter
		session *Session
		cfg     *Config
	}

	// SinkOption configures a Sink, see NewSink.
	SinkOption[E logiface.Event] func(c *sinkConfig[E])

	sinkConfig[E logiface.Event] struct {
		message *logiface.Logger[E]
		data    *logiface.Logger[E]
		session *Session
		cfg     *Config
		rates   map[time.Duration]int
	}

	// diagnosticCategory keys diagnostic rate limiting, per marker and
	// call site.
	diagnosticCategory struct {
		File   string
		Line   int
		Marker Marker
	}
)

// WithMessageLogger configures the human-readable channel.
func WithMessageLogger[E logiface.Event](logger *logiface.Logger[E]) SinkOption[E] {
	return func(c *sinkConfig[E]) {
		c.message = logger
	}
}

// WithDataLogger configures the machine-parsable channel. It is ignored
// when the configuration disables the data channel.
func WithDataLogger[E logiface.Event](logger *logiface.Logger[E]) SinkOption[E] {
	return func(c *sinkConfig[E]) {
		c.data = logger
	}
}

// WithConfig applies a [Config], e.g. the result of [ParseMap]. Defaults
// apply if not provided.
func WithConfig[E logiface.Event](cfg *Config) SinkOption[E] {
	return func(c *sinkConfig[E]) {
		c.cfg = cfg
	}
}

// WithSession overrides the session used for identity allocation,
// defaulting to [DefaultSession] (or a session honoring the configured
// uuid length).
func WithSession[E logiface.Event](session *Session) SinkOption[E] {
	return func(c *sinkConfig[E]) {
		c.session = session
	}
}

// WithDiagnosticRateLimits enables category-based rate limiting of
// diagnostic records, keyed by marker and call site, using the provided
// sliding windows (see [catrate.NewLimiter]). Lifecycle events are never
// limited.
func WithDiagnosticRateLimits[E logiface.Event](rates map[time.Duration]int) SinkOption[E] {
	return func(c *sinkConfig[E]) {
		c.rates = rates
	}
}

// NewSink constructs a Sink from the given options.
func NewSink[E logiface.Event](options ...SinkOption[E]) *Sink[E] {
	var c sinkConfig[E]
	for _, o := range options {
		o(&c)
	}
	if c.cfg == nil {
		c.cfg = NewConfig()
	}
	x := Sink[E]{
		message: c.message,
		cfg:     c.cfg,
		session: c.session,
	}
	if c.cfg.EnableData {
		x.data = c.data
	}
	if x.session == nil {
		if c.cfg.UUIDLength != DefaultUUIDLength {
			x.session = NewSession(c.cfg.UUIDLength)
		} else {
			x.session = DefaultSession()
		}
	}
	if len(c.rates) != 0 {
		x.limiter = catrate.NewLimiter(c.rates)
	}
	return &x
}

// Session returns the session backing identity allocation.
func (x *Sink[E]) Session() *Session {
	if x == nil || x.session == nil {
		return DefaultSession()
	}
	return x.session
}

func (x *Sink[E]) config() *Config {
	if x == nil || x.cfg == nil {
		return NewConfig()
	}
	return x.cfg
}

func (x *Sink[E]) progressPeriod() time.Duration {
	if x == nil || x.cfg == nil || x.cfg.ProgressPeriod <= 0 {
		return DefaultProgressPeriod
	}
	return x.cfg.ProgressPeriod
}

// messageName is the message channel name for a category, with the
// configured prefix and suffix applied.
func (x *Sink[E]) messageName(category string) string {
	c := x.config()
	return c.MessagePrefix + category + c.MessageSuffix
}

// dataName is the data channel name for a category.
func (x *Sink[E]) dataName(category string) string {
	c := x.config()
	return c.DataPrefix + category + c.DataSuffix
}

// messageBuilder returns a builder for the message channel, or nil when
// the level is disabled, in which case callers must skip building the
// payload.
func (x *Sink[E]) messageBuilder(level logiface.Level) *logiface.Builder[E] {
	if x == nil {
		return nil
	}
	return x.message.Build(level)
}

// dataBuilder returns a builder for the data channel, always at trace
// level, or nil when disabled.
func (x *Sink[E]) dataBuilder() *logiface.Builder[E] {
	if x == nil {
		return nil
	}
	return x.data.Build(logiface.LevelTrace)
}

// allowDiagnostic applies the diagnostic rate limit, if configured.
func (x *Sink[E]) allowDiagnostic(marker Marker, caller runtimeutil.Caller) bool {
	if x == nil || x.limiter == nil {
		return true
	}
	_, ok := x.limiter.Allow(diagnosticCategory{
		Marker: marker,
		File:   caller.File,
		Line:   caller.Line,
	})
	return ok
}
