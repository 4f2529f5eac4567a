package diagram

import (
	"log/slog"
	"time"

	"github.com/abhisek/orbit/internal/concept"
	"github.com/abhisek/orbit/internal/radial"
	"github.com/abhisek/orbit/internal/viewport"
)

// Option configures a Diagram.
type Option func(*options)

type options struct {
	logger        *slog.Logger
	layout        radial.Config
	viewport      viewport.Config
	transition    time.Duration
	onSelect      func(*concept.Node)
	revealMatches bool
	collapseDepth int
}

func defaultOptions() options {
	return options{
		logger:        slog.New(slog.DiscardHandler),
		layout:        radial.DefaultConfig(),
		viewport:      viewport.DefaultConfig(),
		revealMatches: true,
		collapseDepth: 1,
	}
}

// WithLogger sets the logger used for rebuild and layout diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithLayout sets the radial layout settings.
func WithLayout(cfg radial.Config) Option {
	return func(o *options) { o.layout = cfg }
}

// WithViewport sets the pan/zoom settings.
func WithViewport(cfg viewport.Config) Option {
	return func(o *options) { o.viewport = cfg }
}

// WithTransition sets the node and link transition length.
func WithTransition(d time.Duration) Option {
	return func(o *options) { o.transition = d }
}

// WithSelectHandler registers the selection callback. It receives the
// selected concept, or nil on deselection.
func WithSelectHandler(fn func(*concept.Node)) Option {
	return func(o *options) { o.onSelect = fn }
}

// WithRevealMatches controls whether a search expands collapsed branches
// holding matches.
func WithRevealMatches(on bool) Option {
	return func(o *options) { o.revealMatches = on }
}

// WithCollapseDepth sets the depth from which nodes start collapsed after
// every data change.
func WithCollapseDepth(depth int) Option {
	return func(o *options) { o.collapseDepth = depth }
}
