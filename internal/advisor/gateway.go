package advisor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/singleflight"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

const DefaultTimeout = 5 * time.Second

// Gateway picks the tip source for each call in a fixed priority order:
// onboarding for an empty history, the offline pool, the unconfigured pool,
// then the remote advisor with a shuffled pool as fallback.
type Gateway struct {
	advisor Advisor
	online  Connectivity
	timeout time.Duration
	cache   cache.Cache[[]string]
	group   singleflight.Group
	shuffle func(n int, swap func(i, j int))
	logger  *log.Logger
}

type GatewayOption func(*Gateway)

func WithConnectivity(c Connectivity) GatewayOption {
	return func(g *Gateway) {
		if c != nil {
			g.online = c
		}
	}
}

// WithTimeout bounds each remote attempt. Non-positive values are ignored.
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithCache stores successful remote answers keyed by the request content.
func WithCache(c cache.Cache[[]string]) GatewayOption {
	return func(g *Gateway) { g.cache = c }
}

func WithLogger(l *log.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l.WithComponent(log.ComponentAdvisor)
		}
	}
}

// WithShuffle replaces the fallback shuffler, for deterministic tests.
func WithShuffle(fn func(n int, swap func(i, j int))) GatewayOption {
	return func(g *Gateway) { g.shuffle = fn }
}

// NewGateway builds a gateway. A nil advisor means no remote advisor is
// configured.
func NewGateway(advisor Advisor, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		advisor: advisor,
		online:  Static(true),
		timeout: DefaultTimeout,
		shuffle: rand.Shuffle,
		logger:  log.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SmartTips returns tips for txs, given in sequence order (most recent first).
func (g *Gateway) SmartTips(ctx context.Context, txs []core.Transaction) []string {
	switch {
	case len(txs) == 0:
		return []string{OnboardingTip}
	case !g.online.Online(ctx):
		return append([]string{OfflineNotice}, localTips[:2]...)
	case g.advisor == nil:
		g.logger.WarnContext(ctx, "No remote advisor configured, using local tips",
			log.FieldOperation, log.OpTips)
		return LocalTips()[:TipCount]
	}
	return g.remote(ctx, Summarize(txs))
}

func (g *Gateway) remote(ctx context.Context, summaries []TransactionSummary) []string {
	key, err := fingerprint(summaries)
	if err != nil {
		g.logger.WarnContext(ctx, "Failed to encode summaries", log.FieldError, err)
		return g.fallback()
	}
	if g.cache != nil {
		if tips, ok := g.cache.Get(key); ok {
			g.logger.DebugContext(ctx, "Tips served from cache",
				log.FieldOperation, log.OpTips,
				log.FieldTipSource, "cache")
			return append([]string(nil), tips...)
		}
	}

	// The flight outlives any single caller, so it runs detached from the
	// caller that started it and is bounded by the gateway timeout alone.
	flight := context.WithoutCancel(ctx)
	ch := g.group.DoChan(key, func() (any, error) {
		tips, err := g.ask(flight, summaries)
		if err == nil && g.cache != nil {
			g.cache.Set(key, tips)
		}
		return tips, err
	})

	select {
	case <-ctx.Done():
		g.logger.WarnContext(ctx, "Tips request cancelled, using local tips",
			log.FieldOperation, log.OpTips,
			log.FieldError, ctx.Err())
		return g.fallback()
	case res := <-ch:
		if res.Err != nil {
			g.logger.WarnContext(ctx, "Remote advisor failed, using local tips",
				log.FieldOperation, log.OpTips,
				log.FieldError, res.Err)
			return g.fallback()
		}
		return append([]string(nil), res.Val.([]string)...)
	}
}

func (g *Gateway) ask(ctx context.Context, summaries []TransactionSummary) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	text, err := g.advisor.Advise(ctx, summaries)
	if err != nil {
		return nil, err
	}
	tips := ParseTips(text)
	if len(tips) == 0 {
		return nil, ErrEmptyResponse
	}
	g.logger.DebugContext(ctx, "Remote tips received",
		log.FieldOperation, log.OpTips,
		log.FieldTipSource, "remote",
		log.FieldCount, len(tips),
		log.FieldDuration, time.Since(start).Milliseconds())
	return tips, nil
}

func (g *Gateway) fallback() []string {
	tips := LocalTips()
	g.shuffle(len(tips), func(i, j int) { tips[i], tips[j] = tips[j], tips[i] })
	return tips[:TipCount]
}

func fingerprint(summaries []TransactionSummary) (string, error) {
	b, err := json.Marshal(summaries)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
