package status

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"
)

// RuntimeClient exposes the runtime-state endpoints of the inference server.
type RuntimeClient interface {
	Slots(ctx context.Context) ([]string, error)
	Models(ctx context.Context) (int, error)
}

// Prober classifies the live state of the inference server. It never fails:
// every error degrades to a Signal.
type Prober struct {
	client  RuntimeClient
	timeout time.Duration
}

// NewProber creates a prober whose individual calls are bounded by timeout.
func NewProber(client RuntimeClient, timeout time.Duration) *Prober {
	return &Prober{client: client, timeout: timeout}
}

// Probe asks /slots first and falls back to /v1/models.
func (p *Prober) Probe(ctx context.Context) Signal {
	if sig, ok := p.probeSlots(ctx); ok {
		return sig
	}
	return p.probeModels(ctx)
}

func (p *Prober) probeSlots(ctx context.Context) (Signal, bool) {
	ctx, cancel := p.bound(ctx)
	defer cancel()

	states, err := p.client.Slots(ctx)
	if err != nil {
		slog.Debug("slots probe failed", "error", err)
		return Signal{}, false
	}
	return ClassifyStates(states)
}

func (p *Prober) probeModels(ctx context.Context) Signal {
	ctx, cancel := p.bound(ctx)
	defer cancel()

	code, err := p.client.Models(ctx)
	if err != nil || code != http.StatusOK {
		slog.Debug("models probe failed", "status", code, "error", err)
		return Signal{Kind: KindUnreachable, Source: FromProbe}
	}
	return Signal{Kind: KindReachable, Source: FromProbe}
}

func (p *Prober) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

// ClassifyStates maps slot state labels to a Signal. ok is false for an empty set.
func ClassifyStates(states []string) (Signal, bool) {
	set := make(map[string]struct{}, len(states))
	for _, s := range states {
		set[s] = struct{}{}
	}
	if len(set) == 0 {
		return Signal{}, false
	}

	_, loading := set["loading"]
	_, active := set["active"]
	_, idle := set["idle"]
	switch {
	case loading:
		return Signal{Kind: KindLoading, Source: FromProbe}, true
	case active:
		return Signal{Kind: KindActive, Source: FromProbe}, true
	case idle && len(set) == 1:
		return Signal{Kind: KindReady, Source: FromProbe}, true
	}

	unique := make([]string, 0, len(set))
	for s := range set {
		unique = append(unique, s)
	}
	slices.Sort(unique)
	return Signal{Kind: KindUnknown, Source: FromProbe, States: unique}, true
}
