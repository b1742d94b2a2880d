package status

import (
	"context"

	"github.com/chew-z/screenshot-translator/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// Monitor combines the log reader and the prober into one status string.
type Monitor struct {
	logPath string
	prober  *Prober
}

// NewMonitor creates a monitor reading the log at logPath.
func NewMonitor(logPath string, prober *Prober) *Monitor {
	return &Monitor{logPath: logPath, prober: prober}
}

// Status reads the log tail and probes the server concurrently, then merges
// the two signals.
func (m *Monitor) Status(ctx context.Context) string {
	var (
		logSig   Signal
		logOK    bool
		probeSig Signal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logSig, logOK = ReadLog(m.logPath)
		return nil
	})
	g.Go(func() error {
		probeSig = m.prober.Probe(gctx)
		return nil
	})
	_ = g.Wait()

	var logStatus string
	if logOK {
		logStatus = logSig.Render()
		metrics.StatusObserved(logSig.Source.String(), logSig.Kind.String())
	}
	metrics.StatusObserved(probeSig.Source.String(), probeSig.Kind.String())

	return Merge(logStatus, probeSig.Render())
}
