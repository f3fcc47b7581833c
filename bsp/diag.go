package bsp

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
	"honnef.co/go/curve"
)

var diag = &diagnostics{
	limiter: rate.Sometimes{First: diagBurst, Interval: diagInterval},
}

const (
	diagBurst    = 5
	diagInterval = time.Second
)

// diagnostics reports geometric inconsistencies found while clipping. They
// can repeat for every frame that renders the same tree, so the reports are
// rate limited and only counted in between.
type diagnostics struct {
	mu         sync.Mutex
	logger     *slog.Logger
	limiter    rate.Sometimes
	suppressed int

	total atomic.Uint64
}

// SetLogger sets the logger used for diagnostics. A nil logger selects
// slog.Default.
func SetLogger(l *slog.Logger) {
	diag.mu.Lock()
	defer diag.mu.Unlock()
	diag.logger = l
	diag.limiter = rate.Sometimes{First: diagBurst, Interval: diagInterval}
	diag.suppressed = 0
}

// NonCrossings returns how many clipped edges were classified as straddling a
// plane without actually crossing it since the program started.
func NonCrossings() uint64 {
	return diag.total.Load()
}

func (d *diagnostics) nonCrossing(pl Plane, start, end curve.Point) {
	d.total.Add(1)

	d.mu.Lock()
	defer d.mu.Unlock()

	logged := false
	d.limiter.Do(func() {
		logger := d.logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("bsp: clipped edge does not cross the plane",
			slog.Any("start", start),
			slog.Any("end", end),
			slog.Float64("startDist", pl.DistanceToPoint(start)),
			slog.Float64("endDist", pl.DistanceToPoint(end)),
			slog.Int("suppressed", d.suppressed),
		)
		logged = true
	})
	if logged {
		d.suppressed = 0
	} else {
		d.suppressed++
	}
}
