package iot

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"liyu1981.xyz/iot-datalogger/pkg/common"
)

const DefaultPollInterval = 5 * time.Second

// Poller runs Tick once immediately and then on every Interval. Ticks are not serialized: a slow
// tick may still be running when the next one starts.
type Poller struct {
	Interval time.Duration
	Tick     func(ctx context.Context)
}

type PollHandle struct {
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func (p *Poller) Start(ctx context.Context) *PollHandle {
	logger := common.GetLoggerWith(common.LoggerNamePoller)

	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	h := &PollHandle{cancel: cancel}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		logger.Info("Polling started", zap.Duration("interval", interval))
		h.fire(ctx, p.Tick)
		for {
			select {
			case <-ctx.Done():
				logger.Info("Polling stopped")
				return
			case <-ticker.C:
				h.fire(ctx, p.Tick)
			}
		}
	}()

	return h
}

// fire is only called from the loop goroutine, which holds its own count on wg, so Add never
// races with Wait from zero.
func (h *PollHandle) fire(ctx context.Context, tick func(ctx context.Context)) {
	if ctx.Err() != nil {
		return
	}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		tick(ctx)
	}()
}

// Stop cancels the loop and waits for every in-flight tick. Safe to call more than once.
func (h *PollHandle) Stop() {
	h.stopOnce.Do(h.cancel)
	h.wg.Wait()
}

// StartPolling drives Tick with the configured interval.
func (i *IOT) StartPolling(ctx context.Context) *PollHandle {
	p := &Poller{
		Interval: i.Settings.PollInterval,
		Tick: func(ctx context.Context) {
			i.Tick(ctx)
		},
	}
	return p.Start(ctx)
}
