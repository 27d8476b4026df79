// Package collector owns the collection cycle: the declared task catalog, the
// two-phase scheduler that runs it, and the fan-in into one immutable
// snapshot. One task failing, hanging or panicking never takes the cycle
// down; its slot just records why there is no value.
package collector

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quantpulse/marketsnap/internal/cache"
	"github.com/quantpulse/marketsnap/internal/config"
	"github.com/quantpulse/marketsnap/internal/httpx"
	"github.com/quantpulse/marketsnap/internal/metrics"
	"github.com/quantpulse/marketsnap/internal/model"
)

// maxWorkers bounds the parallel phase. Upstreams rate-limit well below what
// unbounded fan-out would generate.
const maxWorkers = 8

// Collector runs collection cycles.
type Collector struct {
	cfg     *config.Config
	cache   cache.Cache
	met     *metrics.Set
	tasks   []Task
	derived []DerivedTask
	sleep   func(ctx context.Context, d time.Duration) error
	now     func() time.Time
}

// New wires a collector from the real providers.
func New(cfg *config.Config, client *httpx.Client, c cache.Cache, met *metrics.Set) *Collector {
	if met != nil {
		client.SetRetryHook(func(provider string) {
			met.FetchRetries.WithLabelValues(provider).Inc()
		})
		c = countingCache{Cache: c, met: met}
	}
	col := &Collector{
		cfg:   cfg,
		cache: c,
		met:   met,
		sleep: sleepCtx,
		now:   time.Now,
	}
	p := newProviders(client, c, cfg.Cache.TTL, cfg.Keys)
	col.tasks = col.buildTasks(p)
	col.derived = col.buildDerived()
	return col
}

// NewWithTasks builds a collector over an explicit catalog. Tests use this to
// inject synthetic tasks.
func NewWithTasks(cfg *config.Config, c cache.Cache, met *metrics.Set, tasks []Task, derived []DerivedTask) *Collector {
	return &Collector{
		cfg:     cfg,
		cache:   c,
		met:     met,
		tasks:   tasks,
		derived: derived,
		sleep:   sleepCtx,
		now:     time.Now,
	}
}

// Tasks returns the declared task names in catalog order.
func (c *Collector) Tasks() []string {
	names := make([]string, 0, len(c.tasks)+len(c.derived))
	for _, t := range c.tasks {
		names = append(names, t.Name)
	}
	for _, d := range c.derived {
		names = append(names, d.Name)
	}
	return names
}

// Collect runs one full cycle and returns the merged snapshot. The context
// bounds the whole cycle; individual tasks are additionally bounded by the
// configured per-task timeout.
func (c *Collector) Collect(ctx context.Context) *model.Snapshot {
	start := c.now().UTC()
	snap := model.NewSnapshot(start)
	log.Info().Str("snapshot", snap.ID).Int("tasks", len(c.tasks)+len(c.derived)).Msg("collection cycle starting")

	// Nothing fetched in a previous cycle may leak into this one.
	c.cache.Purge(ctx)

	var mu sync.Mutex
	record := func(name string, r model.Result) {
		mu.Lock()
		snap.Results[name] = r
		mu.Unlock()
		if c.met != nil {
			c.met.TaskResults.WithLabelValues(name, outcome(r)).Inc()
		}
	}

	// Phase 1: shared-provider tasks, one at a time with a fixed gap.
	var parallel []Task
	seqRan := 0
	for _, t := range c.tasks {
		if !t.Sequential {
			parallel = append(parallel, t)
			continue
		}
		if seqRan > 0 {
			if err := c.sleep(ctx, c.cfg.API.SequentialGap); err != nil {
				record(t.Name, model.Errorf(model.ReasonNetworkFailure, "cycle cancelled: %v", err))
				continue
			}
		}
		record(t.Name, c.runTask(ctx, t))
		seqRan++
	}

	// Phase 2: everything else on a bounded pool.
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxWorkers)
	for _, t := range parallel {
		wg.Add(1)
		go func(t Task) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			record(t.Name, c.runTask(ctx, t))
		}(t)
	}
	wg.Wait()

	// Phase 3: derived figures over the merged snapshot.
	for _, d := range c.derived {
		record(d.Name, runDerived(d, snap))
	}

	snap.FinishedAt = c.now().UTC()
	if c.met != nil {
		c.met.CycleDuration.Observe(snap.Duration().Seconds())
	}
	log.Info().Str("snapshot", snap.ID).Dur("took", snap.Duration()).Msg("collection cycle finished")
	return snap
}

// runTask executes one task under the per-task timeout with panic isolation.
func (c *Collector) runTask(ctx context.Context, t Task) (res model.Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("task", t.Name).Any("panic", r).Msg("task panicked")
			res = model.Absent(model.ReasonTaskPanic, "recovered from task panic")
		}
	}()

	tctx, cancel := context.WithTimeout(ctx, c.cfg.API.TaskTimeout)
	defer cancel()

	started := c.now()
	res = t.Run(tctx)
	log.Debug().Str("task", t.Name).Str("outcome", outcome(res)).
		Dur("took", c.now().Sub(started)).Msg("task finished")
	return res
}

func runDerived(d DerivedTask, snap *model.Snapshot) (res model.Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("task", d.Name).Any("panic", r).Msg("derived task panicked")
			res = model.Absent(model.ReasonTaskPanic, "recovered from task panic")
		}
	}()
	return d.Run(snap)
}

func outcome(r model.Result) string {
	switch r.Kind {
	case model.KindValue:
		return "value"
	case model.KindAbsent:
		return "absent"
	default:
		return "error"
	}
}

// countingCache layers hit/miss counters over the shared cache.
type countingCache struct {
	cache.Cache
	met *metrics.Set
}

func (c countingCache) Get(ctx context.Context, key string) ([]byte, bool) {
	v, ok := c.Cache.Get(ctx, key)
	if ok {
		c.met.CacheHits.Inc()
	} else {
		c.met.CacheMisses.Inc()
	}
	return v, ok
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
