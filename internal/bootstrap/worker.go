package bootstrap

import (
	"context"
	"errors"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/clinstat/trs/internal/domain/cohort"
	"github.com/clinstat/trs/pkg/logger"
	"github.com/clinstat/trs/pkg/metrics"
)

// accumulator collects one worker's share of the run. Workers never share
// accumulators, so the hot path needs no locks; merge happens once at the
// end.
type accumulator struct {
	completed   int
	skipped     int
	sumApparent float64
	sumOptimism float64
	tests       []float64
}

func (a *accumulator) merge(other *accumulator) {
	a.completed += other.completed
	a.skipped += other.skipped
	a.sumApparent += other.sumApparent
	a.sumOptimism += other.sumOptimism
	a.tests = append(a.tests, other.tests...)
}

// pool fans bootstrap iteration indices out to workers over a bounded
// channel and stops early once the skip budget is exhausted.
type pool struct {
	v        *Validator
	original *cohort.Cohort
	derive   Deriver
	metric   Metric

	skips      atomic.Int64
	skipBudget int64
	cancel     context.CancelFunc

	log logger.Logger
}

func newPool(ctx context.Context, v *Validator, original *cohort.Cohort, derive Deriver, metric Metric) *pool {
	return &pool{
		v:        v,
		original: original,
		derive:   derive,
		metric:   metric,
		// The run is already doomed once skips alone exceed the tolerated
		// fraction of all requested iterations.
		skipBudget: int64(v.tolerance * float64(v.iterations)),
		log:        v.log,
	}
}

// run executes all iterations and returns the per-worker accumulators.
func (p *pool) run(ctx context.Context) []*accumulator {
	workers := p.v.workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > p.v.iterations {
		workers = p.v.iterations
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	defer cancel()

	jobs := make(chan int)
	go func() {
		defer close(jobs)
		for i := 0; i < p.v.iterations; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	metrics.UpdateWorkersActive(workers)
	defer metrics.UpdateWorkersActive(0)

	accs := make([]*accumulator, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		accs[w] = &accumulator{}
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			p.work(ctx, "worker-"+strconv.Itoa(w), accs[w], jobs)
		}(w)
	}
	wg.Wait()
	return accs
}

// work drains iteration indices until the channel closes or the run is
// canceled.
func (p *pool) work(ctx context.Context, name string, acc *accumulator, jobs <-chan int) {
	log := p.log.Named(name)
	for {
		select {
		case <-ctx.Done():
			return
		case i, ok := <-jobs:
			if !ok {
				return
			}
			p.iterate(ctx, log, acc, i)
		}
	}
}

// iterate runs one resample-derive-evaluate cycle into the local
// accumulator. Non-evaluable iterations are skipped and counted; any other
// failure is also a skip, keeping per-iteration faults isolated from the
// run.
func (p *pool) iterate(ctx context.Context, log logger.Logger, acc *accumulator, i int) {
	start := time.Now()
	defer func() {
		metrics.RecordIterationDuration(time.Since(start).Seconds())
	}()

	sample := p.original.Resample(p.v.iterationRNG(i))

	def, err := p.derive(ctx, sample)
	if err != nil {
		p.skip(ctx, log, acc, i, err)
		return
	}
	apparent, err := p.metric(ctx, sample, def)
	if err != nil {
		p.skip(ctx, log, acc, i, err)
		return
	}
	test, err := p.metric(ctx, p.original, def)
	if err != nil {
		p.skip(ctx, log, acc, i, err)
		return
	}

	acc.completed++
	acc.sumApparent += apparent
	acc.sumOptimism += apparent - test
	acc.tests = append(acc.tests, test)
	metrics.RecordIterationCompleted()
}

func (p *pool) skip(ctx context.Context, log logger.Logger, acc *accumulator, i int, err error) {
	acc.skipped++
	metrics.RecordIterationSkipped()
	if !errors.Is(err, context.Canceled) {
		log.Debug(ctx, "iteration skipped", logger.Int("iteration", i), logger.Error(err))
	}
	if p.skips.Add(1) > p.skipBudget {
		// Tolerance breach: stop handing out work. Local accumulators stay
		// valid, so the final report still carries the partial counts.
		p.cancel()
	}
}
