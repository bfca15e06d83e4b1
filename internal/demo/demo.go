// Package demo runs producer/consumer scenarios against lockingqueue and
// checks that every produced item is consumed exactly once.
package demo

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/xyhelper/lockingqueue"
	"github.com/xyhelper/lockingqueue/dedup"
	"github.com/xyhelper/lockingqueue/worker"
)

// Item is the unit handed from producers to consumers. A Stop item tells
// exactly one consumer to return.
type Item struct {
	Tag      string
	Producer int
	Stop     bool
}

// queue is the consumer-side surface shared by lockingqueue.Queue and
// dedup.Queue.
type queue interface {
	TryPop() (Item, bool)
	WaitAndPop() Item
	TryWaitAndPop(timeout time.Duration) (Item, bool)
	WaitAndPopContext(ctx context.Context) (Item, error)
	Stats() lockingqueue.Stats
}

// newTag returns a unique item tag.
var newTag = func() string { return uuid.Must(uuid.NewV4()).String() }

// Report summarizes a run.
type Report struct {
	Config      Config
	Produced    int
	Consumed    int
	PerConsumer []int
	Rejected    int // duplicate pushes dropped in dedup mode
	Duplicates  int // items consumed more than once
	Missing     int // items produced but never consumed
	Elapsed     time.Duration
	Stats       lockingqueue.Stats
}

// OK reports whether the consumed items match the produced items exactly.
func (r Report) OK() bool {
	return r.Duplicates == 0 && r.Missing == 0 && r.Produced == r.Consumed
}

// Run executes cfg and returns its report. ctx aborts consumers in the poll,
// timed and context modes; wait-mode consumers always drain. Every producer
// and consumer is joined before Run returns, on success and on error.
func Run(ctx context.Context, cfg Config, logger log.FieldLogger) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	logger = logger.WithField("mode", cfg.Mode)

	var (
		q        queue
		push     func(Item)
		rejected func() int
	)
	if cfg.Dedup {
		dq := dedup.New[Item](lockingqueue.WithLogger(logger))
		var dropped atomic.Int64
		// Each item is offered twice in one call; the second copy must be dropped.
		push = func(it Item) { dropped.Add(int64(2 - dq.PushMany(it, it))) }
		rejected = func() int { return int(dropped.Load()) }
		q = dq
	} else {
		lq := lockingqueue.New[Item](lockingqueue.WithLogger(logger))
		push = lq.Push
		rejected = func() int { return 0 }
		q = lq
	}

	start := time.Now()
	produced := make([][]string, cfg.Producers)
	producers := worker.NewGroup(logger)
	for p := 0; p < cfg.Producers; p++ {
		producers.Go(func() {
			for i := 0; i < cfg.Items; i++ {
				tag := newTag()
				produced[p] = append(produced[p], tag)
				push(Item{Tag: tag, Producer: p})
			}
		})
	}

	consumed := make([][]string, cfg.Consumers)
	consumerErrs := make([]error, cfg.Consumers)
	consumers := worker.NewGroup(logger)
	for c := 0; c < cfg.Consumers; c++ {
		consumers.Go(func() {
			for {
				it, err := pop(ctx, q, cfg)
				if err != nil {
					consumerErrs[c] = err
					return
				}
				if it.Stop {
					return
				}
				consumed[c] = append(consumed[c], it.Tag)
			}
		})
	}

	var errs []error
	if err := producers.JoinAll(); err != nil {
		errs = append(errs, fmt.Errorf("producers: %w", err))
	}
	// Consumers are stopped and joined even when a producer failed, since a
	// wait-mode consumer has no other way out. Stop items are queued after
	// every real item, so FIFO order guarantees consumers drain the work first.
	for c := 0; c < cfg.Consumers; c++ {
		push(Item{Tag: fmt.Sprintf("stop-%d", c), Stop: true})
	}
	if err := consumers.JoinAll(); err != nil {
		errs = append(errs, fmt.Errorf("consumers: %w", err))
	}
	for _, err := range consumerErrs {
		if err != nil {
			errs = append(errs, fmt.Errorf("consumer: %w", err))
			break
		}
	}
	if err := errors.Join(errs...); err != nil {
		return Report{}, err
	}

	r := verify(produced, consumed)
	r.Config = cfg
	r.Rejected = rejected()
	r.Elapsed = time.Since(start)
	r.Stats = q.Stats()
	logger.WithFields(log.Fields{
		"produced": r.Produced,
		"consumed": r.Consumed,
		"elapsed":  r.Elapsed,
	}).Info("demo: run finished")
	return r, nil
}

// pop removes one item using the operation cfg.Mode selects.
func pop(ctx context.Context, q queue, cfg Config) (Item, error) {
	switch cfg.Mode {
	case ModeWait:
		return q.WaitAndPop(), nil
	case ModeContext:
		return q.WaitAndPopContext(ctx)
	case ModeTimed:
		for {
			if err := ctx.Err(); err != nil {
				return Item{}, err
			}
			if it, ok := q.TryWaitAndPop(cfg.Timeout); ok {
				return it, nil
			}
		}
	default:
		for {
			if err := ctx.Err(); err != nil {
				return Item{}, err
			}
			if it, ok := q.TryPop(); ok {
				return it, nil
			}
			select {
			case <-ctx.Done():
				return Item{}, ctx.Err()
			case <-time.After(pollInterval):
			}
		}
	}
}

func verify(produced, consumed [][]string) Report {
	var r Report
	want := mapset.NewThreadUnsafeSet[string]()
	for _, tags := range produced {
		r.Produced += len(tags)
		for _, tag := range tags {
			want.Add(tag)
		}
	}
	got := mapset.NewThreadUnsafeSet[string]()
	for _, tags := range consumed {
		r.PerConsumer = append(r.PerConsumer, len(tags))
		r.Consumed += len(tags)
		for _, tag := range tags {
			if got.Contains(tag) {
				r.Duplicates++
				continue
			}
			got.Add(tag)
		}
	}
	r.Missing = want.Difference(got).Cardinality()
	return r
}
