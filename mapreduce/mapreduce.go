package mapreduce

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/tymbaca/mapreduce-engine/mapreduce/partition"
	"github.com/tymbaca/mapreduce-engine/pkg/caller"
	"github.com/tymbaca/mapreduce-engine/pkg/tracer"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

type MapReduce struct {
	mapFn       MapFunc
	mapperCount int

	reduceFn     ReduceFunc
	reducerCount int

	partitionFn PartitionFunc
	logger      *slog.Logger
}

type Option func(mr *MapReduce)

// WithPartitionFunc replaces DefaultHashPartition.
func WithPartitionFunc(fn PartitionFunc) Option {
	return func(mr *MapReduce) {
		if fn != nil {
			mr.partitionFn = fn
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(mr *MapReduce) {
		if logger != nil {
			mr.logger = logger
		}
	}
}

// New creates an engine with mapperCount map workers and reducerCount
// reduce workers, one per partition. Arguments are validated by Run.
func New(mapFn MapFunc, reduceFn ReduceFunc, mapperCount, reducerCount int, opts ...Option) *MapReduce {
	mr := &MapReduce{
		mapFn:        mapFn,
		mapperCount:  mapperCount,
		reduceFn:     reduceFn,
		reducerCount: reducerCount,
		partitionFn:  DefaultHashPartition,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(mr)
	}

	return mr
}

// job is the state of a single Run.
type job struct {
	units      *dispatcher
	partitions []*partition.Partition
	stats      counters
}

// Run maps every unit, then reduces every partition. It blocks until all
// reducers finished or the first failure. No callback is invoked when the
// configuration is invalid.
func (mr *MapReduce) Run(ctx context.Context, units []string) (Stats, error) {
	if err := mr.validate(units); err != nil {
		return Stats{}, err
	}

	ctx, span := tracer.Start(ctx, caller.Name(), trace.WithAttributes(
		attribute.Int("units", len(units)),
		attribute.Int("mappers", mr.mapperCount),
		attribute.Int("reducers", mr.reducerCount),
	))
	defer span.End()

	j := &job{
		units:      newDispatcher(units),
		partitions: make([]*partition.Partition, mr.reducerCount),
	}
	for i := range j.partitions {
		j.partitions[i] = partition.New()
	}

	mr.logger.Info("mapreduce: map phase started", "units", len(units), "mappers", mr.mapperCount)
	if err := mr.mapPhase(ctx, j); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return j.stats.snapshot(), fmt.Errorf("map phase: %w", err)
	}

	// every mapper returned, partitions are not written anymore
	mr.logger.Info("mapreduce: reduce phase started", "reducers", mr.reducerCount, "emitted", j.stats.mapOut.Load())
	if err := mr.reducePhase(ctx, j); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return j.stats.snapshot(), fmt.Errorf("reduce phase: %w", err)
	}

	stats := j.stats.snapshot()
	mr.logger.Info("mapreduce: done", "stats", stats)

	return stats, nil
}

func (mr *MapReduce) validate(units []string) error {
	switch {
	case len(units) == 0:
		return fmt.Errorf("%w: no input units", ErrInvalidConfig)
	case mr.mapFn == nil:
		return fmt.Errorf("%w: map func is nil", ErrInvalidConfig)
	case mr.reduceFn == nil:
		return fmt.Errorf("%w: reduce func is nil", ErrInvalidConfig)
	case mr.mapperCount < 1:
		return fmt.Errorf("%w: mapper count must be positive, got %d", ErrInvalidConfig, mr.mapperCount)
	case mr.reducerCount < 1:
		return fmt.Errorf("%w: reducer count must be positive, got %d", ErrInvalidConfig, mr.reducerCount)
	}

	return nil
}

func (mr *MapReduce) mapPhase(ctx context.Context, j *job) error {
	ctx, span := tracer.Start(ctx, caller.Name())
	defer span.End()

	g, ctx := errgroup.WithContext(ctx)
	emit := mr.emitter(j)

	for id := range mr.mapperCount {
		m := &mapper{
			id:     id,
			mapFn:  mr.mapFn,
			emit:   emit,
			units:  j.units,
			stats:  &j.stats,
			logger: mr.logger,
		}

		g.Go(func() error {
			return m.run(ctx)
		})
	}

	return g.Wait()
}

func (mr *MapReduce) reducePhase(ctx context.Context, j *job) error {
	ctx, span := tracer.Start(ctx, caller.Name())
	defer span.End()

	g, ctx := errgroup.WithContext(ctx)

	for id, part := range j.partitions {
		r := &reducer{
			id:       id,
			reduceFn: mr.reduceFn,
			drain:    part.Drain(),
			stats:    &j.stats,
			logger:   mr.logger,
		}

		g.Go(func() error {
			return r.run(ctx)
		})
	}

	return g.Wait()
}

func (mr *MapReduce) emitter(j *job) EmitFunc {
	return func(key, value []byte) {
		if key == nil || value == nil {
			panic(fmt.Errorf("%w: key %q, value %q", ErrInvalidEmit, key, value))
		}

		id := mr.partitionFn(key, len(j.partitions))
		if id < 0 || id >= len(j.partitions) {
			log.Panicf("emit: partition %d out of range [0, %d) for key %q", id, len(j.partitions), key)
		}

		j.partitions[id].Insert(key, value)
		j.stats.mapOut.Add(1)
	}
}
