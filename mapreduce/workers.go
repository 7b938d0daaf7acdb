package mapreduce

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/tymbaca/mapreduce-engine/mapreduce/partition"
	"github.com/tymbaca/mapreduce-engine/pkg/caller"
	"github.com/tymbaca/mapreduce-engine/pkg/tracer"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type mapper struct {
	id    int
	mapFn MapFunc
	emit  EmitFunc

	units  *dispatcher
	stats  *counters
	logger *slog.Logger
}

func (m *mapper) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		unit, ok := m.units.take()
		if !ok {
			m.logger.Debug("mapper: no units left", "id", m.id)
			return nil
		}
		m.stats.mapIn.Add(1)
		m.logger.Debug("mapper: got unit", "id", m.id, "unit", unit)

		if err := m.mapUnit(ctx, unit); err != nil {
			m.logger.Error("mapper: map failed", "id", m.id, "unit", unit, "err", err)
			return fmt.Errorf("mapper %d: unit %q: %w", m.id, unit, err)
		}
	}
}

func (m *mapper) mapUnit(ctx context.Context, unit string) error {
	ctx, span := tracer.Start(ctx, caller.Name(), trace.WithAttributes(
		attribute.Int("id", m.id),
		attribute.String("unit", unit),
	))
	defer span.End()

	err := protect(func() error {
		return m.mapFn(ctx, unit, m.emit)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}

type reducer struct {
	id       int
	reduceFn ReduceFunc

	// owned exclusively by this reducer, no locking
	drain *partition.Drainer

	stats  *counters
	logger *slog.Logger
}

func (r *reducer) run(ctx context.Context) error {
	values := countingIterator{ValueIterator: r.drain, n: &r.stats.reduceOut}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		key, ok := r.drain.NextKey()
		if !ok {
			r.logger.Debug("reducer: partition drained", "id", r.id)
			return nil
		}
		r.stats.reduceIn.Add(1)
		r.logger.Debug("reducer: got key", "id", r.id, "key", string(key))

		if err := r.reduceKey(ctx, key, values); err != nil {
			r.logger.Error("reducer: reduce failed", "id", r.id, "key", string(key), "err", err)
			return fmt.Errorf("reducer %d: key %q: %w", r.id, key, err)
		}
	}
}

func (r *reducer) reduceKey(ctx context.Context, key []byte, values ValueIterator) error {
	ctx, span := tracer.Start(ctx, caller.Name(), trace.WithAttributes(
		attribute.Int("partition", r.id),
		attribute.String("key", string(key)),
	))
	defer span.End()

	err := protect(func() error {
		return r.reduceFn(ctx, key, values, r.id)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}

// protect turns a panic in fn into a *PanicError.
func protect(fn func() error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()

	return fn()
}
