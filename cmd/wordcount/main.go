package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/tymbaca/mapreduce-engine/mapreduce"
	"github.com/tymbaca/mapreduce-engine/mapreduce/storage/bbolt"
	"github.com/tymbaca/mapreduce-engine/mapreduce/storage/inmemory"
	"github.com/tymbaca/mapreduce-engine/pkg/tracer"
)

type config struct {
	mappers     int
	reducers    int
	partitioner string
	db          string
	fake        int
	otlp        string
	verbose     bool
	jsonLog     bool
	files       []string
}

func parseFlags(args []string, output io.Writer) (config, error) {
	var cfg config

	fs := flag.NewFlagSet("wordcount", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: wordcount [flags] file...")
		fs.PrintDefaults()
	}

	fs.IntVar(&cfg.mappers, "mappers", 4, "map workers")
	fs.IntVar(&cfg.reducers, "reducers", 4, "reduce workers (partitions)")
	fs.StringVar(&cfg.partitioner, "partitioner", "djb2", "key partitioner: djb2 or murmur3")
	fs.StringVar(&cfg.db, "db", "", "bbolt file for results (in memory when empty)")
	fs.IntVar(&cfg.fake, "fake", 0, "generate this many input files of random text")
	fs.StringVar(&cfg.otlp, "otlp", "", "OTLP/HTTP endpoint for traces, e.g. localhost:4318")
	fs.BoolVar(&cfg.verbose, "v", false, "debug logging")
	fs.BoolVar(&cfg.jsonLog, "json-log", false, "log as JSON")

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	cfg.files = fs.Args()

	return cfg, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	slog.SetDefault(newLogger(cfg, os.Stderr))

	if err := run(ctx, cfg, os.Stdout); err != nil {
		slog.Error("wordcount: failed", "err", err)
		os.Exit(1)
	}
}

func newLogger(cfg config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.verbose {
		opts.Level = slog.LevelDebug
	}

	if cfg.jsonLog {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

func run(ctx context.Context, cfg config, out io.Writer) error {
	if cfg.otlp != "" {
		shutdown, err := tracer.Init(ctx, cfg.otlp)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Warn("wordcount: tracer shutdown", "err", err)
			}
		}()
	}

	partitionFn, err := partitioner(cfg.partitioner)
	if err != nil {
		return err
	}

	units := cfg.files
	if cfg.fake > 0 {
		dir, err := os.MkdirTemp("", "wordcount")
		if err != nil {
			return fmt.Errorf("create input dir: %w", err)
		}
		defer os.RemoveAll(dir)

		fakeUnits, err := writeFakeInput(dir, cfg.fake)
		if err != nil {
			return err
		}
		units = append(units, fakeUnits...)
	}

	var storage mapreduce.Storage
	if cfg.db != "" {
		db, err := bbolt.New(cfg.db)
		if err != nil {
			return err
		}
		defer db.Close()
		storage = db
	} else {
		storage = inmemory.New()
	}

	mr := mapreduce.New(countMap, countReduce(storage), cfg.mappers, cfg.reducers,
		mapreduce.WithPartitionFunc(partitionFn),
		mapreduce.WithLogger(slog.Default()),
	)

	stats, err := mr.Run(ctx, units)
	if err != nil {
		return err
	}
	slog.Info("wordcount: finished", "stats", stats.String())

	return printResults(ctx, out, storage, cfg.reducers)
}

func partitioner(name string) (mapreduce.PartitionFunc, error) {
	switch name {
	case "djb2", "":
		return mapreduce.DefaultHashPartition, nil
	case "murmur3":
		return mapreduce.MurmurPartition, nil
	}

	return nil, fmt.Errorf("%w: unknown partitioner %q", mapreduce.ErrInvalidConfig, name)
}

func writeFakeInput(dir string, n int) ([]string, error) {
	paths := make([]string, 0, n)

	for i := range n {
		path := filepath.Join(dir, fmt.Sprintf("input-%03d.txt", i))

		var b strings.Builder
		for range gofakeit.IntRange(5, 20) {
			b.WriteString(gofakeit.Sentence(gofakeit.IntRange(10, 20)))
			b.WriteByte('\n')
		}

		if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
			return nil, fmt.Errorf("write fake input: %w", err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// countMap counts the words of the file at path and emits one count per
// distinct word.
func countMap(ctx context.Context, path string, emit mapreduce.EmitFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	wordCount := make(map[string]int)

	scanner := bufio.NewScanner(f)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		word := normalize(scanner.Text())
		if len(word) == 0 {
			continue
		}

		wordCount[word] += 1
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	for word, count := range wordCount {
		emit([]byte(word), []byte(strconv.Itoa(count)))
	}

	return nil
}

func normalize(word string) string {
	return strings.ToLower(strings.Trim(word, ".,;:!?\"'()"))
}

func countReduce(storage mapreduce.Storage) mapreduce.ReduceFunc {
	return func(ctx context.Context, key []byte, counts mapreduce.ValueIterator, partition int) error {
		total := 0
		for countStr, ok := counts.Next(); ok; countStr, ok = counts.Next() {
			count, err := strconv.Atoi(string(countStr))
			if err != nil {
				return err
			}

			total += count
		}

		return storage.Put(ctx, mapreduce.Bucket(partition), string(key), strconv.Itoa(total))
	}
}

func printResults(ctx context.Context, out io.Writer, storage mapreduce.Storage, partitions int) error {
	w := bufio.NewWriter(out)

	for p := range partitions {
		bucket := mapreduce.Bucket(p)

		keys, err := storage.Keys(ctx, bucket)
		if err != nil {
			return err
		}

		for _, key := range keys {
			val, _, err := storage.Get(ctx, bucket, key)
			if err != nil {
				return err
			}

			if _, err := fmt.Fprintf(w, "%s %s\n", key, val); err != nil {
				return err
			}
		}
	}

	return w.Flush()
}
