package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tymbaca/mapreduce-engine/mapreduce"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn})))
	os.Exit(m.Run())
}

func writeInput(t *testing.T, texts ...string) []string {
	t.Helper()

	dir := t.TempDir()
	paths := make([]string, len(texts))
	for i, text := range texts {
		paths[i] = filepath.Join(dir, "in-"+strconv.Itoa(i)+".txt")
		require.NoError(t, os.WriteFile(paths[i], []byte(text), 0o600))
	}

	return paths
}

func parseOutput(t *testing.T, out string) ([]string, map[string]int) {
	t.Helper()

	var words []string
	counts := make(map[string]int)
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}

		word, countStr, ok := strings.Cut(line, " ")
		require.True(t, ok, line)

		count, err := strconv.Atoi(countStr)
		require.NoError(t, err)

		words = append(words, word)
		counts[word] = count
	}

	return words, counts
}

func TestWordCount(t *testing.T) {
	files := writeInput(t,
		"The quick brown fox.\nJumps over the lazy dog!",
		"the dog sleeps, the fox runs",
	)

	want := map[string]int{
		"the": 4, "quick": 1, "brown": 1, "fox": 2, "jumps": 1,
		"over": 1, "lazy": 1, "dog": 2, "sleeps": 1, "runs": 1,
	}

	for _, partitioner := range []string{"djb2", "murmur3"} {
		t.Run(partitioner, func(t *testing.T) {
			cfg := config{mappers: 2, reducers: 3, partitioner: partitioner, files: files}

			var out bytes.Buffer
			require.NoError(t, run(context.Background(), cfg, &out))

			_, counts := parseOutput(t, out.String())
			require.Equal(t, want, counts)
		})
	}
}

func TestWordCountBbolt(t *testing.T) {
	files := writeInput(t, "a b a", "b c")

	cfg := config{
		mappers:  1,
		reducers: 1,
		db:       filepath.Join(t.TempDir(), "results.db"),
		files:    files,
	}

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, &out))
	require.Equal(t, "a 2\nb 2\nc 1\n", out.String())
	require.FileExists(t, cfg.db)
}

func TestWordCountFake(t *testing.T) {
	cfg := config{mappers: 4, reducers: 1, fake: 5}

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, &out))

	words, counts := parseOutput(t, out.String())
	require.NotEmpty(t, words)
	require.True(t, slices.IsSorted(words))
	for word, count := range counts {
		require.Positive(t, count, word)
	}
}

func TestInvalidConfig(t *testing.T) {
	files := writeInput(t, "x")

	cases := map[string]config{
		"no mappers":          {mappers: 0, reducers: 1, files: files},
		"no reducers":         {mappers: 1, reducers: 0, files: files},
		"no files":            {mappers: 1, reducers: 1},
		"unknown partitioner": {mappers: 1, reducers: 1, partitioner: "crc", files: files},
	}

	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			err := run(context.Background(), cfg, io.Discard)
			require.ErrorIs(t, err, mapreduce.ErrInvalidConfig)
		})
	}
}

func TestMissingFile(t *testing.T) {
	cfg := config{mappers: 1, reducers: 1, files: []string{filepath.Join(t.TempDir(), "nope.txt")}}

	err := run(context.Background(), cfg, io.Discard)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseFlags(t *testing.T) {
	cfg, err := parseFlags([]string{"-mappers", "7", "-reducers=2", "-partitioner", "murmur3", "-v", "a.txt", "b.txt"}, io.Discard)
	require.NoError(t, err)

	require.Equal(t, 7, cfg.mappers)
	require.Equal(t, 2, cfg.reducers)
	require.Equal(t, "murmur3", cfg.partitioner)
	require.True(t, cfg.verbose)
	require.Equal(t, []string{"a.txt", "b.txt"}, cfg.files)

	_, err = parseFlags([]string{"-mappers", "many"}, io.Discard)
	require.Error(t, err)
}
