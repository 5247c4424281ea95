package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// Test Plan for FileWatcher:
// - NewFileWatcher succeeds for existing directories and fails for missing ones
// - Single file change fires callback after debounce
// - Multiple file changes are batched into one sorted callback
// - Rapid changes to one file coalesce into a single callback entry
// - Filter excludes files it rejects
// - Files in directories created after Start are reported
// - Removals are not reported
// - Stop is idempotent and safe before Start
// - Context cancellation stops the watch goroutine

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testDebounce = 150 * time.Millisecond

func phpOnly(path string) bool {
	return strings.HasSuffix(path, ".php")
}

// batchCollector records callback batches.
type batchCollector struct {
	mu      sync.Mutex
	batches [][]string
	ch      chan struct{}
}

func newBatchCollector() *batchCollector {
	return &batchCollector{ch: make(chan struct{}, 16)}
}

func (c *batchCollector) callback(files []string) {
	c.mu.Lock()
	c.batches = append(c.batches, files)
	c.mu.Unlock()
	c.ch <- struct{}{}
}

func (c *batchCollector) wait(t *testing.T) []string {
	t.Helper()
	select {
	case <-c.ch:
	case <-time.After(3 * time.Second):
		t.Fatal("callback not called after timeout")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.batches[len(c.batches)-1]
}

func (c *batchCollector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func startWatcher(t *testing.T, dir string, filter func(string) bool) (*batchCollector, FileWatcher) {
	t.Helper()
	w, err := NewFileWatcher([]string{dir}, Options{Debounce: testDebounce, Filter: filter})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, w.Stop()) })

	c := newBatchCollector()
	require.NoError(t, w.Start(context.Background(), c.callback))

	// Let fsnotify settle before producing events.
	time.Sleep(50 * time.Millisecond)
	return c, w
}

func TestNewFileWatcher(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := NewFileWatcher([]string{dir}, Options{})
	require.NoError(t, err)
	require.NoError(t, w.Stop())

	_, err = NewFileWatcher([]string{filepath.Join(dir, "missing")}, Options{})
	assert.Error(t, err)
}

func TestFileWatcher_SingleFileChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, _ := startWatcher(t, dir, phpOnly)

	file := filepath.Join(dir, "a.php")
	require.NoError(t, os.WriteFile(file, []byte("<?php\n"), 0644))

	assert.Equal(t, []string{file}, c.wait(t))
}

func TestFileWatcher_BatchesSorted(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, _ := startWatcher(t, dir, phpOnly)

	files := []string{
		filepath.Join(dir, "c.php"),
		filepath.Join(dir, "a.php"),
		filepath.Join(dir, "b.php"),
	}
	for _, f := range files {
		require.NoError(t, os.WriteFile(f, []byte("<?php\n"), 0644))
		time.Sleep(20 * time.Millisecond)
	}

	assert.Equal(t, []string{files[1], files[2], files[0]}, c.wait(t))
}

func TestFileWatcher_Debouncing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, _ := startWatcher(t, dir, phpOnly)

	file := filepath.Join(dir, "a.php")
	for _, v := range []string{"v1", "v2", "v3"} {
		require.NoError(t, os.WriteFile(file, []byte("<?php // "+v), 0644))
		time.Sleep(20 * time.Millisecond)
	}

	assert.Equal(t, []string{file}, c.wait(t))
	time.Sleep(2 * testDebounce)
	assert.Equal(t, 1, c.count())
}

func TestFileWatcher_Filter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, _ := startWatcher(t, dir, phpOnly)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0644))
	file := filepath.Join(dir, "a.php")
	require.NoError(t, os.WriteFile(file, []byte("<?php\n"), 0644))

	assert.Equal(t, []string{file}, c.wait(t))
}

func TestFileWatcher_NewDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, _ := startWatcher(t, dir, phpOnly)

	sub := filepath.Join(dir, "src")
	require.NoError(t, os.Mkdir(sub, 0755))
	time.Sleep(100 * time.Millisecond)

	file := filepath.Join(sub, "a.php")
	require.NoError(t, os.WriteFile(file, []byte("<?php\n"), 0644))

	assert.Contains(t, c.wait(t), file)
}

func TestFileWatcher_RemovalIgnored(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "a.php")
	require.NoError(t, os.WriteFile(file, []byte("<?php\n"), 0644))

	c, _ := startWatcher(t, dir, phpOnly)
	require.NoError(t, os.Remove(file))

	time.Sleep(3 * testDebounce)
	assert.Zero(t, c.count())
}

func TestFileWatcher_StopIdempotent(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{t.TempDir()}, Options{})
	require.NoError(t, err)

	// Stop before Start must not block.
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

func TestFileWatcher_ContextCancellation(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{t.TempDir()}, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx, func([]string) {}))
	cancel()

	fw := w.(*fileWatcher)
	select {
	case <-fw.doneCh:
	case <-time.After(2 * time.Second):
		t.Fatal("watch goroutine did not exit")
	}
	require.NoError(t, w.Stop())
}
