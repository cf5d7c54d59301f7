package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHybridWatcher_Start_InvalidPath_ReturnsError tests that starting a
// watcher on a non-existent path returns an error.
func TestHybridWatcher_Start_InvalidPath_ReturnsError(t *testing.T) {
	opts := DefaultOptions()
	w, err := NewHybridWatcher(opts)
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Start(ctx, "/nonexistent/path/that/does/not/exist")
	}()

	select {
	case err := <-errCh:
		if err != nil {
			assert.Error(t, err, "Start should return error for invalid path")
		}
	case err := <-w.Errors():
		assert.Error(t, err, "error should be sent to Errors channel")
	case <-time.After(3 * time.Second):
		t.Log("no immediate error - checking for silent failure")
	}
}

func TestHybridWatcher_Errors_ChannelIsOpen(t *testing.T) {
	opts := DefaultOptions()
	w, err := NewHybridWatcher(opts)
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	assert.NotNil(t, w.Errors(), "Errors channel should not be nil")
}

func TestHybridWatcher_Stop_ClosesChannels_ErrorPropagation(t *testing.T) {
	tmpDir := t.TempDir()
	opts := Options{
		DebounceWindow:  10 * time.Millisecond,
		EventBufferSize: 10,
	}.WithDefaults()

	w, err := NewHybridWatcher(opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	go func() {
		close(started)
		_ = w.Start(ctx, tmpDir)
	}()
	<-started
	time.Sleep(100 * time.Millisecond)

	err = w.Stop()
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	err = w.Stop()
	assert.NoError(t, err, "multiple stops should be safe")
}

func TestHybridWatcher_ContextCancel_StopsCleanly(t *testing.T) {
	tmpDir := t.TempDir()
	opts := Options{
		DebounceWindow:  10 * time.Millisecond,
		EventBufferSize: 10,
	}.WithDefaults()

	w, err := NewHybridWatcher(opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())

	startErr := make(chan error, 1)
	go func() {
		startErr <- w.Start(ctx, tmpDir)
	}()

	time.Sleep(100 * time.Millisecond)

	cancel()

	select {
	case err := <-startErr:
		if err != nil && err != context.Canceled {
			t.Logf("Start returned with: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop within timeout after context cancel")
	}
}

func TestHybridWatcher_WatchDeletedDirectory_HandlesGracefully(t *testing.T) {
	tmpDir := t.TempDir()
	watchDir := filepath.Join(tmpDir, "watched")
	err := os.MkdirAll(watchDir, 0755)
	require.NoError(t, err)

	opts := Options{
		DebounceWindow:  10 * time.Millisecond,
		EventBufferSize: 10,
	}.WithDefaults()

	w, err := NewHybridWatcher(opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	go func() {
		close(started)
		_ = w.Start(ctx, watchDir)
	}()
	<-started
	time.Sleep(200 * time.Millisecond)

	err = os.RemoveAll(watchDir)
	require.NoError(t, err)

	timeout := time.After(1 * time.Second)
	for {
		select {
		case events := <-w.Events():
			t.Logf("got events after directory deletion: %v", events)
		case err := <-w.Errors():
			t.Logf("got error after directory deletion: %v", err)
		case <-timeout:
			t.Log("watcher handled directory deletion without panic")
			return
		}
	}
}

func TestHybridWatcher_PermissionDenied_ReportsError(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("test requires non-root user")
	}

	tmpDir := t.TempDir()
	restrictedDir := filepath.Join(tmpDir, "restricted")
	err := os.MkdirAll(restrictedDir, 0000)
	require.NoError(t, err)
	defer func() { _ = os.Chmod(restrictedDir, 0755) }()

	opts := DefaultOptions()
	w, err := NewHybridWatcher(opts)
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Start(ctx, restrictedDir)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			t.Logf("got expected start error: %v", err)
		}
	case err := <-w.Errors():
		t.Logf("got expected error from Errors channel: %v", err)
	case <-ctx.Done():
		t.Log("context expired - may have silently failed")
	}
}

func TestPollingWatcher_Start_InvalidPath_ReturnsError(t *testing.T) {
	w := NewPollingWatcher(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := w.Start(ctx, "/nonexistent/path")

	assert.Error(t, err, "Start should fail for non-existent path")
}

func TestDebouncer_Stop_ClosesOutput_ErrorPropagation(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	d.Stop()

	select {
	case _, ok := <-d.Output():
		assert.False(t, ok, "output channel should be closed")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHybridWatcher_ConcurrentStop_Safe(t *testing.T) {
	tmpDir := t.TempDir()
	opts := DefaultOptions()

	w, err := NewHybridWatcher(opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = w.Start(ctx, tmpDir)
	}()
	time.Sleep(100 * time.Millisecond)

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			_ = w.Stop()
			done <- struct{}{}
		}()
	}

	for i := 0; i < 10; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("concurrent stops didn't complete in time")
		}
	}
}
