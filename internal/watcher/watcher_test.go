// file: internal/watcher/watcher_test.go
// version: 2.1.0
// guid: a1b2c3d4-e5f6-7890-abcd-ef1234567890

package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestIsHTMLFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"startlist.html", true},
		{"startlist.htm", true},
		{"startlist.xhtml", true},
		{"startlist.HTML", true},
		{"startlist.xml", false},
		{"startlist.txt", false},
		{"startlist", false},
		{".html", true},
	}
	for _, tt := range tests {
		if got := IsHTMLFile(tt.name); got != tt.want {
			t.Errorf("IsHTMLFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDebounceSingleFile(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "race.html")
	if err := os.WriteFile(page, []byte("<html></html>"), 0644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	var got atomic.Value
	w := New(func(path string) {
		calls.Add(1)
		got.Store(path)
	}, 200*time.Millisecond)

	if err := w.Start(page); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// Rapid-fire writes within the debounce window.
	for i := 0; i < 5; i++ {
		_ = os.WriteFile(page, []byte("<html>edit</html>"), 0644)
		time.Sleep(30 * time.Millisecond)
	}

	time.Sleep(500 * time.Millisecond)

	if c := calls.Load(); c != 1 {
		t.Errorf("expected exactly 1 debounced callback, got %d", c)
	}
	if p, _ := got.Load().(string); p != page {
		t.Errorf("expected callback for %s, got %q", page, p)
	}
}

func TestOtherFilesIgnoredInFileMode(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "race.html")
	if err := os.WriteFile(page, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	w := New(func(string) { calls.Add(1) }, 100*time.Millisecond)
	if err := w.Start(page); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	_ = os.WriteFile(filepath.Join(dir, "other.html"), []byte("x"), 0644)
	_ = os.WriteFile(filepath.Join(dir, "startlist.xml"), []byte("x"), 0644)

	time.Sleep(300 * time.Millisecond)

	if c := calls.Load(); c != 0 {
		t.Errorf("expected 0 callbacks, got %d", c)
	}
}

func TestReplacedFileTriggers(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "race.html")
	if err := os.WriteFile(page, []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	w := New(func(string) { calls.Add(1) }, 100*time.Millisecond)
	if err := w.Start(page); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// Save the way browsers and editors do: write elsewhere, rename over.
	tmp := filepath.Join(dir, "race.html.part")
	if err := os.WriteFile(tmp, []byte("v2"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, page); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)

	if c := calls.Load(); c != 1 {
		t.Errorf("expected 1 callback after replace, got %d", c)
	}
}

func TestDirectoryMode(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	seen := map[string]int{}
	w := New(func(path string) {
		mu.Lock()
		seen[filepath.Base(path)]++
		mu.Unlock()
	}, 100*time.Millisecond)

	if err := w.Start(dir); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	_ = os.WriteFile(filepath.Join(dir, "a.html"), []byte("x"), 0644)
	_ = os.WriteFile(filepath.Join(dir, "b.htm"), []byte("x"), 0644)
	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)

	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if seen["a.html"] != 1 || seen["b.htm"] != 1 {
		t.Errorf("expected one callback per page, got %v", seen)
	}
	if seen["notes.txt"] != 0 {
		t.Error("non-HTML file should be ignored")
	}
}

func TestStartMissingPath(t *testing.T) {
	w := New(func(string) {}, 0)
	if err := w.Start(filepath.Join(t.TempDir(), "missing.html")); err == nil {
		t.Error("expected error for missing path")
	}
	w.Stop() // never started, should not block
}

func TestStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := New(func(string) {}, 100*time.Millisecond)
	if err := w.Start(dir); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop() // should not panic
}

func TestStartIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := New(func(string) {}, 100*time.Millisecond)
	if err := w.Start(dir); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	// Second start should be a no-op.
	if err := w.Start(dir); err != nil {
		t.Fatal(err)
	}
}

func TestStopWaitsForRunningCallback(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "race.html")
	if err := os.WriteFile(page, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	w := New(func(string) {
		once.Do(func() { close(entered) })
		<-release
	}, 20*time.Millisecond)
	if err := w.Start(page); err != nil {
		t.Fatal(err)
	}

	_ = os.WriteFile(page, []byte("edit"), 0644)
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		close(release)
		w.Stop()
		t.Fatal("callback never ran")
	}

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Error("Stop returned while the callback was still running")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the callback finished")
	}
}

func TestCallbacksDoNotOverlap(t *testing.T) {
	dir := t.TempDir()
	var active, maxActive, calls atomic.Int32
	w := New(func(string) {
		n := active.Add(1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		calls.Add(1)
		time.Sleep(150 * time.Millisecond)
		active.Add(-1)
	}, 20*time.Millisecond)
	if err := w.Start(dir); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// each write lands in its own debounce window while a callback sleeps
	for i := 0; i < 6; i++ {
		_ = os.WriteFile(filepath.Join(dir, "race.html"), []byte{byte('a' + i)}, 0644)
		time.Sleep(50 * time.Millisecond)
	}
	time.Sleep(800 * time.Millisecond)

	if calls.Load() < 2 {
		t.Fatalf("expected several callbacks, got %d", calls.Load())
	}
	if m := maxActive.Load(); m > 1 {
		t.Errorf("callbacks overlapped: %d ran at once", m)
	}
}

func TestNoCallbackAfterStop(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "race.html")
	if err := os.WriteFile(page, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	w := New(func(string) { calls.Add(1) }, 100*time.Millisecond)
	if err := w.Start(page); err != nil {
		t.Fatal(err)
	}

	// stop inside the debounce window so the pending fire finds the watcher stopped
	_ = os.WriteFile(page, []byte("edit"), 0644)
	time.Sleep(20 * time.Millisecond)
	w.Stop()
	time.Sleep(300 * time.Millisecond)

	if c := calls.Load(); c != 0 {
		t.Errorf("expected no callback after Stop, got %d", c)
	}
}
