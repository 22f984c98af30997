package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchDeliversInitialSnapshot(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, root, "1.16.1", true)

	ch, cleanup, err := Watch(context.Background(), root, "server.jar")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer func() { _ = cleanup() }()

	select {
	case versions := <-ch:
		if len(versions) != 1 || versions[0].ID != "1.16.1" {
			t.Fatalf("unexpected initial snapshot: %+v", versions)
		}
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot")
	}
}

func TestWatchPicksUpNewTemplate(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, root, "1.15.2", true)

	ch, cleanup, err := Watch(context.Background(), root, "server.jar")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer func() { _ = cleanup() }()

	<-ch // initial

	writeTemplate(t, root, "1.16.1", true)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case versions, ok := <-ch:
			if !ok {
				t.Fatal("channel closed before update")
			}
			if len(versions) == 2 {
				return
			}
		case <-deadline:
			t.Fatal("new template never observed")
		}
	}
}

func TestWatchCleanupClosesChannel(t *testing.T) {
	root := t.TempDir()
	ch, cleanup, err := Watch(context.Background(), root, "server.jar")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	<-ch // drain initial (empty) snapshot
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	select {
	case _, ok := <-ch:
		if ok {
			// a late snapshot may race the close; the next receive must close
			if _, ok := <-ch; ok {
				t.Fatal("channel not closed after cleanup")
			}
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cleanup")
	}
}

func TestWatchMissingDir(t *testing.T) {
	if _, _, err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope"), "server.jar"); err == nil {
		t.Fatal("expected error for missing dir")
	}
}

func TestWatchIgnoresJarlessDirs(t *testing.T) {
	root := t.TempDir()
	ch, cleanup, err := Watch(context.Background(), root, "server.jar")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer func() { _ = cleanup() }()
	<-ch

	if err := os.MkdirAll(filepath.Join(root, "downloading"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// the rescan runs but the snapshot stays empty; nothing to assert beyond
	// the watcher not wedging
	select {
	case versions := <-ch:
		if len(versions) != 0 {
			t.Fatalf("unexpected versions: %+v", versions)
		}
	case <-time.After(2 * time.Second):
	}
}
