package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	e := NoopExportHooks{}
	e.OnExportStart(ctx, "html", 3)
	e.OnExportComplete(ctx, "html", 1024, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "artifact")
	c.OnCacheMiss(ctx, "preview")
	c.OnCacheSet(ctx, "artifact", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "localhost", "/api/v1/projects")
	h.OnResponse(ctx, "GET", "localhost", "/api/v1/projects", 200, time.Second)
	h.OnError(ctx, "GET", "localhost", "/api/v1/projects", nil)

	NoopSyncHooks{}.OnSave(ctx, "p1", 2, time.Second, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Export().(NoopExportHooks); !ok {
		t.Error("Export() should return NoopExportHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}
	if _, ok := Sync().(NoopSyncHooks); !ok {
		t.Error("Sync() should return NoopSyncHooks by default")
	}

	custom := NewLogHooks(nil)
	SetExportHooks(custom)
	SetCacheHooks(custom)
	SetHTTPHooks(custom)
	SetSyncHooks(custom)
	if Export() != custom || Cache() != custom || HTTP() != custom || Sync() != custom {
		t.Error("Set*Hooks should register custom hooks")
	}

	Reset()
	if _, ok := Export().(NoopExportHooks); !ok {
		t.Error("Reset() should restore NoopExportHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testExportHooks{}
	SetExportHooks(custom)
	SetExportHooks(nil)

	if Export() != custom {
		t.Error("SetExportHooks(nil) should be ignored")
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(logger)
	ctx := context.Background()

	h.OnExportComplete(ctx, "css", 12, time.Millisecond, nil)
	h.OnExportComplete(ctx, "pdf", 0, 0, errors.New("unsupported"))
	h.OnSave(ctx, "p1", 3, time.Millisecond, errors.New("offline"))

	out := buf.String()
	for _, want := range []string{"export complete", "export failed", "save failed", "p1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

type testExportHooks struct{ NoopExportHooks }
