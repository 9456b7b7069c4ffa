package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func receive(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg := <-ch:
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
		return ""
	}
}

func expectNothing(t *testing.T, ch chan []byte) {
	t.Helper()
	select {
	case msg := <-ch:
		t.Fatalf("unexpected message %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

// publishAndWait publishes changes and returns once the loop has sent them.
func publishAndWait(t *testing.T, b *Broker, changes ...Change) {
	t.Helper()
	witness := b.Subscribe()
	defer b.Unsubscribe(witness)
	for _, c := range changes {
		b.PublishChange(c)
	}
	for range changes {
		receive(t, witness)
	}
}

func TestClientCount(t *testing.T) {
	b := NewBroker(0)
	defer b.Close()

	a := b.Subscribe()
	c := b.Subscribe()
	if n := b.ClientCount(); n != 2 {
		t.Fatalf("ClientCount = %d, want 2", n)
	}
	b.Unsubscribe(a)
	b.Unsubscribe(a)
	if n := b.ClientCount(); n != 1 {
		t.Fatalf("ClientCount after unsubscribe = %d, want 1", n)
	}
	b.Unsubscribe(c)
}

func TestPublishChangeFrames(t *testing.T) {
	b := NewBroker(0)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishChange(Change{Checksum: "abc", Total: 3})
	want := "id: 1\nevent: notes.changed\ndata: {\"removed\":false,\"checksum\":\"abc\",\"total\":3}\n\n"
	if got := receive(t, ch); got != want {
		t.Errorf("changed frame = %q, want %q", got, want)
	}

	b.PublishChange(Change{Removed: true})
	want = "id: 2\nevent: notes.removed\ndata: {\"removed\":true,\"total\":0}\n\n"
	if got := receive(t, ch); got != want {
		t.Errorf("removed frame = %q, want %q", got, want)
	}
}

func TestResumeReplaysLatestChange(t *testing.T) {
	b := NewBroker(0)
	defer b.Close()

	fresh := b.Resume(0)
	expectNothing(t, fresh)
	b.Unsubscribe(fresh)

	publishAndWait(t, b, Change{Checksum: "one", Total: 1}, Change{Checksum: "two", Total: 2})

	plain := b.Subscribe()
	defer b.Unsubscribe(plain)
	expectNothing(t, plain)

	late := b.Resume(0)
	defer b.Unsubscribe(late)
	got := receive(t, late)
	if !strings.HasPrefix(got, "id: 2\n") || !strings.Contains(got, `"checksum":"two"`) {
		t.Errorf("replayed %q, want the latest change", got)
	}
	expectNothing(t, late)

	current := b.Resume(2)
	defer b.Unsubscribe(current)
	expectNothing(t, current)
}

func TestKeepAlive(t *testing.T) {
	b := NewBroker(20 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	if msg := receive(t, ch); msg != ": keep-alive\n\n" {
		t.Errorf("got %q", msg)
	}
}

func serve(t *testing.T, b *Broker, lastEventID string, during func()) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	if lastEventID != "" {
		req.Header.Set("Last-Event-ID", lastEventID)
	}
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	during()
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	return w.Body.String()
}

func TestServeHTTP(t *testing.T) {
	b := NewBroker(0)
	defer b.Close()

	body := serve(t, b, "", func() {
		if n := b.ClientCount(); n != 1 {
			t.Errorf("ClientCount while streaming = %d, want 1", n)
		}
		b.PublishChange(Change{Checksum: "x", Total: 1})
	})

	if !strings.HasPrefix(body, "retry: 3000\n\n") {
		t.Errorf("body does not start with retry hint: %q", body)
	}
	if !strings.Contains(body, "event: notes.changed") {
		t.Errorf("handler output missing event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestServeHTTPResumesFromLastEventID(t *testing.T) {
	b := NewBroker(0)
	defer b.Close()
	publishAndWait(t, b, Change{Checksum: "a", Total: 1}, Change{Removed: true})

	missed := serve(t, b, "1", func() {})
	if !strings.Contains(missed, "id: 2\nevent: notes.removed") {
		t.Errorf("resume from 1 did not replay event 2: %q", missed)
	}

	upToDate := serve(t, b, "2", func() {})
	if strings.Contains(upToDate, "event:") {
		t.Errorf("resume from 2 replayed: %q", upToDate)
	}

	fromStart := serve(t, b, "0", func() {})
	if !strings.Contains(fromStart, "id: 2\n") {
		t.Errorf("resume from 0 did not replay event 2: %q", fromStart)
	}

	for _, header := range []string{"", "not-a-number"} {
		if body := serve(t, b, header, func() {}); strings.Contains(body, "event:") {
			t.Errorf("Last-Event-ID %q replayed: %q", header, body)
		}
	}
	if n := b.ClientCount(); n != 0 {
		t.Errorf("ClientCount after streams ended = %d, want 0", n)
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(0)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for i := 0; i < clientBuffer+10; i++ {
		b.PublishChange(Change{Total: i})
	}
	deadline := time.Now().Add(time.Second)
	for len(ch) < clientBuffer && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := len(ch); n != clientBuffer {
		t.Errorf("buffered %d frames, want %d", n, clientBuffer)
	}
}

func TestCloseStopsEverything(t *testing.T) {
	b := NewBroker(time.Second)
	ch := b.Subscribe()

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}
	if _, ok := <-b.Subscribe(); ok {
		t.Error("Subscribe after close returned an open channel")
	}
	b.PublishChange(Change{Removed: true})
	b.Close()
}
