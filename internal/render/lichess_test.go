package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestRenderQueryParams(t *testing.T) {
	const fen = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"

	var gotFEN, gotSize string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFEN = r.URL.Query().Get("fen")
		gotSize = r.URL.Query().Get("size")
		_, _ = w.Write([]byte("GIF89a"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 8)
	body, err := client.Render(context.Background(), fen)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(body) != "GIF89a" {
		t.Fatalf("unexpected body %q", body)
	}
	if gotFEN != fen {
		t.Fatalf("fen param = %q, want %q", gotFEN, fen)
	}
	if gotSize != "8" {
		t.Fatalf("size param = %q, want 8", gotSize)
	}
}

func TestRenderEmptyFEN(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 8)
	if _, err := client.Render(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty fen")
	}
}

func TestRenderServerErrorNoRetryOn4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad fen", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 8, WithRetry(3))
	_, err := client.Render(context.Background(), "bogus")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "status=400") {
		t.Fatalf("error missing status: %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("4xx retried %d times", n)
	}
}

func TestRenderRetriesOn5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 8, WithRetry(3), WithTimeout(5*time.Second))
	body, err := client.Render(context.Background(), "8/8/8/8/8/8/8/8 w - - 0 1")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(body) != "ok" {
		t.Fatalf("unexpected body %q", body)
	}
	if n := calls.Load(); n != 3 {
		t.Fatalf("expected 3 calls, got %d", n)
	}
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/file/voice.oga" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("OggS"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 8)
	body, err := client.Download(context.Background(), srv.URL+"/file/voice.oga")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(body) != "OggS" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 256); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
	long := strings.Repeat("x", 300)
	got := truncate(long, 256)
	if len(got) != 259 || !strings.HasSuffix(got, "...") {
		t.Fatalf("truncate length = %d", len(got))
	}
}
