package calfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jsvanda/infoboard/internal/domain/calendar"
)

func TestClient_FetchFeed(t *testing.T) {
	t.Parallel()

	const feed = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR\r\n"

	var gotAccept string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(feed))
	}))
	defer upstream.Close()

	client := NewClient(ClientConfig{})
	src := calendar.Source{Slug: "f1", URL: upstream.URL}

	got, err := client.FetchFeed(context.Background(), src)
	if err != nil {
		t.Fatalf("FetchFeed: %v", err)
	}
	if got != feed {
		t.Fatalf("feed text = %q, want raw upstream bytes", got)
	}
	if !strings.HasPrefix(gotAccept, "text/calendar") {
		t.Fatalf("Accept header = %q, want text/calendar preference", gotAccept)
	}
}

func TestClient_FetchFeedUpstreamError(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer upstream.Close()

	client := NewClient(ClientConfig{})
	src := calendar.Source{Slug: "holidays", URL: upstream.URL}

	if _, err := client.FetchFeed(context.Background(), src); err == nil {
		t.Fatal("expected error for 404 upstream")
	}
}
