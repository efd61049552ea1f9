package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestProbe_Success(t *testing.T) {
	var gotMethod, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotUA = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "test-agent", 1<<20, nil)
	if err := fetcher.Probe(context.Background(), server.URL); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotMethod != http.MethodHead {
		t.Errorf("Expected HEAD, got %s", gotMethod)
	}
	if gotUA != "test-agent" {
		t.Errorf("Expected user agent to be sent, got %q", gotUA)
	}
}

func TestProbe_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "test-agent", 1<<20, nil)
	err := fetcher.Probe(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for 404, got nil")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected *StatusError, got %T", err)
	}
	if statusErr.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", statusErr.Code)
	}
}

func TestProbe_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	fetcher := NewFetcher(20*time.Millisecond, "test-agent", 1<<20, nil)
	if err := fetcher.Probe(context.Background(), server.URL); err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
}

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, "<html><body>OK</body></html>")
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "test-agent", 1<<20, nil)
	result, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.HTML != "<html><body>OK</body></html>" {
		t.Errorf("Unexpected HTML: %s", result.HTML)
	}
	if result.ContentType != "text/html" {
		t.Errorf("Unexpected content type: %s", result.ContentType)
	}
}

func TestFetch_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, strings.Repeat("x", 1000))
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "test-agent", 100, nil)
	result, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.HTML) != 100 {
		t.Errorf("Expected body capped at 100 bytes, got %d", len(result.HTML))
	}
}

func TestFetch_FollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "<html>moved</html>")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "test-agent", 1<<20, nil)
	result, err := fetcher.Fetch(context.Background(), server.URL+"/old")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.FinalURL != server.URL+"/new" {
		t.Errorf("Expected final URL to follow redirect, got %s", result.FinalURL)
	}
}

func TestFetch_TooManyRedirects(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "test-agent", 1<<20, nil)
	if _, err := fetcher.Fetch(context.Background(), server.URL+"/a"); err == nil {
		t.Fatal("Expected redirect loop to fail")
	}
}
