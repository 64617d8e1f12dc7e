package title

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestLookup(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head>
			<meta property="og:title" content="Artist - Song Name">
			<title>Artist - Song Name - YouTube</title>
		</head><body></body></html>`))
	}))
	defer srv.Close()

	got, err := Lookup(context.Background(), srv.Client(), srv.URL+"/watch?v=abc")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got != "Artist - Song Name" {
		t.Errorf("Lookup() = %q, want og:title content", got)
	}
}

func TestLookupRejectsNonHTTPS(t *testing.T) {
	if _, err := Lookup(context.Background(), http.DefaultClient, "http://example.com/watch"); err == nil {
		t.Error("Lookup() accepted plain http URL")
	}
}

func TestLookupUpstreamError(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := Lookup(context.Background(), srv.Client(), srv.URL); err == nil {
		t.Error("Lookup() succeeded on 403 response")
	}
}

func TestFromDocument(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"og title preferred",
			`<head><meta property="og:title" content="OG Wins"><title>Page Title</title></head>`,
			"OG Wins",
		},
		{
			"title element fallback",
			`<head><title>Some Song - YouTube</title></head>`,
			"Some Song",
		},
		{
			"empty og falls through",
			`<head><meta property="og:title" content=""><title>Fallback</title></head>`,
			"Fallback",
		},
		{
			"sanitized",
			`<head><meta property="og:title" content="A/B: C"></head>`,
			"A-B- C",
		},
		{
			"nothing",
			`<head></head>`,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tt.html))
			if err != nil {
				t.Fatalf("parsing fixture: %v", err)
			}
			if got := fromDocument(doc); got != tt.want {
				t.Errorf("fromDocument() = %q, want %q", got, tt.want)
			}
		})
	}
}
