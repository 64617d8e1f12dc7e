package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q, want application/json", got)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	body, err := GetJSON(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %s", body)
	}
}

func TestGetJSONRejectsNonOK(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := GetJSON(context.Background(), srv.Client(), srv.URL); err == nil {
		t.Error("GetJSON() succeeded on 502")
	}
}

func TestGetRejectsPlainHTTP(t *testing.T) {
	if _, err := Get(context.Background(), http.DefaultClient, "http://example.com/"); err == nil {
		t.Error("Get() accepted a plain http URL")
	}
}
