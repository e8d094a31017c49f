//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestLivez(t *testing.T) {
	body := expect[healthResponse](t, http.MethodGet, "/livez", nil, http.StatusOK)
	if body.Status != "ok" {
		t.Fatalf("expected status ok, got %q", body.Status)
	}
}

func TestReadyz(t *testing.T) {
	body := expect[healthResponse](t, http.MethodGet, "/readyz", nil, http.StatusOK)
	if body.Status != "ok" {
		t.Fatalf("expected status ok, got %q (%v)", body.Status, body.Checks)
	}
}
