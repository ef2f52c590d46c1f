package main

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/davenowercise/nowercise-app-sub004/internal/shared/server/respond"
)

func TestErrorResponseUsesRouterEnvelope(t *testing.T) {
	resp := errorResponse("bootstrap failed")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	var body respond.ErrorResponse
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "internal_error" || body.Error.Message != "bootstrap failed" {
		t.Fatalf("unexpected body: %+v", body)
	}
}
