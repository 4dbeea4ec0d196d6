package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(fs *fakeStore) *HTTPServer {
	return NewHTTPServer(newTestService(fs), "*")
}

func doRequest(t *testing.T, server *HTTPServer, method, path, bearer, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	return payload
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(seededStore())
	rr := doRequest(t, server, http.MethodGet, "/api/health", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if payload := decodeResponse(t, rr); payload["ok"] != true {
		t.Errorf("ok = %v", payload["ok"])
	}
}

func TestReadyEndpointReportsDatabase(t *testing.T) {
	server := newTestServer(seededStore())
	rr := doRequest(t, server, http.MethodGet, "/api/ready", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if payload := decodeResponse(t, rr); payload["status"] != "ready" {
		t.Errorf("status = %v", payload["status"])
	}
}

func TestOptionsPreflightSetsCORS(t *testing.T) {
	server := newTestServer(seededStore())
	rr := doRequest(t, server, http.MethodOptions, "/api/posts/1", "", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS origin header")
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing request id header")
	}
}

func TestGetPostRequiresReadableDepth(t *testing.T) {
	server := newTestServer(seededStore())

	rr := doRequest(t, server, http.MethodGet, "/api/posts/1", "", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("anonymous status = %d, want 404", rr.Code)
	}

	rr = doRequest(t, server, http.MethodGet, "/api/posts/1", "7", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("owner status = %d: %s", rr.Code, rr.Body.String())
	}
	payload := decodeResponse(t, rr)
	if payload["title"] != "Probenplan" {
		t.Errorf("title = %v", payload["title"])
	}
	if payload["status"] != "draft" {
		t.Errorf("status = %v", payload["status"])
	}
	if payload["permissions"] == nil {
		t.Error("missing permissions block")
	}
}

func TestMalformedBearerTokenRejected(t *testing.T) {
	server := newTestServer(seededStore())
	rr := doRequest(t, server, http.MethodGet, "/api/posts/1", "not-a-user", "")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestTransitionEndpoint(t *testing.T) {
	server := newTestServer(seededStore())

	rr := doRequest(t, server, http.MethodPost, "/api/posts/1/status", "", `{"to":"draft_review"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", rr.Code)
	}

	rr = doRequest(t, server, http.MethodPost, "/api/posts/1/status", "7", `{"to":"draft_review"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("owner status = %d: %s", rr.Code, rr.Body.String())
	}
	payload := decodeResponse(t, rr)
	if payload["status"] != "draft_review" {
		t.Errorf("status = %v", payload["status"])
	}

	rr = doRequest(t, server, http.MethodPost, "/api/posts/1/status", "7", `{"to":""}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty target = %d, want 422", rr.Code)
	}

	rr = doRequest(t, server, http.MethodPost, "/api/posts/1/status", "7", `{"to":"vanished"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown state = %d, want 400", rr.Code)
	}
	if payload := decodeResponse(t, rr); payload["code"] != "UNKNOWN_STATE" {
		t.Errorf("code = %v", payload["code"])
	}
}

func TestTagsEndpoint(t *testing.T) {
	server := newTestServer(seededStore())

	rr := doRequest(t, server, http.MethodGet, "/api/posts/1/tags", "7", "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("missing family = %d, want 422", rr.Code)
	}

	rr = doRequest(t, server, http.MethodGet, "/api/posts/1/tags?family=dtags", "7", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get tags = %d: %s", rr.Code, rr.Body.String())
	}
	payload := decodeResponse(t, rr)
	if payload["family"] != "dtags" {
		t.Errorf("family = %v", payload["family"])
	}

	rr = doRequest(t, server, http.MethodPatch, "/api/posts/1/tags?family=dtags", "", `{"groups":{"spielform":3}}`)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("anonymous patch = %d, want 401", rr.Code)
	}

	rr = doRequest(t, server, http.MethodPatch, "/api/posts/1/tags?family=dtags", "7", `{"groups":{"spielform":2}}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("orphan subcategory = %d, want 422", rr.Code)
	}
	payload = decodeResponse(t, rr)
	if payload["code"] != "VALIDATION_ERROR" || payload["details"] == nil {
		t.Errorf("error payload = %v", payload)
	}

	rr = doRequest(t, server, http.MethodPatch, "/api/posts/1/tags?family=dtags", "7", `{"groups":{"spielform":3}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("valid patch = %d: %s", rr.Code, rr.Body.String())
	}
}

func TestTransitionSummaryEndpoint(t *testing.T) {
	server := newTestServer(seededStore())

	rr := doRequest(t, server, http.MethodGet, "/api/sysreg/transition-summary?from=demo&to=draft", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	payload := decodeResponse(t, rr)
	if payload["fromState"] == nil || payload["toState"] == nil {
		t.Errorf("payload = %v", payload)
	}

	rr = doRequest(t, server, http.MethodGet, "/api/sysreg/transition-summary?from=draft", "", "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("missing to = %d, want 422", rr.Code)
	}

	// Record-level review has no matrix row to summarize.
	rr = doRequest(t, server, http.MethodGet, "/api/sysreg/transition-summary?from=draft&to=draft_review", "", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("review target = %d, want 400", rr.Code)
	}
	if payload := decodeResponse(t, rr); payload["code"] != "UNKNOWN_STATE" {
		t.Errorf("code = %v", payload["code"])
	}
}

func TestStatusRegistryEndpoint(t *testing.T) {
	server := newTestServer(seededStore())
	rr := doRequest(t, server, http.MethodGet, "/api/sysreg/status", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	payload := decodeResponse(t, rr)
	if payload["states"] == nil || payload["roles"] == nil {
		t.Errorf("payload = %v", payload)
	}
}

func TestDescribeEndpoint(t *testing.T) {
	server := newTestServer(seededStore())

	rr := doRequest(t, server, http.MethodGet, "/api/sysreg/describe?value=32", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	payload := decodeResponse(t, rr)
	if payload["text"] == "" {
		t.Error("expected a rendering")
	}

	rr = doRequest(t, server, http.MethodGet, "/api/sysreg/describe?value=frog", "", "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad value = %d, want 422", rr.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	server := newTestServer(seededStore())
	rr := doRequest(t, server, http.MethodGet, "/api/nothing", "", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}
