package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sketchroom/internal/config"
	"sketchroom/internal/game"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.SessionSecret = "test-secret"
	return cfg
}

func testOptions() game.Options {
	opts := game.DefaultOptions()
	opts.ReconnectGrace = 100 * time.Millisecond
	opts.EmptyRoomTTL = 200 * time.Millisecond
	return opts
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(game.NewRegistry(testOptions()), testConfig())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal request payload: %v", err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return body
}

func assertString(t *testing.T, value any) string {
	t.Helper()
	s, ok := value.(string)
	if !ok || s == "" {
		t.Fatalf("expected non-empty string, got %v", value)
	}
	return s
}

func createRoom(t *testing.T, ts *httptest.Server, visibility string) (roomID, playerID, token string) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms", map[string]any{
		"name":       "Test Room",
		"visibility": visibility,
		"host_name":  "Host",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	return assertString(t, body["room_id"]), assertString(t, body["player_id"]), assertString(t, body["token"])
}
