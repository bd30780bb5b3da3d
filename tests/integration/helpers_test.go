package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

// The suite runs against a live server started with ENVIRONMENT=development,
// so the X-Dev-User header stands in for signed Telegram init data. Each test
// fabricates fresh Telegram IDs to avoid collisions between runs.

func serverURL() string {
	if v := os.Getenv("YOURDAY_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

// uniqueTelegramID generates a fresh Telegram user ID for test isolation.
func uniqueTelegramID() int64 {
	return time.Now().UnixNano()%1_000_000_000 + int64(rand.Intn(100000))
}

// devUser builds the X-Dev-User header value for a fabricated identity.
func devUser(telegramID int64, name string) map[string]string {
	raw, _ := json.Marshal(map[string]any{"id": telegramID, "first_name": name})
	return map[string]string{"X-Dev-User": string(raw)}
}

// skipIfNotRunning performs a quick health check against the server.
// If it is unreachable, the test is skipped (not failed).
func skipIfNotRunning(t *testing.T) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(serverURL() + "/health/live")
	if err != nil {
		t.Skipf("server not reachable (not running?): %v", err)
	}
	resp.Body.Close()
}

// doJSON performs a JSON HTTP request with custom headers and returns the
// status code and decoded body.
func doJSON(t *testing.T, method, path string, body any, headers map[string]string) (int, map[string]any) {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshalling request body failed: %v", err)
		}
		bodyReader = bytes.NewReader(jsonBytes)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequest(method, serverURL()+path, bodyReader)
	if err != nil {
		t.Fatalf("creating %s request for %s failed: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, decodeBody(t, resp.Body)
}

// decodeBody reads the response body and attempts to decode it as JSON.
// If the body is empty or not JSON, it returns an empty map.
func decodeBody(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("reading response body failed: %v", err)
	}
	if len(raw) == 0 {
		return map[string]any{}
	}
	var result map[string]any
	if err := json.Unmarshal(raw, &result); err != nil {
		return map[string]any{"raw": string(raw)}
	}
	return result
}

// requireStatus asserts that the HTTP status code matches the expected value.
func requireStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Fatalf("expected status %d, got %d", want, got)
	}
}

// extractField extracts a value from a nested map using a dot-separated path.
func extractField(data map[string]any, path string) any {
	parts := strings.Split(path, ".")
	var current any = data
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[part]
		if !ok {
			return nil
		}
	}
	return current
}

// extractString is a convenience wrapper around extractField for strings.
func extractString(t *testing.T, data map[string]any, path string) string {
	t.Helper()
	val := extractField(data, path)
	if val == nil {
		t.Fatalf("expected string at path %q, got nil", path)
	}
	s, ok := val.(string)
	if !ok {
		t.Fatalf("expected string at path %q, got %T: %v", path, val, val)
	}
	return s
}

// extractID extracts a numeric ID from the decoded JSON and formats it for
// use in a URL path.
func extractID(t *testing.T, data map[string]any, path string) string {
	t.Helper()
	val := extractField(data, path)
	f, ok := val.(float64)
	if !ok {
		t.Fatalf("expected numeric id at path %q, got %T: %v", path, val, val)
	}
	return strconv.FormatInt(int64(f), 10)
}

func today() string {
	return time.Now().Format("2006-01-02")
}
