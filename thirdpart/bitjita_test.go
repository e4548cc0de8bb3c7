package thirdpart

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(handler http.Handler) (*BitJitaClient, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewBitJitaClient(server.URL, "EmpireMap-test/1.0", NewRateLimiter(60000, 100))
	return client, server
}

func TestFetchEmpiresEnvelope(t *testing.T) {
	client, server := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/empires" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("User-Agent") != "EmpireMap-test/1.0" {
			t.Errorf("unexpected user agent: %s", r.Header.Get("User-Agent"))
		}
		fmt.Fprint(w, `{"empires": [{"entityId": 1, "name": "A"}, {"entityId": "2", "name": "B"}]}`)
	}))
	defer server.Close()

	empires := client.FetchEmpires(context.Background())
	if len(empires) != 2 {
		t.Fatalf("expected 2 empires, got %d", len(empires))
	}
	if empires[1].EntityID.Int64() != 2 {
		t.Errorf("string entityId not normalized: %d", empires[1].EntityID.Int64())
	}
}

func TestFetchTowersBareArray(t *testing.T) {
	client, server := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/empires/7/towers" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		fmt.Fprint(w, `[{"active": true, "locationX": 100, "locationZ": 196}, {"locationX": 5000, "locationZ": 5000}]`)
	}))
	defer server.Close()

	towers := client.FetchTowers(context.Background(), 7)
	if len(towers) != 2 {
		t.Fatalf("expected 2 towers, got %d", len(towers))
	}
	if !towers[1].IsActive() {
		t.Error("tower without active flag should default active")
	}
}

func TestFetchEmpireEnvelopeAndBare(t *testing.T) {
	bodies := map[string]string{
		"/api/empires/1": `{"empire": {"entityId": 1, "name": "Enveloped", "capitalClaimId": "55"}}`,
		"/api/empires/2": `{"entityId": 2, "name": "Bare"}`,
	}
	client, server := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, bodies[r.URL.Path])
	}))
	defer server.Close()

	d1, ok := client.FetchEmpire(context.Background(), 1)
	if !ok || d1.Name != "Enveloped" || d1.CapitalClaimID.Int64() != 55 {
		t.Errorf("enveloped detail decode failed: %+v ok=%v", d1, ok)
	}
	d2, ok := client.FetchEmpire(context.Background(), 2)
	if !ok || d2.Name != "Bare" {
		t.Errorf("bare detail decode failed: %+v ok=%v", d2, ok)
	}
}

func TestFetchClaimsPageFormats(t *testing.T) {
	pages := map[string]string{
		"1": `{"claims": [{"entityId": 10, "name": "X", "tier": 6}]}`,
		"2": `[{"entityId": 11, "name": "Y"}]`,
	}
	client, server := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pages[r.URL.Query().Get("page")])
	}))
	defer server.Close()

	p1 := client.FetchClaimsPage(context.Background(), "tier", 100, 1)
	if len(p1) != 1 || p1[0].Tier == nil || *p1[0].Tier != 6 {
		t.Errorf("enveloped claims page decode failed: %+v", p1)
	}
	p2 := client.FetchClaimsPage(context.Background(), "tier", 100, 2)
	if len(p2) != 1 || p2[0].EntityID.Int64() != 11 {
		t.Errorf("bare claims page decode failed: %+v", p2)
	}
}

func TestRetryOn429ThenSuccess(t *testing.T) {
	attempts := 0
	client, server := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"empires": [{"entityId": 1, "name": "A"}]}`)
	}))
	defer server.Close()

	empires := client.FetchEmpires(context.Background())
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
	if len(empires) != 1 {
		t.Errorf("expected success after retry, got %d empires", len(empires))
	}
}

func TestRetryOn5xxThenSuccess(t *testing.T) {
	attempts := 0
	client, server := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	client.FetchTowers(context.Background(), 1)
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestNoRetryOn404(t *testing.T) {
	attempts := 0
	client, server := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	towers := client.FetchTowers(context.Background(), 99)
	if attempts != 1 {
		t.Errorf("404 should not be retried, got %d attempts", attempts)
	}
	if len(towers) != 0 {
		t.Errorf("expected empty towers on 404, got %d", len(towers))
	}
}

func TestPersistent5xxGivesEmptyResult(t *testing.T) {
	attempts := 0
	client, server := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	empires := client.FetchEmpires(context.Background())
	if attempts != maxRetries {
		t.Errorf("expected %d attempts, got %d", maxRetries, attempts)
	}
	if len(empires) != 0 {
		t.Errorf("expected soft failure with empty result, got %d empires", len(empires))
	}
}

func TestDecodeEmpireDetailRejectsEmpty(t *testing.T) {
	if _, ok := decodeEmpireDetail([]byte(`{}`)); ok {
		t.Error("empty object should not produce a valid detail")
	}
	if _, ok := decodeClaim([]byte(`{}`)); ok {
		t.Error("empty object should not produce a valid claim")
	}
}
