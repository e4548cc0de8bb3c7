package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"empiremap/api/model"
	"empiremap/api/thirdpart"
)

func TestFetchEmpireDetailsUsesCache(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/empires/840001" {
			atomic.AddInt64(&hits, 1)
			fmt.Fprint(w, `{"empire": {"entityId": 840001, "name": "Cached Empire"}}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()
	client := thirdpart.NewBitJitaClient(server.URL, "EmpireMap-test/1.0", thirdpart.NewRateLimiter(60000, 1000))

	owner := model.OwnerKey{ID: 840001, Name: "Cached Empire"}
	chunkmap := make(model.ChunkMap)
	chunkmap.Add(model.ChunkCoord{X: 0, Y: 0}, owner)

	first := FetchEmpireDetails(context.Background(), client, chunkmap, 0)
	if len(first) != 1 || first[840001].Name != "Cached Empire" {
		t.Fatalf("unexpected details: %+v", first)
	}
	second := FetchEmpireDetails(context.Background(), client, chunkmap, 0)
	if len(second) != 1 {
		t.Fatalf("unexpected details on second run: %+v", second)
	}
	if atomic.LoadInt64(&hits) != 1 {
		t.Errorf("expected 1 upstream hit thanks to cache, got %d", hits)
	}
}

func TestFetchEmpireDetailsSoftFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()
	client := thirdpart.NewBitJitaClient(server.URL, "EmpireMap-test/1.0", thirdpart.NewRateLimiter(60000, 1000))

	owner := model.OwnerKey{ID: 840002, Name: "Gone"}
	chunkmap := make(model.ChunkMap)
	chunkmap.Add(model.ChunkCoord{X: 0, Y: 0}, owner)

	details := FetchEmpireDetails(context.Background(), client, chunkmap, 0)
	if len(details) != 0 {
		t.Errorf("expected no details for failing empire, got %d", len(details))
	}
}

func TestPrefetchClaimsCoversCapitals(t *testing.T) {
	var pageHits, singleHits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/claims" && r.URL.Query().Get("page") == "1":
			atomic.AddInt64(&pageHits, 1)
			fmt.Fprint(w, `{"claims": [{"entityId": 850001, "name": "Big Claim", "tier": 6}]}`)
		case r.URL.Path == "/api/claims":
			atomic.AddInt64(&pageHits, 1)
			fmt.Fprint(w, `{"claims": []}`)
		case r.URL.Path == "/api/claims/850002":
			atomic.AddInt64(&singleHits, 1)
			fmt.Fprint(w, `{"claim": {"entityId": 850002, "name": "Small Claim", "tier": 2}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()
	client := thirdpart.NewBitJitaClient(server.URL, "EmpireMap-test/1.0", thirdpart.NewRateLimiter(60000, 1000))

	details := map[int64]model.EmpireDetail{
		1: {EntityID: 1, CapitalClaimID: 850001}, // 预取页已覆盖
		2: {EntityID: 2, CapitalClaimID: 850002}, // 需要单独补拉
	}
	claims := PrefetchClaims(context.Background(), client, details, 0)

	if pageHits != claimPrefetchPages {
		t.Errorf("expected %d prefetch pages, got %d", claimPrefetchPages, pageHits)
	}
	if singleHits != 1 {
		t.Errorf("expected 1 individual claim fetch, got %d", singleHits)
	}
	if len(claims) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(claims))
	}
	if claims[850001].Name != "Big Claim" || claims[850002].Name != "Small Claim" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}
