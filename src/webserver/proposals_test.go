package webserver

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voteverse/vote-gateway/src/data"
)

func proposalFixture(t *testing.T) []fixtureSpec {
	now := time.Now()
	return []fixtureSpec{
		{"1", "Treasury refill", "Economics", now.Add(-10 * 24 * time.Hour), 3, 1}, // ended
		{"2", "Upgrade runtime", "Technical", now.Add(-2 * 24 * time.Hour), 1, 1},  // active
		{"3", "Grant program", "Funding", now.Add(-24 * time.Hour), 5, 2},          // active
	}
}

type fixtureSpec struct {
	id, title, category string
	created             time.Time
	yes, no             int
}

func fixtureJSON(specs []fixtureSpec) string {
	out := "["
	for i, s := range specs {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"id":%q,"title":%q,"category":%q,"created_at":%d,"duration_days":7,"yes_votes":%d,"no_votes":%d}`,
			s.id, s.title, s.category, s.created.Unix(), s.yes, s.no)
	}
	return out + "]"
}

func newProposalsRouter(t *testing.T, f *fakeCanister) (*gin.Engine, *data.Source) {
	t.Helper()
	src := newTestSource(f)
	h := NewProposals(src, f, 10)
	r := gin.New()
	r.GET("/v1/proposals", h.List)
	r.GET("/v1/proposals/:id", h.Detail)
	r.POST("/v1/proposals", JWTMiddleware(testSecret), h.Create)
	return r, src
}

func listItems(t *testing.T, w map[string]any) []map[string]any {
	t.Helper()
	raw, ok := w["items"].([]any)
	if !ok {
		t.Fatalf("no items in response: %v", w)
	}
	items := make([]map[string]any, len(raw))
	for i, it := range raw {
		items[i] = it.(map[string]any)
	}
	return items
}

func TestListDefaultsToNewestFirst(t *testing.T) {
	f := &fakeCanister{raws: rawFixture(t, fixtureJSON(proposalFixture(t)))}
	r, _ := newProposalsRouter(t, f)

	w := doJSON(t, r, http.MethodGet, "/v1/proposals", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	items := listItems(t, body)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0]["id"] != "3" || items[2]["id"] != "1" {
		t.Fatalf("wrong order: %v, %v", items[0]["id"], items[2]["id"])
	}
	if items[0]["status"] != "active" || items[2]["status"] != "ended" {
		t.Fatalf("derived status wrong: %v / %v", items[0]["status"], items[2]["status"])
	}
	if items[0]["slug"] != "grant-program" {
		t.Fatalf("slug missing: %v", items[0]["slug"])
	}

	pg := body["pagination"].(map[string]any)
	if pg["totalItems"].(float64) != 3 || pg["startIndex"].(float64) != 1 || pg["endIndex"].(float64) != 3 {
		t.Fatalf("bad pagination block: %v", pg)
	}

	facets := body["facets"].(map[string]any)
	cats := facets["categories"].(map[string]any)
	if cats["All"].(float64) != 3 || cats["Technical"].(float64) != 1 {
		t.Fatalf("bad facets: %v", cats)
	}
}

func TestListFilters(t *testing.T) {
	f := &fakeCanister{raws: rawFixture(t, fixtureJSON(proposalFixture(t)))}
	r, _ := newProposalsRouter(t, f)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"category", "?category=Technical", []string{"2"}},
		{"status ended", "?status=Ended", []string{"1"}},
		{"search", "?q=grant", []string{"3"}},
		{"sort most votes", "?sort=most_votes", []string{"3", "1", "2"}},
		{"no results", "?q=nonexistent", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodGet, "/v1/proposals"+tt.query, "", nil)
			if w.Code != http.StatusOK {
				t.Fatalf("list: %d %s", w.Code, w.Body.String())
			}
			items := listItems(t, decodeBody(t, w))
			if len(items) != len(tt.want) {
				t.Fatalf("expected %d items, got %d", len(tt.want), len(items))
			}
			for i, id := range tt.want {
				if items[i]["id"] != id {
					t.Fatalf("position %d: expected %s, got %v", i, id, items[i]["id"])
				}
			}
		})
	}
}

func TestListPaginatesAndClamps(t *testing.T) {
	specs := []fixtureSpec{}
	now := time.Now()
	for i := 1; i <= 5; i++ {
		specs = append(specs, fixtureSpec{
			id: fmt.Sprintf("%d", i), title: fmt.Sprintf("P%d", i), category: "General",
			created: now.Add(-time.Duration(i) * time.Hour),
		})
	}
	f := &fakeCanister{raws: rawFixture(t, fixtureJSON(specs))}
	r, _ := newProposalsRouter(t, f)

	w := doJSON(t, r, http.MethodGet, "/v1/proposals?page=2&pageSize=2", "", nil)
	body := decodeBody(t, w)
	items := listItems(t, body)
	if len(items) != 2 || items[0]["id"] != "3" || items[1]["id"] != "4" {
		t.Fatalf("wrong page slice: %v", items)
	}

	// requesting a page past the end clamps to the last page
	w = doJSON(t, r, http.MethodGet, "/v1/proposals?page=99&pageSize=2", "", nil)
	pg := decodeBody(t, w)["pagination"].(map[string]any)
	if pg["currentPage"].(float64) != 3 || pg["totalPages"].(float64) != 3 {
		t.Fatalf("clamp failed: %v", pg)
	}
}

func TestListETag(t *testing.T) {
	f := &fakeCanister{raws: rawFixture(t, fixtureJSON(proposalFixture(t)))}
	r, _ := newProposalsRouter(t, f)

	w := doJSON(t, r, http.MethodGet, "/v1/proposals", "", nil)
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("no ETag on list response")
	}

	w = doJSON(t, r, http.MethodGet, "/v1/proposals", "", map[string]string{"If-None-Match": etag})
	if w.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", w.Code)
	}

	// different criteria, different fingerprint
	w = doJSON(t, r, http.MethodGet, "/v1/proposals?category=Technical", "", map[string]string{"If-None-Match": etag})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for changed criteria, got %d", w.Code)
	}
}

func TestListBackendFailure(t *testing.T) {
	f := &fakeCanister{fetchErr: errors.New("canister unreachable")}
	r, _ := newProposalsRouter(t, f)

	w := doJSON(t, r, http.MethodGet, "/v1/proposals", "", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 with no snapshot, got %d", w.Code)
	}
}

func TestListServesStaleSnapshotOnFailure(t *testing.T) {
	f := &fakeCanister{raws: rawFixture(t, fixtureJSON(proposalFixture(t)))}
	r, src := newProposalsRouter(t, f)

	if w := doJSON(t, r, http.MethodGet, "/v1/proposals", "", nil); w.Code != http.StatusOK {
		t.Fatalf("warm-up: %d", w.Code)
	}

	f.mu.Lock()
	f.fetchErr = errors.New("canister unreachable")
	f.mu.Unlock()
	src.Invalidate()

	w := doJSON(t, r, http.MethodGet, "/v1/proposals", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected stale 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["stale"] != true {
		t.Fatal("stale flag not set")
	}
	if len(listItems(t, body)) != 3 {
		t.Fatal("prior list lost on backend failure")
	}
}

func TestDetail(t *testing.T) {
	f := &fakeCanister{raws: rawFixture(t, fixtureJSON(proposalFixture(t)))}
	r, _ := newProposalsRouter(t, f)

	w := doJSON(t, r, http.MethodGet, "/v1/proposals/2", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("detail: %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["title"] != "Upgrade runtime" || body["status"] != "active" {
		t.Fatalf("wrong detail: %v", body)
	}
	cd := body["countdown"].(map[string]any)
	if cd["isExpired"] != false {
		t.Fatalf("countdown expired for active proposal: %v", cd)
	}

	w = doJSON(t, r, http.MethodGet, "/v1/proposals/999", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCreateRequiresAuthAndValidates(t *testing.T) {
	f := &fakeCanister{addedID: "9", raws: rawFixture(t, "[]")}
	r, _ := newProposalsRouter(t, f)

	w := doJSON(t, r, http.MethodPost, "/v1/proposals", `{"title":"T","description":"D"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/v1/proposals", `{"description":"D"}`, authHeader(t, "aaaaa-aa"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing title, got %d", w.Code)
	}
}

func TestCreateSubmitsSanitizedProposal(t *testing.T) {
	f := &fakeCanister{addedID: "9", raws: rawFixture(t, "[]")}
	r, _ := newProposalsRouter(t, f)

	body := `{"title":"Fund <script>alert(1)</script> nodes","description":"Plain <b>bold</b> text"}`
	w := doJSON(t, r, http.MethodPost, "/v1/proposals", body, authHeader(t, "aaaaa-aa"))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["id"] != "9" {
		t.Fatalf("id not returned: %s", w.Body.String())
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.added) != 1 {
		t.Fatalf("expected one submission, got %d", len(f.added))
	}
	np := f.added[0]
	if np.Author != "aaaaa-aa" {
		t.Fatalf("author should be the session principal, got %q", np.Author)
	}
	if np.DurationDays != 7 {
		t.Fatalf("missing duration should default to 7, got %d", np.DurationDays)
	}
	if np.Title != "Fund  nodes" {
		t.Fatalf("title not sanitized: %q", np.Title)
	}
	if np.Description != "Plain <b>bold</b> text" {
		t.Fatalf("UGC policy should keep simple markup: %q", np.Description)
	}
}

func TestCreateInvalidatesSource(t *testing.T) {
	f := &fakeCanister{addedID: "9", raws: rawFixture(t, "[]")}
	r, _ := newProposalsRouter(t, f)

	doJSON(t, r, http.MethodGet, "/v1/proposals", "", nil)
	doJSON(t, r, http.MethodPost, "/v1/proposals", `{"title":"T","description":"D"}`, authHeader(t, "aaaaa-aa"))
	doJSON(t, r, http.MethodGet, "/v1/proposals", "", nil)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchCalls != 2 {
		t.Fatalf("expected refetch after create, got %d fetches", f.fetchCalls)
	}
}
