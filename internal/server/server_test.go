package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/pointlayer/pkg/cache"
)

const tripsCSV = `name,begintrip_lat,begintrip_lng,fare
A,37.70,-122.40,10
B,37.80,-122.30,20
C,37.75,-122.35,15
`

const tripsGeoJSON = `{"type":"FeatureCollection","features":[
{"type":"Feature","geometry":{"type":"Point","coordinates":[-122.4,37.7]},"properties":{"name":"A"}},
{"type":"Feature","geometry":{"type":"Point","coordinates":[-122.3,37.8]},"properties":{"name":"B"}}
]}`

type formatResult struct {
	Stats struct {
		RowsCold   bool `json:"rows_cold"`
		GlyphsCold bool `json:"glyphs_cold"`
		Retained   int  `json:"retained"`
	} `json:"stats"`
	Descriptor struct {
		Count        int    `json:"count"`
		CharacterSet string `json:"characterSet"`
	} `json:"descriptor"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(New(Options{Cache: fc}).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, contentType, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s = %d, want %d: %s", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, body)
	}
}

func createLayer(t *testing.T, ts *httptest.Server, contentType, body string) string {
	t.Helper()
	resp := do(t, http.MethodPost, ts.URL+"/v1/layers", contentType, body)
	expectStatus(t, resp, http.StatusCreated)
	var out createResponse
	decode(t, resp, &out)
	if _, err := uuid.Parse(out.ID); err != nil {
		t.Fatalf("id %q is not a uuid", out.ID)
	}
	return out.ID
}

func format(t *testing.T, ts *httptest.Server, id, body string) formatResult {
	t.Helper()
	resp := do(t, http.MethodPost, ts.URL+"/v1/layers/"+id+"/format", "application/json", body)
	expectStatus(t, resp, http.StatusOK)
	var out formatResult
	decode(t, resp, &out)
	return out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/healthz", "", "")
	expectStatus(t, resp, http.StatusOK)
	var out map[string]any
	decode(t, resp, &out)
	if out["status"] != "ok" {
		t.Errorf("status = %v, want ok", out["status"])
	}
}

func TestLayerLifecycle(t *testing.T) {
	ts := newTestServer(t)
	id := createLayer(t, ts, "application/toml", `
[columns]
lat = "begintrip_lat"
lng = "begintrip_lng"

[size]
field = "fare"
`)
	base := ts.URL + "/v1/layers/" + id

	var info layerResponse
	decode(t, do(t, http.MethodGet, base, "", ""), &info)
	if info.HasData || info.Formatted {
		t.Errorf("new layer = %+v, want no data", info)
	}

	// Formatting and rendering need data first.
	expectStatus(t, do(t, http.MethodPost, base+"/format", "", ""), http.StatusBadRequest)
	expectStatus(t, do(t, http.MethodGet, base+"/svg", "", ""), http.StatusBadRequest)

	expectStatus(t, do(t, http.MethodPut, base+"/data", "text/csv", tripsCSV), http.StatusOK)

	first := format(t, ts, id, "")
	if !first.Stats.RowsCold || first.Stats.Retained != 3 || first.Descriptor.Count != 3 {
		t.Errorf("first pass = %+v, want a cold pass over 3 rows", first)
	}

	second := format(t, ts, id, `{"hovered": 1}`)
	if second.Stats.RowsCold {
		t.Error("second pass over unchanged data should be warm")
	}

	resp := do(t, http.MethodGet, base+"/svg", "", "")
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := resp.Header.Get("X-Cache"); got != "MISS" {
		t.Errorf("first render X-Cache = %q, want MISS", got)
	}
	svg, _ := io.ReadAll(resp.Body)
	if n := strings.Count(string(svg), "<circle"); n != 4 {
		t.Errorf("circles = %d, want 4 (3 points + hover)", n)
	}

	resp = do(t, http.MethodGet, base+"/svg", "", "")
	expectStatus(t, resp, http.StatusOK)
	if got := resp.Header.Get("X-Cache"); got != "HIT" {
		t.Errorf("second render X-Cache = %q, want HIT", got)
	}

	// New data makes the next pass cold again.
	expectStatus(t, do(t, http.MethodPut, base+"/data", "text/csv", tripsCSV), http.StatusOK)
	if third := format(t, ts, id, ""); !third.Stats.RowsCold {
		t.Error("pass after a data upload should be cold")
	}

	decode(t, do(t, http.MethodGet, base, "", ""), &info)
	if !info.HasData || info.Rows != 3 || info.Config == nil || info.Config.Size.Field != "fare" {
		t.Errorf("layer = %+v", info)
	}

	expectStatus(t, do(t, http.MethodDelete, base, "", ""), http.StatusNoContent)
	expectStatus(t, do(t, http.MethodGet, base, "", ""), http.StatusNotFound)
	expectStatus(t, do(t, http.MethodDelete, base, "", ""), http.StatusNotFound)
}

func TestPutConfigKeepsRowsWarm(t *testing.T) {
	ts := newTestServer(t)
	id := createLayer(t, ts, "", "")
	base := ts.URL + "/v1/layers/" + id

	expectStatus(t, do(t, http.MethodPut, base+"/data", "text/csv", tripsCSV), http.StatusOK)
	format(t, ts, id, "")

	expectStatus(t, do(t, http.MethodPut, base+"/config", "application/json",
		`{"label": {"field": "name"}}`), http.StatusNoContent)

	got := format(t, ts, id, "")
	if got.Stats.RowsCold {
		t.Error("a label change should not rebuild the rows")
	}
	if !got.Stats.GlyphsCold {
		t.Error("a label change should rebuild the glyph set")
	}
	if got.Descriptor.CharacterSet != "ABC" {
		t.Errorf("characterSet = %q, want %q", got.Descriptor.CharacterSet, "ABC")
	}
}

func TestFilter(t *testing.T) {
	ts := newTestServer(t)
	id := createLayer(t, ts, "", "")
	expectStatus(t, do(t, http.MethodPut, ts.URL+"/v1/layers/"+id+"/data", "", tripsCSV), http.StatusOK)

	got := format(t, ts, id, `{"filter": [0, 2, 7]}`)
	if got.Stats.Retained != 2 {
		t.Errorf("retained = %d, want 2", got.Stats.Retained)
	}
}

func TestFilterChangeRebuildsRows(t *testing.T) {
	ts := newTestServer(t)
	id := createLayer(t, ts, "", "")
	base := ts.URL + "/v1/layers/" + id
	expectStatus(t, do(t, http.MethodPut, base+"/data", "", tripsCSV), http.StatusOK)

	if got := format(t, ts, id, `{"filter": [0, 1, 2]}`); got.Stats.Retained != 3 {
		t.Fatalf("retained = %d, want 3", got.Stats.Retained)
	}
	expectStatus(t, do(t, http.MethodGet, base+"/svg", "", ""), http.StatusOK)

	got := format(t, ts, id, `{"filter": [0]}`)
	if got.Stats.Retained != 1 {
		t.Errorf("retained = %d, want 1", got.Stats.Retained)
	}
	if !got.Stats.RowsCold {
		t.Error("a filter change should rebuild the rows")
	}

	resp := do(t, http.MethodGet, base+"/json", "", "")
	expectStatus(t, resp, http.StatusOK)
	var doc struct {
		Count int `json:"count"`
	}
	decode(t, resp, &doc)
	if doc.Count != 1 {
		t.Errorf("count = %d, want 1", doc.Count)
	}

	if got := format(t, ts, id, `{"filter": [0]}`); got.Stats.RowsCold {
		t.Error("repeating the same filter should keep the rows warm")
	}
	if got := format(t, ts, id, `{"filter": []}`); got.Stats.Retained != 0 {
		t.Errorf("empty filter: retained = %d, want 0", got.Stats.Retained)
	}
	if got := format(t, ts, id, `{}`); got.Stats.Retained != 3 {
		t.Errorf("no filter: retained = %d, want 3", got.Stats.Retained)
	}
}

func TestGeoJSONData(t *testing.T) {
	ts := newTestServer(t)
	id := createLayer(t, ts, "", "")
	base := ts.URL + "/v1/layers/" + id

	expectStatus(t, do(t, http.MethodPut, base+"/data", "application/geo+json", tripsGeoJSON), http.StatusOK)
	if got := format(t, ts, id, ""); got.Stats.Retained != 2 {
		t.Errorf("retained = %d, want 2", got.Stats.Retained)
	}

	resp := do(t, http.MethodGet, base+"/json", "", "")
	expectStatus(t, resp, http.StatusOK)
	var doc struct {
		Count int `json:"count"`
	}
	decode(t, resp, &doc)
	if doc.Count != 2 {
		t.Errorf("count = %d, want 2", doc.Count)
	}
}

func TestErrors(t *testing.T) {
	ts := newTestServer(t)
	id := createLayer(t, ts, "", "")
	base := ts.URL + "/v1/layers/" + id

	tests := []struct {
		name        string
		method      string
		url         string
		contentType string
		body        string
		want        int
	}{
		{"invalid id", http.MethodGet, ts.URL + "/v1/layers/not-a-uuid", "", "", http.StatusBadRequest},
		{"unknown id", http.MethodGet, ts.URL + "/v1/layers/" + uuid.NewString(), "", "", http.StatusNotFound},
		{"unknown config key", http.MethodPost, ts.URL + "/v1/layers", "", "[bogus]\nx = 1\n", http.StatusBadRequest},
		{"bad json config", http.MethodPost, ts.URL + "/v1/layers", "application/json", "{", http.StatusBadRequest},
		{"no position columns", http.MethodPut, base + "/data", "text/csv", "name,fare\nA,1\n", http.StatusBadRequest},
		{"unsupported data format", http.MethodPut, base + "/data?format=xlsx", "", "x", http.StatusUnsupportedMediaType},
		{"unknown format field", http.MethodPost, base + "/format", "application/json", `{"zoomz": 1}`, http.StatusBadRequest},
		{"unknown render format", http.MethodGet, base + "/gif", "", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, tt.url, tt.contentType, tt.body)
			if resp.StatusCode != tt.want {
				body, _ := io.ReadAll(resp.Body)
				t.Errorf("status = %d, want %d: %s", resp.StatusCode, tt.want, body)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(nil)
	id := r.Create(nil)
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
	inst, err := r.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	key := inst.keyer.ArtifactKey("h", cache.ArtifactKeyOpts{Format: "svg"})
	if !strings.HasPrefix(key, "layer:"+id+":") {
		t.Errorf("artifact key %q is not scoped to the layer", key)
	}
	if err := r.Delete(id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := r.Get(id); err == nil {
		t.Error("Get after Delete should fail")
	}
}
