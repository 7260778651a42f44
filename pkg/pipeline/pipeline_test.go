package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/pointlayer/pkg/cache"
	"github.com/matzehuels/pointlayer/pkg/config"
	"github.com/matzehuels/pointlayer/pkg/errors"
	"github.com/matzehuels/pointlayer/pkg/observability"
	"github.com/matzehuels/pointlayer/pkg/table"
)

const tripsCSV = `name,begintrip_lat,begintrip_lng,fare
A,37.70,-122.40,10
B,37.80,-122.30,20
C,37.75,-122.35,15
`

func writeDataset(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{DataPath: "trips.csv"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("size = %gx%g, want %gx%g", opts.Width, opts.Height, DefaultWidth, DefaultHeight)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.PNGScale != DefaultPNGScale {
		t.Errorf("PNGScale = %g, want %g", opts.PNGScale, DefaultPNGScale)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
	if opts.HoveredIndex() != -1 {
		t.Errorf("HoveredIndex() = %d, want -1", opts.HoveredIndex())
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"missing data path", Options{}},
		{"bad format", Options{DataPath: "x.csv", Formats: []string{"gif"}}},
		{"negative size", Options{DataPath: "x.csv", Width: -1}},
		{"negative brush", Options{DataPath: "x.csv", BrushRadius: -2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("ValidateAndSetDefaults() = %v, want %s", err, errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	hovered := 2
	a := Options{Width: 100, Height: 50}
	b := Options{Width: 100, Height: 50, Hovered: &hovered, Filter: []int{0, 1}}

	ka := a.ArtifactKeyOpts("svg", "c")
	kb := b.ArtifactKeyOpts("svg", "c")
	if ka.Hovered != -1 || kb.Hovered != 2 {
		t.Errorf("Hovered = %d, %d; want -1, 2", ka.Hovered, kb.Hovered)
	}
	if ka.FilterHash != "" || kb.FilterHash == "" {
		t.Errorf("FilterHash = %q, %q", ka.FilterHash, kb.FilterHash)
	}
	if empty := (&Options{Filter: []int{}}).ArtifactKeyOpts("svg", "c"); empty.FilterHash == "" {
		t.Error("an empty filter differs from no filter")
	}
}

func TestFilteredRows(t *testing.T) {
	ds, err := table.ReadCSV(strings.NewReader(tripsCSV), "trips")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		filter []int
		want   []int
	}{
		{"nil keeps every row", nil, []int{0, 1, 2}},
		{"empty keeps none", []int{}, []int{}},
		{"explicit", []int{2, 0}, []int{2, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{Filter: tt.filter}
			got := opts.FilteredRows(ds)
			if got == nil || !slices.Equal(got, tt.want) {
				t.Errorf("FilteredRows() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSameFilter(t *testing.T) {
	tests := []struct {
		a, b []int
		want bool
	}{
		{nil, nil, true},
		{[]int{0, 1}, []int{0, 1}, true},
		{[]int{0, 1}, []int{0}, false},
		{nil, []int{}, false},
		{[]int{1, 0}, []int{0, 1}, false},
	}
	for _, tt := range tests {
		if got := SameFilter(tt.a, tt.b); got != tt.want {
			t.Errorf("SameFilter(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestExecuteFilter(t *testing.T) {
	path := writeDataset(t, "trips.csv", tripsCSV)
	r := NewRunner(nil, nil, nil)

	result, err := r.Execute(context.Background(), Options{
		DataPath: path,
		Formats:  []string{FormatSVG},
		Filter:   []int{},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Stats.Retained != 0 {
		t.Errorf("empty filter: retained = %d, want 0", result.Stats.Retained)
	}
}

func TestExecute(t *testing.T) {
	path := writeDataset(t, "trips.csv", tripsCSV)
	r := NewRunner(nil, nil, nil)

	result, err := r.Execute(context.Background(), Options{
		DataPath: path,
		Formats:  []string{FormatJSON, FormatSVG},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Stats.Rows != 3 || result.Stats.Retained != 3 {
		t.Errorf("Stats = %+v, want 3 rows retained", result.Stats)
	}
	if result.Layer.ID() != "trips" {
		t.Errorf("layer ID = %q, want %q", result.Layer.ID(), "trips")
	}
	if got := result.Config.Color.Hex(); got != "#1e96be" {
		t.Errorf("default color = %s, want the begintrip color #1e96be", got)
	}
	if !result.Meta.BoundsValid {
		t.Error("bounds should be valid")
	}
	if result.Meta.Bounds.MinLat != 37.7 || result.Meta.Bounds.MaxLng != -122.3 {
		t.Errorf("bounds = %+v", result.Meta.Bounds)
	}
	if len(result.Drawables) != 1 {
		t.Errorf("drawables = %d, want 1", len(result.Drawables))
	}

	svg := string(result.Artifacts[FormatSVG])
	if n := strings.Count(svg, "<circle"); n != 3 {
		t.Errorf("svg circles = %d, want 3", n)
	}
	var doc struct {
		LayerID string `json:"layerId"`
		Count   int    `json:"count"`
	}
	if err := json.Unmarshal(result.Artifacts[FormatJSON], &doc); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if doc.LayerID != "trips" || doc.Count != 3 {
		t.Errorf("json artifact = %+v", doc)
	}
}

func TestExecuteFilterAndHover(t *testing.T) {
	path := writeDataset(t, "trips.csv", tripsCSV)
	r := NewRunner(nil, nil, nil)

	hovered := 2
	result, err := r.Execute(context.Background(), Options{
		DataPath: path,
		Filter:   []int{0, 2},
		Hovered:  &hovered,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Stats.Retained != 2 {
		t.Errorf("Retained = %d, want 2", result.Stats.Retained)
	}
	if len(result.Drawables) != 2 {
		t.Fatalf("drawables = %d, want 2 (points + hover)", len(result.Drawables))
	}
	if got := result.Drawables[1].Data[0].Index; got != 2 {
		t.Errorf("hovered index = %d, want 2", got)
	}

	// A hovered row that was filtered out draws no highlight.
	hovered = 1
	result, err = r.Execute(context.Background(), Options{DataPath: path, Filter: []int{0, 2}, Hovered: &hovered})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Drawables) != 1 {
		t.Errorf("drawables = %d, want 1", len(result.Drawables))
	}
}

func TestExecuteWithConfig(t *testing.T) {
	path := writeDataset(t, "trips.csv", tripsCSV)
	r := NewRunner(nil, nil, nil)

	f := &config.File{}
	f.Columns.Lat = "begintrip_lat"
	f.Columns.Lng = "begintrip_lng"
	f.Size.Field = "fare"
	f.Label.Field = "name"

	result, err := r.Execute(context.Background(), Options{DataPath: path, Config: f, Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Config.SizeField == nil || result.Config.SizeField.Name != "fare" {
		t.Errorf("SizeField = %v, want fare", result.Config.SizeField)
	}
	if got := string(result.Descriptor.LabelCharacterSet); got != "ABC" {
		t.Errorf("LabelCharacterSet = %q, want %q", got, "ABC")
	}
	if len(result.Drawables) != 2 {
		t.Errorf("drawables = %d, want 2 (points + labels)", len(result.Drawables))
	}
}

func TestExecuteErrors(t *testing.T) {
	noPositions := writeDataset(t, "fares.csv", "name,fare\nA,1\n")
	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.csv"), errors.ErrCodeFileNotFound},
		{"unsupported extension", "points.xlsx", errors.ErrCodeUnsupported},
		{"no position columns", noPositions, errors.ErrCodeInvalidColumns},
	}
	r := NewRunner(nil, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(context.Background(), Options{DataPath: tt.path})
			if !errors.Is(err, tt.code) {
				t.Errorf("Execute() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

type countingPipelineHooks struct {
	observability.NoopPipelineHooks
	loads, renders int
}

func (h *countingPipelineHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {
	h.loads++
}

func (h *countingPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.renders++
}

func TestExecuteCachesArtifacts(t *testing.T) {
	hooks := &countingPipelineHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	path := writeDataset(t, "trips.csv", tripsCSV)
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	defer r.Close()
	ctx := context.Background()

	first, err := r.Execute(ctx, Options{DataPath: path, Formats: []string{FormatSVG}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run should miss the cache")
	}

	second, err := r.Execute(ctx, Options{DataPath: path, Formats: []string{FormatSVG}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit the cache")
	}
	if string(first.Artifacts[FormatSVG]) != string(second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs from rendered svg")
	}

	refreshed, err := r.Execute(ctx, Options{DataPath: path, Formats: []string{FormatSVG}, Refresh: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if refreshed.CacheInfo.RenderHit {
		t.Error("refresh should bypass the cache")
	}

	zoom := 3.0
	zoomed, err := r.Execute(ctx, Options{DataPath: path, Formats: []string{FormatSVG}, Zoom: &zoom})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if zoomed.CacheInfo.RenderHit {
		t.Error("a different zoom should miss the cache")
	}

	if hooks.loads != 4 || hooks.renders != 3 {
		t.Errorf("hooks = %d loads, %d renders; want 4, 3", hooks.loads, hooks.renders)
	}
}
