package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/pointlayer/pkg/buildinfo"
	"github.com/matzehuels/pointlayer/pkg/config"
	"github.com/matzehuels/pointlayer/pkg/errors"
	"github.com/matzehuels/pointlayer/pkg/layer"
	"github.com/matzehuels/pointlayer/pkg/observability"
	"github.com/matzehuels/pointlayer/pkg/pipeline"
	"github.com/matzehuels/pointlayer/pkg/render"
	"github.com/matzehuels/pointlayer/pkg/table"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

type createResponse struct {
	ID string `json:"id"`
}

type layerResponse struct {
	ID        string       `json:"id"`
	HasData   bool         `json:"has_data"`
	Rows      int          `json:"rows"`
	Fields    []string     `json:"fields,omitempty"`
	Formatted bool         `json:"formatted"`
	Meta      *layer.Meta  `json:"meta,omitempty"`
	Config    *config.File `json:"config,omitempty"`
}

type formatRequest struct {
	Filter      []int    `json:"filter"`
	Hovered     *int     `json:"hovered"`
	Brushing    bool     `json:"brushing"`
	BrushRadius float64  `json:"brush_radius"`
	Zoom        *float64 `json:"zoom"`
}

type formatResponse struct {
	Stats      observability.FormatStats `json:"stats"`
	Descriptor json.RawMessage           `json:"descriptor"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"build":   buildinfo.Get(),
		"layers":  s.registry.Len(),
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	f, err := s.readConfig(w, r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	id := s.registry.Create(f)
	s.logger.Info("created layer", "id", id)
	writeJSON(w, http.StatusCreated, createResponse{ID: id})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	inst, err := s.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()

	resp := layerResponse{ID: inst.id, Formatted: inst.last != nil}
	if inst.dataset != nil {
		resp.HasData = true
		resp.Rows = inst.dataset.Len()
		for _, f := range inst.dataset.Fields {
			resp.Fields = append(resp.Fields, f.Name)
		}
	}
	if inst.layer != nil {
		m := inst.layer.Meta()
		resp.Meta = &m
		resp.Config = config.FromConfig(inst.layer.Config())
	} else {
		resp.Config = inst.file
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	inst, err := s.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	f, err := s.readConfig(w, r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()
	if inst.dataset != nil {
		// Data is unchanged: the next pass stays warm where it can.
		cfg, err := pipeline.ResolveConfig(inst.dataset, pipeline.Options{Config: f})
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		inst.layer.SetConfig(cfg)
		inst.last = nil
	}
	inst.file = f
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePutData(w http.ResponseWriter, r *http.Request) {
	inst, err := s.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	format, err := dataFormat(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	var ds *table.Dataset
	if format == table.FormatGeoJSON {
		ds, err = table.ReadGeoJSON(body, inst.id)
	} else {
		ds, err = table.ReadCSV(body, inst.id)
	}
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()
	cfg, err := pipeline.ResolveConfig(ds, pipeline.Options{Config: inst.file})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if inst.layer == nil {
		inst.layer = layer.NewPointLayer(cfg, layer.WithID(inst.id), layer.WithLogger(s.logger))
	} else {
		inst.layer.SetConfig(cfg)
	}
	inst.dataset = ds
	inst.sameData = false
	inst.last = nil

	s.logger.Info("attached dataset", "id", inst.id, "rows", ds.Len(), "fields", len(ds.Fields))
	writeJSON(w, http.StatusOK, map[string]any{
		"rows":   ds.Len(),
		"fields": len(ds.Fields),
		"lat":    cfg.Columns.Lat.Value,
		"lng":    cfg.Columns.Lng.Value,
	})
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	inst, err := s.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	var req formatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && err != io.EOF {
		writeError(w, s.logger, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode format request"))
		return
	}

	opts := pipeline.Options{
		Filter:      req.Filter,
		Hovered:     req.Hovered,
		Brushing:    req.Brushing,
		BrushRadius: req.BrushRadius,
		Zoom:        req.Zoom,
		Logger:      s.logger,
	}
	if err := opts.ValidateForRender(); err != nil {
		writeError(w, s.logger, err)
		return
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()
	if inst.dataset == nil {
		writeError(w, s.logger, errors.New(errors.ErrCodeInvalidInput, "layer %s has no data", inst.id))
		return
	}

	ctx := r.Context()
	sameData := inst.sameData && pipeline.SameFilter(req.Filter, inst.lastFilter)
	d, err := inst.layer.FormatLayerData(ctx, inst.dataset, opts.FilteredRows(inst.dataset), sameData)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	inst.sameData = true
	inst.lastFilter = req.Filter
	inst.last = d
	inst.lastOpts = opts

	in := pipeline.RenderInput{Layer: inst.layer, Descriptor: d, DatasetHash: inst.dataset.Hash}
	body, err := render.RenderJSON(d,
		render.WithJSONLayerID(inst.id),
		render.WithJSONMeta(inst.layer.Meta()),
		render.WithJSONDrawables(pipeline.Drawables(ctx, in, opts)))
	if err != nil {
		writeError(w, s.logger, errors.Wrap(errors.ErrCodeInternal, err, "encode descriptor"))
		return
	}
	writeJSON(w, http.StatusOK, formatResponse{Stats: inst.layer.LastStats(), Descriptor: body})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	inst, err := s.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	format := chi.URLParam(r, "format")

	inst.mu.Lock()
	defer inst.mu.Unlock()
	if inst.last == nil {
		writeError(w, s.logger, errors.New(errors.ErrCodeInvalidInput, "layer %s has no formatting pass to render", inst.id))
		return
	}

	opts := inst.lastOpts
	opts.Formats = []string{format}
	opts.Title = r.URL.Query().Get("title")
	for name, dst := range map[string]*float64{"width": &opts.Width, "height": &opts.Height, "scale": &opts.PNGScale} {
		if v := r.URL.Query().Get(name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f <= 0 {
				writeError(w, s.logger, errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", name, v))
				return
			}
			*dst = f
		}
	}

	runner := &pipeline.Runner{Cache: s.cache, Keyer: inst.keyer, Logger: s.logger}
	in := pipeline.RenderInput{Layer: inst.layer, Descriptor: inst.last, DatasetHash: inst.dataset.Hash}
	artifacts, hit, err := runner.RenderWithCacheInfo(r.Context(), in, opts)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

// readConfig decodes a TOML or JSON layer config. An empty body yields
// nil, which selects detected columns and default styling.
func (s *Server) readConfig(w http.ResponseWriter, r *http.Request) (*config.File, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	if mediaType(r) == "application/json" {
		return config.DecodeJSON(bytes.NewReader(data))
	}
	return config.Decode(bytes.NewReader(data))
}

// dataFormat picks the dataset reader from the format query parameter or
// the content type. CSV is the default.
func dataFormat(r *http.Request) (table.Format, error) {
	switch f := table.Format(r.URL.Query().Get("format")); f {
	case table.FormatCSV, table.FormatGeoJSON:
		return f, nil
	case "":
	default:
		return "", errors.New(errors.ErrCodeUnsupported, "unsupported dataset format %q", f)
	}
	switch mediaType(r) {
	case "application/geo+json", "application/json":
		return table.FormatGeoJSON, nil
	}
	return table.FormatCSV, nil
}

func mediaType(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}
