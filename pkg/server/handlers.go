package server

import (
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/matzehuels/crimescope/pkg/buildinfo"
	"github.com/matzehuels/crimescope/pkg/catalog"
	"github.com/matzehuels/crimescope/pkg/dataset"
	"github.com/matzehuels/crimescope/pkg/errors"
	"github.com/matzehuels/crimescope/pkg/pipeline"
	"github.com/matzehuels/crimescope/pkg/render"
)

// optionsFromQuery reads chart options from URL query parameters:
// mode, key (repeated), group (repeated), filter, focus, breakdown, width,
// height and nocache.
func (s *Server) optionsFromQuery(chartID string, q url.Values) pipeline.Options {
	opts := pipeline.Options{
		Chart:     chartID,
		Mode:      q.Get("mode"),
		Keys:      nonEmpty(q["key"]),
		Groups:    nonEmpty(q["group"]),
		Filter:    q.Get("filter"),
		Focus:     q.Get("focus"),
		Breakdown: truthy(q.Get("breakdown")),
		NoCache:   truthy(q.Get("nocache")),
		Width:     s.width,
		Height:    s.height,
	}
	if v, err := strconv.ParseFloat(q.Get("width"), 64); err == nil {
		opts.Width = v
	}
	if v, err := strconv.ParseFloat(q.Get("height"), 64); err == nil {
		opts.Height = v
	}
	return opts
}

func nonEmpty(vs []string) []string {
	var out []string
	for _, v := range vs {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func truthy(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b || v == "on"
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
		"charts": s.runner.Catalog.IDs(),
		"source": s.runner.Loader.Source().Name(),
	})
}

// handleArtifact serves /charts/{id}.{svg,json,xlsx}.
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	ext := path.Ext(file)
	id := strings.TrimSuffix(file, ext)
	format := render.Format(strings.TrimPrefix(ext, "."))

	opts := s.optionsFromQuery(id, r.URL.Query())
	opts.Formats = []string{string(format)}
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	if res.CacheInfo.RenderHit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	if format == render.FormatXLSX {
		w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.xlsx"`)
	}
	_, _ = w.Write(res.Artifacts[format])
}

// handleDataset passes a raw resource through from the loader.
func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	data, err := s.runner.Loader.Fetch(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ct := "application/json"
	if ext := path.Ext(name); ext == ".yaml" || ext == ".yml" {
		ct = "application/yaml"
	}
	w.Header().Set("Content-Type", ct)
	_, _ = w.Write(data)
}

// handleTaxonomy draws the offence taxonomy of the frequency chart.
func (s *Server) handleTaxonomy(w http.ResponseWriter, r *http.Request) {
	raw, err := s.runner.Loader.Fetch(r.Context(), catalog.ResQ1Map)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tax, err := dataset.DecodeTaxonomy(catalog.ResQ1Map, raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	dot := render.TaxonomyDOT(tax, render.TaxonomyOptions{
		Highlight: nonEmpty(r.URL.Query()["key"]),
	})
	svg, err := render.TaxonomySVG(r.Context(), dot)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", render.FormatSVG.ContentType())
	_, _ = w.Write(svg)
}

type errorBody struct {
	Code      errors.Code `json:"code,omitempty"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err, "request_id", RequestID(r.Context()))
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorBody{
		Code:      errors.GetCode(err),
		Message:   errors.UserMessage(err),
		RequestID: RequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
