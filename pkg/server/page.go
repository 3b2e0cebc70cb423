package server

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/crimescope/pkg/catalog"
	"github.com/matzehuels/crimescope/pkg/errors"
	"github.com/matzehuels/crimescope/pkg/render"
)

type choice struct {
	Value, Label string
	Selected     bool
}

type groupBox struct {
	Label    string
	Children string
	Checked  bool
}

type pageData struct {
	Charts []*catalog.Definition
	Chart  *catalog.Definition
	Query  string

	Modes     []choice
	Keys      []choice
	Groups    []groupBox
	Filters   []choice
	Focus     []choice
	Breakdown *bool

	SVG    template.HTML
	Error  string
	Status int
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, http.StatusOK, pageData{Charts: s.runner.Catalog.List()})
}

// handlePage renders a chart with its controls. A failed load still
// renders the page with a fallback panel and the error status.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "chart")
	def, err := s.runner.Catalog.Get(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := s.optionsFromQuery(id, r.URL.Query())
	data := pageData{
		Charts: s.runner.Catalog.List(),
		Chart:  def,
		Query:  r.URL.RawQuery,
		Status: http.StatusOK,
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		data.Status = errors.HTTPStatus(err)
		data.Error = errors.UserMessage(err)
		data.Modes = modeChoices(def, opts.Mode)
		s.logger.Warn("chart failed", "chart", id, "error", err, "request_id", RequestID(r.Context()))
		s.writePage(w, data.Status, data)
		return
	}

	sel := res.View.State.Selection
	data.SVG = template.HTML(render.SVG(res.Model, render.WithoutTitle()))
	data.Modes = modeChoices(def, sel.Mode())
	if def.Supports(catalog.ControlKeys) || def.Supports(catalog.ControlGroups) {
		for _, k := range res.View.Keys {
			data.Keys = append(data.Keys, choice{Value: k, Label: k, Selected: sel.IsActive(k)})
		}
	}
	if tax := res.View.Taxonomy; tax != nil && def.Supports(catalog.ControlGroups) {
		for _, p := range tax.Parents() {
			children := tax.Children(p)
			data.Groups = append(data.Groups, groupBox{
				Label:    p,
				Children: strings.Join(children, ","),
				Checked:  sel.GroupState(children),
			})
		}
	}
	data.Filters = optionChoices(res.View.Filters, sel.Filter())
	if len(res.View.Focus) > 0 {
		data.Focus = append([]choice{{Value: "", Label: "None"}}, optionChoices(res.View.Focus, sel.Focus())...)
	}
	if res.View.Breakdown {
		on := sel.Breakdown()
		data.Breakdown = &on
	}
	s.writePage(w, http.StatusOK, data)
}

func modeChoices(def *catalog.Definition, mode string) []choice {
	if mode == "" {
		mode = def.DefaultMode()
	}
	return optionChoices(def.Modes, mode)
}

func optionChoices(opts []catalog.Option, selected string) []choice {
	out := make([]choice, 0, len(opts))
	for _, o := range opts {
		out = append(out, choice{Value: o.Value, Label: o.Label, Selected: o.Value == selected})
	}
	return out
}

func (s *Server) writePage(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("render page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"active": isActive,
}).Parse(pageHTML))

func isActive(c *catalog.Definition, id string) bool { return c != nil && c.ID == id }

const pageHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{if .Chart}}{{.Chart.Title}} | {{end}}crimescope</title>
<style>
body { font-family: system-ui, sans-serif; color: #222; margin: 0; display: flex; }
nav { width: 220px; padding: 16px; border-right: 1px solid #ddd; min-height: 100vh; }
nav a { display: block; padding: 4px 0; color: #337ab7; text-decoration: none; }
nav a.active { font-weight: bold; color: #222; }
main { padding: 16px 24px; flex: 1; }
form.controls { display: flex; flex-wrap: wrap; gap: 16px; margin-bottom: 12px; }
fieldset { border: 1px solid #ddd; padding: 6px 10px; }
fieldset label { display: inline-block; margin-right: 8px; font-size: 13px; }
.fallback { border: 1px solid #d62728; background: #fff5f5; padding: 24px; max-width: 720px; }
.downloads a { margin-right: 12px; font-size: 13px; }
</style>
</head>
<body>
<nav>
<a href="/"><strong>crimescope</strong></a>
{{range .Charts}}<a href="/{{.ID}}"{{if active $.Chart .ID}} class="active"{{end}}>{{.ID}}: {{.Title}}</a>
{{end}}</nav>
<main>
{{if not .Chart}}
<h1>Old Bailey crime charts</h1>
<ul>
{{range .Charts}}<li><a href="/{{.ID}}">{{.Title}}</a>: {{.Description}}</li>
{{end}}</ul>
<p><a href="/taxonomy.svg">Offence taxonomy</a></p>
{{else}}
<h1>{{.Chart.Title}}</h1>
<p>{{.Chart.Description}}</p>
<form class="controls" method="get" action="/{{.Chart.ID}}">
{{if .Modes}}<fieldset><legend>Mode</legend>
<select name="mode">{{range .Modes}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}</select>
</fieldset>{{end}}
{{if .Filters}}<fieldset><legend>Filter</legend>
<select name="filter">{{range .Filters}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}</select>
</fieldset>{{end}}
{{if .Groups}}<fieldset><legend>Groups</legend>
{{range .Groups}}<label><input type="checkbox" class="group" data-children="{{.Children}}"{{if .Checked}} checked{{end}}> {{.Label}}</label>{{end}}
</fieldset>{{end}}
{{if .Keys}}<fieldset><legend>Series</legend>
{{range .Keys}}<label><input type="checkbox" name="key" value="{{.Value}}"{{if .Selected}} checked{{end}}> {{.Label}}</label>{{end}}
</fieldset>{{end}}
{{if .Focus}}<fieldset><legend>Focus</legend>
<select name="focus">{{range .Focus}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}</select>
</fieldset>{{end}}
{{with .Breakdown}}<fieldset><legend>Breakdown</legend>
<label><input type="checkbox" name="breakdown" value="true"{{if .}} checked{{end}}> Show breakdown</label>
</fieldset>{{end}}
<noscript><button type="submit">Update</button></noscript>
</form>
{{if .Error}}
<div class="fallback" role="alert">
<h2>Chart unavailable ({{.Status}})</h2>
<p>{{.Error}}</p>
<p><a href="/{{.Chart.ID}}?{{.Query}}">Retry</a></p>
</div>
{{else}}
{{.SVG}}
<p class="downloads">
<a href="/charts/{{.Chart.ID}}.svg?{{.Query}}">SVG</a>
<a href="/charts/{{.Chart.ID}}.json?{{.Query}}">JSON</a>
<a href="/charts/{{.Chart.ID}}.xlsx?{{.Query}}">XLSX</a>
</p>
{{end}}
{{end}}
</main>
<script>
(function () {
  var form = document.querySelector("form.controls");
  if (!form) return;
  form.addEventListener("change", function (e) {
    var t = e.target;
    if (t.classList.contains("group")) {
      var children = t.dataset.children.split(",");
      form.querySelectorAll("input[name=key]").forEach(function (box) {
        if (children.indexOf(box.value) >= 0) box.checked = t.checked;
      });
    }
    if (t.name === "mode") {
      form.querySelectorAll("input[name=key]").forEach(function (box) { box.checked = false; });
      var focus = form.querySelector("select[name=focus]");
      if (focus) focus.value = "";
    }
    form.submit();
  });
  document.addEventListener("crimescope:focus", function (e) {
    var focus = form.querySelector("select[name=focus]");
    if (!focus) return;
    focus.value = focus.value === e.detail ? "" : e.detail;
    form.submit();
  });
})();
</script>
</body>
</html>
`
