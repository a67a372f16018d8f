package frontend

import (
	"html/template"
	"net/http"
	texttemplate "text/template"

	"github.com/go-kit/log/level"
)

var (
	indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.InstanceName}}</title></head>
<body>
<h1>{{.InstanceName}}</h1>
<form action="/search" method="get">
<input type="text" name="q" autofocus autocomplete="off">
<button type="submit">Search</button>
{{range .Categories}}<label><input type="checkbox" name="categories" value="{{.}}">{{.}}</label>{{end}}
</form>
<footer><a href="/about">about</a> | <a href="/preferences">preferences</a> | <a href="/stats">stats</a></footer>
</body>
</html>
`))

	resultsTemplate = template.Must(template.New("results").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Response.Query}} - {{.InstanceName}}</title></head>
<body>
<form action="/search" method="get">
<input type="text" name="q" value="{{.Response.Query}}">
<button type="submit">Search</button>
</form>
{{range .Response.Answers}}<p class="answer">{{.Text}}</p>{{end}}
{{range .Response.Corrections}}<p class="correction">Did you mean <a href="/search?q={{.Text}}">{{.Text}}</a>?</p>{{end}}
{{range .Response.Infoboxes}}
<aside class="infobox"><h2>{{.Title}}</h2><p>{{.Content}}</p></aside>
{{end}}
<ol start="{{.Start}}">
{{range .Response.Results}}
<li>
<a href="{{.URL}}">{{.Title}}</a>
<p>{{.Content}}</p>
<small>{{range .Engines}}{{.}} {{end}}</small>
</li>
{{end}}
</ol>
{{if .Response.Suggestions}}<p class="suggestions">{{range .Response.Suggestions}}<a href="/search?q={{.Text}}">{{.Text}}</a> {{end}}</p>{{end}}
{{if .Response.UnresponsiveEngines}}<p class="errors">{{range .Response.UnresponsiveEngines}}{{.Name}}: {{.Err}} {{end}}</p>{{end}}
</body>
</html>
`))

	aboutTemplate = template.Must(template.New("about").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>About - {{.InstanceName}}</title></head>
<body>
<h1>About {{.InstanceName}}</h1>
<p>{{.InstanceName}} is a privacy respecting metasearch engine, version {{.Version}}.
It aggregates results from other search engines without storing queries or
forwarding anything that identifies you.</p>
<h2>Engines</h2>
<ul>{{range .Engines}}<li>{{.}}</li>{{end}}</ul>
<h2>Plugins</h2>
<ul>{{range .Plugins}}<li>{{.}}</li>{{end}}</ul>
</body>
</html>
`))

	preferencesTemplate = template.Must(template.New("preferences").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Preferences - {{.InstanceName}}</title></head>
<body>
<h1>Preferences</h1>
<form action="/preferences" method="post">
<label>Language
<select name="language">
<option value="all">All languages</option>
{{$current := .Preferences.Language}}
{{range .Languages}}<option value="{{.Code}}"{{if eq .Code $current}} selected{{end}}>{{.Name}}</option>{{end}}
</select>
</label>
<label>Safe search
<select name="safesearch">
{{$ss := .Preferences.SafeSearch}}
<option value="0"{{if eq $ss 0}} selected{{end}}>Off</option>
<option value="1"{{if eq $ss 1}} selected{{end}}>Moderate</option>
<option value="2"{{if eq $ss 2}} selected{{end}}>Strict</option>
</select>
</label>
{{range .Categories}}<label><input type="checkbox" name="categories" value="{{.}}">{{.}}</label>{{end}}
<button type="submit">Save</button>
</form>
</body>
</html>
`))

	openSearchTemplate = texttemplate.Must(texttemplate.New("opensearch").Parse(`<?xml version="1.0" encoding="utf-8"?>
<OpenSearchDescription xmlns="http://a9.com/-/spec/opensearch/1.1/">
  <ShortName>{{.InstanceName}}</ShortName>
  <Description>{{.InstanceName}} metasearch</Description>
  <InputEncoding>UTF-8</InputEncoding>
  <Url type="text/html" method="get" template="{{.BaseURL}}/search?q={searchTerms}"/>
  <Url type="application/x-suggestions+json" method="get" template="{{.BaseURL}}/autocomplete?q={searchTerms}"/>
</OpenSearchDescription>
`))
)

func (f *Frontend) renderTemplate(w http.ResponseWriter, tmpl *template.Template, data map[string]any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		level.Error(f.logger).Log("msg", "rendering template", "template", tmpl.Name(), "err", err)
	}
}
