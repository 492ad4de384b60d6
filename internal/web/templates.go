package web

import (
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates holds one parsed template per page, each built from the shared
// layout plus the page body.
type Templates struct {
	Home    *template.Template
	Apps    *template.Template
	App     *template.Template
	Blogs   *template.Template
	Blog    *template.Template
	Privacy *template.Template
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		// entity timestamps are RFC3339 strings
		"formatDate": func(s string) string {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return s
			}
			return t.Format("Jan 2, 2006")
		},
		"truncate": func(s string, n int) string {
			if len(s) <= n {
				return s
			}
			return s[:n] + "…"
		},
		// blog bodies hold rendered HTML produced by the admin editor
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
	}
}

func loadTemplates() (*Templates, error) {
	layout, err := templateFS.ReadFile("templates/layout.html")
	if err != nil {
		return nil, err
	}

	makePage := func(name string) (*template.Template, error) {
		body, err := templateFS.ReadFile("templates/" + name + ".html")
		if err != nil {
			return nil, err
		}
		t := template.New("layout").Funcs(templateFuncs())
		if t, err = t.Parse(string(layout)); err != nil {
			return nil, err
		}
		if t, err = t.Parse(string(body)); err != nil {
			return nil, err
		}
		return t, nil
	}

	tmpl := &Templates{}
	pages := []struct {
		name string
		dst  **template.Template
	}{
		{"home", &tmpl.Home},
		{"apps", &tmpl.Apps},
		{"app", &tmpl.App},
		{"blogs", &tmpl.Blogs},
		{"blog", &tmpl.Blog},
		{"privacy", &tmpl.Privacy},
	}
	for _, p := range pages {
		t, err := makePage(p.name)
		if err != nil {
			return nil, err
		}
		*p.dst = t
	}
	return tmpl, nil
}
