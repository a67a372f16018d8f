package frontend

import (
	"net/http"

	"github.com/go-kit/log/level"
)

// AutocompleteHandler serves suggestions in the opensearch shape:
// ["query", ["suggestion", ...]].
func (f *Frontend) AutocompleteHandler(w http.ResponseWriter, r *http.Request) {
	q := r.FormValue("q")

	prefs := f.loadPreferences(r)
	lang := prefs.Language
	if l := r.FormValue("language"); l != "" {
		lang = l
	}

	suggestions, err := f.completer.Complete(r.Context(), q, lang)
	if err != nil {
		level.Warn(f.logger).Log("msg", "autocomplete failed", "err", err)
		suggestions = []string{}
	}

	f.writeJSON(w, []any{q, suggestions})
}
