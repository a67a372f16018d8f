package frontend

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fathomsearch/fathom/pkg/locales"
)

const preferencesCookie = "preferences"

// preferences are the per browser settings carried in a cookie. Nothing is
// stored server side.
type preferences struct {
	Language   string
	SafeSearch int
	Categories []string
}

func (f *Frontend) defaultPreferences() preferences {
	return preferences{
		Language:   f.cfg.DefaultLanguage,
		SafeSearch: f.cfg.DefaultSafeSearch,
		Categories: []string{f.cfg.DefaultCategory},
	}
}

// loadPreferences reads the cookie, falling back to instance defaults for
// anything missing or invalid.
func (f *Frontend) loadPreferences(r *http.Request) preferences {
	prefs := f.defaultPreferences()

	cookie, err := r.Cookie(preferencesCookie)
	if err != nil {
		return prefs
	}
	values, err := url.ParseQuery(cookie.Value)
	if err != nil {
		return prefs
	}

	if lang := values.Get("language"); lang == "all" || locales.IsSupported(lang) {
		prefs.Language = lang
	}
	if ss := values.Get("safesearch"); ss != "" {
		if n, err := strconv.Atoi(ss); err == nil && n >= 0 && n <= 2 {
			prefs.SafeSearch = n
		}
	}
	if cats := values.Get("categories"); cats != "" {
		prefs.Categories = splitCSV(cats)
	}

	return prefs
}

func (f *Frontend) storePreferences(w http.ResponseWriter, prefs preferences) {
	values := url.Values{}
	values.Set("language", prefs.Language)
	values.Set("safesearch", strconv.Itoa(prefs.SafeSearch))
	values.Set("categories", strings.Join(prefs.Categories, ","))

	http.SetCookie(w, &http.Cookie{
		Name:     preferencesCookie,
		Value:    values.Encode(),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PreferencesHandler shows the form on GET and persists the cookie on
// POST.
func (f *Frontend) PreferencesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}

		prefs := f.defaultPreferences()
		if lang := r.PostFormValue("language"); lang == "all" || locales.IsSupported(lang) {
			prefs.Language = lang
		}
		if n, err := strconv.Atoi(r.PostFormValue("safesearch")); err == nil && n >= 0 && n <= 2 {
			prefs.SafeSearch = n
		}
		if cats := r.PostForm["categories"]; len(cats) > 0 {
			prefs.Categories = cats
		}

		f.storePreferences(w, prefs)
		http.Redirect(w, r, "/preferences", http.StatusFound)
		return
	}

	prefs := f.loadPreferences(r)
	f.renderTemplate(w, preferencesTemplate, map[string]any{
		"InstanceName": f.cfg.InstanceName,
		"Preferences":  prefs,
		"Languages":    locales.Supported,
		"Categories":   f.categories(),
	})
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
