package server

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/Garnistarr/water-data-app/internal/auth"
	"github.com/Garnistarr/water-data-app/internal/directory"
	"github.com/Garnistarr/water-data-app/internal/entry"
	"github.com/Garnistarr/water-data-app/internal/settings"
)

//go:embed templates/*.html
var templatesFS embed.FS

type App struct {
	secret     []byte
	cookieName string
	sessionTTL time.Duration
	pages      map[string]*template.Template
	dir        *directory.Cache
	writer     *entry.Writer
	settings   *settings.Store
}

// ViewData is everything a page template can render.
type ViewData struct {
	Authed       bool
	Email        string
	Name         string
	Role         string
	IsController bool
	IsManager    bool
	HideNav      bool
	Flash        string
	FlashKind    string // ok|err|""

	// entry form
	Facilities     []string
	SamplingPoints []string
	Form           EntryForm

	// manager dashboard
	Notice     string
	NoticeHTML template.HTML
}

// EntryForm echoes submitted values back into the form on validation errors.
type EntryForm struct {
	FacilityName  string
	SamplingPoint string
	PH            string
	Turbidity     string
	FreeChlorine  string
}

func newApp(secret []byte, sessionTTL time.Duration, dir *directory.Cache, writer *entry.Writer, sett *settings.Store) (*App, error) {
	base := template.New("layout.html").Funcs(template.FuncMap{
		"RenderHTML": func(s string) template.HTML { return RenderMarkdown(s) },
	})

	pages := map[string]*template.Template{}
	for _, page := range []string{"login", "menu", "entry", "dashboard"} {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		// Each page file overrides the layout's title/content blocks.
		if _, err := t.ParseFS(templatesFS, "templates/layout.html", "templates/"+page+".html"); err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		pages[page] = t
	}

	return &App{
		secret:     secret,
		cookieName: auth.DefaultCookieName,
		sessionTTL: sessionTTL,
		pages:      pages,
		dir:        dir,
		writer:     writer,
		settings:   sett,
	}, nil
}

func (a *App) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/login", a.handleLogin)
	mux.HandleFunc("/logout", a.requireAuth(a.handleLogout))

	mux.HandleFunc("/", a.requireAuth(a.handleMenu))
	mux.HandleFunc("/entry", a.requireRole(directory.RoleProcessController, a.handleEntry))
	mux.HandleFunc("/dashboard", a.requireRole(directory.RoleManager, a.handleDashboard))
	mux.HandleFunc("/dashboard/notice", a.requireRole(directory.RoleManager, a.handleDashboardNotice))

	mux.HandleFunc("/api/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{\"ok\":true}\n"))
	})

	return a.withAuthContext(mux)
}

func (a *App) issueCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
		MaxAge:   int(a.sessionTTL.Seconds()),
	})
}

// clearCookie removes the session cookie entirely; logout must leave no
// session-scoped state behind.
func (a *App) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
		MaxAge:   -1,
	})
}
