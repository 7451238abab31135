package server

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/Garnistarr/water-data-app/internal/auth"
	"github.com/Garnistarr/water-data-app/internal/directory"
	"github.com/Garnistarr/water-data-app/internal/entry"
	"github.com/Garnistarr/water-data-app/internal/logger"
)

// User-visible messages for the error taxonomy. The invalid-credentials
// message is deliberately identical for unknown users and wrong passwords.
const (
	msgInvalidCredentials   = "Incorrect email or password"
	msgDirectoryUnavailable = "Could not load user data. Please try again later."
	msgSubmitOK             = "Data submitted successfully!"
)

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		if claimsFrom(r) != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		a.renderPage(w, "login", &ViewData{HideNav: true})
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	_ = r.ParseForm()
	email := strings.TrimSpace(r.Form.Get("email"))
	password := r.Form.Get("password")
	if email == "" || password == "" {
		a.renderPage(w, "login", &ViewData{HideNav: true, Flash: "Email and password are required.", FlashKind: "err"})
		return
	}

	rec, ok, err := a.dir.Lookup(r.Context(), email)
	if err != nil {
		logger.Error("Directory load failed during login: %v", err)
		a.renderPage(w, "login", &ViewData{HideNav: true, Flash: msgDirectoryUnavailable, FlashKind: "err"})
		return
	}
	if !ok || auth.VerifyPassword(password, rec.Digest) != nil {
		// One message for both misses; the log line carries no detail either.
		logger.Info("Failed login attempt from %s", remoteIP(r))
		a.renderPage(w, "login", &ViewData{HideNav: true, Flash: msgInvalidCredentials, FlashKind: "err"})
		return
	}

	tok, err := auth.SignHS256(a.secret, directory.NormalizeEmail(rec.Email), rec.Name, rec.Role, a.sessionTTL)
	if err != nil {
		a.renderPage(w, "login", &ViewData{HideNav: true, Flash: "Failed to create session.", FlashKind: "err"})
		return
	}
	logger.Info("User %s logged in from %s", directory.NormalizeEmail(rec.Email), remoteIP(r))
	a.issueCookie(w, tok)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	logger.Info("User %s logged out from %s", claimsFrom(r).Email, remoteIP(r))
	a.clearCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (a *App) handleMenu(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	a.renderPage(w, "menu", a.baseData(r))
}

func (a *App) handleEntry(w http.ResponseWriter, r *http.Request) {
	user, err := a.sessionUser(w, r)
	if err != nil {
		return // sessionUser already responded
	}

	data := a.baseData(r)
	data.Facilities = user.Facilities
	data.SamplingPoints = entry.SamplingPoints

	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		a.renderPage(w, "entry", data)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	_ = r.ParseForm()
	form := EntryForm{
		FacilityName:  strings.TrimSpace(r.Form.Get("wtw_name")),
		SamplingPoint: r.Form.Get("sampling_point"),
		PH:            strings.TrimSpace(r.Form.Get("ph")),
		Turbidity:     strings.TrimSpace(r.Form.Get("turbidity")),
		FreeChlorine:  strings.TrimSpace(r.Form.Get("free_chlorine")),
	}
	data.Form = form

	fields, err := parseEntryForm(form, r.Form.Get("passcode"))
	if err != nil {
		data.Flash = err.Error()
		data.FlashKind = "err"
		a.renderPage(w, "entry", data)
		return
	}

	id, err := a.writer.Submit(r.Context(), fields, user)
	if err != nil {
		data.Flash, data.FlashKind = submitErrorMessage(err)
		a.renderPage(w, "entry", data)
		return
	}

	logger.Info("Entry %s recorded for %s (%s) by %s", id, fields.FacilityName, fields.SamplingPoint, user.Email)
	data.Form = EntryForm{} // clear on submit
	data.Flash = msgSubmitOK
	data.FlashKind = "ok"
	a.renderPage(w, "entry", data)
}

func parseEntryForm(form EntryForm, passcode string) (entry.Fields, error) {
	ph, err := parseReading(form.PH, "pH")
	if err != nil {
		return entry.Fields{}, err
	}
	turbidity, err := parseReading(form.Turbidity, "turbidity")
	if err != nil {
		return entry.Fields{}, err
	}
	chlorine, err := parseReading(form.FreeChlorine, "free chlorine")
	if err != nil {
		return entry.Fields{}, err
	}
	return entry.Fields{
		FacilityName:  form.FacilityName,
		SamplingPoint: form.SamplingPoint,
		Passcode:      passcode,
		PH:            ph,
		Turbidity:     turbidity,
		FreeChlorine:  chlorine,
	}, nil
}

func parseReading(s, label string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("The " + label + " value must be a number.")
	}
	return v, nil
}

// submitErrorMessage maps writer errors onto user-visible flash messages.
// Raw store errors only reach the page as row-level rejections, verbatim.
func submitErrorMessage(err error) (string, string) {
	var verr *entry.ValidationError
	if errors.As(err, &verr) {
		return verr.Reason, "err"
	}
	var rerr *entry.RowInsertError
	if errors.As(err, &rerr) {
		return "Error submitting record: " + strings.Join(rerr.Messages, "; "), "err"
	}
	logger.Error("Entry submission failed: %v", err)
	return "Could not submit the record. Please try again later.", "err"
}

func (a *App) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	data := a.baseData(r)
	// Flash from the notice-save redirect; these params mean nothing elsewhere.
	if r.URL.Query().Get("ok") == "1" {
		data.Flash = "Saved."
		data.FlashKind = "ok"
	}
	if r.URL.Query().Get("err") == "1" {
		data.Flash = "Request failed."
		data.FlashKind = "err"
	}
	sett, err := a.settings.Get()
	if err != nil {
		logger.Error("Settings load failed: %v", err)
	}
	data.Notice = sett.DashboardNotice
	data.NoticeHTML = RenderMarkdown(sett.DashboardNotice)
	a.renderPage(w, "dashboard", data)
}

func (a *App) handleDashboardNotice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	_ = r.ParseForm()
	if err := a.settings.SetDashboardNotice(r.Form.Get("notice")); err != nil {
		logger.Error("Saving dashboard notice failed: %v", err)
		http.Redirect(w, r, "/dashboard?err=1", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/dashboard?ok=1", http.StatusSeeOther)
}

// sessionUser resolves the session claims to a current directory record. A
// user removed from the directory mid-session is logged out rather than
// served a stale record.
func (a *App) sessionUser(w http.ResponseWriter, r *http.Request) (directory.UserRecord, error) {
	cl := claimsFrom(r)
	rec, ok, err := a.dir.Lookup(r.Context(), cl.Email)
	if err != nil {
		logger.Error("Directory load failed for %s: %v", cl.Email, err)
		a.renderPage(w, "entry", &ViewData{
			Authed: true, Email: cl.Email, Name: cl.Name, Role: cl.Role,
			Flash: msgDirectoryUnavailable, FlashKind: "err",
		})
		return directory.UserRecord{}, err
	}
	if !ok {
		a.clearCookie(w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return directory.UserRecord{}, errors.New("user no longer in directory")
	}
	return rec, nil
}

func (a *App) baseData(r *http.Request) *ViewData {
	cl := claimsFrom(r)
	data := &ViewData{}
	if cl != nil {
		data.Authed = true
		data.Email = cl.Email
		data.Name = cl.Name
		data.Role = cl.Role
		data.IsController = cl.Role == directory.RoleProcessController
		data.IsManager = cl.Role == directory.RoleManager
	}
	return data
}

func (a *App) renderPage(w http.ResponseWriter, page string, data *ViewData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	t := a.pages[page]
	if t == nil {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		logger.Error("renderPage template execution failed for %s: %v", page, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
