package handlers

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"github.com/satonic/satonic-admin/internal/api"
	"github.com/satonic/satonic-admin/internal/logging"
	"github.com/satonic/satonic-admin/internal/notify"
	"github.com/satonic/satonic-admin/internal/services"
	"github.com/satonic/satonic-admin/internal/wizard"
)

//go:embed templates/*.html
var templateFS embed.FS

// Console holds what the admin console handlers need
type Console struct {
	client    *api.Client
	sessions  *services.SessionService
	drafts    wizard.DraftStore
	flows     map[string]*wizard.Flow
	notifier  *notify.Notifier
	formatter api.TimestampFormatter
	pageSize  int
	cookie    string
	logger    logging.Logger
	pages     map[string]*template.Template
}

// ConsoleOptions configure a Console
type ConsoleOptions struct {
	Client    *api.Client
	Sessions  *services.SessionService
	Drafts    wizard.DraftStore
	Notifier  *notify.Notifier
	Formatter api.TimestampFormatter
	PageSize  int
	Cookie    string
	Logger    logging.Logger
}

// NewConsole parses the page templates and wizard flows
func NewConsole(opts ConsoleOptions) (*Console, error) {
	flows, err := wizard.Flows()
	if err != nil {
		return nil, err
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.New()
	}
	cookie := opts.Cookie
	if cookie == "" {
		cookie = "satonic_admin_session"
	}

	return &Console{
		client:    opts.Client,
		sessions:  opts.Sessions,
		drafts:    opts.Drafts,
		flows:     flows,
		notifier:  notifier,
		formatter: opts.Formatter,
		pageSize:  opts.PageSize,
		cookie:    cookie,
		logger:    logger,
		pages:     pages,
	}, nil
}

var pageNames = []string{
	"login", "list", "confirm_remove", "collection", "nft", "wizard_step", "wizard_cancel", "error",
}

func parsePages() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"query": func(path string, values url.Values) string {
			if len(values) == 0 {
				return path
			}
			return path + "?" + values.Encode()
		},
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New("layout.html").Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, err
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// page is the data every template receives
type page struct {
	Title     string
	Banner    *notify.Banner
	Error     *api.Error
	ScrollTop bool
	LoggedIn  bool
	Data      any
}

func (c *Console) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	if banner, ok := c.notifier.Current(); ok {
		p.Banner = &banner
	}
	_, p.LoggedIn = SessionFromContext(r.Context())

	tmpl, ok := c.pages[name]
	if !ok {
		http.Error(w, "unknown page "+name, http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		c.logger.Error("failed to render page", "page", name, "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// fail renders the error page for a backend error, or sends the browser
// to the login page when the session was rejected.
func (c *Console) fail(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Unauthorized() {
		redirectExpired(w, r)
		return
	}
	if apiErr == nil {
		apiErr = &api.Error{Message: err.Error()}
	}

	status := apiErr.Status
	if status < 400 {
		status = http.StatusBadGateway
	}
	c.render(w, r, status, "error", page{Title: "Something went wrong", Error: apiErr, ScrollTop: true})
}

func redirectExpired(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login?expired=1", http.StatusSeeOther)
}

// displayTime renders a raw backend timestamp for a detail page
func (c *Console) displayTime(raw string) string {
	if raw == "" {
		return ""
	}
	formatted, _ := c.formatter.Format(raw)
	return formatted
}
