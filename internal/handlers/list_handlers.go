package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/satonic/satonic-admin/internal/api"
	"github.com/satonic/satonic-admin/internal/listing"
)

// column is one table column of a list page
type column[T listing.Item] struct {
	Header string
	Value  func(T) string
}

// listSpec describes a list page for one resource
type listSpec[T listing.Item] struct {
	Title string
	Noun  string
	// Scope is the backend filter key, Param the route parameter holding its value
	Scope string
	Param string
	// ItemParam is the route parameter naming the item, "id" by default
	ItemParam string
	Kind      listing.ActionKind
	Columns   []column[T]
	List      func(*api.Client) listing.Lister[T]
	Act       func(*api.Client) listing.Action
	// Path is the list page URL for a scope id
	Path      func(scopeID string) string
	CreateURL func(scopeID string) string
	ItemURL   func(T) string
	Label     func(T) string
}

type rowView struct {
	ID    string
	Link  string
	Cells []string
}

type listView struct {
	Heading     string
	Noun        string
	Path        string
	Headers     []string
	Rows        []rowView
	ActionLabel string
	Cursor      url.Values
	NextURL     string
	PreviousURL string
	CreateURL   string
	ShowCreate  bool
	PastEnd     bool
	Confirm     *confirmView
}

type confirmView struct {
	ID         string
	Label      string
	Action     string
	SubmitURL  string
	CancelURL  string
	CursorForm url.Values
}

func (s listSpec[T]) scopeID(r *http.Request) string {
	if s.Param == "" {
		return ""
	}
	return chi.URLParam(r, s.Param)
}

func (s listSpec[T]) itemParam() string {
	if s.ItemParam == "" {
		return "id"
	}
	return s.ItemParam
}

func (s listSpec[T]) controller(c *Console, r *http.Request) *listing.Controller[T] {
	return listing.NewController(listing.Options[T]{
		Scope:    s.Scope,
		ScopeID:  s.scopeID(r),
		PageSize: c.pageSize,
		List:     s.List(c.client),
		Act:      s.Act(c.client),
		Kind:     s.Kind,
		Cursor:   cursorFromRequest(r),
		Logger:   c.logger.WithFields(map[string]any{"list": s.Noun}),
	})
}

// cursorFromRequest reads the cursor from the query string, or from the
// form body on POST.
func cursorFromRequest(r *http.Request) listing.Cursor {
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err == nil {
			return listing.CursorFromValues(r.PostForm)
		}
	}
	return listing.CursorFromValues(r.URL.Query())
}

func (s listSpec[T]) view(ctl *listing.Controller[T], scopeID string) listView {
	path := s.Path(scopeID)
	v := listView{
		Heading:     s.Title,
		Noun:        s.Noun,
		Path:        path,
		ActionLabel: ctl.Kind().Label(),
		Cursor:      ctl.Cursor().Values(),
	}
	for _, col := range s.Columns {
		v.Headers = append(v.Headers, col.Header)
	}
	for _, item := range ctl.Items() {
		row := rowView{ID: item.ItemID()}
		if s.ItemURL != nil {
			row.Link = s.ItemURL(item)
		}
		for _, col := range s.Columns {
			row.Cells = append(row.Cells, col.Value(item))
		}
		v.Rows = append(v.Rows, row)
	}
	if next, ok := ctl.NextCursor(); ok {
		v.NextURL = withQuery(path, next.Values())
	}
	if prev, ok := ctl.PreviousCursor(); ok {
		v.PreviousURL = withQuery(path, prev.Values())
	}
	if s.CreateURL != nil {
		v.CreateURL = s.CreateURL(scopeID)
	}
	switch ctl.EmptyState() {
	case listing.EmptyStateCreate:
		v.ShowCreate = v.CreateURL != ""
	case listing.EmptyStatePastEnd:
		v.PastEnd = true
	}
	return v
}

func withQuery(path string, values url.Values) string {
	if len(values) == 0 {
		return path
	}
	return path + "?" + values.Encode()
}

func (c *Console) renderList(w http.ResponseWriter, r *http.Request, status int, title string, v listView, ctl interface {
	Err() *api.Error
	ScrollTop() bool
}) {
	c.render(w, r, status, "list", page{
		Title:     title,
		Error:     ctl.Err(),
		ScrollTop: ctl.ScrollTop(),
		Data:      v,
	})
}

// listPage renders one page of a resource list
func listPage[T listing.Item](c *Console, s listSpec[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctl := s.controller(c, r)
		defer ctl.Close()

		err := ctl.Load(r.Context())
		if ctl.Unauthorized() {
			redirectExpired(w, r)
			return
		}
		status := http.StatusOK
		if err != nil {
			status = http.StatusBadGateway
		}
		c.renderList(w, r, status, s.Title, s.view(ctl, s.scopeID(r)), ctl)
	}
}

// confirmRemove shows the confirmation for the destructive action on one item
func confirmRemove[T listing.Item](c *Console, s listSpec[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctl := s.controller(c, r)
		defer ctl.Close()

		if err := ctl.Load(r.Context()); err != nil {
			c.fail(w, r, err)
			return
		}

		id := chi.URLParam(r, s.itemParam())
		if err := ctl.Select(id); err != nil {
			http.Error(w, fmt.Sprintf("%s not found on this page", s.Noun), http.StatusNotFound)
			return
		}

		item, _ := ctl.Selected()
		scopeID := s.scopeID(r)
		v := s.view(ctl, scopeID)
		v.Confirm = &confirmView{
			ID:         id,
			Label:      s.Label(item),
			Action:     ctl.Kind().Label(),
			SubmitURL:  s.Path(scopeID) + "/" + url.PathEscape(id) + "/remove",
			CancelURL:  withQuery(s.Path(scopeID), ctl.Cursor().Values()),
			CursorForm: ctl.Cursor().Values(),
		}
		c.render(w, r, http.StatusOK, "confirm_remove", page{Title: s.Title, Data: v})
	}
}

// remove applies the destructive action and shows the refreshed page
func remove[T listing.Item](c *Console, s listSpec[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctl := s.controller(c, r)
		defer ctl.Close()

		if err := ctl.Load(r.Context()); err != nil {
			c.fail(w, r, err)
			return
		}

		id := chi.URLParam(r, s.itemParam())
		if err := ctl.Select(id); err != nil {
			http.Error(w, fmt.Sprintf("%s not found on this page", s.Noun), http.StatusNotFound)
			return
		}
		item, _ := ctl.Selected()
		label := s.Label(item)

		err := ctl.Confirm(r.Context())
		if ctl.Unauthorized() {
			redirectExpired(w, r)
			return
		}

		status := http.StatusOK
		switch {
		case err == nil:
			c.notifier.Success(fmt.Sprintf("%s %s %sd", s.Noun, label, strings.ToLower(ctl.Kind().Label())))
		case errors.Is(err, listing.ErrNothingSelected):
			status = http.StatusBadRequest
		default:
			status = http.StatusUnprocessableEntity
			c.notifier.Error(fmt.Sprintf("Could not %s %s", strings.ToLower(ctl.Kind().Label()), label))
		}
		c.renderList(w, r, status, s.Title, s.view(ctl, s.scopeID(r)), ctl)
	}
}

// mountList registers the list, confirm and remove routes of a resource
func mountList[T listing.Item](router chi.Router, c *Console, pattern string, s listSpec[T]) {
	router.Get(pattern, listPage(c, s))
	item := "/{" + s.itemParam() + "}/remove"
	router.Get(pattern+item, confirmRemove(c, s))
	router.Post(pattern+item, remove(c, s))
}
