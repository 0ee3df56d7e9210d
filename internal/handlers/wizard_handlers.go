package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/satonic/satonic-admin/internal/api"
	"github.com/satonic/satonic-admin/internal/models"
	"github.com/satonic/satonic-admin/internal/wizard"
)

// wizardSpec binds a wizard flow to routes and a backend create call
type wizardSpec struct {
	Flow  string
	Noun  string
	Param string
	// Base is the .../add path for a scope id
	Base    func(scopeID string) string
	ListURL func(scopeID string) string
	DoneURL func(id string) string
	Create  func(*api.Client) wizard.Creator
}

// createdID adapts typed create callbacks to the id-only callbacks a wizard uses
func createdID[T any](cb api.Callbacks[string], id func(T) string) api.Callbacks[T] {
	return api.Callbacks[T]{
		OnSuccess: func(v T) {
			if cb.OnSuccess != nil {
				cb.OnSuccess(id(v))
			}
		},
		OnError:        cb.OnError,
		OnDone:         cb.OnDone,
		OnUnauthorized: cb.OnUnauthorized,
	}
}

// draftString reads a text value from a finished draft
func draftString(draft map[string]any, key string) string {
	if v, ok := draft[key].(string); ok {
		return v
	}
	return ""
}

func tenantWizard() wizardSpec {
	return wizardSpec{
		Flow:    "tenant",
		Noun:    "Tenant",
		Base:    func(string) string { return "/admin/tenants/add" },
		ListURL: func(string) string { return "/admin/tenants" },
		DoneURL: func(id string) string {
			return "/admin/tenants/" + url.PathEscape(id) + "/collections"
		},
		Create: func(cl *api.Client) wizard.Creator {
			return func(ctx context.Context, draft map[string]any, cb api.Callbacks[string]) {
				req := models.CreateTenantRequest{
					Name:         draftString(draft, "name"),
					Slug:         draftString(draft, "slug"),
					ContactEmail: draftString(draft, "contactEmail"),
				}
				cl.CreateTenant(ctx, req, createdID(cb, func(t models.Tenant) string { return t.ID }))
			}
		},
	}
}

func collectionWizard() wizardSpec {
	return wizardSpec{
		Flow:  "collection",
		Noun:  "Collection",
		Param: "tenantID",
		Base: func(tenantID string) string {
			return tenantPath(tenantID, "collections/add")
		},
		ListURL: func(tenantID string) string { return tenantPath(tenantID, "collections") },
		DoneURL: func(id string) string { return "/admin/collections/" + url.PathEscape(id) },
		Create: func(cl *api.Client) wizard.Creator {
			return func(ctx context.Context, draft map[string]any, cb api.Callbacks[string]) {
				cl.CreateCollection(ctx, draft, createdID(cb, func(c models.Collection) string { return c.ID }))
			}
		},
	}
}

func nftWizard() wizardSpec {
	return wizardSpec{
		Flow:  "nft",
		Noun:  "NFT",
		Param: "collectionID",
		Base: func(collectionID string) string {
			return "/admin/collection/" + url.PathEscape(collectionID) + "/nfts/add"
		},
		ListURL: func(collectionID string) string {
			return "/admin/collections/" + url.PathEscape(collectionID) + "/nfts"
		},
		DoneURL: func(id string) string { return "/admin/nfts/" + url.PathEscape(id) },
		Create: func(cl *api.Client) wizard.Creator {
			return func(ctx context.Context, draft map[string]any, cb api.Callbacks[string]) {
				cl.CreateNFT(ctx, draft, createdID(cb, func(n models.NFT) string { return n.ID }))
			}
		},
	}
}

type wizardView struct {
	Noun      string
	Step      wizard.StepView
	ActionURL string
	BackURL   string
	CancelURL string
}

type cancelView struct {
	Noun      string
	ActionURL string
	ReturnURL string
}

func (c *Console) wizardFor(s wizardSpec) (*wizard.Wizard, error) {
	flow, ok := c.flows[s.Flow]
	if !ok {
		return nil, fmt.Errorf("wizard flow %q is not declared", s.Flow)
	}
	return wizard.New(flow, c.drafts, c.logger.WithFields(map[string]any{"flow": s.Flow})), nil
}

func draftKey(r *http.Request, s wizardSpec) wizard.Key {
	key := wizard.Key{Flow: s.Flow}
	if s.Param != "" {
		key.ScopeID = chi.URLParam(r, s.Param)
	}
	if session, ok := SessionFromContext(r.Context()); ok {
		key.SessionID = session.ID
	}
	return key
}

func (s wizardSpec) view(scopeID string, step wizard.StepView) wizardView {
	base := s.Base(scopeID)
	v := wizardView{
		Noun:      s.Noun,
		Step:      step,
		ActionURL: base + "/step-" + strconv.Itoa(step.Number),
		CancelURL: base + "/cancel",
	}
	if step.Number > 1 {
		v.BackURL = base + "/step-" + strconv.Itoa(step.Number-1)
	}
	return v
}

func stepNumber(r *http.Request) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	return n, err == nil
}

// wizardStep renders one step of a creation wizard
func wizardStep(c *Console, s wizardSpec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wiz, err := c.wizardFor(s)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		n, ok := stepNumber(r)
		if !ok {
			http.NotFound(w, r)
			return
		}

		key := draftKey(r, s)
		step, err := wiz.Step(r.Context(), key, n)
		if err != nil {
			if errors.Is(err, wizard.ErrUnknownStep) {
				http.NotFound(w, r)
				return
			}
			if errors.Is(err, wizard.ErrStepNotReached) {
				c.resumeWizard(w, r, s, wiz, key)
				return
			}
			c.logger.Error("failed to load wizard step", "flow", s.Flow, "error", err)
			http.Error(w, "failed to load draft", http.StatusInternalServerError)
			return
		}

		c.render(w, r, http.StatusOK, "wizard_step", page{
			Title: fmt.Sprintf("New %s", s.Noun),
			Data:  s.view(chi.URLParam(r, s.Param), step),
		})
	}
}

// wizardAdvance validates a posted step and moves on, or submits the draft
// on the last step.
func wizardAdvance(c *Console, s wizardSpec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wiz, err := c.wizardFor(s)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		n, ok := stepNumber(r)
		if !ok {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form body", http.StatusBadRequest)
			return
		}

		input := make(map[string]string, len(r.PostForm))
		for name := range r.PostForm {
			input[name] = r.PostForm.Get(name)
		}

		key := draftKey(r, s)
		scopeID := key.ScopeID

		if n == wiz.Flow().Total() {
			id, err := wiz.Submit(r.Context(), key, n, input, s.Create(c.client))
			if err == nil {
				c.notifier.Success(fmt.Sprintf("%s created", s.Noun))
				http.Redirect(w, r, s.DoneURL(id), http.StatusSeeOther)
				return
			}
			c.rejectStep(w, r, s, wiz, key, n, input, err)
			return
		}

		next, err := wiz.Continue(r.Context(), key, n, input)
		if err != nil {
			c.rejectStep(w, r, s, wiz, key, n, input, err)
			return
		}
		http.Redirect(w, r, s.Base(scopeID)+"/step-"+strconv.Itoa(next), http.StatusSeeOther)
	}
}

// rejectStep shows a step again with the user's input and what went wrong
func (c *Console) rejectStep(w http.ResponseWriter, r *http.Request, s wizardSpec, wiz *wizard.Wizard, key wizard.Key, n int, input map[string]string, err error) {
	if errors.Is(err, wizard.ErrUnknownStep) {
		http.NotFound(w, r)
		return
	}
	if errors.Is(err, wizard.ErrStepNotReached) {
		c.resumeWizard(w, r, s, wiz, key)
		return
	}

	var apiErr *api.Error
	switch {
	case wizard.IsValidation(err):
	case errors.As(err, &apiErr):
		if apiErr.Unauthorized() {
			redirectExpired(w, r)
			return
		}
		c.notifier.Error(fmt.Sprintf("Could not create %s", s.Noun))
	default:
		c.logger.Error("wizard step failed", "flow", s.Flow, "error", err)
		http.Error(w, "failed to save draft", http.StatusInternalServerError)
		return
	}

	step, stepErr := wiz.Step(r.Context(), key, n)
	if stepErr != nil {
		c.logger.Error("failed to reload wizard step", "flow", s.Flow, "error", stepErr)
		http.Error(w, "failed to load draft", http.StatusInternalServerError)
		return
	}
	step = wizard.Fill(step, input, err)

	c.render(w, r, http.StatusUnprocessableEntity, "wizard_step", page{
		Title:     fmt.Sprintf("New %s", s.Noun),
		Error:     apiErr,
		ScrollTop: true,
		Data:      s.view(key.ScopeID, step),
	})
}

// resumeWizard sends the user back to the furthest step the draft reached
func (c *Console) resumeWizard(w http.ResponseWriter, r *http.Request, s wizardSpec, wiz *wizard.Wizard, key wizard.Key) {
	reached, err := wiz.Reached(r.Context(), key)
	if err != nil {
		c.logger.Error("failed to load wizard draft", "flow", s.Flow, "error", err)
		http.Error(w, "failed to load draft", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, s.Base(key.ScopeID)+"/step-"+strconv.Itoa(reached), http.StatusSeeOther)
}

// wizardCancelPage asks for confirmation before a draft is discarded
func wizardCancelPage(c *Console, s wizardSpec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scopeID := chi.URLParam(r, s.Param)
		c.render(w, r, http.StatusOK, "wizard_cancel", page{
			Title: fmt.Sprintf("Discard new %s?", s.Noun),
			Data: cancelView{
				Noun:      s.Noun,
				ActionURL: s.Base(scopeID) + "/cancel",
				ReturnURL: s.Base(scopeID) + "/step-1",
			},
		})
	}
}

// wizardCancel discards the draft once confirmed
func wizardCancel(c *Console, s wizardSpec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wiz, err := c.wizardFor(s)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form body", http.StatusBadRequest)
			return
		}

		key := draftKey(r, s)
		err = wiz.Cancel(r.Context(), key, r.PostForm.Get("confirm") == "yes")
		switch {
		case errors.Is(err, wizard.ErrConfirmationRequired):
			wizardCancelPage(c, s)(w, r)
		case err != nil:
			c.logger.Error("failed to discard draft", "flow", s.Flow, "error", err)
			http.Error(w, "failed to discard draft", http.StatusInternalServerError)
		default:
			c.notifier.Success("Draft discarded")
			http.Redirect(w, r, s.ListURL(key.ScopeID), http.StatusSeeOther)
		}
	}
}

// mountWizard registers the step and cancel routes of a wizard under pattern
func mountWizard(router chi.Router, c *Console, pattern string, s wizardSpec) {
	router.Get(pattern+"/step-{n}", wizardStep(c, s))
	router.Post(pattern+"/step-{n}", wizardAdvance(c, s))
	router.Get(pattern+"/cancel", wizardCancelPage(c, s))
	router.Post(pattern+"/cancel", wizardCancel(c, s))
}
