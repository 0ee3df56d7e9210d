package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/satonic/satonic-admin/internal/api"
	"github.com/satonic/satonic-admin/internal/services"
)

type loginView struct {
	Expired bool
	Message string
}

// LoginPage shows the login-required notice and token form
func (c *Console) LoginPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c.render(w, r, http.StatusOK, "login", page{
			Title: "Sign in",
			Data:  loginView{Expired: r.URL.Query().Get("expired") == "1"},
		})
	}
}

// Login stores a pasted backend token as the console session
func (c *Console) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form body", http.StatusBadRequest)
			return
		}

		session, err := c.sessions.Login(r.Context(), r.PostForm.Get("token"))
		if err != nil {
			status := http.StatusUnprocessableEntity
			if !errors.Is(err, services.ErrEmptyToken) && !errors.Is(err, services.ErrSessionExpired) {
				status = http.StatusInternalServerError
				c.logger.Error("login failed", "error", err)
			}
			c.render(w, r, status, "login", page{
				Title:     "Sign in",
				Error:     &api.Error{Status: status, Message: err.Error()},
				ScrollTop: true,
				Data:      loginView{},
			})
			return
		}

		cookie := &http.Cookie{
			Name:     c.cookie,
			Value:    session.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}
		if session.ExpiresAt != nil {
			cookie.Expires = *session.ExpiresAt
		}
		http.SetCookie(w, cookie)

		c.notifier.Success("Signed in")
		http.Redirect(w, r, "/admin/tenants", http.StatusSeeOther)
	}
}

// Logout ends the session
func (c *Console) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := c.sessions.Logout(r.Context()); err != nil {
			c.logger.Error("logout failed", "error", err)
		}

		http.SetCookie(w, &http.Cookie{
			Name:     c.cookie,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: true,
		})
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

// AuthMiddleware is a middleware for authenticating console requests
func (c *Console) AuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Get session ID from the cookie
			cookie, err := r.Cookie(c.cookie)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			// Validate session
			session, err := c.sessions.Validate(r.Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, services.ErrNoSession) {
					c.logger.Error("failed to validate session", "error", err)
				}
				redirectExpired(w, r)
				return
			}

			// Call the next handler with the updated context
			ctx := NewContextWithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
