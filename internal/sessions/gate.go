package sessions

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/miniats/miniats/internal/models"
	"github.com/miniats/miniats/internal/tenant"
	"gorm.io/gorm"
)

const (
	ctxUserKey  = "session_user"
	ctxScopeKey = "tenant_scope"
)

// Gate holds the per-request checks in front of the protected route groups.
type Gate struct {
	Store *Store
	DB    *gorm.DB
}

func NewGate(store *Store, db *gorm.DB) *Gate {
	return &Gate{Store: store, DB: db}
}

// RequireSession redirects anonymous requests to login, carrying the original
// path in redirectTo. Authenticated users without a company are sent to
// onboarding; everyone else gets their user and tenant scope on the context.
func (g *Gate) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := g.currentUser(c)
		if user == nil {
			loginURL := "/auth/login?redirectTo=" + url.QueryEscape(c.Request.URL.Path)
			c.Redirect(http.StatusSeeOther, loginURL)
			c.Abort()
			return
		}
		if user.CompanyID == "" {
			c.Redirect(http.StatusSeeOther, "/onboarding")
			c.Abort()
			return
		}
		c.Set(ctxUserKey, user)
		c.Set(ctxScopeKey, tenant.Scope{CompanyID: user.CompanyID})
		c.Next()
	}
}

// RequireOnboarding gates /onboarding: a session is required but a company is
// not (yet).
func (g *Gate) RequireOnboarding() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := g.currentUser(c)
		if user == nil {
			loginURL := "/auth/login?redirectTo=" + url.QueryEscape(c.Request.URL.Path)
			c.Redirect(http.StatusSeeOther, loginURL)
			c.Abort()
			return
		}
		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// RequireAdmin additionally requires a row in the administrators table.
// Signed-in non-operators are bounced back to the regular app.
func (g *Gate) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := g.currentUser(c)
		if user == nil {
			loginURL := "/auth/login?redirectTo=" + url.QueryEscape(c.Request.URL.Path)
			c.Redirect(http.StatusSeeOther, loginURL)
			c.Abort()
			return
		}
		var count int64
		g.DB.Model(&models.Administrator{}).Where("email = ?", user.Email).Count(&count)
		if count == 0 {
			c.Redirect(http.StatusSeeOther, "/app/dashboard")
			c.Abort()
			return
		}
		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// RedirectAuthenticated bounces signed-in users away from the auth pages,
// to the dashboard or onboarding depending on company membership.
func (g *Gate) RedirectAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := g.currentUser(c)
		if user != nil {
			if user.CompanyID != "" {
				c.Redirect(http.StatusSeeOther, "/app/dashboard")
			} else {
				c.Redirect(http.StatusSeeOther, "/onboarding")
			}
			c.Abort()
			return
		}
		c.Next()
	}
}

func (g *Gate) currentUser(c *gin.Context) *models.User {
	token, err := c.Cookie(CookieName)
	if err != nil {
		return nil
	}
	user, err := g.Store.Get(token)
	if err != nil {
		return nil
	}
	return user
}

// CurrentUser returns the user set by the gate middleware.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ctxUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// CurrentScope returns the tenant scope set by RequireSession.
func CurrentScope(c *gin.Context) tenant.Scope {
	if v, ok := c.Get(ctxScopeKey); ok {
		if s, ok := v.(tenant.Scope); ok {
			return s
		}
	}
	return tenant.Scope{}
}
