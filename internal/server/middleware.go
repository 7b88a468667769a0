package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/promoforge/promoforge/internal/auth/domain"
	"github.com/promoforge/promoforge/internal/tenantctx"
)

const (
	sessionCookieName = "pf_session"
	csrfHeaderName    = "X-CSRF-Token"

	contextSessionKey = "session"
	contextAdminKey   = "admin"
)

// SessionRequired authenticates the request via the session cookie and
// stashes session and admin for downstream middleware.
func (s *Server) SessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(sessionCookieName)
		if err != nil || strings.TrimSpace(raw) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		session, admin, err := s.authSvc.Authenticate(c.Request.Context(), raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextSessionKey, session)
		c.Set(contextAdminKey, admin)
		c.Next()
	}
}

// TenantBySlug resolves the :tenant path segment. Unknown slugs read as
// not found so callers cannot probe which tenants exist.
func (s *Server) TenantBySlug() gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := strings.TrimSpace(c.Param("tenant"))
		if slug == "" {
			AbortWithError(c, ErrNotFound)
			return
		}

		tenant, err := s.tenantSvc.ResolveSlug(c.Request.Context(), slug)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := tenantctx.WithTenantID(c.Request.Context(), int64(tenant.ID))
		ctx = tenantctx.WithSlug(ctx, tenant.Slug)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// LegacyTenant infers the tenant on slug-less admin routes: first from
// the session, then from a /t/<slug>/ prefix in the Referer. No
// resolvable tenant rejects the request before any handler runs.
func (s *Server) LegacyTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessionFromGin(c)
		if session != nil && session.TenantID != 0 {
			ctx := tenantctx.WithTenantID(c.Request.Context(), int64(session.TenantID))
			c.Request = c.Request.WithContext(ctx)
			c.Next()
			return
		}

		slug := slugFromReferer(c.Request.Header.Get("Referer"))
		if slug == "" {
			AbortWithError(c, ErrInvalidTenant)
			return
		}

		tenant, err := s.tenantSvc.ResolveSlug(c.Request.Context(), slug)
		if err != nil {
			AbortWithError(c, ErrInvalidTenant)
			return
		}

		ctx := tenantctx.WithTenantID(c.Request.Context(), int64(tenant.ID))
		ctx = tenantctx.WithSlug(ctx, tenant.Slug)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireTenantMatch rejects an authenticated admin acting on a path
// tenant other than the session tenant, even though both resolve on
// their own.
func (s *Server) RequireTenantMatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessionFromGin(c)
		if session == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		pathTenant, ok := tenantctx.TenantIDFromContext(c.Request.Context())
		if !ok || pathTenant == 0 {
			AbortWithError(c, ErrInvalidTenant)
			return
		}
		if session.TenantID != pathTenant {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

// RequireRole limits the route to admins holding one of the roles.
func (s *Server) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin := adminFromGin(c)
		if admin == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		for _, role := range roles {
			if admin.Role == role {
				c.Next()
				return
			}
		}
		AbortWithError(c, ErrForbidden)
	}
}

// CSRFRequired checks the CSRF header on mutating methods.
func (s *Server) CSRFRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		session := sessionFromGin(c)
		if session == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		token := strings.TrimSpace(c.GetHeader(csrfHeaderName))
		if token == "" || session.CSRFToken == "" || token != session.CSRFToken {
			AbortWithError(c, ErrInvalidCSRF)
			return
		}
		c.Next()
	}
}

func sessionFromGin(c *gin.Context) *authdomain.Session {
	value, ok := c.Get(contextSessionKey)
	if !ok {
		return nil
	}
	session, _ := value.(*authdomain.Session)
	return session
}

func adminFromGin(c *gin.Context) *authdomain.Admin {
	value, ok := c.Get(contextAdminKey)
	if !ok {
		return nil
	}
	admin, _ := value.(*authdomain.Admin)
	return admin
}

// slugFromReferer pulls the slug out of a /t/<slug>/... referer path.
func slugFromReferer(referer string) string {
	referer = strings.TrimSpace(referer)
	if referer == "" {
		return ""
	}

	parsed, err := url.Parse(referer)
	if err != nil {
		return ""
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "t" && parts[1] != "" {
		return parts[1]
	}
	return ""
}
