package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/promoforge/promoforge/internal/auth/domain"
	tenantdomain "github.com/promoforge/promoforge/internal/tenant/domain"
)

type signupRequest struct {
	TenantName string `json:"tenant_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

// Signup provisions a tenant and its first admin in one step.
func (s *Server) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	ctx := c.Request.Context()
	tenant, err := s.tenantSvc.Create(ctx, tenantdomain.CreateTenantRequest{Name: req.TenantName})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	admin, err := s.authSvc.CreateAdmin(ctx, authdomain.CreateAdminRequest{
		TenantID: tenant.ID,
		Email:    req.Email,
		Password: req.Password,
		Role:     authdomain.RoleAdmin,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"tenant": tenant, "admin": admin})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.authSvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.setSessionCookie(c, result.RawToken, int(s.cfg.SessionTTL.Seconds()))
	c.JSON(http.StatusOK, gin.H{"admin": result.Admin})
}

func (s *Server) Logout(c *gin.Context) {
	raw, err := c.Cookie(sessionCookieName)
	if err == nil && raw != "" {
		if err := s.authSvc.Logout(c.Request.Context(), raw); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	s.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) Me(c *gin.Context) {
	session := sessionFromGin(c)
	admin := adminFromGin(c)
	if session == nil || admin == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	tenant, err := s.tenantSvc.GetByID(c.Request.Context(), session.TenantID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"admin": admin, "tenant": tenant})
}

// CSRFToken hands out the session-bound token mutating requests must
// echo in the X-CSRF-Token header.
func (s *Server) CSRFToken(c *gin.Context) {
	session := sessionFromGin(c)
	if session == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	token, err := s.authSvc.EnsureCSRF(c.Request.Context(), session)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"csrf_token": token})
}

func (s *Server) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, value, maxAge, "/", "", s.cfg.AuthCookieSecure, true)
}
