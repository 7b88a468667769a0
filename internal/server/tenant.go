package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/promoforge/promoforge/internal/tenantctx"
	tenantdomain "github.com/promoforge/promoforge/internal/tenant/domain"
)

func (s *Server) GetTenant(c *gin.Context) {
	tenantID, ok := tenantctx.TenantIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrInvalidTenant)
		return
	}

	tenant, err := s.tenantSvc.GetByID(c.Request.Context(), tenantID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}

type updateTenantRequest struct {
	Name          *string `json:"name"`
	EmailFromName *string `json:"email_from_name"`
	MailgunDomain *string `json:"mailgun_domain"`
}

func (s *Server) UpdateTenant(c *gin.Context) {
	tenantID, ok := tenantctx.TenantIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrInvalidTenant)
		return
	}

	var req updateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	tenant, err := s.tenantSvc.Update(c.Request.Context(), tenantdomain.UpdateTenantRequest{
		ID:            tenantID.String(),
		Name:          req.Name,
		EmailFromName: req.EmailFromName,
		MailgunDomain: req.MailgunDomain,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}
