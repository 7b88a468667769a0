package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	campaigndomain "github.com/promoforge/promoforge/internal/campaign/domain"
)

type createCampaignRequest struct {
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	DiscountType     string     `json:"discount_type"`
	DiscountValue    float64    `json:"discount_value"`
	ExpiryDate       *time.Time `json:"expiry_date"`
	CouponExpiryDate *time.Time `json:"coupon_expiry_date"`
}

func (s *Server) CreateCampaign(c *gin.Context) {
	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	campaign, err := s.campaignSvc.Create(c.Request.Context(), campaigndomain.CreateCampaignRequest{
		Name:             req.Name,
		Description:      req.Description,
		DiscountType:     req.DiscountType,
		DiscountValue:    req.DiscountValue,
		ExpiryDate:       req.ExpiryDate,
		CouponExpiryDate: req.CouponExpiryDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, campaign)
}

type updateCampaignRequest struct {
	Name             *string    `json:"name"`
	Description      *string    `json:"description"`
	DiscountType     *string    `json:"discount_type"`
	DiscountValue    *float64   `json:"discount_value"`
	ExpiryDate       *time.Time `json:"expiry_date"`
	CouponExpiryDate *time.Time `json:"coupon_expiry_date"`
}

func (s *Server) UpdateCampaign(c *gin.Context) {
	var req updateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	campaign, err := s.campaignSvc.Update(c.Request.Context(), campaigndomain.UpdateCampaignRequest{
		ID:               c.Param("id"),
		Name:             req.Name,
		Description:      req.Description,
		DiscountType:     req.DiscountType,
		DiscountValue:    req.DiscountValue,
		ExpiryDate:       req.ExpiryDate,
		CouponExpiryDate: req.CouponExpiryDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func (s *Server) ListCampaigns(c *gin.Context) {
	campaigns, err := s.campaignSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaigns)
}

func (s *Server) GetCampaign(c *gin.Context) {
	campaign, err := s.campaignSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func (s *Server) DeleteCampaign(c *gin.Context) {
	if err := s.campaignSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) ActivateCampaign(c *gin.Context) {
	if _, err := s.campaignSvc.Activate(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) DeactivateCampaign(c *gin.Context) {
	if _, err := s.campaignSvc.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) SetFormConfig(c *gin.Context) {
	var cfg campaigndomain.FormConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	campaign, err := s.campaignSvc.SetFormConfig(c.Request.Context(), c.Param("id"), cfg)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func (s *Server) GetCustomFields(c *gin.Context) {
	fields, err := s.campaignSvc.GetCustomFields(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"custom_fields": fields})
}

type setCustomFieldsRequest struct {
	CustomFields []campaigndomain.CustomField `json:"custom_fields"`
}

func (s *Server) SetCustomFields(c *gin.Context) {
	var req setCustomFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	fields, err := s.campaignSvc.SetCustomFields(c.Request.Context(), c.Param("id"), req.CustomFields)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"custom_fields": fields})
}

type setCampaignProductsRequest struct {
	ProductIDs []string `json:"product_ids"`
}

func (s *Server) SetCampaignProducts(c *gin.Context) {
	var req setCampaignProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	kept, err := s.campaignSvc.SetProducts(c.Request.Context(), c.Param("id"), req.ProductIDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_ids": kept})
}

func (s *Server) ListCampaignProducts(c *gin.Context) {
	ids, err := s.campaignSvc.ListProducts(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_ids": ids})
}

type generateFormLinksRequest struct {
	Count int `json:"count"`
}

func (s *Server) GenerateFormLinks(c *gin.Context) {
	var req generateFormLinksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	links, err := s.formLinkSvc.GenerateLinks(c.Request.Context(), c.Param("id"), req.Count)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"links": links, "count": len(links)})
}

func (s *Server) ListFormLinks(c *gin.Context) {
	links, stats, err := s.formLinkSvc.ListLinks(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"links": links, "statistics": stats})
}
