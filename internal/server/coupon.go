package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	coupondomain "github.com/promoforge/promoforge/internal/coupon/domain"
	"github.com/promoforge/promoforge/pkg/db/pagination"
)

// GetForm serves the public signup form definition behind a token.
func (s *Server) GetForm(c *gin.Context) {
	view, err := s.formLinkSvc.ResolveToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type redeemFormRequest struct {
	Email     string            `json:"email"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Phone     string            `json:"phone"`
	Address   string            `json:"address"`
	Custom    map[string]string `json:"custom"`
}

// RedeemForm consumes a single-use token into a coupon.
func (s *Server) RedeemForm(c *gin.Context) {
	var req redeemFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.couponSvc.RedeemLink(c.Request.Context(), coupondomain.RedeemLinkRequest{
		Token:     c.Param("token"),
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
		Custom:    req.Custom,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) ListCoupons(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.couponSvc.List(c.Request.Context(), c.Query("campaign_id"), page)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) GetCoupon(c *gin.Context) {
	coupon, err := s.couponSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, coupon)
}

func (s *Server) RedeemCoupon(c *gin.Context) {
	coupon, err := s.couponSvc.Redeem(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, coupon)
}

func (s *Server) DeleteCoupon(c *gin.Context) {
	if err := s.couponSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) ListUsers(c *gin.Context) {
	users, err := s.enduserSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) GetUser(c *gin.Context) {
	user, data, err := s.enduserSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "custom_data": data})
}
