package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/promoforge/promoforge/internal/analytics/domain"
	authdomain "github.com/promoforge/promoforge/internal/auth/domain"
	campaigndomain "github.com/promoforge/promoforge/internal/campaign/domain"
	coupondomain "github.com/promoforge/promoforge/internal/coupon/domain"
	enduserdomain "github.com/promoforge/promoforge/internal/enduser/domain"
	formlinkdomain "github.com/promoforge/promoforge/internal/formlink/domain"
	productdomain "github.com/promoforge/promoforge/internal/product/domain"
	tenantdomain "github.com/promoforge/promoforge/internal/tenant/domain"
	pkgdb "github.com/promoforge/promoforge/pkg/db"
	"gorm.io/gorm"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInvalidTenant  = errors.New("invalid_tenant")
	ErrInvalidCSRF    = errors.New("invalid_csrf_token")
	ErrNotFound       = errors.New("not_found")
)

type errorResponse struct {
	Error string `json:"error"`
}

// ErrorHandlingMiddleware renders the last collected error as the
// uniform {"error": "..."} body.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, message := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: message})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal server error"

	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionExpired):
		return http.StatusUnauthorized, "unauthorized"

	case errors.Is(err, ErrForbidden),
		errors.Is(err, ErrInvalidCSRF):
		return http.StatusForbidden, "forbidden"

	case errors.Is(err, ErrInvalidTenant),
		isInvalidTenantError(err):
		return http.StatusBadRequest, "invalid tenant"

	case isValidationError(err):
		return http.StatusBadRequest, err.Error()

	case isConflictError(err):
		return http.StatusConflict, err.Error()

	case isNotFoundError(err):
		return http.StatusNotFound, "not found"

	case pkgdb.IsBusyErr(err):
		return http.StatusServiceUnavailable, "store busy, retry later"

	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func isInvalidTenantError(err error) bool {
	switch {
	case errors.Is(err, campaigndomain.ErrInvalidTenant),
		errors.Is(err, productdomain.ErrInvalidTenant),
		errors.Is(err, formlinkdomain.ErrInvalidTenant),
		errors.Is(err, coupondomain.ErrInvalidTenant),
		errors.Is(err, enduserdomain.ErrInvalidTenant),
		errors.Is(err, analyticsdomain.ErrInvalidTenant):
		return true
	default:
		return false
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, tenantdomain.ErrInvalidName),
		errors.Is(err, tenantdomain.ErrInvalidID),
		errors.Is(err, authdomain.ErrInvalidEmail),
		errors.Is(err, authdomain.ErrInvalidPassword),
		errors.Is(err, campaigndomain.ErrInvalidID),
		errors.Is(err, campaigndomain.ErrInvalidName),
		errors.Is(err, campaigndomain.ErrInvalidDiscountType),
		errors.Is(err, campaigndomain.ErrInvalidDiscount),
		errors.Is(err, campaigndomain.ErrInvalidExpiry),
		errors.Is(err, campaigndomain.ErrInvalidProductID),
		errors.Is(err, campaigndomain.ErrTooManyCustomFields),
		errors.Is(err, campaigndomain.ErrInvalidCustomField),
		errors.Is(err, campaigndomain.ErrCampaignExpired),
		errors.Is(err, productdomain.ErrInvalidID),
		errors.Is(err, productdomain.ErrInvalidName),
		errors.Is(err, productdomain.ErrInvalidValue),
		errors.Is(err, productdomain.ErrInvalidSKU),
		errors.Is(err, formlinkdomain.ErrInvalidCampaignID),
		errors.Is(err, formlinkdomain.ErrInvalidCount),
		errors.Is(err, coupondomain.ErrInvalidID),
		errors.Is(err, coupondomain.ErrInvalidCampaignID),
		errors.Is(err, coupondomain.ErrInvalidPageToken),
		errors.Is(err, coupondomain.ErrMissingField),
		errors.Is(err, coupondomain.ErrCampaignInactive),
		errors.Is(err, coupondomain.ErrCampaignExpired),
		errors.Is(err, coupondomain.ErrCouponExpired),
		errors.Is(err, enduserdomain.ErrInvalidEmail),
		errors.Is(err, enduserdomain.ErrInvalidID),
		errors.Is(err, analyticsdomain.ErrInvalidGranularity),
		errors.Is(err, analyticsdomain.ErrInvalidFilter):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, authdomain.ErrAdminExists),
		errors.Is(err, campaigndomain.ErrCodeConflict),
		errors.Is(err, productdomain.ErrSKUConflict),
		errors.Is(err, coupondomain.ErrLinkUsed),
		errors.Is(err, coupondomain.ErrAlreadyRedeemed),
		errors.Is(err, formlinkdomain.ErrTokenUsed):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, tenantdomain.ErrNotFound),
		errors.Is(err, campaigndomain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, formlinkdomain.ErrCampaignNotFound),
		errors.Is(err, formlinkdomain.ErrTokenNotFound),
		errors.Is(err, coupondomain.ErrNotFound),
		errors.Is(err, coupondomain.ErrLinkNotFound),
		errors.Is(err, enduserdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

// classifyErrorForLog tags request log lines with a coarse error class.
func classifyErrorForLog(err error) string {
	status, _ := mapError(err)
	switch {
	case status == http.StatusServiceUnavailable:
		return "store_busy"
	case status >= http.StatusInternalServerError:
		return "internal"
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusConflict:
		return "conflict"
	case status == http.StatusForbidden:
		return "forbidden"
	case status == http.StatusUnauthorized:
		return "unauthorized"
	default:
		return "validation"
	}
}
