package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/promoforge/promoforge/internal/analytics/domain"
)

// parseAnalyticsFilter reads the shared start/end/campaignId/status
// query set. Dates are YYYY-MM-DD; end is inclusive of its whole day.
func parseAnalyticsFilter(c *gin.Context) (analyticsdomain.Filter, error) {
	var filter analyticsdomain.Filter

	if raw := strings.TrimSpace(c.Query("start")); raw != "" {
		start, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, analyticsdomain.ErrInvalidFilter
		}
		filter.Start = &start
	}
	if raw := strings.TrimSpace(c.Query("end")); raw != "" {
		end, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, analyticsdomain.ErrInvalidFilter
		}
		end = end.Add(24 * time.Hour)
		filter.End = &end
	}
	if raw := strings.TrimSpace(c.Query("campaignId")); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return filter, analyticsdomain.ErrInvalidFilter
		}
		filter.CampaignID = id
	}
	filter.Status = strings.TrimSpace(c.Query("status"))
	return filter, nil
}

func (s *Server) AnalyticsSummary(c *gin.Context) {
	filter, err := parseAnalyticsFilter(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	summary, err := s.analyticsSvc.Summary(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) AnalyticsCampaigns(c *gin.Context) {
	filter, err := parseAnalyticsFilter(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	reports, err := s.analyticsSvc.Campaigns(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (s *Server) AnalyticsTemporal(c *gin.Context) {
	filter, err := parseAnalyticsFilter(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	report, err := s.analyticsSvc.Temporal(c.Request.Context(), filter, c.Query("groupBy"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) AnalyticsExport(c *gin.Context) {
	filter, err := parseAnalyticsFilter(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	format := strings.ToLower(strings.TrimSpace(c.Query("format")))
	switch format {
	case "", "csv":
		payload, err := s.analyticsSvc.ExportCSV(c.Request.Context(), filter)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="coupons.csv"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", payload)
	case "json":
		rows, err := s.analyticsSvc.ExportJSON(c.Request.Context(), filter)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	default:
		AbortWithError(c, analyticsdomain.ErrInvalidFilter)
	}
}
