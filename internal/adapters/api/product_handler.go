package api

import (
	"net/http"
	"time"

	"floodmap.app/internal/core/product"
	"floodmap.app/internal/ports"
	"floodmap.app/pkg/errors"
	"floodmap.app/pkg/validation"
	"github.com/gin-gonic/gin"
)

// DateRangeQuery binds ?from=YYYY-MM-DD&to=YYYY-MM-DD
type DateRangeQuery struct {
	From string `form:"from" binding:"required,isodate"`
	To   string `form:"to" binding:"required,isodate"`
}

// DownloadRequest is the body of POST /api/areas/:id/downloads
type DownloadRequest struct {
	From     string `json:"from" binding:"required,isodate"`
	To       string `json:"to" binding:"required,isodate"`
	GroupKey string `json:"group_key" binding:"required"`
}

// GeometryURI binds the path of GET /api/products/:id/geometry/:kind
type GeometryURI struct {
	ID   string `uri:"id" binding:"required"`
	Kind string `uri:"kind" binding:"required,geometrykind"`
}

// MemberResponse describes one product of a group
type MemberResponse struct {
	ProductID     string    `json:"product_id"`
	Timestamp     time.Time `json:"timestamp"`
	Downloaded    bool      `json:"downloaded"`
	FloodPath     string    `json:"flood_path,omitempty"`
	FootprintPath string    `json:"footprint_path,omitempty"`
}

// GroupResponse describes one group of products taken together
type GroupResponse struct {
	Key        string           `json:"key"`
	Downloaded bool             `json:"downloaded"`
	Members    []MemberResponse `json:"members"`
}

// ProductListResponse is returned by GET /api/areas/:id/products
type ProductListResponse struct {
	AOIID  string          `json:"aoi_id"`
	From   string          `json:"from"`
	To     string          `json:"to"`
	Groups []GroupResponse `json:"groups"`
}

// MemberOutcomeResponse reports what happened to one member of a download
type MemberOutcomeResponse struct {
	ProductID string `json:"product_id"`
	Outcome   string `json:"outcome"`
	State     string `json:"state"`
	Error     string `json:"error,omitempty"`
}

// DownloadResponse is returned by POST /api/areas/:id/downloads
type DownloadResponse struct {
	AOIID        string                  `json:"aoi_id"`
	GroupKey     string                  `json:"group_key"`
	Materialized int                     `json:"materialized"`
	Skipped      int                     `json:"skipped"`
	Failed       int                     `json:"failed"`
	Members      []MemberOutcomeResponse `json:"members"`
}

// AreaCoverageResponse counts the materialized products of one AOI
type AreaCoverageResponse struct {
	AOIID        string     `json:"aoi_id"`
	Name         string     `json:"name"`
	Materialized int        `json:"materialized"`
	Latest       *time.Time `json:"latest,omitempty"`
}

// CatalogResponse is returned by GET /api/catalog
type CatalogResponse struct {
	Areas    []AreaCoverageResponse `json:"areas"`
	Orphaned []MemberResponse       `json:"orphaned"`
}

func parseDateRange(from, to string) (product.DateRange, error) {
	fromDate, ok := validation.ParseDate(from)
	if !ok {
		return product.DateRange{}, errors.NewValidationError("from must be a date in YYYY-MM-DD format")
	}
	toDate, ok := validation.ParseDate(to)
	if !ok {
		return product.DateRange{}, errors.NewValidationError("to must be a date in YYYY-MM-DD format")
	}
	if !validation.IsValidDateRange(fromDate, toDate) {
		return product.DateRange{}, errors.NewValidationError("from must not be after to")
	}
	return product.DateRange{From: fromDate, To: toDate}, nil
}

func toGroupResponse(summary product.GroupSummary) GroupResponse {
	group := GroupResponse{
		Key:        summary.Label(),
		Downloaded: summary.Downloaded(),
		Members:    make([]MemberResponse, 0, len(summary.Members)),
	}
	for _, m := range summary.Members {
		member := MemberResponse{
			ProductID:  m.ProductID,
			Timestamp:  m.Timestamp.UTC(),
			Downloaded: m.Downloaded,
		}
		if m.Artifact != nil {
			member.FloodPath = m.Artifact.FloodPath
			member.FootprintPath = m.Artifact.FootprintPath
		}
		group.Members = append(group.Members, member)
	}
	return group
}

func toDownloadResponse(result *product.DownloadResult) DownloadResponse {
	response := DownloadResponse{
		AOIID:        result.AOIID,
		GroupKey:     result.GroupKey.UTC().Format(product.GroupKeyLayout),
		Materialized: result.Count(product.OutcomeMaterialized),
		Skipped:      result.Count(product.OutcomeSkipped),
		Failed:       result.Count(product.OutcomeFailed),
		Members:      make([]MemberOutcomeResponse, 0, len(result.Members)),
	}
	for _, m := range result.Members {
		member := MemberOutcomeResponse{
			ProductID: m.ProductID,
			Outcome:   string(m.Outcome),
			State:     m.State.String(),
		}
		if m.Err != nil {
			member.Error = errors.TypeOf(m.Err).String()
		}
		response.Members = append(response.Members, member)
	}
	return response
}

// listProducts handles GET /api/areas/:id/products requests
func (s *HTTPServerAdapter) listProducts(c *gin.Context) {
	var query DateRangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		s.handleError(c, errors.NewValidationError("from and to are required dates in YYYY-MM-DD format"))
		return
	}
	dates, err := parseDateRange(query.From, query.To)
	if err != nil {
		s.handleError(c, err)
		return
	}

	aoiID := c.Param("id")
	summaries, err := s.productUseCase.AvailableProducts(c.Request.Context(), aoiID, dates)
	if err != nil {
		s.handleError(c, err)
		return
	}

	response := ProductListResponse{
		AOIID:  aoiID,
		From:   query.From,
		To:     query.To,
		Groups: make([]GroupResponse, 0, len(summaries)),
	}
	for _, summary := range summaries {
		response.Groups = append(response.Groups, toGroupResponse(summary))
	}
	c.JSON(http.StatusOK, response)
}

// downloadGroup handles POST /api/areas/:id/downloads requests
func (s *HTTPServerAdapter) downloadGroup(c *gin.Context) {
	var req DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, errors.NewValidationError("Invalid request format"))
		return
	}
	dates, err := parseDateRange(req.From, req.To)
	if err != nil {
		s.handleError(c, err)
		return
	}
	key, err := time.Parse(product.GroupKeyLayout, req.GroupKey)
	if err != nil {
		s.handleError(c, errors.NewValidationError("group_key must be an RFC3339 timestamp"))
		return
	}

	result, err := s.productUseCase.DownloadGroupByKey(c.Request.Context(), c.Param("id"), dates, key)
	if err != nil {
		s.handleError(c, err)
		return
	}

	s.logger.Info("Group download requested",
		ports.F("request_id", c.GetString(requestIDKey)),
		ports.F("aoi_id", result.AOIID),
		ports.F("group", req.GroupKey),
		ports.F("failed", result.Count(product.OutcomeFailed)))
	c.JSON(http.StatusOK, toDownloadResponse(result))
}

// getGeometry handles GET /api/products/:id/geometry/:kind requests
func (s *HTTPServerAdapter) getGeometry(c *gin.Context) {
	var uri GeometryURI
	if err := c.ShouldBindUri(&uri); err != nil {
		s.handleError(c, errors.NewValidationError("kind must be flood or footprint"))
		return
	}

	fc, err := s.productUseCase.GetGeometry(c.Request.Context(), uri.ID, ports.GeometryKind(uri.Kind))
	if err != nil {
		s.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, fc)
}

// getCatalog handles GET /api/catalog requests
func (s *HTTPServerAdapter) getCatalog(c *gin.Context) {
	report, err := s.productUseCase.CatalogCoverage(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}

	response := CatalogResponse{
		Areas:    make([]AreaCoverageResponse, 0, len(report.Areas)),
		Orphaned: make([]MemberResponse, 0, len(report.Orphaned)),
	}
	for _, a := range report.Areas {
		coverage := AreaCoverageResponse{AOIID: a.AOIID, Name: a.Name, Materialized: a.Materialized}
		if !a.Latest.IsZero() {
			latest := a.Latest.UTC()
			coverage.Latest = &latest
		}
		response.Areas = append(response.Areas, coverage)
	}
	for _, entry := range report.Orphaned {
		response.Orphaned = append(response.Orphaned, MemberResponse{
			ProductID:     entry.ProductID,
			Timestamp:     entry.Timestamp.UTC(),
			Downloaded:    true,
			FloodPath:     entry.FloodPath,
			FootprintPath: entry.FootprintPath,
		})
	}
	c.JSON(http.StatusOK, response)
}
