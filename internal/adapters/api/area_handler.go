package api

import (
	"encoding/json"
	"net/http"

	"floodmap.app/internal/core/area"
	"floodmap.app/internal/ports"
	"floodmap.app/pkg/errors"
	"floodmap.app/pkg/geo"
	"github.com/gin-gonic/gin"
)

// CreateAreaRequest is the body of POST /api/areas. Polygon is a GeoJSON
// Polygon geometry or a Feature wrapping one.
type CreateAreaRequest struct {
	Name    string          `json:"name" binding:"required"`
	Polygon json.RawMessage `json:"polygon" binding:"required"`
}

// AreaResponse represents one AOI in API responses
type AreaResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Preview  string          `json:"preview"`
	Geometry json.RawMessage `json:"geometry,omitempty"`
}

// AreaListResponse wraps the AOI listing
type AreaListResponse struct {
	Areas []AreaResponse `json:"areas"`
}

func toAreaResponse(a area.AOI) AreaResponse {
	return AreaResponse{
		ID:       a.ID,
		Name:     a.Name,
		Preview:  a.Preview(),
		Geometry: a.Geometry,
	}
}

// listAreas handles GET /api/areas requests
func (s *HTTPServerAdapter) listAreas(c *gin.Context) {
	areas, err := s.areaUseCase.SortedAreas(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}

	response := AreaListResponse{Areas: make([]AreaResponse, 0, len(areas))}
	for _, a := range areas {
		response.Areas = append(response.Areas, toAreaResponse(a))
	}
	c.JSON(http.StatusOK, response)
}

// createArea handles POST /api/areas requests
func (s *HTTPServerAdapter) createArea(c *gin.Context) {
	var req CreateAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.handleError(c, errors.NewValidationError("Invalid request format"))
		return
	}

	polygon, err := geo.ParsePolygon(req.Polygon)
	if err != nil {
		s.handleError(c, errors.NewValidationError("Invalid polygon: "+err.Error()))
		return
	}

	created, err := s.areaUseCase.CreateArea(c.Request.Context(), area.CreateAreaRequest{
		Name:    req.Name,
		Polygon: polygon,
	})
	if err != nil {
		s.handleError(c, err)
		return
	}

	s.logger.Info("Area registered",
		ports.F("request_id", c.GetString(requestIDKey)),
		ports.F("aoi_id", created.ID))
	c.JSON(http.StatusCreated, toAreaResponse(*created))
}

// deleteArea handles DELETE /api/areas/:id?confirm=<name> requests
func (s *HTTPServerAdapter) deleteArea(c *gin.Context) {
	confirmation, ok := c.GetQuery("confirm")
	if !ok {
		s.handleError(c, errors.NewValidationError("confirm query parameter with the area name is required"))
		return
	}

	if err := s.areaUseCase.DeleteArea(c.Request.Context(), c.Param("id"), confirmation); err != nil {
		s.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
