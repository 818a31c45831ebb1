package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	projectdomain "github.com/stockadefence/stockade/internal/project/domain"
)

// RecalculateProject runs a full calculation pass over every line item of the
// project and replaces its stored material list.
func (s *Server) RecalculateProject(c *gin.Context) {
	resp, err := s.projectSvc.Recalculate(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

func (s *Server) ProjectMaterials(c *gin.Context) {
	rows, err := s.projectSvc.Materials(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, rows)
}

// SetAdjustment records a manual quantity delta on one material row. The
// delta survives subsequent recalculations as long as its row does.
func (s *Server) SetAdjustment(c *gin.Context) {
	var req projectdomain.SetAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequestError(c)
		return
	}
	if strings.TrimSpace(req.ComponentCode) == "" || strings.TrimSpace(req.MaterialSKU) == "" {
		invalidRequestError(c)
		return
	}

	row, err := s.projectSvc.SetAdjustment(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, row)
}
