package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	materialdomain "github.com/stockadefence/stockade/internal/material/domain"
	producttypedomain "github.com/stockadefence/stockade/internal/producttype/domain"
)

type productTypeResponse struct {
	ProductType producttypedomain.ProductType    `json:"product_type"`
	Styles      []producttypedomain.ProductStyle `json:"styles"`
	Variables   []producttypedomain.Variable     `json:"variables"`
}

// GetProductType returns one product type with its styles and variables, the
// configuration a quoting screen needs before it can build line items.
func (s *Server) GetProductType(c *gin.Context) {
	ctx := c.Request.Context()

	pt, err := s.productTypeRepo.FindProductTypeByCode(ctx, s.db, strings.TrimSpace(c.Param("code")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if pt == nil {
		AbortWithError(c, producttypedomain.ErrProductTypeNotFound)
		return
	}

	styles, err := s.productTypeRepo.ListStyles(ctx, s.db, pt.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	variables, err := s.productTypeRepo.ListVariables(ctx, s.db, pt.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, productTypeResponse{ProductType: *pt, Styles: styles, Variables: variables})
}

func (s *Server) GetMaterial(c *gin.Context) {
	mat, err := s.materialRepo.FindBySKU(c.Request.Context(), s.db, strings.TrimSpace(c.Param("sku")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if mat == nil {
		AbortWithError(c, materialdomain.ErrMaterialNotFound)
		return
	}
	respondData(c, mat)
}

// ListEligibleMaterials returns the materials selectable for a component per
// its eligibility rules.
func (s *Server) ListEligibleMaterials(c *gin.Context) {
	componentID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		invalidRequestError(c)
		return
	}

	items, err := s.materialRepo.ListEligible(c.Request.Context(), s.db, componentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, items)
}
