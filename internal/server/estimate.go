package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	estimatedomain "github.com/stockadefence/stockade/internal/estimate/domain"
	"github.com/stockadefence/stockade/internal/formula"
)

type estimateLineItem struct {
	NetLength  float64                             `json:"net_length"`
	Lines      float64                             `json:"lines"`
	Gates      float64                             `json:"gates"`
	Height     float64                             `json:"height"`
	Variables  map[string]any                      `json:"variables"`
	Selections []estimatedomain.ComponentSelection `json:"selections"`
}

type estimateRequest struct {
	ProductTypeID string             `json:"product_type_id"`
	StyleID       string             `json:"style_id"`
	LineItems     []estimateLineItem `json:"line_items"`
}

type estimateResponse struct {
	Rows        []estimatedomain.MaterialRow     `json:"rows"`
	LineResults [][]estimatedomain.FormulaResult `json:"line_results"`
	Diagnostics []estimatedomain.Diagnostic      `json:"diagnostics,omitempty"`
}

// Estimate runs the full calculation pipeline over ad-hoc line items without
// touching any stored project. Quoting screens use it for live previews.
func (s *Server) Estimate(c *gin.Context) {
	var req estimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequestError(c)
		return
	}
	if len(req.LineItems) == 0 {
		invalidRequestError(c)
		return
	}

	productTypeID, err := snowflake.ParseString(strings.TrimSpace(req.ProductTypeID))
	if err != nil {
		invalidRequestError(c)
		return
	}
	var styleID *snowflake.ID
	if strings.TrimSpace(req.StyleID) != "" {
		parsed, err := snowflake.ParseString(strings.TrimSpace(req.StyleID))
		if err != nil {
			invalidRequestError(c)
			return
		}
		styleID = &parsed
	}

	ctx := c.Request.Context()
	lineResults := make([][]estimatedomain.FormulaResult, 0, len(req.LineItems))
	var diags []estimatedomain.Diagnostic
	for _, item := range req.LineItems {
		inputs := estimatedomain.ProjectInputs{
			NetLength: item.NetLength,
			Lines:     item.Lines,
			Gates:     item.Gates,
			Height:    item.Height,
		}
		fctx, err := s.estimateSvc.BuildContext(ctx, productTypeID, styleID, inputs, item.Variables, item.Selections)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		exec, err := s.estimateSvc.ExecuteAllFormulas(ctx, productTypeID, styleID, fctx, item.Selections)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		diags = append(diags, exec.Diagnostics...)
		lineResults = append(lineResults, s.estimateSvc.ApplyRounding(exec.Results))
	}

	rows, aggDiags, err := s.estimateSvc.Aggregate(ctx, lineResults, nil)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	diags = append(diags, aggDiags...)

	respondData(c, estimateResponse{Rows: rows, LineResults: lineResults, Diagnostics: diags})
}

type previewFormulaRequest struct {
	Formula   string             `json:"formula"`
	Variables map[string]float64 `json:"variables"`
}

type previewFormulaResponse struct {
	Value     float64  `json:"value"`
	Variables []string `json:"variables"`
	Missing   []string `json:"missing,omitempty"`
}

// PreviewFormula parses and evaluates a single formula against caller-supplied
// variables, for the template editor's live check.
func (s *Server) PreviewFormula(c *gin.Context) {
	var req previewFormulaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequestError(c)
		return
	}

	expr, err := formula.Parse(req.Formula)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	eval, err := expr.Eval(formula.Vars(req.Variables))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	respondData(c, previewFormulaResponse{
		Value:     eval.Value,
		Variables: expr.Variables(),
		Missing:   eval.Missing,
	})
}
