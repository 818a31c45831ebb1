package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	estimatedomain "github.com/stockadefence/stockade/internal/estimate/domain"
	"github.com/stockadefence/stockade/internal/formula"
	materialdomain "github.com/stockadefence/stockade/internal/material/domain"
	producttypedomain "github.com/stockadefence/stockade/internal/producttype/domain"
	projectdomain "github.com/stockadefence/stockade/internal/project/domain"
)

type DataResponse struct {
	Data any `json:"data"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// AbortWithError maps domain sentinel errors onto HTTP statuses. Unknown
// errors become 500 without leaking internals.
func AbortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal_error"

	switch {
	case errors.Is(err, estimatedomain.ErrProductTypeNotFound),
		errors.Is(err, producttypedomain.ErrProductTypeNotFound),
		errors.Is(err, materialdomain.ErrMaterialNotFound),
		errors.Is(err, projectdomain.ErrProjectNotFound),
		errors.Is(err, projectdomain.ErrRowNotFound):
		status = http.StatusNotFound
		msg = err.Error()
	case errors.Is(err, estimatedomain.ErrStyleNotFound),
		errors.Is(err, projectdomain.ErrInvalidProject),
		errors.Is(err, formula.ErrEmptyFormula),
		errors.Is(err, formula.ErrSyntax),
		errors.Is(err, formula.ErrUnknownFunction),
		errors.Is(err, formula.ErrBadArity):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, projectdomain.ErrPassSuperseded):
		status = http.StatusConflict
		msg = err.Error()
	}

	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func invalidRequestError(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
}
