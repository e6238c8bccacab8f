package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/ikkasa/orderhub/internal/infrastructure/logger"
	"github.com/ikkasa/orderhub/internal/interfaces/http/dto"
)

// Request is a GraphQL-over-HTTP request
type Request struct {
	Query         string         `json:"query" form:"query"`
	OperationName string         `json:"operationName" form:"operationName"`
	Variables     map[string]any `json:"variables"`
}

// Handler serves the schema over HTTP
type Handler struct {
	schema graphql.Schema
}

// NewHandler creates a new Handler
func NewHandler(schema graphql.Schema) *Handler {
	return &Handler{schema: schema}
}

// RegisterRoutes mounts GET and POST /graphql on rg
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/graphql", h.Serve)
	rg.GET("/graphql", h.Serve)
}

// Serve executes one operation. Resolver failures are reported in the
// errors array with a 200 status; only unreadable requests answer 400.
func (h *Handler) Serve(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        c.Request.Context(),
	})
	c.JSON(http.StatusOK, result)
}

func (h *Handler) bind(c *gin.Context) (Request, bool) {
	var req Request
	if c.Request.Method == http.MethodGet {
		req.Query = c.Query("query")
		req.OperationName = c.Query("operationName")
		if vars := c.Query("variables"); vars != "" {
			if err := json.Unmarshal([]byte(vars), &req.Variables); err != nil {
				badRequest(c, "Invalid variables: "+err.Error())
				return req, false
			}
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON body: "+err.Error())
		return req, false
	}

	if req.Query == "" {
		badRequest(c, "Query is required")
		return req, false
	}
	return req, true
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, message, c.GetString(logger.RequestIDKey)))
}
