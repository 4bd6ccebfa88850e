package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	idsvc "github.com/rzbill/flake/internal/services/ids"
)

// IDsController serves id issue and decode endpoints.
type IDsController struct {
	svc *idsvc.Service
}

func NewIDsController(svc *idsvc.Service) *IDsController {
	return &IDsController{svc: svc}
}

// RegisterRoutes mounts:
//
//	GET|POST /v1/ids        ?count=N&format=F
//	GET      /v1/ids/:id    ?format=F
func (c *IDsController) RegisterRoutes(g *gin.RouterGroup) {
	g.GET("/ids", c.next)
	g.POST("/ids", c.next)
	g.GET("/ids/:id", c.decode)
}

// nextReq is the optional POST body; query parameters win over it.
type nextReq struct {
	Count  int    `json:"count" form:"count"`
	Format string `json:"format" form:"format"`
}

type nextResp struct {
	IDs    []string `json:"ids"`
	Format string   `json:"format"`
}

func (c *IDsController) next(ctx *gin.Context) {
	var req nextReq
	if ctx.Request.Method == http.MethodPost && ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if q, ok := ctx.GetQuery("count"); ok || req.Count == 0 {
		n, err := parseCount(q)
		if err != nil {
			writeError(ctx, err)
			return
		}
		req.Count = n
	}
	if q, ok := ctx.GetQuery("format"); ok {
		req.Format = q
	}

	ids, err := c.svc.NextEncoded(ctx.Request.Context(), req.Count, req.Format)
	if err != nil {
		writeError(ctx, err)
		return
	}
	format := req.Format
	if format == "" {
		format = "decimal"
	}
	ctx.JSON(http.StatusOK, nextResp{IDs: ids, Format: format})
}

func (c *IDsController) decode(ctx *gin.Context) {
	d, err := c.svc.Decode(ctx.Request.Context(), ctx.Param("id"), ctx.Query("format"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, d)
}
