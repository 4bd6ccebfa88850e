package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rzbill/flake/internal/runtime"
	idsvc "github.com/rzbill/flake/internal/services/ids"
)

// GeneralController serves health and node info.
type GeneralController struct {
	rt  *runtime.Runtime
	svc *idsvc.Service
}

func NewGeneralController(rt *runtime.Runtime, svc *idsvc.Service) *GeneralController {
	return &GeneralController{rt: rt, svc: svc}
}

func (c *GeneralController) RegisterRoutes(g *gin.RouterGroup) {
	g.GET("/healthz", c.health)
	g.GET("/info", c.info)
}

func (c *GeneralController) health(ctx *gin.Context) {
	if err := c.rt.CheckHealth(ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_serving", "error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// info adds the persisted watermarks when they can be read.
func (c *GeneralController) info(ctx *gin.Context) {
	info, err := c.svc.Info(ctx.Request.Context())
	if err != nil {
		writeError(ctx, err)
		return
	}
	out := gin.H{"node": info}
	if marks, err := c.rt.Watermarks(); err == nil {
		out["watermarks"] = marks
	}
	ctx.JSON(http.StatusOK, out)
}
