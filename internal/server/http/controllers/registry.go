package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/rzbill/flake/internal/runtime"
	idsvc "github.com/rzbill/flake/internal/services/ids"
)

// ControllerRegistry owns every HTTP controller and mounts their routes.
type ControllerRegistry struct {
	general *GeneralController
	ids     *IDsController
}

// NewControllerRegistry creates all controllers over the shared id service.
func NewControllerRegistry(rt *runtime.Runtime, svc *idsvc.Service) *ControllerRegistry {
	return &ControllerRegistry{
		general: NewGeneralController(rt, svc),
		ids:     NewIDsController(svc),
	}
}

// RegisterAllRoutes mounts every controller under g.
func (r *ControllerRegistry) RegisterAllRoutes(g *gin.RouterGroup) {
	r.general.RegisterRoutes(g)
	r.ids.RegisterRoutes(g)
}
