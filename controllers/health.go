package controllers

import (
	"context"
	"net/http"
	"time"

	"recipe-api/database"

	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type HealthResponse struct {
	Status string `json:"status"`
}

type HealthController struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewHealthController(db *gorm.DB, log *zap.Logger) *HealthController {
	return &HealthController{db: db, log: log}
}

func (ctl *HealthController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/healthz").Produces(restful.MIME_JSON)
	ws.Route(ws.GET("").To(ctl.healthHandler).
		Doc("Report whether the database answers").
		Returns(http.StatusOK, "Healthy", HealthResponse{}).
		Returns(http.StatusServiceUnavailable, "Database unavailable", HealthResponse{}))
}

func (ctl *HealthController) healthHandler(request *restful.Request, response *restful.Response) {
	ctx, cancel := context.WithTimeout(request.Request.Context(), 2*time.Second)
	defer cancel()

	if err := database.Ping(ctx, ctl.db); err != nil {
		ctl.log.Warn("Health check failed", zap.Error(err))
		_ = response.WriteHeaderAndJson(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"}, restful.MIME_JSON)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, HealthResponse{Status: "ok"}, restful.MIME_JSON)
}
