package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-photobooth/http/controller"
)

type Middlewares struct {
	CORSMiddleware  gin.HandlerFunc
	TraceMiddleware gin.HandlerFunc
}

func NewMiddlewares(ctrl *controller.Controller) (*Middlewares, error) {
	cors := CORSMiddleware(ctrl.Config.EnvConfig)
	trace := TraceMiddleware(ctrl.Config.EnvConfig.Grafana.ServiceName)

	return &Middlewares{
		CORSMiddleware:  cors,
		TraceMiddleware: trace,
	}, nil
}
