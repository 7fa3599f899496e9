package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-photobooth/http/controller"
	middlewares "github.com/tnqbao/gau-photobooth/http/middleware"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}

	r.Use(middles.CORSMiddleware)
	r.Use(middles.TraceMiddleware)

	apiRoutes := r.Group("/api")
	{
		imageRoutes := apiRoutes.Group("/image")
		{
			imageRoutes.GET("", ctrl.ListPhotos)
			imageRoutes.POST("", ctrl.UploadPhoto)
			imageRoutes.DELETE("", ctrl.DeletePhoto)
		}
	}

	return r
}
