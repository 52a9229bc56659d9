package routes

import (
	"CareSync360/controllers"

	"github.com/gin-gonic/gin"
)

func Routes(r *gin.Engine, h *controllers.Handler) {

	//public
	r.GET("/health", controllers.Health)
	controllers.Reconciliation(r, h)
}
