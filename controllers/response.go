package controllers

import "github.com/gin-gonic/gin"

func SuccessResponse(data any) gin.H {
	return gin.H{"success": true, "data": data}
}

func FailedResponse(err error) gin.H {
	return gin.H{"success": false, "error": err.Error()}
}
