package restgrader

import "github.com/gin-gonic/gin"

// Register registers the grader handler
type Register interface {
	Register(*gin.Engine)
}
