package gateway

import "github.com/gin-gonic/gin"

// envelope wraps every gateway response: successes carry
// {success, data, message}, failures carry {success:false, error, message}.
func ok(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, gin.H{"success": true, "data": data, "message": message})
}

func fail(c *gin.Context, status int, errMsg, message string) {
	c.JSON(status, gin.H{"success": false, "error": errMsg, "message": message})
}
