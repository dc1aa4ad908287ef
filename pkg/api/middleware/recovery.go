package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/plan-engine/pkg/api/dto"
	"github.com/LENAX/plan-engine/pkg/logx"
)

// Recovery panic恢复中间件
func Recovery(log logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				// 打印堆栈信息
				log.Error("💥 panic recovered",
					logx.String("method", c.Request.Method),
					logx.String("path", c.Request.URL.Path),
					logx.String("panic", fmt.Sprint(err)),
					logx.Stack(logx.StackTrace(3, 32)))

				// 返回500错误
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(
					500,
					"Internal Server Error",
				))
			}
		}()
		c.Next()
	}
}
