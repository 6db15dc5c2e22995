package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/leon37/KindKeeper/internal/api/response"
)

// ContextUserID gin.Context 里存放当前用户 id 的 key
const ContextUserID = "userID"

func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		// 解析 Token
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			response.Error(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		// 提取 Claims 并注入 Context
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Invalid token claims")
			return
		}
		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			response.Error(c, http.StatusUnauthorized, "Invalid token claims")
			return
		}
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// bearerToken "Bearer <token>"；EventSource 无法带 header，SSE 允许 ?token=
func bearerToken(c *gin.Context) (string, bool) {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", false
		}
		return parts[1], parts[1] != ""
	}
	if t := c.Query("token"); t != "" {
		return t, true
	}
	return "", false
}

// UserID 取出 JWTAuth 注入的用户 id
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
