package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"joyeriapos/internal/apierror"
)

const ClaimsKey = "claims"

// AreaClaims are the claims of a gate token. A token opens exactly one area.
type AreaClaims struct {
	Area string `json:"area"`
	jwt.RegisteredClaims
}

// RequireArea validates the Bearer token and rejects tokens issued for a
// different area.
func RequireArea(secret, area string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.FromError(apierror.Unauthorized("Acceso requerido")))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &AreaClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.FromError(apierror.Unauthorized("Token invalido o expirado")))
			return
		}
		if claims.Area != area {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("El token no habilita esta area"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// GetClaims returns the gate claims set by RequireArea, or nil.
func GetClaims(c *gin.Context) *AreaClaims {
	claims, _ := c.Get(ClaimsKey)
	ac, _ := claims.(*AreaClaims)
	return ac
}
