package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/crownmania/crownmania/utils"
)

// ContextVaultClaimsKey stores the parsed *utils.VaultClaims in the Gin context.
const ContextVaultClaimsKey = "vault_claims"

// VaultPassRequired admits requests carrying a valid vault pass as a bearer token.
// The pass only unlocks vault content; it is not a login.
func VaultPassRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		parts := strings.SplitN(ctx.GetHeader("Authorization"), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "vault pass missing")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseVaultPass(strings.TrimSpace(parts[1]))
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid vault pass")
			ctx.Abort()
			return
		}

		ctx.Set(ContextVaultClaimsKey, claims)
		ctx.Next()
	}
}
