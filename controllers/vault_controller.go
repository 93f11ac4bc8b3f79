package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crownmania/crownmania/middleware"
	"github.com/crownmania/crownmania/utils"
	"github.com/crownmania/crownmania/vault"
)

// VaultController drives the simulated serial verification.
type VaultController struct {
	verifier *vault.Verifier
	passTTL  time.Duration
}

func NewVaultController(verifier *vault.Verifier, passTTL time.Duration) *VaultController {
	if passTTL <= 0 {
		passTTL = 30 * time.Minute
	}
	return &VaultController{verifier: verifier, passTTL: passTTL}
}

// Submit starts a verification and answers 202 with the session.
func (v *VaultController) Submit(ctx *gin.Context) {
	var req struct {
		Serial string `json:"serial"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}
	session, err := v.verifier.Submit(req.Serial)
	if errors.Is(err, vault.ErrEmptySerial) {
		utils.Error(ctx, http.StatusBadRequest, 40061, "serial number is required")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to start verification")
		return
	}
	utils.Respond(ctx, http.StatusAccepted, 0, "verifying", gin.H{"session": session})
}

// Status reports a session. A verified session also carries a vault pass.
func (v *VaultController) Status(ctx *gin.Context) {
	session, err := v.verifier.Get(ctx.Param("id"))
	if errors.Is(err, vault.ErrSessionNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40460, "verification not found")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to read verification")
		return
	}

	data := gin.H{"session": session}
	if session.Status == vault.StatusVerified {
		pass, err := utils.GenerateVaultPass(session.ID, session.Serial(), v.passTTL)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to issue vault pass")
			return
		}
		data["pass"] = pass
		data["pass_expires_in"] = int(v.passTTL / time.Second)
	}
	utils.Success(ctx, data)
}

// Pass echoes the vault pass claims. Mounted behind VaultPassRequired.
func (v *VaultController) Pass(ctx *gin.Context) {
	claims, ok := ctx.MustGet(middleware.ContextVaultClaimsKey).(*utils.VaultClaims)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40103, "invalid vault pass")
		return
	}
	utils.Success(ctx, gin.H{
		"session_id": claims.SessionID,
		"serial":     claims.Serial,
		"expires_at": claims.ExpiresAt.Time,
	})
}
