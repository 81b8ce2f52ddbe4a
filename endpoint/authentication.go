package endpoint

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ariebrainware/hospital-booking/auth"
	"github.com/ariebrainware/hospital-booking/middleware"
	"github.com/ariebrainware/hospital-booking/util"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type LoginRequest struct {
	Email    string `json:"email" example:"admin@hospital.com"`
	Password string `json:"password" example:"admin123"`
}

// Login godoc
// @Summary      Admin login
// @Description  Authenticate the administrator, start a cookie session and return a bearer token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} util.APIResponse "Login successful"
// @Failure      401 {object} util.APIResponse "Invalid credentials"
// @Failure      429 {object} util.APIResponse "Too many attempts"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	bindJSONLenient(c, &req)

	ip, agent := c.ClientIP(), c.Request.UserAgent()
	identity, err := h.authenticator.Verify(c.Request.Context(), auth.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		reason := "invalid credentials"
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			reason = err.Error()
		}
		util.LogLoginFailure(req.Email, ip, agent, reason)
		c.JSON(http.StatusUnauthorized, util.APIResponse{Success: false})
		return
	}

	token, p, err := h.tokens.Issue(identity)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create session", Err: fmt.Errorf("issue token: %w", err)})
		return
	}
	if err := middleware.StartSession(c, p); err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create session", Err: fmt.Errorf("save session: %w", err)})
		return
	}

	// a successful login clears the failure window for this client
	if err := middleware.ResetRateLimit(c.Request.Context(), ip, c.Request.URL.Path); err != nil {
		log.Debug().Err(err).Msg("rate limit not reset")
	}

	util.LogLoginSuccess(identity.Email, ip, agent)
	util.CallSuccessOK(c, util.APISuccessParams{Token: token})
}

// Logout godoc
// @Summary      Logout
// @Description  Clear the cookie session, revoke the current token and redirect to the login page
// @Tags         Authentication
// @Success      302 "Redirect to /"
// @Router       /logout [get]
func (h *Handler) Logout(c *gin.Context) {
	p := principalOf(c)
	if p.Authenticated() {
		if err := h.revoker.Revoke(c.Request.Context(), p.TokenID, p.ExpiresAt); err != nil {
			log.Warn().Err(err).Msg("failed to revoke token on logout")
		}
		util.LogLogout(p.Identity.Email, c.ClientIP(), c.Request.UserAgent())
	}

	if err := middleware.EndSession(c); err != nil {
		log.Warn().Err(err).Msg("failed to clear session")
	}
	c.Redirect(http.StatusFound, "/")
}
