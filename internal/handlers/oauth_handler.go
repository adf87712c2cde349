package handlers

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pocketledger/internal/errors"
	"pocketledger/internal/services"
)

const (
	oauthStateCookie = "oauthstate"
	oauthStateMaxAge = 600
)

// OAuthHandler drives Google sign-in.
type OAuthHandler struct {
	googleAuth   services.GoogleAuthServicer
	userService  services.UserServicer
	auditService services.AuditServicer
	secureCookie bool
}

// NewOAuthHandler creates a new OAuthHandler. secureCookie marks the state
// cookie Secure and should be set outside local development.
func NewOAuthHandler(googleAuth services.GoogleAuthServicer, userService services.UserServicer, auditService services.AuditServicer, secureCookie bool) *OAuthHandler {
	return &OAuthHandler{
		googleAuth:   googleAuth,
		userService:  userService,
		auditService: auditService,
		secureCookie: secureCookie,
	}
}

func newOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GoogleLogin redirects to Google's consent screen
// @Summary     Google sign-in
// @Description Redirect to Google. Returns 503 when Google sign-in is not configured.
// @Tags        auth
// @Success     307 "Redirect to Google"
// @Failure     503 {object} ErrorResponse "Not configured"
// @Router      /auth/google/login [get]
func (h *OAuthHandler) GoogleLogin(c *gin.Context) {
	if !h.googleAuth.Enabled() {
		respondWithError(c, apperrors.ErrOAuthNotConfigured)
		return
	}

	state, err := newOAuthState()
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, oauthStateMaxAge, "/", "", h.secureCookie, true)
	c.Redirect(http.StatusTemporaryRedirect, h.googleAuth.AuthCodeURL(state))
}

// GoogleCallback completes Google sign-in
// @Summary     Google sign-in callback
// @Description Exchange the authorization code and issue tokens
// @Tags        auth
// @Produce     json
// @Param       state query string true "OAuth state"
// @Param       code query string true "Authorization code"
// @Success     200 {object} AuthResponse "Tokens"
// @Failure     401 {object} ErrorResponse "State mismatch"
// @Failure     409 {object} ErrorResponse "Email registered with a password"
// @Failure     502 {object} ErrorResponse "Google sign-in failed"
// @Failure     503 {object} ErrorResponse "Not configured"
// @Router      /auth/google/callback [get]
func (h *OAuthHandler) GoogleCallback(c *gin.Context) {
	if !h.googleAuth.Enabled() {
		respondWithError(c, apperrors.ErrOAuthNotConfigured)
		return
	}

	expected, err := c.Cookie(oauthStateCookie)
	state := c.Query("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(state)) != 1 {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid OAuth state"))
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", h.secureCookie, true)

	profile, err := h.googleAuth.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.FindOrCreateGoogleUser(profile.Email, profile.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp, err := issueTokens(h.userService, user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, services.AuditActionLogin, "user", user.ID, c.ClientIP(),
		map[string]interface{}{"provider": "google"})
	c.JSON(http.StatusOK, resp)
}
