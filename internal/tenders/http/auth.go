package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aussiebroadwan/tenders/internal/tenders/service"
	"github.com/aussiebroadwan/tenders/pkg/httpx"
	"github.com/aussiebroadwan/tenders/pkg/slogx"
	"github.com/aussiebroadwan/tenders/pkg/tenderssdk"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

// LoginHandler serves POST /auth/login.
type LoginHandler struct {
	AuthService  *service.AuthService
	TokenService *service.TokenService

	CookieTransport bool
}

// ServeHTTP godoc
//
//	@Summary		Login
//	@Description	Exchanges an email and password for an access token (15 minutes) and a refresh token (7 days).
//	@Description	Unknown email, wrong password and inactive accounts are indistinguishable.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		tenderssdk.LoginRequest		true	"Credentials"
//	@Success		200		{object}	tenderssdk.LoginResponse	"accessToken, refreshToken"
//	@Failure		400		{object}	tenderssdk.ErrorResponse	"Missing email or password"
//	@Failure		401		{object}	tenderssdk.ErrorResponse	"Invalid credentials"
//	@Failure		429		{object}	tenderssdk.ErrorResponse	"Rate limit exceeded"
//	@Failure		500		{object}	tenderssdk.ErrorResponse	"Internal server error"
//	@Router			/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req tenderssdk.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		tenderssdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			tenderssdk.NewAPIError(http.StatusBadRequest, tenderssdk.ErrorCodeInvalidRequest,
				"email and password are required").WriteError(w)
		case errors.Is(err, service.ErrInvalidCredentials):
			tenderssdk.ErrInvalidCredentials.WriteError(w)
		default:
			log.Error("login failed", "err", err)
			tenderssdk.ErrServerError.WriteError(w)
		}
		return
	}

	if h.CookieTransport {
		http.SetCookie(w, httpx.AccessCookie(pair.AccessToken, h.TokenService.AccessTTL()))
		http.SetCookie(w, httpx.RefreshCookie(pair.RefreshToken, h.TokenService.RefreshTTL()))
	}

	httpx.WriteJSON(w, http.StatusOK, tenderssdk.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// RefreshHandler serves POST /auth/refresh.
type RefreshHandler struct {
	AuthService  *service.AuthService
	TokenService *service.TokenService

	CookieTransport bool
}

// ServeHTTP godoc
//
//	@Summary		Refresh the access token
//	@Description	Issues a new access token from a valid refresh token. The refresh token is not rotated.
//	@Description	With the cookie transport on, the refresh_token cookie is used when the body has none.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		tenderssdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	tenderssdk.RefreshResponse	"accessToken"
//	@Failure		400		{object}	tenderssdk.ErrorResponse	"Missing refresh token"
//	@Failure		401		{object}	tenderssdk.ErrorResponse	"Invalid refresh"
//	@Failure		429		{object}	tenderssdk.ErrorResponse	"Rate limit exceeded"
//	@Router			/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req tenderssdk.RefreshRequest
	if err := decodeBody(r, &req); err != nil {
		tenderssdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.RefreshToken == "" && h.CookieTransport {
		if c, err := r.Cookie(httpx.RefreshCookieName); err == nil {
			req.RefreshToken = c.Value
		}
	}

	access, err := h.AuthService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			tenderssdk.NewAPIError(http.StatusBadRequest, tenderssdk.ErrorCodeInvalidRequest,
				"refreshToken is required").WriteError(w)
		case errors.Is(err, service.ErrInvalidRefresh):
			tenderssdk.ErrInvalidRefresh.WriteError(w)
		default:
			log.Error("refresh failed", "err", err)
			tenderssdk.ErrServerError.WriteError(w)
		}
		return
	}

	if h.CookieTransport {
		http.SetCookie(w, httpx.AccessCookie(access, h.TokenService.AccessTTL()))
	}

	httpx.WriteJSON(w, http.StatusOK, tenderssdk.RefreshResponse{AccessToken: access})
}

// MeHandler godoc
//
//	@Summary		Current identity
//	@Description	Returns the identity claim carried by the access token.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	tenderssdk.Identity			"sub, email, name, role"
//	@Failure		401	{object}	tenderssdk.ErrorResponse	"Missing or invalid access token"
//	@Router			/auth/me [get].
func MeHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		tenderssdk.ErrUnauthorized.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tenderssdk.Identity{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Role:    claims.Role,
	})
}

// LogoutHandler godoc
//
//	@Summary		Logout
//	@Description	Expires the session cookies. Only registered with the cookie transport.
//	@Tags			Auth
//	@Success		204
//	@Router			/auth/logout [post].
func LogoutHandler(w http.ResponseWriter, _ *http.Request) {
	httpx.NoCache(w)
	httpx.ClearSessionCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

// decodeBody reads a JSON object into v. An empty body leaves v zero so the
// service reports the missing fields.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
