package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studyplan/auth"
	"studyplan/models"
)

const refreshCookieName = "refresh_token"

// The refresh token travels only in an HTTP-only, same-site-strict cookie
// scoped to the auth endpoints; it is never part of a JSON body.
func (a *app) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, token, int(a.refreshTTL.Seconds()), "/auth", a.cfg.CookieDomain, a.cfg.CookieSecure, true)
}

func (a *app) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1, "/auth", a.cfg.CookieDomain, a.cfg.CookieSecure, true)
}

func requestMeta(c *gin.Context) auth.Meta {
	return auth.Meta{UserAgent: c.Request.UserAgent(), IPAddress: c.ClientIP()}
}

// userJSON is the public shape of a user; the password hash never leaves
// the server.
func userJSON(u *models.User) gin.H {
	return gin.H{"id": u.ID, "email": u.Email, "name": u.Name}
}

func (a *app) registerHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Name     string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := a.auth.Register(c.Request.Context(), req.Email, req.Password, req.Name, requestMeta(c))
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	a.setRefreshCookie(c, res.RefreshToken)
	c.JSON(http.StatusCreated, gin.H{"user": userJSON(res.User), "access_token": res.AccessToken})
}

func (a *app) loginHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := a.auth.Login(c.Request.Context(), req.Email, req.Password, requestMeta(c))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// never reveal which of email or password was wrong
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	a.setRefreshCookie(c, res.RefreshToken)
	c.JSON(http.StatusOK, gin.H{"user": userJSON(res.User), "access_token": res.AccessToken})
}

func (a *app) refreshHandler(c *gin.Context) {
	raw, err := c.Cookie(refreshCookieName)
	if err != nil || raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	claims, err := a.signer.VerifyRefresh(raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	pair, err := a.auth.Refresh(c.Request.Context(), raw, claims, requestMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidRefreshToken),
			errors.Is(err, auth.ErrRefreshTokenRevoked),
			errors.Is(err, auth.ErrRefreshTokenExpired):
			// One opaque message for every refresh failure; a detected
			// replay must look no different to the caller.
			a.clearRefreshCookie(c)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		}
		return
	}
	a.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken})
}

// logoutHandler is best-effort and never fails the caller: a missing,
// malformed, or already-revoked cookie still clears and returns 200.
func (a *app) logoutHandler(c *gin.Context) {
	if raw, err := c.Cookie(refreshCookieName); err == nil && raw != "" {
		if claims, err := a.signer.VerifyRefresh(raw); err == nil {
			_ = a.auth.Logout(c.Request.Context(), claims.ID)
		}
	}
	a.clearRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (a *app) logoutAllHandler(c *gin.Context) {
	if err := a.auth.LogoutAll(c.Request.Context(), c.GetUint("userID")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	a.clearRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out everywhere"})
}
