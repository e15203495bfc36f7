package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/matahariann/kontrakgen/client"
	"github.com/matahariann/kontrakgen/pkg/logger"
	"github.com/matahariann/kontrakgen/store"
)

// AuthHandler proxies login to the upstream backend and keeps the bearer
// token in the persisted field store, where every later call reads it.
type AuthHandler struct {
	api   *client.Client
	store *store.Store
}

func NewAuthHandler(api *client.Client, st *store.Store) *AuthHandler {
	return &AuthHandler{api: api, store: st}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges credentials upstream and persists the returned token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nama pengguna dan kata sandi wajib diisi"})
		return
	}

	token, err := h.api.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.store.Set(store.TokenKey, token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal menyimpan sesi login"})
		return
	}

	logger.Info(c.Request.Context(), "user logged in", "username", req.Username)
	c.JSON(http.StatusOK, gin.H{"message": "Login berhasil"})
}

// Me reports the active session from the stored token's claims. The
// signature is the backend's to verify; this only answers "who does the
// session believe it is".
func (h *AuthHandler) Me(c *gin.Context) {
	tok := h.store.GetString(store.TokenKey, "")
	if tok == "" {
		respondError(c, client.ErrNotLoggedIn)
		return
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tok, claims); err != nil {
		// An opaque token still counts as a session.
		c.JSON(http.StatusOK, gin.H{"logged_in": true})
		return
	}

	resp := gin.H{"logged_in": true}
	for _, key := range []string{"username", "name", "sub", "exp"} {
		if v, ok := claims[key]; ok {
			resp[key] = v
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Logout drops the stored token. Wizard state is untouched.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.store.Remove(store.TokenKey); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal menghapus sesi login"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logout berhasil"})
}
