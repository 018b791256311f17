package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/omnibothq/omnibot/internal/config"
	"github.com/omnibothq/omnibot/internal/domain/user"
	"github.com/omnibothq/omnibot/internal/http/middlewares"
	"github.com/omnibothq/omnibot/internal/security"
)

// Keep these interfaces small so tests can fake them easily.

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, email, passwordHash, name string) (user.User, error)
}

type TokenIssuer interface {
	IssueToken(userID, email string) (string, error)
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	jwt        TokenIssuer
}

func NewAuthHandler(users UserReader, userWriter UserWriter, jwt TokenIssuer) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		jwt:        jwt,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.userWriter.Create(cctx, req.Email, hash, req.Name)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondBadRequest(ctx, "Email already registered", nil)
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusOK, u.Public())
}

// Login authenticates a JSON email/password pair. Unknown email and wrong
// password answer identically so the two cannot be told apart from outside.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	h.issueFor(ctx, req.Email, req.Password)
}

// Token is the OAuth2 password-grant shape of Login: form-encoded
// username/password instead of a JSON body, same response.
func (h *AuthHandler) Token(ctx *gin.Context) {
	username := ctx.PostForm("username")
	password := ctx.PostForm("password")

	if username == "" || password == "" {
		RespondBadRequest(ctx, "username and password are required", nil)
		return
	}

	h.issueFor(ctx, username, password)
}

func (h *AuthHandler) issueFor(ctx *gin.Context, email, password string) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, email)
	if err != nil {
		RespondUnauthorized(ctx, "Incorrect email or password")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, password)

	if err != nil {
		RespondUnauthorized(ctx, "Incorrect email or password")
		return
	}

	accessToken, err := h.jwt.IssueToken(foundUser.ID, foundUser.Email)

	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"access_token": accessToken,
		"token_type":   "bearer",
		"success":      true,
	})
}

// Me returns the profile of the bearer-token holder. RequireAuth has already
// verified the token and stashed the subject id on the context.
func (h *AuthHandler) Me(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Not authenticated")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)

	if err != nil {
		// the token outlived the account
		RespondUnauthorized(ctx, "User no longer exists")
		return
	}

	ctx.JSON(http.StatusOK, u.Public())
}
