package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace/internal/apperror"
	"marketplace/internal/config"
	"marketplace/internal/models"
)

const identityKey = "identity"

// Authenticator resolves the caller of a request.
type Authenticator interface {
	Authenticate(c *gin.Context) (models.Identity, error)
}

type TokenVerifier interface {
	Authenticate(ctx context.Context, token string) (models.Identity, error)
}

type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, role models.Role, email, password string) (models.Account, error)
}

// BearerAuthenticator reads a signed token from the Authorization header.
type BearerAuthenticator struct {
	Tokens TokenVerifier
}

func (a BearerAuthenticator) Authenticate(c *gin.Context) (models.Identity, error) {
	return a.Tokens.Authenticate(c.Request.Context(), bearerToken(c.GetHeader("Authorization")))
}

func bearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// ReplayAuthenticator expects email and password on every request, either
// in a JSON body or as form fields. The body is left readable for the
// handler. An empty Role accepts buyers and sellers, buyers first.
type ReplayAuthenticator struct {
	Credentials CredentialVerifier
	Role        models.Role
}

type replayCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a ReplayAuthenticator) Authenticate(c *gin.Context) (models.Identity, error) {
	creds, err := readCredentials(c)
	if err != nil {
		return models.Identity{}, err
	}

	roles := []models.Role{a.Role}
	if a.Role == "" {
		roles = []models.Role{models.RoleBuyer, models.RoleSeller}
	}

	var account models.Account
	for _, role := range roles {
		account, err = a.Credentials.VerifyCredentials(c.Request.Context(), role, creds.Email, creds.Password)
		if err == nil || !apperror.Is(err, apperror.Unauthenticated) {
			break
		}
	}
	if err != nil {
		return models.Identity{}, err
	}

	return models.Identity{
		AccountID: account.ID,
		Role:      account.Role,
		IssuedAt:  time.Now(),
		Strategy:  config.StrategyReplay,
	}, nil
}

func readCredentials(c *gin.Context) (replayCredentials, error) {
	contentType := c.ContentType()
	if contentType == gin.MIMEMultipartPOSTForm || contentType == gin.MIMEPOSTForm {
		return replayCredentials{
			Email:    c.PostForm("email"),
			Password: c.PostForm("password"),
		}, nil
	}

	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return replayCredentials{}, nil
	}
	rawBody, err := c.GetRawData()
	if err != nil {
		return replayCredentials{}, apperror.NewValidation("Invalid request body")
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(rawBody))

	var creds replayCredentials
	if len(bytes.TrimSpace(rawBody)) > 0 {
		// Non-object bodies carry no credentials; the handler reports them.
		_ = json.Unmarshal(rawBody, &creds)
	}
	return creds, nil
}

// Authenticate stores the resolved identity on the context or aborts.
func Authenticate(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := authenticator.Authenticate(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

func CurrentIdentity(c *gin.Context) (models.Identity, bool) {
	val, exists := c.Get(identityKey)
	if !exists {
		return models.Identity{}, false
	}
	identity, ok := val.(models.Identity)
	return identity, ok
}

// AbortWithError ends the request with the status and message carried by
// err. Anything that is not an application error becomes a generic 500.
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)

	appErr, ok := apperror.As(err)
	if !ok || appErr.StatusCode() >= http.StatusInternalServerError {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong!"})
		return
	}
	c.AbortWithStatusJSON(appErr.StatusCode(), gin.H{"error": appErr.Message})
}
