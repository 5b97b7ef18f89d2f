package middleware

import (
	"net/http"
	"promptgallery-backend/internal/models"
	"promptgallery-backend/internal/services"
	"promptgallery-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	userKey   = "user"
	claimsKey = "claims"
	tokenKey  = "token"
)

// Authenticator verifies identity provider tokens and loads the caller's profile.
type Authenticator struct {
	users  *services.UserService
	secret string
	issuer string
}

func NewAuthenticator(users *services.UserService, secret, issuer string) *Authenticator {
	return &Authenticator{users: users, secret: secret, issuer: issuer}
}

// authenticate returns the HTTP status to abort with when the token is not usable.
func (a *Authenticator) authenticate(c *gin.Context, tokenString string) (int, string) {
	isDenylisted, err := services.IsDenylisted(c.Request.Context(), tokenString)
	if err != nil {
		return http.StatusInternalServerError, "Failed to check token status"
	}
	if isDenylisted {
		return http.StatusUnauthorized, "Token has been revoked"
	}

	claims, err := utils.ValidateToken(tokenString, a.secret, a.issuer)
	if err != nil {
		return http.StatusUnauthorized, "Invalid or expired token"
	}

	user, err := a.users.EnsureProfile(c.Request.Context(), services.Identity{
		UID:     claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	})
	if err != nil {
		status, message := utils.ErrorStatus(err)
		_ = c.Error(err)
		return status, message
	}

	c.Set(userKey, *user)
	c.Set(claimsKey, claims)
	c.Set(tokenKey, tokenString)
	return http.StatusOK, ""
}

// AuthMiddleware rejects requests without a valid bearer token.
func (a *Authenticator) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := utils.ExtractToken(c)
		if err != nil {
			utils.AbortWithError(c, http.StatusUnauthorized, err.Error())
			return
		}

		if status, message := a.authenticate(c, tokenString); status != http.StatusOK {
			utils.AbortWithError(c, status, message)
			return
		}

		c.Next()
	}
}

// OptionalAuthMiddleware attaches the caller when a valid token is present
// and lets the request through anonymously otherwise.
func (a *Authenticator) OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, err := utils.ExtractToken(c); err == nil {
			a.authenticate(c, tokenString)
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated profile, if any.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

// CurrentUserID is the authenticated uid, or "" for anonymous requests.
func CurrentUserID(c *gin.Context) string {
	user, _ := CurrentUser(c)
	return user.UID
}

// CurrentToken returns the raw bearer token and its claims.
func CurrentToken(c *gin.Context) (string, *utils.Claims, bool) {
	token, ok := c.Get(tokenKey)
	if !ok {
		return "", nil, false
	}
	claims, _ := c.Get(claimsKey)
	typed, _ := claims.(*utils.Claims)
	return token.(string), typed, true
}
