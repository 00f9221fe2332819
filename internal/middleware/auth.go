package middleware

import (
	"context"
	"net/http"

	"inkwell/internal/logger"
	"inkwell/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	CheckUserKey = "user"
	// SessionUserKey holds the account id in the cookie session.
	SessionUserKey = "user_id"
)

// ProfileLoader resolves the profile of a logged-in account.
type ProfileLoader interface {
	ProfileByAccountID(ctx context.Context, accountID uint) (*models.Profile, error)
}

// AuthRequired sends anonymous requests to the login page.
// LoadUser must run first.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentProfile(c) == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoadUser retrieves the profile from the session and sets it on the context.
// A session pointing at a removed account is cleared.
func LoadUser(loader ProfileLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		accountID, ok := session.Get(SessionUserKey).(uint)
		if ok && accountID > 0 {
			profile, err := loader.ProfileByAccountID(c.Request.Context(), accountID)
			if err == nil {
				c.Set(CheckUserKey, profile)
				c.Set(logger.FieldUsername, profile.Username())
			} else {
				logger.Ctx(c.Request.Context()).Debug().Err(err).Uint("account_id", accountID).Msg("dropping stale session")
				session.Delete(SessionUserKey)
				_ = session.Save()
			}
		}
		c.Next()
	}
}

// CurrentProfile is the logged-in profile, or nil for anonymous requests.
func CurrentProfile(c *gin.Context) *models.Profile {
	v, exists := c.Get(CheckUserKey)
	if !exists {
		return nil
	}
	profile, _ := v.(*models.Profile)
	return profile
}
