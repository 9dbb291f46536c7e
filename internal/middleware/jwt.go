package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"viksitkanpur/internal/locale"
	"viksitkanpur/internal/models/dto"
	"viksitkanpur/internal/session"
	"viksitkanpur/internal/utils"
)

const currentSessionKey = "currentSession"

// SessionResolver turns a session JWT into its stored session.
type SessionResolver interface {
	Authenticate(ctx context.Context, token string) (session.Session, error)
}

// bearerToken extracts the token of an "Authorization: Bearer x" header.
// present is false when no Authorization header was sent.
func bearerToken(c *gin.Context) (token string, present bool, err error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false, nil
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", true, errors.New("invalid Authorization header format")
	}
	return parts[1], true, nil
}

// Auth requires a valid session whose role level is at most level
// (1 = district magistrate ... 4 = citizen / general).
func Auth(resolver SessionResolver, level int) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, err := bearerToken(c)
		if !present {
			abortUnauthorized(c, "JWT token not provided")
			return
		}
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		sess, err := resolver.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired session")
			return
		}

		if utils.LevelOf(sess.Role) > level {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(c, http.StatusForbidden,
				"forbidden", "Role not allowed to access this resource", gin.H{"role": sess.Role}))
			return
		}

		SetCurrentSession(c, sess)
		c.Next()
	}
}

// OptionalAuth resolves the session when a token is sent and falls back to
// the anonymous placeholder session otherwise. A token that is sent but
// invalid is still rejected.
func OptionalAuth(resolver SessionResolver, defaultLang locale.Lang) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, err := bearerToken(c)
		if !present {
			lang := defaultLang
			if l, ok := locale.Match(c.GetHeader("Accept-Language")); ok {
				lang = l
			}
			SetCurrentSession(c, session.Anonymous(lang))
			c.Next()
			return
		}
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		sess, err := resolver.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired session")
			return
		}
		SetCurrentSession(c, sess)
		c.Next()
	}
}

// CurrentSession returns the session set by Auth or OptionalAuth.
func CurrentSession(c *gin.Context) (session.Session, bool) {
	v, ok := c.Get(currentSessionKey)
	if !ok {
		return session.Session{}, false
	}
	s, ok := v.(session.Session)
	return s, ok
}

// SetCurrentSession stores sess on the request context.
func SetCurrentSession(c *gin.Context, sess session.Session) {
	c.Set(currentSessionKey, sess)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewAuthErrorResponse(c, message))
}
