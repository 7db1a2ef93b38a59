package admin

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/parishweb/portal-gateway/internal/gwerrors"
	"github.com/parishweb/portal-gateway/internal/utils"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	Username string `json:"username"`
	// AccessTokenExpiresAt is read from the unverified claims of the access token
	AccessTokenExpiresAt *time.Time `json:"accessTokenExpiresAt,omitempty"`
}

// PostLogin exchanges the admin username and password for a credential pair, starts a new
// session and stores the pair under it. An existing session of the caller is replaced.
func (a *AdminServer) PostLogin(c echo.Context) error {
	var body loginRequest
	if err := c.Bind(&body); err != nil {
		return err
	}
	ctx := utils.RequestContext(c)
	creds, err := a.loginAPI.Login(ctx, body.Username, body.Password)
	a.logins.LoginAttempted(err)
	if err != nil {
		return err
	}
	if previous, err := a.sessions.Get(c); err == nil {
		a.pool.Remove(previous.ID)
		if err := a.sessions.Remove(ctx, previous.ID); err != nil {
			slog.Info("ADMIN", "message", "could not remove the previous session", "error", err, "requestID", utils.GetRequestID(c))
		}
	}
	session, err := a.sessions.Create(c, body.Username)
	if err != nil {
		return err
	}
	entry, err := a.pool.Get(*session)
	if err == nil {
		err = entry.Credentials.SetPair(ctx, creds)
	}
	if err != nil {
		a.pool.Remove(session.ID)
		if deleteErr := a.sessions.Delete(c); deleteErr != nil {
			slog.Error("ADMIN", "message", "could not delete the session", "error", deleteErr, "requestID", utils.GetRequestID(c))
		}
		return err
	}
	slog.Info("ADMIN", "message", "admin logged in", "username", session.Username, "requestID", utils.GetRequestID(c))
	return c.JSON(http.StatusOK, userResponse{Username: session.Username})
}

// PostLogout clears the stored credentials and ends the session, it succeeds without a session too.
func (a *AdminServer) PostLogout(c echo.Context) error {
	session, entry, err := a.session(c)
	if err != nil && !errors.Is(err, errNoSession) {
		return err
	}
	if err == nil {
		if err := entry.Credentials.Clear(utils.RequestContext(c)); err != nil {
			return err
		}
		a.pool.Remove(session.ID)
		slog.Info("ADMIN", "message", "admin logged out", "username", session.Username, "requestID", utils.GetRequestID(c))
	}
	if err := a.sessions.Delete(c); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *AdminServer) GetMe(c echo.Context) error {
	session, entry, err := a.session(c)
	if err != nil {
		return err
	}
	output := userResponse{Username: session.Username}
	token, err := entry.Credentials.AccessToken(utils.RequestContext(c))
	if err != nil && !errors.Is(err, gwerrors.ErrTokenNotFound) {
		return err
	}
	output.AccessTokenExpiresAt = tokenExpiry(token)
	return c.JSON(http.StatusOK, output)
}

// tokenExpiry returns the exp claim of a JWT without checking the signature, the gateway
// never trusts it for authorization.
func tokenExpiry(token string) *time.Time {
	if token == "" {
		return nil
	}
	claims := jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil || claims.ExpiresAt == nil {
		return nil
	}
	expiresAt := claims.ExpiresAt.Time.UTC()
	return &expiresAt
}
