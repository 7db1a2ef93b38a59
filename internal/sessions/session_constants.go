package sessions

import "github.com/parishweb/portal-gateway/internal/config"

// The admin UI reads the cookie name, changing it logs every administrator out
const (
	SessionCookieName = config.SessionCookieName
	SessionCtxKey     = "portal_admin_session"
)
