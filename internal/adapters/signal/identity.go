package signal

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/dkeye/Parley/internal/domain"
)

// ResolveIdentity derives the display identity for a connection from
// the handshake: the session layer first, then the username query
// parameter, then the anonymous fallback. Resolved exactly once per
// connection; the result is stored immutably on the registry entry and
// never re-queried, so no shared session state leaks past this point.
func ResolveIdentity(c *gin.Context) string {
	if v, ok := c.Get(sessions.DefaultKey); ok {
		if s, ok := v.(sessions.Session); ok {
			if name, ok := s.Get("username").(string); ok && name != "" {
				return domain.ResolveUsername(name)
			}
		}
	}
	return domain.ResolveUsername(c.Query("username"))
}
