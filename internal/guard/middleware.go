package guard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"pkt.systems/pslog"
)

// Middleware applies Decide to every request before the handler chain runs,
// reading the credential from the named cookie.
func Middleware(cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		has := err == nil && token != ""
		d := Decide(c.Request.URL.Path, has)
		if !d.Allow {
			pslog.Ctx(c.Request.Context()).Debug("guard redirect", "path", c.Request.URL.Path, "target", d.Target)
			c.Redirect(http.StatusFound, d.Target)
			c.Abort()
			return
		}
		c.Next()
	}
}
