package endpoint

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ariebrainware/hospital-booking/util"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	loginPage = "login.html"
	homePage  = "index.html"
)

// pagePath returns the path of name under the static dir when the file exists.
func (h *Handler) pagePath(name string) (string, bool) {
	if h.staticDir == "" {
		return "", false
	}
	path := filepath.Join(h.staticDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// Index serves the login page, or a JSON welcome when no page is installed.
func (h *Handler) Index(c *gin.Context) {
	if path, ok := h.pagePath(loginPage); ok {
		c.File(path)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Welcome to %s!", h.appName),
	})
}

// Home serves the dashboard to logged-in callers and sends everyone else to /.
func (h *Handler) Home(c *gin.Context) {
	p := principalOf(c)
	if !p.Authenticated() {
		c.Redirect(http.StatusFound, "/")
		return
	}
	if path, ok := h.pagePath(homePage); ok {
		c.File(path)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Welcome back, %s", p.Identity.Email),
	})
}

// Health reports whether the record store is reachable.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		log.Error().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, util.APIResponse{Success: false, Error: "storage unavailable"})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "ok"})
}
