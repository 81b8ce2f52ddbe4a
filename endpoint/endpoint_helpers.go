package endpoint

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/ariebrainware/hospital-booking/auth"
	"github.com/ariebrainware/hospital-booking/booking"
	"github.com/ariebrainware/hospital-booking/middleware"
	"github.com/ariebrainware/hospital-booking/store"
	"github.com/ariebrainware/hospital-booking/util"
	"github.com/gin-gonic/gin"
)

// Handler serves the HTTP surface of the booking backend.
type Handler struct {
	authenticator auth.Authenticator
	tokens        *auth.TokenIssuer
	revoker       *auth.Revoker
	bookings      *booking.Service
	store         store.RecordStore
	appName       string
	staticDir     string
}

// HandlerDeps groups what NewHandler needs.
type HandlerDeps struct {
	Authenticator auth.Authenticator
	Tokens        *auth.TokenIssuer
	Revoker       *auth.Revoker
	Bookings      *booking.Service
	Store         store.RecordStore
	AppName       string
	StaticDir     string
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		authenticator: deps.Authenticator,
		tokens:        deps.Tokens,
		revoker:       deps.Revoker,
		bookings:      deps.Bookings,
		store:         deps.Store,
		appName:       deps.AppName,
		staticDir:     deps.StaticDir,
	}
}

func callerOf(c *gin.Context) booking.Caller {
	return booking.Caller{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}

// bindJSONLenient decodes the body into dst and ignores malformed input, so
// missing fields surface as the operation's own validation error after the
// caller has been authorized.
func bindJSONLenient(c *gin.Context, dst interface{}) {
	_ = c.ShouldBindJSON(dst)
}

// respondError writes err and records unauthorized attempts.
func respondError(c *gin.Context, err error) {
	if util.IsErrorType(err, util.ErrorTypeUnauthorized) {
		util.LogUnauthorizedAccess(c.ClientIP(), c.Request.URL.Path)
	}
	util.RespondError(c, err)
}

// respondList writes a bare JSON array. Unauthorized callers get an empty
// list with 401.
func respondList[T any](c *gin.Context, items []T, err error) {
	if err != nil {
		if util.IsErrorType(err, util.ErrorTypeUnauthorized) {
			util.LogUnauthorizedAccess(c.ClientIP(), c.Request.URL.Path)
			c.JSON(http.StatusUnauthorized, []T{})
			return
		}
		util.RespondError(c, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, items)
}

// parseAppointmentID accepts a positive integer given as a JSON number or a
// numeric string. Anything else yields 0.
func parseAppointmentID(v interface{}) uint {
	switch id := v.(type) {
	case float64:
		if id > 0 && id == float64(uint(id)) {
			return uint(id)
		}
	case json.Number:
		return parseAppointmentID(id.String())
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
		if err == nil {
			return uint(n)
		}
	}
	return 0
}

func principalOf(c *gin.Context) auth.Principal {
	return middleware.GetPrincipal(c)
}
