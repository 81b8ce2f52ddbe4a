package endpoint

import (
	"time"

	"github.com/ariebrainware/hospital-booking/middleware"
	"github.com/gin-gonic/gin"
)

// RouterConfig carries the settings SetupRouter needs beyond the handler.
type RouterConfig struct {
	GinMode        string
	AllowedOrigins []string
	SessionSecret  string
	SessionTTL     time.Duration
	SecureCookies  bool
	LoginRateLimit middleware.RateLimitConfig
}

// SetupRouter builds the gin engine with the full middleware chain and routes.
func SetupRouter(h *Handler, rc RouterConfig) *gin.Engine {
	if rc.GinMode != "" {
		gin.SetMode(rc.GinMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORSMiddleware(rc.AllowedOrigins))
	router.Use(middleware.Sessions(rc.SessionSecret, rc.SessionTTL, rc.SecureCookies))
	router.Use(middleware.SessionGuard(h.tokens, h.revoker))
	router.Use(middleware.EndpointCallLogger())

	router.GET("/", h.Index)
	router.GET("/home", h.Home)
	router.GET("/health", h.Health)

	router.POST("/login", middleware.RateLimiter(rc.LoginRateLimit), h.Login)
	router.GET("/logout", h.Logout)

	router.POST("/create_patient", h.CreatePatient)
	router.GET("/doctor", h.ListDoctors)
	router.POST("/create_appointment", h.CreateAppointment)
	router.GET("/appointments", h.ListAppointments)
	router.POST("/delete_appointment", h.DeleteAppointment)

	return router
}
