package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/G26karthik/AI-Interview-Assistant/internal/interview"
	"github.com/G26karthik/AI-Interview-Assistant/internal/shared/config"
	"github.com/G26karthik/AI-Interview-Assistant/internal/shared/server/middleware"
	"github.com/G26karthik/AI-Interview-Assistant/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config    config.Config
	Interview *interview.Handler
	Mode      string
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: "DEFAULT",
			GroupFor:     rateLimitGroup,
			Rules: map[string]middleware.RateLimitRule{
				// AI-backed routes burn model tokens; keep them slower
				// than plain reads.
				"AI":      {Rate: 1, Burst: 5},
				"DEFAULT": {Rate: 10, Burst: 30},
			},
		}),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true, "aiMode": deps.Mode})
	})
	deps.Interview.RegisterRoutes(api)

	return r
}

func rateLimitGroup(c *gin.Context) string {
	switch c.FullPath() {
	case "/api/v1/candidates/:id/question", "/api/v1/candidates/:id/answers":
		return "AI"
	default:
		return "DEFAULT"
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
