package restapi

import (
	"net/http"
	"time"

	"houses_market/internal/app/port"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterDeps collects what SetupRouter wires together.
type RouterDeps struct {
	Houses         port.HousesService
	Sessions       port.SessionStore
	Routes         *RouteTable
	Cookie         SessionCookie
	AllowedOrigins []string
	ZapLogger      *zap.Logger
	Logger         port.Logger
}

// SetupRouter builds the gin engine: API under /api/v1, metrics, and the view routes as
// the fallback handler.
func SetupRouter(d RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if d.ZapLogger != nil {
		router.Use(ZapLoggerMiddleware(d.ZapLogger))
	}

	if len(d.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = d.AllowedOrigins
		corsConfig.AllowCredentials = true
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
		corsConfig.MaxAge = 12 * time.Hour
		router.Use(cors.New(corsConfig))
	}

	sessions := sessionBinder{store: d.Sessions, cookie: d.Cookie}
	views := newViewHandler(d.Routes, sessions, d.Logger)
	stateHandler := NewStateHandler(d.Houses, d.Logger)

	router.GET("/healthz", func(c *gin.Context) {
		writeJSON(c, http.StatusOK, gin.H{"status": "ok", "sessions": d.Sessions.Count()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/routes", views.ListRoutes)

		st := apiV1.Group("/state", sessions.middleware())
		st.GET("", stateHandler.GetState)
		st.PUT("/account", stateHandler.ConnectAccount)
		st.DELETE("/account", stateHandler.DisconnectAccount)
		st.POST("/contract", stateHandler.BindContract)
		st.POST("/houses/reload", stateHandler.ReloadHouses)
		st.PUT("/listings", stateHandler.SetListings)
		st.POST("/purchases", stateHandler.RecordPurchase)
	}

	router.NoRoute(views.ServeView)
	return router
}
