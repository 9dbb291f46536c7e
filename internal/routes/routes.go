package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "viksitkanpur/docs"
	"viksitkanpur/internal/analytics"
	"viksitkanpur/internal/config"
	"viksitkanpur/internal/middleware"
	"viksitkanpur/internal/models/dto"
	"viksitkanpur/internal/service/activity"
	"viksitkanpur/internal/service/auth"
	"viksitkanpur/internal/service/autorefresh"
	"viksitkanpur/internal/service/dashboard"
	"viksitkanpur/internal/service/healthcheck"
)

// levelAnyRole admits every signed-in role
const levelAnyRole = 4

// InitiateRoutes is a function that initializes the routes for the application
func InitiateRoutes(engine *gin.Engine, cfg *config.App) {
	dto.RegisterValidators()

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	healthGroup := engine.Group("/healthcheck")
	{
		healthGroup.GET("/", healthcheck.Health(cfg))
	}

	signedIn := middleware.Auth(cfg.Sessions, levelAnyRole)
	optional := middleware.OptionalAuth(cfg.Sessions, cfg.Settings.DefaultLanguage)

	authRoutes := engine.Group("/auth")
	{
		authRoutes.POST("/session", auth.Login(cfg))
		authRoutes.DELETE("/session", signedIn, auth.Logout(cfg))
		authRoutes.PUT("/session/language", signedIn, auth.SetLanguage(cfg))
		authRoutes.GET("/session/events", signedIn, auth.Events(cfg))
	}

	// Without a session the dashboards render the placeholder dataset
	analyticsGroup := engine.Group("/analytics")
	{
		analyticsGroup.GET("/overview", optional, dashboard.Overview(cfg))
		for _, section := range analytics.AllSections {
			analyticsGroup.GET("/"+string(section), optional, dashboard.Section(cfg, section))
		}
		analyticsGroup.GET("/export", signedIn, dashboard.Export(cfg))
		analyticsGroup.GET("/history", signedIn, dashboard.History(cfg))
	}

	activityGroup := engine.Group("/activity")
	{
		activityGroup.GET("/recent", signedIn, activity.Recent(cfg))
		activityGroup.GET("/notifications", signedIn, activity.Notifications(cfg))
		activityGroup.GET("/realtime", optional, activity.Realtime(cfg))
	}

	refreshGroup := engine.Group("/refresh", signedIn)
	{
		refreshGroup.PUT("/auto", autorefresh.Toggle(cfg))
		refreshGroup.GET("/status", autorefresh.Status(cfg))
	}
}
