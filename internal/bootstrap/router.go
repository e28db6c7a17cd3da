package bootstrap

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/crowdsourcing/surveyadmin/internal/adminui"
	httpapi "github.com/crowdsourcing/surveyadmin/internal/api/http"
	"github.com/crowdsourcing/surveyadmin/internal/api/http/middleware"
	"github.com/crowdsourcing/surveyadmin/internal/auth"
	"github.com/crowdsourcing/surveyadmin/internal/fieldnames"
	surveyhttp "github.com/crowdsourcing/surveyadmin/internal/surveys/http"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// AdminPrefix is where the admin site and the field-name endpoints live
const AdminPrefix = "/admin"

// TagSourceURL is the suggestion endpoint written into bound inputs
const TagSourceURL = AdminPrefix + adminui.SuggestionsPath

type RouterDeps struct {
	ServiceName string
	Version     string
	CORSOrigins []string

	DB    *sql.DB
	Redis *redis.Client

	Surveys surveyhttp.SurveyProvider
	Staff   auth.StaffOptions

	Store   *fieldnames.Store
	Metrics adminui.MetricsSource

	// AdminProxy receives every request no route matched
	AdminProxy http.Handler
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	if mw := corsMiddleware(dep.CORSOrigins); mw != nil {
		r.Use(mw)
	}

	var healthOpts []httpapi.HealthOption
	if dep.DB != nil {
		healthOpts = append(healthOpts, httpapi.WithDB(dep.DB))
	}
	if dep.Redis != nil {
		client := dep.Redis
		healthOpts = append(healthOpts, httpapi.WithRedis(httpapi.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})))
	}
	if dep.Store != nil {
		store := dep.Store
		healthOpts = append(healthOpts, httpapi.WithFieldnames(func() string {
			return string(store.State())
		}))
	}
	httpapi.NewHealthHandler(dep.ServiceName, dep.Version, healthOpts...).RegisterRoutes(r)

	if dep.Surveys != nil {
		api := r.Group(surveyhttp.BasePath)
		api.Use(auth.RequireStaff(dep.Staff))
		surveyhttp.NewHandler(dep.Surveys).Register(api)
	}

	if dep.Store != nil {
		admin := r.Group(AdminPrefix)
		adminui.NewHandler(dep.Store, dep.Metrics).Register(admin)
	}

	if dep.AdminProxy != nil {
		r.NoRoute(gin.WrapH(dep.AdminProxy))
	}

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return nil
	}

	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-API-Key", "X-User-Id", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, adminui.StateHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cors.New(cfg)
		}
	}
	cfg.AllowOrigins = origins
	return cors.New(cfg)
}
