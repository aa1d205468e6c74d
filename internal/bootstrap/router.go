package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ivoka/taskvote-backend/config"
	httpapi "github.com/ivoka/taskvote-backend/internal/api/http"
	"github.com/ivoka/taskvote-backend/internal/api/http/middleware"
	"github.com/ivoka/taskvote-backend/internal/auth"
	pollshttp "github.com/ivoka/taskvote-backend/internal/polls/http"
	"github.com/ivoka/taskvote-backend/internal/polls/repository"
	"github.com/ivoka/taskvote-backend/internal/polls/service"
	"github.com/ivoka/taskvote-backend/internal/users"
	usershttp "github.com/ivoka/taskvote-backend/internal/users/http"
)

type RouterDeps struct {
	ServiceName string
	Cfg         *config.Config
	DB          *pgxpool.Pool
	Redis       *redis.Client // may be nil
}

// BuildRouter wires repositories, the aggregation service and the HTTP
// handlers. Everything is constructed once here and shared; all components
// are stateless and safe for concurrent requests.
func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(cors.Default())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Cfg.App.Version, dep.DB)
	healthHandler.RegisterRoutes(r)

	userRepo := users.NewRepo(dep.DB)
	projectRepo := repository.NewProjectRepo(dep.DB)
	voteRepo := repository.NewVoteRepo(dep.DB)

	svc := service.New(projectRepo, voteRepo, userRepo)

	secret := dep.Cfg.Auth.JWTSecret
	requireUser := auth.RequireUser(secret, userRepo)
	rateLimit := middleware.NewRateLimiter(dep.Redis, dep.Cfg.App.VoteRatePerMinute).Limit()

	api := r.Group("/api")
	api.Use(auth.OptionalUser(secret, userRepo))

	pollshttp.New(svc).Register(api.Group("/projects"), requireUser, rateLimit)
	usershttp.New(svc).Register(api, requireUser)

	return r
}
