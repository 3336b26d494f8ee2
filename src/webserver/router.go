package webserver

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/voteverse/vote-gateway/src/canister"
	"github.com/voteverse/vote-gateway/src/config"
	"github.com/voteverse/vote-gateway/src/data"
)

func New(cfg config.Config, rdb *redis.Client, cli *canister.Client, src *data.Source) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery(), MetricsMiddleware())
	attachRoutes(g, cfg, rdb, cli, src)
	return g
}

func attachRoutes(r *gin.Engine, cfg config.Config, rdb *redis.Client, cli *canister.Client, src *data.Source) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "If-None-Match"},
		ExposeHeaders:    []string{"Content-Length", "ETag"},
		AllowCredentials: true,
	}))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authH := NewAuth(data.NewNonces(rdb), []byte(cfg.JWTSecret))
	propH := NewProposals(src, cli, cfg.PageSize)
	voteH := NewVotes(cli, data.NewVoteLocks(rdb), src)
	statsH := NewStats(cli)
	limiter := NewRateLimiter(30, time.Minute)

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/challenge", authH.Challenge)
		v1.POST("/auth/verify", authH.Verify)

		v1.GET("/proposals", propH.List)
		v1.GET("/proposals/:id", propH.Detail)
		v1.GET("/stats", statsH.Get)

		secured := v1.Use(JWTMiddleware([]byte(cfg.JWTSecret)), RateLimitMiddleware(limiter))
		secured.POST("/proposals", propH.Create)
		secured.POST("/votes", voteH.Cast)
	}
}
