package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voteverse/vote-gateway/src/canister"
	"github.com/voteverse/vote-gateway/src/config"
	"github.com/voteverse/vote-gateway/src/data"
	"github.com/voteverse/vote-gateway/src/webserver"
)

func main() {
	cfg := config.Load()

	rdb := data.MustRedis(cfg.RedisURL)
	cli := canister.NewClient(cfg.CanisterURL, cfg.CanisterTimeout)
	src := data.NewSource(cli, cfg.RefreshInterval)

	router := webserver.New(cfg, rdb, cli, src)
	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()
	log.Printf("VoteVerse gateway listening on %s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
