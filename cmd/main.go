// careerpage portal-service
//
// Backend for the job board front end. Serves the job list, job detail,
// application, login and management pages as JSON view-models and talks to
// the Remote Job Store and its Auth API on the user's behalf.
//
// Remembered sessions are kept in PostgreSQL when DATABASE_URL is set.
// Redis, when configured, throttles logins and carries submitted applications.
// A gRPC health service reports whether the Job Store answers.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"careerpage/portal-service/internal/config"
	"careerpage/portal-service/internal/db"
	"careerpage/portal-service/internal/detail"
	"careerpage/portal-service/internal/grpcserver"
	"careerpage/portal-service/internal/jobstore"
	"careerpage/portal-service/internal/manage"
	"careerpage/portal-service/internal/ratelimit"
	"careerpage/portal-service/internal/scheduler"
	"careerpage/portal-service/internal/session"
	"careerpage/portal-service/internal/web"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[portal-service] Config error: %v", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL (remembered sessions) ─────────────────────────────────────
	var durable session.Store
	pool, err := db.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[portal-service] PostgreSQL: %v", err)
	}
	if pool != nil {
		defer pool.Close()
		store := session.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			log.Fatalf("[portal-service] PostgreSQL: %v", err)
		}
		durable = store
		log.Println("[portal-service] PostgreSQL connected ✓")
	} else {
		log.Println("[portal-service] DATABASE_URL not set, remembered sessions kept in memory")
	}

	// ── Redis (login throttling, application events) ─────────────────────────
	rdb, err := db.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[portal-service] Redis: %v", err)
	}
	var submitter detail.Submitter = detail.DiscardSubmitter{}
	if rdb != nil {
		defer rdb.Close()
		submitter = detail.NewRedisSubmitter(rdb, cfg.ApplicationChannel)
		log.Println("[portal-service] Redis connected ✓")
	}
	limiter := ratelimit.New(rdb, cfg.LoginRateLimit, time.Minute, "portal:login")

	// ── Domain ───────────────────────────────────────────────────────────────
	client := jobstore.NewClient(cfg.JobStoreURL, &http.Client{Timeout: cfg.UpstreamTimeout})
	sessions := session.NewManager(client, session.NewMemoryStore(), durable, cfg.SessionTTL)
	boards := manage.NewService(client)

	// ── gRPC health ──────────────────────────────────────────────────────────
	grpcSrv := grpcserver.NewServer(client)
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		log.Fatalf("[portal-service] gRPC listen: %v", err)
	}
	go func() {
		log.Printf("[portal-service] gRPC health listening on :%s", cfg.GRPCPort)
		if err := grpcSrv.Serve(lis); err != nil {
			log.Printf("[portal-service] gRPC server error: %v", err)
		}
	}()

	// ── Scheduler ────────────────────────────────────────────────────────────
	sched := scheduler.New(sessions, grpcSrv, cfg.PurgeSchedule)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[portal-service] Scheduler: %v", err)
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	web.NewHandler(client, sessions, boards, submitter, limiter).
		TrustProxies(cfg.TrustedProxies).
		RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout + 5*time.Second,
	}

	go func() {
		log.Printf("[portal-service] v%s listening on :%s (job store %s)", version, cfg.Port, cfg.JobStoreURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[portal-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[portal-service] Shutting down…")
	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[portal-service] Shutdown error: %v", err)
	}
	grpcSrv.Stop()
	log.Println("[portal-service] Stopped.")
}
