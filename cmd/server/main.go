package main

//	@title			Gridspace API
//	@version		1.0
//	@description	Multi-tenant spreadsheet API: workspaces, tables, rows, CSV import and billing.
//	@schemes		http https
//	@BasePath		/api/v1

//  Session bearer token
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token (e.g., "Bearer gs_sess_xxxx")

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/do"
	"go.uber.org/zap"

	"github.com/gridspace-io/gridspace/internal/bootstrap"
	"github.com/gridspace-io/gridspace/internal/config"
	"github.com/gridspace-io/gridspace/internal/infra/session"
	"github.com/gridspace-io/gridspace/internal/modules/handler"
	"github.com/gridspace-io/gridspace/internal/pkg/utils"
	"github.com/gridspace-io/gridspace/internal/router"
	"github.com/gridspace-io/gridspace/internal/telemetry"
)

func main() {
	// build dependency injection container
	inj := bootstrap.BuildContainer()

	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)
	defer func() { _ = log.Sync() }()

	tp, err := telemetry.SetupTracing(cfg)
	if err != nil {
		log.Sugar().Warnw("failed to setup tracing, continuing without tracing", "err", err)
	} else if tp != nil {
		log.Sugar().Infow("OpenTelemetry tracing enabled", "endpoint", cfg.Telemetry.OtlpEndpoint)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := telemetry.Shutdown(ctx); err != nil {
				log.Sugar().Errorw("failed to shutdown tracer", "err", err)
			}
		}()
	}

	// init gin
	gin.SetMode(cfg.App.Env)

	sessions := do.MustInvoke[session.Store](inj)
	engine := router.NewRouter(router.RouterDeps{
		Config:           cfg,
		Log:              log,
		Sessions:         sessions,
		WorkspaceHandler: do.MustInvoke[*handler.WorkspaceHandler](inj),
		TableHandler:     do.MustInvoke[*handler.TableHandler](inj),
		RowHandler:       do.MustInvoke[*handler.RowHandler](inj),
		ImportHandler:    do.MustInvoke[*handler.ImportHandler](inj),
		BillingHandler:   do.MustInvoke[*handler.BillingHandler](inj),
		SessionHandler:   do.MustInvoke[*handler.SessionHandler](inj),
	})

	addr := fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port)
	srv := &http.Server{Addr: addr, Handler: engine}

	if gin.Mode() != gin.ReleaseMode {
		mintDevSession(cfg, sessions, log)
	}

	go func() {
		log.Sugar().Infow("starting http server", "addr", addr)
		log.Sugar().Infow("swagger url", "url", addr+"/swagger/index.html")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Sugar().Fatalw("listen error", "err", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Sugar().Errorw("server shutdown", "err", err)
	}
	if err := inj.Shutdown(); err != nil {
		log.Sugar().Warnw("container shutdown", "err", err)
	}
	log.Sugar().Info("server exited")
}

// mintDevSession stores a session for the configured dev user so the API can be tried without
// the identity provider.
func mintDevSession(cfg *config.Config, store session.Store, log *zap.Logger) {
	if cfg.Session.DevUserID == "" {
		return
	}
	token, err := utils.NewSessionToken()
	if err != nil {
		log.Sugar().Warnw("generate dev session token", "err", err)
		return
	}
	ttl := time.Duration(cfg.Session.TTLSec) * time.Second
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Save(ctx, token, session.Data{
		UserID:    cfg.Session.DevUserID,
		Email:     cfg.Session.DevUserEmail,
		ExpiresAt: time.Now().Add(ttl),
	}); err != nil {
		log.Sugar().Warnw("store dev session", "err", err)
		return
	}
	log.Sugar().Infow("dev session bearer token", "user_id", cfg.Session.DevUserID, "token", "Bearer "+token)
}
