package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"airdrop-auth-backend/internal/common/config"
	"airdrop-auth-backend/internal/common/logger"
	"airdrop-auth-backend/internal/common/middleware"
	marketredis "airdrop-auth-backend/internal/features/market/cache/redis"
	markethttp "airdrop-auth-backend/internal/features/market/delivery/http"
	marketpg "airdrop-auth-backend/internal/features/market/repository/postgres"
	marketservice "airdrop-auth-backend/internal/features/market/service"
	minthttp "airdrop-auth-backend/internal/features/mintsign/delivery/http"
	mintpg "airdrop-auth-backend/internal/features/mintsign/repository/postgres"
	mintservice "airdrop-auth-backend/internal/features/mintsign/service"
	sessionhttp "airdrop-auth-backend/internal/features/session/delivery/http"
	sessionredis "airdrop-auth-backend/internal/features/session/repository/redis"
	sessionservice "airdrop-auth-backend/internal/features/session/service"
	tghttp "airdrop-auth-backend/internal/features/telegramauth/delivery/http"
	tgredis "airdrop-auth-backend/internal/features/telegramauth/repository/redis"
	tgservice "airdrop-auth-backend/internal/features/telegramauth/service"
	userhttp "airdrop-auth-backend/internal/features/user/delivery/http"
	userpg "airdrop-auth-backend/internal/features/user/repository/postgres"
	userservice "airdrop-auth-backend/internal/features/user/service"
	wallethttp "airdrop-auth-backend/internal/features/walletauth/delivery/http"
	walletservice "airdrop-auth-backend/internal/features/walletauth/service"
	"airdrop-auth-backend/internal/platform/db"
	"airdrop-auth-backend/internal/platform/ethrpc"
	redisplatform "airdrop-auth-backend/internal/platform/redis"
	"airdrop-auth-backend/internal/platform/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("config load: %v", err))
	}

	logger.Init("airdrop-auth-backend", cfg.Debug)

	pg, err := db.Open(ctx, cfg.Postgres.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres open")
	}
	defer pg.Close()

	rdb, err := redisplatform.Open(ctx, cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis open")
	}
	defer rdb.Close()

	rpcPool := ethrpc.NewPool(cfg.Chains.RPCURLs)
	defer rpcPool.Close()

	bot := telegram.NewClient(cfg.Telegram.BotToken)

	// Services.
	userSvc := userservice.NewService(userpg.NewPostgresRepository(pg))

	sessionSvc, err := sessionservice.NewService(userSvc, sessionredis.NewRefreshStore(rdb), sessionservice.Config{
		JWTSecret:       cfg.Auth.JWTSecret,
		TokenHashSecret: cfg.Auth.TokenHashSecret,
		WalletTTL:       cfg.Auth.WalletSessionTTL,
		TelegramTTL:     cfg.Auth.TelegramSessionTTL,
		RefreshTTL:      cfg.Auth.RefreshTokenTTL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("session service init")
	}

	walletSvc := walletservice.NewService(userSvc, sessionSvc,
		func(ctx context.Context, chainID int64) (walletservice.ContractBackend, error) {
			client, err := rpcPool.Client(ctx, chainID)
			if err != nil {
				return nil, err
			}
			return client, nil
		})

	tgSvc := tgservice.NewService(tgredis.NewTokenStore(rdb), userSvc, sessionSvc, bot, tgservice.Config{
		BotToken:        cfg.Telegram.BotToken,
		SiteURL:         cfg.Server.PublicSiteURL,
		TokenTTL:        cfg.Auth.LoginTokenTTL,
		TokenHashSecret: cfg.Auth.TokenHashSecret,
	})

	mintSvc, err := mintservice.NewService(mintpg.NewNonceStore(pg), cfg.Chains.MintSignerKeys, cfg.Chains.MintTag)
	if err != nil {
		logger.Fatal().Err(err).Msg("mint signer init")
	}

	marketSvc := marketservice.NewService(marketpg.NewPriceRepository(pg), marketredis.NewPriceCache(rdb), marketservice.Config{
		APIBaseURL: cfg.Market.APIBaseURL,
		CoinIDs:    cfg.Market.CoinIDs,
		VsCurrency: cfg.Market.VsCurrency,
	})

	// Router.
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Recovery(),
		middleware.ErrorHandler(),
		cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "X-Cron-Secret"},
			MaxAge:          12 * time.Hour,
		}),
	)

	requireAuth := middleware.RequireAuth(sessionSvc)
	api := router.Group("/api/v1")

	wallethttp.NewHandler(walletSvc).RegisterRoutes(api)
	sessionhttp.NewHandler(sessionSvc).RegisterRoutes(api)
	userhttp.NewHandler(userSvc).RegisterRoutes(api, requireAuth)
	minthttp.NewHandler(mintSvc).RegisterRoutes(api, requireAuth)
	markethttp.NewHandler(marketSvc, cfg.Market.RefreshSecret).RegisterRoutes(api)

	tgHandler := tghttp.NewHandler(tgSvc, cfg.Telegram.WebhookSecret)
	tgHandler.RegisterRoutes(api)
	tgHandler.RegisterWebhook(router)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}
	logger.Info().Msg("server stopped")
}
