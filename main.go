package main

import (
	"context"
	"time"

	"github.com/crownmania/crownmania/assets"
	"github.com/crownmania/crownmania/config"
	"github.com/crownmania/crownmania/controllers"
	"github.com/crownmania/crownmania/docstore"
	"github.com/crownmania/crownmania/events"
	"github.com/crownmania/crownmania/forum"
	"github.com/crownmania/crownmania/models"
	"github.com/crownmania/crownmania/routes"
	"github.com/crownmania/crownmania/storage"
	"github.com/crownmania/crownmania/utils"
	"github.com/crownmania/crownmania/vault"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db := config.InitDatabase(&models.PageView{}, &models.Product{}, &models.ContactMessage{}, &models.UploadedAsset{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bootCtx, bootCancel := context.WithTimeout(ctx, 15*time.Second)
	store, err := storage.NewMinioStore(bootCtx, cfg)
	bootCancel()
	if err != nil {
		utils.Sugar.Fatalf("object storage unavailable: %v", err)
	}
	utils.Sugar.Infow("object storage ready", "endpoint", cfg.StorageEndpoint, "bucket", store.Bucket())

	resolver := assets.NewResolver(store, assets.Options{
		TTL:    time.Duration(cfg.AssetCacheTTLMinutes) * time.Minute,
		Logger: utils.Sugar.Named("assets"),
	})
	sweeperDone := utils.StartCacheSweeper(ctx, resolver, time.Duration(cfg.AssetSweepIntervalMinutes)*time.Minute)

	if err := utils.PingRedis(); err != nil {
		utils.Sugar.Warnw("redis unreachable, using in-memory fallbacks", "error", err)
	} else {
		utils.UseCaptchaStore(utils.NewRedisCaptchaStore(10 * time.Minute))
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.NATSURL != "" {
		p, err := events.Connect(cfg.NATSURL, utils.Sugar.Named("nats"))
		if err != nil {
			utils.Sugar.Warnw("upload events disabled", "error", err)
		} else {
			publisher = p
		}
	}

	docs := docstore.New(db)
	if err := docs.Register("products", &models.Product{}); err != nil {
		utils.Sugar.Fatalf("register products collection: %v", err)
	}
	// product rows may have changed while the service was down
	controllers.FlushCollectionCache()

	verifier := vault.NewVerifier(
		time.Duration(cfg.VaultDelayMillis)*time.Millisecond,
		time.Duration(cfg.VaultSessionTTLMinutes)*time.Minute,
	)

	r := routes.SetupRouter(cfg, routes.Deps{
		DB:        db,
		Storage:   store,
		Resolver:  resolver,
		Board:     forum.NewSeededBoard(nil),
		Verifier:  verifier,
		Docs:      docs,
		Publisher: publisher,
	})

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	err = utils.GraceServer(":"+cfg.AppPort, r, func() {
		cancel()
		<-sweeperDone
		verifier.Stop()
		publisher.Close()
	})
	if err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
