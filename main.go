package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kevinaaaquil/shelf/config"
	"github.com/kevinaaaquil/shelf/handlers"
	"github.com/kevinaaaquil/shelf/service"
	"github.com/kevinaaaquil/shelf/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("config:", err)
	}

	ctx := context.Background()
	var db *store.DB
	if cfg.StoreDriver == config.DriverMemory {
		log.Println("warning: STORE_DRIVER=memory; data is lost on restart")
		db = store.NewMemoryDB()
	} else {
		db, err = store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName)
		if err != nil {
			log.Fatal("mongodb:", err)
		}
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			log.Println("mongodb disconnect:", err)
		}
	}()
	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatal("indexes:", err)
	}

	var covers handlers.CoverStore
	if cfg.S3Bucket != "" {
		bucket, err := service.NewCoverBucket(ctx, service.CoverBucketConfig{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
		})
		if err != nil {
			log.Fatal("s3:", err)
		}
		covers = bucket
	} else {
		log.Println("warning: AWS_S3_BUCKET not set; cover uploads will fail")
	}

	var notifier service.ReviewNotifier
	if cfg.MailEnabled() {
		notifier = service.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom, cfg.ModeratorEmail)
	} else {
		log.Println("warning: SMTP_HOST or MODERATOR_EMAIL not set; review notifications disabled")
	}

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	router := handlers.NewRouter(handlers.Deps{
		DB:             db,
		Library:        service.NewLibraryService(db, notifier),
		Tokens:         tokens,
		Verifier:       tokens,
		Covers:         covers,
		Catalog:        service.NewCatalog(cfg.CatalogURL),
		MaxUploadBytes: cfg.MaxUploadMB * 1024 * 1024,
		CORSOrigins:    cfg.CORSOrigins,
	})

	server := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		log.Println("server listening on :" + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("shutdown:", err)
	}
}
