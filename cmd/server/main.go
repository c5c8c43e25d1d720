package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	rd "github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"marketplace/internal/config"
	"marketplace/internal/model"
	"marketplace/internal/notify"
	"marketplace/internal/reservation"
	"marketplace/internal/router"
)

func main() {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.AutoMigrate(&model.Product{}, &model.Reservation{}, &model.Notification{}); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	rdb := rd.NewClient(&rd.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	defer rdb.Close()

	producer := notify.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()
	dispatcher := notify.NewDispatcher(producer, cfg.SellerContactChannel)

	svc := reservation.NewService(db, dispatcher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := notify.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID,
		db, rdb, notify.LogMailer{}, cfg.NotifyLockTTL)
	defer consumer.Close()
	go consumer.Run(ctx)

	r := gin.Default()
	router.Setup(r, db, rdb, svc, cfg)

	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("http serve: %v", err)
	}
}
