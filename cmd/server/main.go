package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"cafecraft/internal/config"
	"cafecraft/internal/pos"
	"cafecraft/internal/queue"
	"cafecraft/internal/router"
	"cafecraft/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}
	if err := store.AutoMigrate(db); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	st := store.New(db)
	engine := pos.NewEngine(st)

	rdb := rd.NewClient(&rd.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("Redis 连接失败，限流与缓存降级: %v", err)
	}

	// 订单事件发件箱 → Kafka 中转
	producer := queue.NewProducer(cfg.KafkaBrokers, cfg.OrderTopic)
	defer producer.Close()
	relay := queue.NewRelay(rdb, producer, cfg.OrderEventStream, cfg.OrderEventGroup, cfg.OrderEventConsumer)
	go relay.Run(ctx)

	// 供货入库消息消费
	delivery := queue.NewDeliveryConsumer(cfg.KafkaBrokers, cfg.DeliveryTopic, cfg.DeliveryGroup, engine)
	defer delivery.Close()
	go delivery.Run(ctx)

	r := gin.Default()
	router.Setup(r, st, engine, rdb, cfg)

	log.Printf("CafeCraft POS 启动，监听 %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("HTTP 服务退出: %v", err)
	}
}
