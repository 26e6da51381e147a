package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig 聚合运行时配置，尽量通过环境变量注入，避免硬编码。
type AppConfig struct {
	HTTPAddr string
	DBPath   string

	RedisAddr string
	RedisDB   int

	// Kafka 集群地址（逗号分隔）与两个 Topic：
	// 订单事件向外发布，供货入库消息向内消费。
	KafkaBrokers  []string
	OrderTopic    string
	DeliveryTopic string
	DeliveryGroup string

	// Redis Stream outbox（下单事务提交后原子入流，Relay 异步转 Kafka）
	OrderEventStream   string
	OrderEventGroup    string
	OrderEventConsumer string

	// 结账接口限流与菜单缓存策略
	CheckoutRateLimit  int
	CheckoutRateWindow time.Duration
	MenuCacheTTL       time.Duration

	// 新建原料未指定补货线时的默认值
	DefaultReorderLevel int

	// 管理端点（建档/演示数据）的简单管理员令牌
	AdminToken string
}

// Load 读取并校验配置，缺失时使用默认值。
func Load() (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DBPath:              getEnv("DB_PATH", "cafecraft.db"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:             0,
		KafkaBrokers:        splitCSV(getEnv("KAFKA_BROKERS", "localhost:9092")),
		OrderTopic:          getEnv("ORDER_TOPIC", "cafecraft-order-events"),
		DeliveryTopic:       getEnv("DELIVERY_TOPIC", "cafecraft-deliveries"),
		DeliveryGroup:       getEnv("DELIVERY_GROUP_ID", "cafecraft-delivery-consumer"),
		OrderEventStream:    getEnv("ORDER_EVENT_STREAM", "cafecraft:order_events"),
		OrderEventGroup:     getEnv("ORDER_EVENT_GROUP", "cafecraft-relay-group"),
		OrderEventConsumer:  getEnv("ORDER_EVENT_CONSUMER", "cafecraft-relay-1"),
		CheckoutRateLimit:   60,
		CheckoutRateWindow:  time.Minute,
		MenuCacheTTL:        5 * time.Minute,
		DefaultReorderLevel: 10,
		AdminToken:          getEnv("ADMIN_TOKEN", "dev-admin-token"),
	}

	redisDB, err := getEnvInt("REDIS_DB", cfg.RedisDB)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	rateLimit, err := getEnvInt("CHECKOUT_RATE_LIMIT", cfg.CheckoutRateLimit)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid CHECKOUT_RATE_LIMIT: %w", err)
	}
	if rateLimit <= 0 {
		return AppConfig{}, fmt.Errorf("CHECKOUT_RATE_LIMIT must be > 0")
	}
	cfg.CheckoutRateLimit = rateLimit

	rateWindowSec, err := getEnvInt("CHECKOUT_RATE_WINDOW_SEC", int(cfg.CheckoutRateWindow.Seconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid CHECKOUT_RATE_WINDOW_SEC: %w", err)
	}
	if rateWindowSec <= 0 {
		return AppConfig{}, fmt.Errorf("CHECKOUT_RATE_WINDOW_SEC must be > 0")
	}
	cfg.CheckoutRateWindow = time.Duration(rateWindowSec) * time.Second

	menuTTLSec, err := getEnvInt("MENU_CACHE_TTL_SEC", int(cfg.MenuCacheTTL.Seconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid MENU_CACHE_TTL_SEC: %w", err)
	}
	if menuTTLSec <= 0 {
		return AppConfig{}, fmt.Errorf("MENU_CACHE_TTL_SEC must be > 0")
	}
	cfg.MenuCacheTTL = time.Duration(menuTTLSec) * time.Second

	reorder, err := getEnvInt("DEFAULT_REORDER_LEVEL", cfg.DefaultReorderLevel)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid DEFAULT_REORDER_LEVEL: %w", err)
	}
	if reorder < 0 {
		return AppConfig{}, fmt.Errorf("DEFAULT_REORDER_LEVEL must be >= 0")
	}
	cfg.DefaultReorderLevel = reorder

	if len(cfg.KafkaBrokers) == 0 {
		return AppConfig{}, fmt.Errorf("KAFKA_BROKERS must not be empty")
	}
	if cfg.OrderTopic == "" {
		return AppConfig{}, fmt.Errorf("ORDER_TOPIC must not be empty")
	}
	if cfg.DeliveryTopic == "" {
		return AppConfig{}, fmt.Errorf("DELIVERY_TOPIC must not be empty")
	}
	if cfg.DeliveryGroup == "" {
		return AppConfig{}, fmt.Errorf("DELIVERY_GROUP_ID must not be empty")
	}
	if cfg.OrderEventStream == "" {
		return AppConfig{}, fmt.Errorf("ORDER_EVENT_STREAM must not be empty")
	}
	if cfg.OrderEventGroup == "" {
		return AppConfig{}, fmt.Errorf("ORDER_EVENT_GROUP must not be empty")
	}
	if cfg.OrderEventConsumer == "" {
		return AppConfig{}, fmt.Errorf("ORDER_EVENT_CONSUMER must not be empty")
	}

	return cfg, nil
}

// getEnv 读取字符串环境变量，若为空则返回默认值。
func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// getEnvInt 读取整数环境变量，若为空则返回默认值。
func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

// splitCSV 将逗号分隔字符串解析为字符串切片。
func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
