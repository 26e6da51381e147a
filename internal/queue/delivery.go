package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"cafecraft/internal/pos"
)

// DeliveryMessage 供货入库消息。Reference 为供货单号，
// 消息重放时凭它幂等去重。
type DeliveryMessage struct {
	Reference    string     `json:"reference"`
	IngredientID uint       `json:"ingredient_id"`
	Quantity     float64    `json:"quantity"`
	Unit         string     `json:"unit"`
	Supplier     string     `json:"supplier"`
	Location     string     `json:"location"`
	ExpiresAt    *time.Time `json:"expires_at"`
	// UserID 负责验收入库的操作员。
	UserID uint `json:"user_id"`
}

// Validate 做最小字段校验，防止消费端处理脏消息。
func (m DeliveryMessage) Validate() error {
	if m.Reference == "" {
		return fmt.Errorf("reference is required")
	}
	if m.IngredientID == 0 {
		return fmt.Errorf("ingredient_id is required")
	}
	if m.Quantity <= 0 {
		return fmt.Errorf("quantity must be > 0")
	}
	if m.UserID == 0 {
		return fmt.Errorf("user_id is required")
	}
	return nil
}

// DeliveryConsumer 消费供货消息并走入库流水线（建批次 + restock 变动）。
type DeliveryConsumer struct {
	r      *kafka.Reader
	engine *pos.Engine
}

func NewDeliveryConsumer(brokers []string, topic, groupID string, engine *pos.Engine) *DeliveryConsumer {
	return &DeliveryConsumer{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1e3,
			MaxBytes: 1e6,
		}),
		engine: engine,
	}
}

func (c *DeliveryConsumer) Close() error { return c.r.Close() }

func (c *DeliveryConsumer) Run(ctx context.Context) {
	for {
		m, err := c.r.ReadMessage(ctx)
		if err != nil {
			return // ctx cancel / 连接断开等
		}

		var msg DeliveryMessage
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			log.Printf("delivery consumer unmarshal: %v", err)
			continue
		}
		if err := msg.Validate(); err != nil {
			log.Printf("delivery consumer invalid message: %v", err)
			continue
		}

		_, created, err := c.engine.ReceiveStock(ctx, pos.ReceiveStockInput{
			UserID:       msg.UserID,
			IngredientID: msg.IngredientID,
			Quantity:     msg.Quantity,
			Unit:         msg.Unit,
			ExpiresAt:    msg.ExpiresAt,
			Supplier:     msg.Supplier,
			Location:     msg.Location,
			Reference:    msg.Reference,
		})
		if err != nil {
			log.Printf("delivery consumer receive stock ref=%s: %v", msg.Reference, err)
			continue
		}
		if !created {
			// 幂等：同一供货单号重复投递，直接跳过。
			continue
		}
	}
}
