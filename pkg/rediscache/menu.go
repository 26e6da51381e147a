// Package rediscache 统一约定 Redis 键名，并提供菜单的读穿缓存。
// 缓存只是加速层：Redis 不可用时调用方直接回源数据库。
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	rd "github.com/redis/go-redis/v9"

	"cafecraft/internal/model"
)

// MenuKey 在售商品列表的缓存键。
func MenuKey() string { return "cafecraft:menu:active" }

// DailySalesKey 某日销售汇总的缓存键。
func DailySalesKey(date string) string {
	return fmt.Sprintf("cafecraft:sales:daily:%s", date)
}

// GetMenu 读取缓存的在售商品列表。found=false 表示缓存未命中。
func GetMenu(ctx context.Context, rdb *rd.Client) ([]model.Product, bool, error) {
	b, err := rdb.Get(ctx, MenuKey()).Bytes()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var list []model.Product
	if err := json.Unmarshal(b, &list); err != nil {
		// 脏缓存当作未命中，回源后会被覆盖。
		return nil, false, nil
	}
	return list, true, nil
}

// PutMenu 写入菜单缓存并设置 TTL。
func PutMenu(ctx context.Context, rdb *rd.Client, list []model.Product, ttl time.Duration) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, MenuKey(), b, ttl).Err()
}

// InvalidateMenu 商品目录变更后主动失效菜单缓存。
func InvalidateMenu(ctx context.Context, rdb *rd.Client) error {
	return rdb.Del(ctx, MenuKey()).Err()
}
