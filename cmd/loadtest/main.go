package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"
)

// 并发下单压测：对同一商品发起大量并发结账，
// 统计各状态码/错误类型的分布，用于人工核对不会超卖。

var (
	baseURL     = flag.String("base", "http://localhost:8080", "服务地址")
	concurrency = flag.Int("c", 50, "并发数")
	total       = flag.Int("n", 200, "总请求数")
	productID   = flag.Uint("product", 1, "商品 ID")
	userID      = flag.Uint("user", 2, "操作员 ID")
	adminToken  = flag.String("token", "dev-admin-token", "管理令牌")
)

func main() {
	flag.Parse()

	if err := seed(); err != nil {
		log.Fatalf("演示数据初始化失败: %v", err)
	}

	type result struct {
		status int
		kind   string
	}
	results := make(chan result, *total)
	sem := make(chan struct{}, *concurrency)
	var wg sync.WaitGroup

	client := &http.Client{Timeout: 10 * time.Second}
	start := time.Now()

	for i := 0; i < *total; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			status, kind := checkout(client)
			results <- result{status: status, kind: kind}
		}()
	}
	wg.Wait()
	close(results)
	elapsed := time.Since(start)

	counts := map[string]int{}
	for r := range results {
		key := fmt.Sprintf("%d", r.status)
		if r.kind != "" {
			key = fmt.Sprintf("%d/%s", r.status, r.kind)
		}
		counts[key]++
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("总请求 %d，耗时 %v\n", *total, elapsed)
	for _, k := range keys {
		fmt.Printf("  %-40s %d\n", k, counts[k])
	}
	printLots(client)
}

func seed() error {
	req, err := http.NewRequest(http.MethodPost, *baseURL+"/api/admin/seed", nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Admin-Token", *adminToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("seed: HTTP %d: %s", resp.StatusCode, body)
	}
	return nil
}

// checkout 返回状态码与业务错误 kind（成功时为空）。
func checkout(client *http.Client) (int, string) {
	payload := map[string]any{
		"user_id":        *userID,
		"payment_method": "cash",
		"items": []map[string]any{
			{"product_id": *productID, "quantity": 1},
		},
	}
	raw, _ := json.Marshal(payload)
	resp, err := client.Post(*baseURL+"/api/orders/checkout", "application/json", bytes.NewReader(raw))
	if err != nil {
		return 0, err.Error()
	}
	defer resp.Body.Close()

	var body struct {
		Kind string `json:"kind"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body.Kind
}

// printLots 打印剩余批次，便于核对守恒：初始量 - 成功单数×配方用量。
func printLots(client *http.Client) {
	resp, err := client.Get(*baseURL + "/api/inventory/lots")
	if err != nil {
		log.Printf("查询批次失败: %v", err)
		return
	}
	defer resp.Body.Close()
	var body struct {
		Data []struct {
			ID           uint    `json:"id"`
			IngredientID uint    `json:"ingredient_id"`
			Quantity     float64 `json:"quantity"`
			Unit         string  `json:"unit"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Printf("解析批次失败: %v", err)
		return
	}
	fmt.Println("剩余批次:")
	for _, lot := range body.Data {
		fmt.Printf("  lot=%d ingredient=%d %.4f %s\n", lot.ID, lot.IngredientID, lot.Quantity, lot.Unit)
	}
}
