package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

var httpClient *http.Client

func init() {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 2000
	t.MaxIdleConnsPerHost = 2000
	t.MaxConnsPerHost = 2000
	httpClient = &http.Client{
		Transport: t,
		Timeout:   10 * time.Second,
	}
}

// 并发压测：同一交易号并发抽奖只能成功一次，同一档位礼包并发领取只能成功一次
func main() {
	baseURL := flag.String("base", "http://localhost:8080", "server base url")
	mode := flag.String("mode", "spin", "spin | gift")
	total := flag.Int("n", 200, "concurrent requests")
	tranID := flag.String("tran", "", "transaction id holding one spin (mode=spin)")
	userID := flag.String("user", "", "game user id (mode=gift)")
	productID := flag.String("product", "", "product id (mode=gift)")
	level := flag.Int("level", 1, "gift level (mode=gift)")
	flag.Parse()

	var url string
	var payload map[string]interface{}
	switch *mode {
	case "spin":
		url = *baseURL + "/api/spin"
		payload = map[string]interface{}{"transactionId": *tranID}
	case "gift":
		url = *baseURL + "/api/gift/claim"
		payload = map[string]interface{}{"userId": *userID, "productId": *productID, "level": *level}
	default:
		fmt.Println("unknown mode:", *mode)
		return
	}
	body, _ := json.Marshal(payload)

	fmt.Printf("开始压测：%d 个并发请求 -> %s\n", *total, url)

	var wg sync.WaitGroup
	var successCount, failCount int64
	start := time.Now()

	for i := 0; i < *total; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if post(url, body) {
				atomic.AddInt64(&successCount, 1)
			} else {
				atomic.AddInt64(&failCount, 1)
			}
		}()
	}

	wg.Wait()
	duration := time.Since(start)

	fmt.Println("--------------------------------------------------")
	fmt.Printf("压测结束，耗时: %v\n", duration)
	fmt.Printf("QPS: %.2f\n", float64(*total)/duration.Seconds())
	fmt.Printf("成功: %d (预期: 1)\n", successCount)
	fmt.Printf("失败: %d\n", failCount)
	if successCount > 1 {
		fmt.Println("!!! 出现重复成功，单次使用约束被破坏")
	}
	fmt.Println("--------------------------------------------------")
}

func post(url string, body []byte) bool {
	resp, err := httpClient.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK {
		return false
	}

	var result struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return false
	}
	return result.Code == 0
}
