package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Result records one HTTP outcome for aggregation.
type Result struct {
	Status int
	Body   string
	Err    error
}

func main() {
	baseURL := flag.String("base", "http://localhost:8080", "server base url")
	sellerID := flag.Int64("seller", 1, "seller user id")
	quantity := flag.Int64("stock", 5, "product stock to create")

	// Oversell probe: many buyers claim the same finite stock, then the
	// seller marks every claim SOLD. Only `stock` of them may succeed.
	nBuyers := flag.Int("buyers", 50, "distinct buyers")
	concurrency := flag.Int("c", 25, "max concurrency")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}

	productID, err := createProduct(client, *baseURL, *sellerID, *quantity)
	if err != nil {
		panic(fmt.Sprintf("create product failed: %v", err))
	}
	fmt.Printf("created product %d with stock %d\n", productID, *quantity)

	fmt.Printf("start reserve burst: product=%d buyers=%d concurrency=%d\n", productID, *nBuyers, *concurrency)
	results, reservationIDs := runReserve(client, *baseURL, productID, *nBuyers, *concurrency)
	printSummary("reserve", results)

	// The seller now flips every reservation to SOLD, one by one. The
	// SOLD-entry guard must reject everything past the available stock.
	fmt.Printf("start sell pass: %d reservations\n", len(reservationIDs))
	sellResults := make([]Result, 0, len(reservationIDs))
	for _, id := range reservationIDs {
		sellResults = append(sellResults, transition(client, *baseURL, *sellerID, id, "SOLD"))
	}
	printSummary("sell", sellResults)

	final, err := getProductQuantity(client, *baseURL, productID)
	if err != nil {
		fmt.Println("quantity check err:", err)
	} else {
		fmt.Println("final product quantity:", final)
		if final < 0 {
			fmt.Println("OVERSELL DETECTED: quantity went negative")
		}
	}
}

func runReserve(client *http.Client, baseURL string, productID uint, nBuyers, concurrency int) ([]Result, []uint) {
	type Req struct {
		ProductID uint  `json:"product_id"`
		Quantity  int64 `json:"quantity"`
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	results := make([]Result, nBuyers)
	ids := make([]uint, nBuyers)

	for i := 0; i < nBuyers; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			buyerID := int64(idx + 1000)
			res := doJSON(client, http.MethodPost, baseURL+"/api/reservations",
				Req{ProductID: productID, Quantity: 1},
				map[string]string{"X-User-ID": strconv.FormatInt(buyerID, 10), "X-User-Role": "buyer"})
			results[idx] = res
			ids[idx] = extractID(res.Body)
		}(i)
	}

	wg.Wait()

	out := make([]uint, 0, nBuyers)
	for _, id := range ids {
		if id > 0 {
			out = append(out, id)
		}
	}
	return results, out
}

func transition(client *http.Client, baseURL string, sellerID int64, reservationID uint, status string) Result {
	return doJSON(client, http.MethodPost,
		fmt.Sprintf("%s/api/reservations/%d/status", baseURL, reservationID),
		map[string]string{"status": status},
		map[string]string{"X-User-ID": strconv.FormatInt(sellerID, 10), "X-User-Role": "seller"})
}

func createProduct(client *http.Client, baseURL string, sellerID, quantity int64) (uint, error) {
	res := doJSON(client, http.MethodPost, baseURL+"/api/products", map[string]any{
		"name":        "loadtest item",
		"price_cents": 1000,
		"quantity":    quantity,
	}, map[string]string{"X-User-ID": strconv.FormatInt(sellerID, 10), "X-User-Role": "seller"})
	if res.Err != nil {
		return 0, res.Err
	}
	if res.Status >= 300 {
		return 0, fmt.Errorf("status=%d body=%s", res.Status, res.Body)
	}
	id := extractID(res.Body)
	if id == 0 {
		return 0, fmt.Errorf("no product id in %s", res.Body)
	}
	return id, nil
}

func getProductQuantity(client *http.Client, baseURL string, productID uint) (int64, error) {
	resp, err := client.Get(baseURL + "/api/products")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("status=%d body=%s", resp.StatusCode, string(b))
	}

	var out struct {
		Code int `json:"code"`
		Data []struct {
			ID       uint  `json:"id"`
			Quantity int64 `json:"quantity"`
		} `json:"data"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return 0, err
	}
	for _, p := range out.Data {
		if p.ID == productID {
			return p.Quantity, nil
		}
	}
	return 0, fmt.Errorf("product %d not in listing", productID)
}

// doJSON sends one JSON request with headers and captures the outcome.
func doJSON(client *http.Client, method, url string, body any, headers map[string]string) Result {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req, _ := http.NewRequest(method, url, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Err: err}
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return Result{Status: resp.StatusCode, Body: string(b)}
}

// extractID pulls data.id out of the response envelope; 0 when absent.
func extractID(body string) uint {
	var out struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return 0
	}
	return out.Data.ID
}

// printSummary aggregates status-code distribution.
func printSummary(name string, results []Result) {
	count := map[int]int{}
	errCount := 0
	for _, r := range results {
		if r.Err != nil {
			errCount++
			continue
		}
		count[r.Status]++
	}
	fmt.Printf("[%s] http status summary:\n", name)
	for _, code := range []int{200, 204, 400, 401, 403, 404, 429, 500} {
		if count[code] > 0 {
			fmt.Printf("  %d -> %d\n", code, count[code])
		}
	}
	if errCount > 0 {
		fmt.Printf("  errors -> %d\n", errCount)
	}
}
