package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sergiohdezchi/order-processing-service/internal/grpcapi"
)

// loadgen fires CreateOrder calls at a fixed rate against a running intake
// server and reports how many were accepted.
func main() {
	addr := flag.String("addr", "localhost:50051", "intake grpc address")
	rate := flag.Int("rate", 50, "requests per second")
	duration := flag.Duration("duration", 30*time.Second, "how long to run")
	flag.Parse()

	client, err := grpcapi.NewClient(*addr)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer client.Close()

	log.Printf("starting load: rate=%d req/s, duration=%v", *rate, *duration)

	ticker := time.NewTicker(time.Second / time.Duration(*rate))
	defer ticker.Stop()
	timer := time.NewTimer(*duration)
	defer timer.Stop()

	var sent, accepted, failed atomic.Int64
	var wg sync.WaitGroup
	start := time.Now()

loop:
	for {
		select {
		case <-ticker.C:
			wg.Add(1)
			go func() {
				defer wg.Done()
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				resp, err := client.CreateOrder(ctx, fakeOrder())
				sent.Add(1)
				if err != nil || resp.Status == "ERROR" {
					failed.Add(1)
					return
				}
				accepted.Add(1)
			}()
		case <-timer.C:
			break loop
		}
	}
	wg.Wait()

	elapsed := time.Since(start)
	log.Printf("done: sent=%d accepted=%d failed=%d in %v (%.1f req/s)",
		sent.Load(), accepted.Load(), failed.Load(), elapsed,
		float64(sent.Load())/elapsed.Seconds())
}

var products = []string{"keyboard", "monitor", "headset", "webcam", "dock", "mouse"}

func fakeOrder() *grpcapi.CreateOrderRequest {
	items := make([]grpcapi.OrderItem, 1+rand.Intn(3))
	for i := range items {
		items[i] = grpcapi.OrderItem{
			ItemID:      uuid.NewString(),
			ProductName: products[rand.Intn(len(products))],
			Quantity:    1 + rand.Intn(5),
			Price:       float64(rand.Intn(20000)) / 100,
		}
	}
	return &grpcapi.CreateOrderRequest{
		OrderID:             "load-" + uuid.NewString(),
		CustomerID:          fmt.Sprintf("cust-%03d", rand.Intn(500)),
		CustomerPhoneNumber: fmt.Sprintf("+1555%07d", rand.Intn(10000000)),
		Items:               items,
	}
}
