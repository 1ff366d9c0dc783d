package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	grpc_adapter "github.com/JoeShih716/go-txn-ledger/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-txn-ledger/pkg/grpc"
)

func main() {
	target := flag.String("target", "localhost:50051", "ledger gRPC address")
	total := flag.Int("n", 100000, "total PerformTransaction calls")
	concurrency := flag.Int("c", 200, "concurrent callers")
	timeout := flag.Duration("timeout", 120*time.Second, "overall timeout")
	flag.Parse()

	pool := grpc.NewPool(grpc.WithInterceptor(grpc.RequestIDInterceptor()))
	defer pool.Close()
	conn, err := pool.GetConnection(*target)
	if err != nil {
		log.Fatalf("did not connect: %v", err)
	}
	c := grpc_adapter.NewClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// 每次執行使用新的帳戶，避免證件號碼重複
	account, err := c.CreateAccount(ctx, mustStruct(map[string]any{
		grpc_adapter.FieldDocumentNumber: uuid.NewString(),
	}))
	if err != nil {
		log.Fatalf("CreateAccount failed: %v", err)
	}
	accountID := account.GetFields()[grpc_adapter.FieldAccountID].GetNumberValue()
	log.Printf("Using account %.0f", accountID)

	var wg sync.WaitGroup
	var failed atomic.Int64
	sem := make(chan struct{}, *concurrency)
	startTime := time.Now()

	for i := 0; i < *total; i++ {
		sem <- struct{}{}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			// 依序輪流使用四種交易類型 (1~4)
			_, err := c.PerformTransaction(ctx, mustStruct(map[string]any{
				grpc_adapter.FieldAccountID:       accountID,
				grpc_adapter.FieldOperationTypeID: idx%4 + 1,
				grpc_adapter.FieldAmount:          "10.00",
			}))
			if err != nil {
				failed.Add(1)
				if idx%10000 == 0 {
					log.Printf("PerformTransaction %d failed: %v", idx, err)
				}
			}
		}(i)
	}
	wg.Wait()

	elapsed := time.Since(startTime)
	fmt.Printf("Completed %d requests (%d failed) in %v\n", *total, failed.Load(), elapsed)
	fmt.Printf("TPS: %.2f\n", float64(*total)/elapsed.Seconds())
}

func mustStruct(m map[string]any) *structpb.Struct {
	s, err := structpb.NewStruct(m)
	if err != nil {
		panic(err)
	}
	return s
}
