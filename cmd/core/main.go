package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpc_adapter "github.com/JoeShih716/go-txn-ledger/internal/app/core/adapter/in/grpc"
	http_adapter "github.com/JoeShih716/go-txn-ledger/internal/app/core/adapter/in/http"
	"github.com/JoeShih716/go-txn-ledger/internal/app/core/adapter/out/gormdb"
	memory_adapter "github.com/JoeShih716/go-txn-ledger/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-txn-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-txn-ledger/pkg/database"
	"github.com/JoeShih716/go-txn-ledger/pkg/logger"
	"github.com/JoeShih716/go-txn-ledger/pkg/wal"
)

// stores 儲存層的三個 port 與關閉函數
type stores struct {
	catalog      usecase.CatalogStore
	transactions usecase.TransactionStore
	accounts     usecase.AccountStore
	close        func() error
}

func main() {
	configFlag := flag.String("config", "", "path to config file (default: $LEDGER_CONFIG or config/config.yaml)")
	flag.Parse()

	// 1. 載入設定
	cfg, err := loadConfig(configPath(*configFlag))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log, os.Stdout)

	if err := run(cfg, log); err != nil {
		log.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("Server exited")
}

func run(cfg Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. 初始化儲存層
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	// 3. 初始化 UseCase
	cache := usecase.NewOperationTypeCache(st.catalog, log)
	dispatcher, err := usecase.NewDispatcher(cache, st.transactions, log)
	if err != nil {
		return err
	}
	coreUseCase := usecase.NewCoreUseCase(
		usecase.NewTransactionService(cache, dispatcher, st.transactions, log),
		usecase.NewAccountService(st.accounts, log),
		cache,
	)

	// 4. 預先載入交易類型目錄，失敗時之後的交易都會拿到同一個錯誤
	if err := cache.Warm(ctx); err != nil {
		log.Error("Operation type cache warm-up failed", "error", err)
	} else if cfg.Catalog.SeedDefaults {
		n, err := coreUseCase.SeedOperationTypes(ctx, domain.DefaultOperationTypes())
		if err != nil {
			return fmt.Errorf("failed to seed operation types: %w", err)
		}
		if n > 0 {
			log.Info("Seeded default operation types", "count", n)
		}
	}

	// 5. 初始化 Driving Adapters
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		grpc_adapter.LoggingInterceptor(log),
		grpc_adapter.RecoveryInterceptor(log),
	))
	grpc_adapter.Register(grpcServer, grpc_adapter.NewGrpcServer(coreUseCase))
	healthpb.RegisterHealthServer(grpcServer, health.NewServer())
	reflection.Register(grpcServer) // 方便 gRPC Client 測試 (如 grpcurl)

	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: http_adapter.NewHandler(coreUseCase, log).Router(),
	}

	lis, err := net.Listen("tcp", cfg.Server.GrpcAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	// 6. 啟動 Server，收到訊號後 Graceful Shutdown
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Starting gRPC server", "addr", cfg.Server.GrpcAddr)
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		log.Info("Starting HTTP server", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		grpcServer.GracefulStop()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStores 依 storage.driver 建立儲存層
func openStores(ctx context.Context, cfg Config, log *slog.Logger) (*stores, error) {
	switch cfg.Storage.Driver {
	case StorageMySQL, StoragePostgres:
		client, err := database.NewClient(cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Info("Connected to database successfully", "driver", cfg.Database.Driver)
		if cfg.Database.AutoMigrate {
			if err := gormdb.AutoMigrate(ctx, client); err != nil {
				client.Close()
				return nil, fmt.Errorf("failed to migrate database: %w", err)
			}
		}
		return &stores{
			catalog:      gormdb.NewCatalogStore(client),
			transactions: gormdb.NewTransactionStore(client),
			accounts:     gormdb.NewAccountStore(client),
			close:        client.Close,
		}, nil

	case StorageMemory:
		var w *wal.WAL
		closeFn := func() error { return nil }
		if cfg.Storage.WALPath != "" {
			var err error
			if w, err = wal.Open(cfg.Storage.WALPath); err != nil {
				return nil, fmt.Errorf("failed to init WAL: %w", err)
			}
			closeFn = w.Close
		}
		store, err := memory_adapter.NewMutexStore(w)
		if err != nil {
			closeFn()
			return nil, fmt.Errorf("failed to init memory store: %w", err)
		}
		log.Info("Using in-memory storage", "wal", cfg.Storage.WALPath)
		return &stores{
			catalog:      store.Catalog(),
			transactions: store.Transactions(),
			accounts:     store.Accounts(),
			close:        closeFn,
		}, nil
	}
	return nil, fmt.Errorf("invalid storage driver: %q", cfg.Storage.Driver)
}
