package grpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"
)

// RequestIDKey metadata 中的請求追蹤 ID，與 ledger 服務端的 LoggingInterceptor 使用同一個 key
const RequestIDKey = "x-request-id"

// Pool 管理通往多個目標的 gRPC 客戶端連線
// 執行緒安全，每個目標地址只維護一個連線實例
type Pool struct {
	conns        sync.Map // map[string]*grpc.ClientConn
	mu           sync.Mutex
	interceptors []grpc.UnaryClientInterceptor
	dialOpts     []grpc.DialOption
	keepalive    keepalive.ClientParameters
}

// PoolOption 定義了 Pool 的配置選項函數
type PoolOption func(*Pool)

// WithInterceptor 加入 UnaryClientInterceptor (依加入順序串接)
func WithInterceptor(interceptor grpc.UnaryClientInterceptor) PoolOption {
	return func(p *Pool) {
		p.interceptors = append(p.interceptors, interceptor)
	}
}

// WithDialOptions 每條新連線都會套用的額外選項 (如測試用的 bufconn dialer)
func WithDialOptions(opts ...grpc.DialOption) PoolOption {
	return func(p *Pool) {
		p.dialOpts = append(p.dialOpts, opts...)
	}
}

// WithKeepalive 覆寫預設的 keepalive 參數
func WithKeepalive(params keepalive.ClientParameters) PoolOption {
	return func(p *Pool) {
		p.keepalive = params
	}
}

// NewPool 建立連線池
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{
		keepalive: keepalive.ClientParameters{
			Time:                10 * time.Second, // 若無活動，每 10 秒發送一次 Ping
			Timeout:             time.Second,      // 等待 Ping 回應的超時時間
			PermitWithoutStream: true,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetConnection 取得既有連線，或為指定目標建立新連線
//
// 參數:
//
//	target: 目標伺服器地址 (e.g., "localhost:50051")
//	opts: 只套用在這次新建連線的額外選項
//
// 回傳:
//
//	*grpc.ClientConn: gRPC 客戶端連線
//	error: 建立連線失敗
func (p *Pool) GetConnection(target string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	// 1. Fast path
	if conn, ok := p.load(target); ok {
		return conn, nil
	}

	// 2. Double-check locking，避免並發重複建立
	p.mu.Lock()
	defer p.mu.Unlock()
	if conn, ok := p.load(target); ok {
		return conn, nil
	}

	// 3. 建立新連線 (lazy，第一次呼叫時才真正連線)
	finalOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(p.keepalive),
	}
	if len(p.interceptors) > 0 {
		finalOpts = append(finalOpts, grpc.WithChainUnaryInterceptor(p.interceptors...))
	}
	finalOpts = append(finalOpts, p.dialOpts...)
	finalOpts = append(finalOpts, opts...)

	conn, err := grpc.NewClient(target, finalOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc client for target %s: %w", target, err)
	}
	p.conns.Store(target, conn)
	return conn, nil
}

// load 取得仍可用的連線，已關閉的連線會從 map 移除
func (p *Pool) load(target string) (*grpc.ClientConn, bool) {
	v, ok := p.conns.Load(target)
	if !ok {
		return nil, false
	}
	conn := v.(*grpc.ClientConn)
	if conn.GetState() == connectivity.Shutdown {
		p.conns.Delete(target)
		return nil, false
	}
	return conn, true
}

// Close 關閉連線池中的所有連線，回傳第一個發生的錯誤
func (p *Pool) Close() error {
	var firstErr error
	p.conns.Range(func(key, value any) bool {
		conn := value.(*grpc.ClientConn)
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		p.conns.Delete(key)
		return true
	})
	return firstErr
}

// RequestIDInterceptor 若呼叫端未設定 x-request-id，為每次呼叫產生一個 UUID
func RequestIDInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if md, ok := metadata.FromOutgoingContext(ctx); !ok || len(md.Get(RequestIDKey)) == 0 {
			ctx = metadata.AppendToOutgoingContext(ctx, RequestIDKey, uuid.NewString())
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}
