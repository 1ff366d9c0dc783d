package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// serviceDesc 手動宣告的服務描述，訊息一律使用 google.protobuf.Struct，不需要額外的 proto 產生碼
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TransactionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PerformTransaction", Handler: unaryHandler("PerformTransaction", TransactionServiceServer.PerformTransaction)},
		{MethodName: "GetTransaction", Handler: unaryHandler("GetTransaction", TransactionServiceServer.GetTransaction)},
		{MethodName: "CreateAccount", Handler: unaryHandler("CreateAccount", TransactionServiceServer.CreateAccount)},
		{MethodName: "GetAccount", Handler: unaryHandler("GetAccount", TransactionServiceServer.GetAccount)},
	},
	Streams: []grpc.StreamDesc{},
}

type unaryMethod func(TransactionServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler 產生 grpc.MethodDesc 所需的 handler (等同 protoc-gen-go-grpc 產生的 _Xxx_Handler)
func unaryHandler(name string, method unaryMethod) grpc.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return method(srv.(TransactionServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return method(srv.(TransactionServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Client TransactionService 的客戶端
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PerformTransaction(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "PerformTransaction", req, opts...)
}

func (c *Client) GetTransaction(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetTransaction", req, opts...)
}

func (c *Client) CreateAccount(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "CreateAccount", req, opts...)
}

func (c *Client) GetAccount(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetAccount", req, opts...)
}
