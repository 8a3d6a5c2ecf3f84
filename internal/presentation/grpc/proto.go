package grpc

// Hand-written service descriptor for kasva.installment.v1.InstallmentService.
// Messages travel as JSON through jsonCodec.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PremHer/kasvarealty-sub001/internal/application/dto"
)

const serviceName = "kasva.installment.v1.InstallmentService"

// InstallmentServiceServer is the server API for InstallmentService.
type InstallmentServiceServer interface {
	CreateSaleAccount(context.Context, *CreateSaleAccountRequest) (*dto.SaleAccountResponse, error)
	PreviewSchedule(context.Context, *PreviewScheduleRequest) (*dto.SchedulePreviewResponse, error)
	GetSaleAccount(context.Context, *GetSaleAccountRequest) (*dto.SaleAccountResponse, error)
	ComputeMora(context.Context, *ComputeMoraRequest) (*dto.MoraStatementResponse, error)
	ApplyPayment(context.Context, *ApplyPaymentRequest) (*dto.ApplyPaymentResponse, error)
	Reprogram(context.Context, *ReprogramRequest) (*dto.ReprogramResponse, error)
	RecalculateBalances(context.Context, *RecalculateBalancesRequest) (*dto.SaleAccountResponse, error)
	ListReprogrammings(context.Context, *ListReprogrammingsRequest) (*dto.ListReprogrammingsResponse, error)
	mustEmbedUnimplementedInstallmentServiceServer()
}

// UnimplementedInstallmentServiceServer provides forward-compatible default implementations.
type UnimplementedInstallmentServiceServer struct{}

func (UnimplementedInstallmentServiceServer) CreateSaleAccount(context.Context, *CreateSaleAccountRequest) (*dto.SaleAccountResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CreateSaleAccount not implemented")
}
func (UnimplementedInstallmentServiceServer) PreviewSchedule(context.Context, *PreviewScheduleRequest) (*dto.SchedulePreviewResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method PreviewSchedule not implemented")
}
func (UnimplementedInstallmentServiceServer) GetSaleAccount(context.Context, *GetSaleAccountRequest) (*dto.SaleAccountResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetSaleAccount not implemented")
}
func (UnimplementedInstallmentServiceServer) ComputeMora(context.Context, *ComputeMoraRequest) (*dto.MoraStatementResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ComputeMora not implemented")
}
func (UnimplementedInstallmentServiceServer) ApplyPayment(context.Context, *ApplyPaymentRequest) (*dto.ApplyPaymentResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ApplyPayment not implemented")
}
func (UnimplementedInstallmentServiceServer) Reprogram(context.Context, *ReprogramRequest) (*dto.ReprogramResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Reprogram not implemented")
}
func (UnimplementedInstallmentServiceServer) RecalculateBalances(context.Context, *RecalculateBalancesRequest) (*dto.SaleAccountResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RecalculateBalances not implemented")
}
func (UnimplementedInstallmentServiceServer) ListReprogrammings(context.Context, *ListReprogrammingsRequest) (*dto.ListReprogrammingsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListReprogrammings not implemented")
}
func (UnimplementedInstallmentServiceServer) mustEmbedUnimplementedInstallmentServiceServer() {}

// RegisterInstallmentServiceServer registers srv with s.
func RegisterInstallmentServiceServer(s grpclib.ServiceRegistrar, srv InstallmentServiceServer) {
	s.RegisterService(&installmentServiceDesc, srv)
}

var installmentServiceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*InstallmentServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "CreateSaleAccount", Handler: unaryHandler(func(srv InstallmentServiceServer, ctx context.Context, in *CreateSaleAccountRequest) (any, error) {
			return srv.CreateSaleAccount(ctx, in)
		}, "CreateSaleAccount")},
		{MethodName: "PreviewSchedule", Handler: unaryHandler(func(srv InstallmentServiceServer, ctx context.Context, in *PreviewScheduleRequest) (any, error) {
			return srv.PreviewSchedule(ctx, in)
		}, "PreviewSchedule")},
		{MethodName: "GetSaleAccount", Handler: unaryHandler(func(srv InstallmentServiceServer, ctx context.Context, in *GetSaleAccountRequest) (any, error) {
			return srv.GetSaleAccount(ctx, in)
		}, "GetSaleAccount")},
		{MethodName: "ComputeMora", Handler: unaryHandler(func(srv InstallmentServiceServer, ctx context.Context, in *ComputeMoraRequest) (any, error) {
			return srv.ComputeMora(ctx, in)
		}, "ComputeMora")},
		{MethodName: "ApplyPayment", Handler: unaryHandler(func(srv InstallmentServiceServer, ctx context.Context, in *ApplyPaymentRequest) (any, error) {
			return srv.ApplyPayment(ctx, in)
		}, "ApplyPayment")},
		{MethodName: "Reprogram", Handler: unaryHandler(func(srv InstallmentServiceServer, ctx context.Context, in *ReprogramRequest) (any, error) {
			return srv.Reprogram(ctx, in)
		}, "Reprogram")},
		{MethodName: "RecalculateBalances", Handler: unaryHandler(func(srv InstallmentServiceServer, ctx context.Context, in *RecalculateBalancesRequest) (any, error) {
			return srv.RecalculateBalances(ctx, in)
		}, "RecalculateBalances")},
		{MethodName: "ListReprogrammings", Handler: unaryHandler(func(srv InstallmentServiceServer, ctx context.Context, in *ListReprogrammingsRequest) (any, error) {
			return srv.ListReprogrammings(ctx, in)
		}, "ListReprogrammings")},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "kasva/installment/v1/installment.proto",
}

// unaryHandler adapts a typed method to grpc's untyped MethodDesc handler.
func unaryHandler[Req any](
	call func(srv InstallmentServiceServer, ctx context.Context, in *Req) (any, error),
	method string,
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + serviceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(InstallmentServiceServer), ctx, in)
		}
		info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(InstallmentServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
