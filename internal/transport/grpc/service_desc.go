package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const ReservationsServiceName = "slotbook.v1.Reservations"

const (
	methodGetAvailableDates  = "/" + ReservationsServiceName + "/GetAvailableDates"
	methodCreateReservation  = "/" + ReservationsServiceName + "/CreateReservation"
	methodCancelReservation  = "/" + ReservationsServiceName + "/CancelReservation"
	methodLookupReservations = "/" + ReservationsServiceName + "/LookupReservations"
)

type ReservationsServiceServer interface {
	GetAvailableDates(ctx context.Context, req *GetAvailableDatesRequest) (*GetAvailableDatesResponse, error)
	CreateReservation(ctx context.Context, req *CreateReservationRequest) (*CreateReservationResponse, error)
	CancelReservation(ctx context.Context, req *CancelReservationRequest) (*CancelReservationResponse, error)
	LookupReservations(ctx context.Context, req *LookupReservationsRequest) (*LookupReservationsResponse, error)
}

func RegisterReservationsServiceServer(s grpc.ServiceRegistrar, srv ReservationsServiceServer) {
	s.RegisterService(&ReservationsServiceDesc, srv)
}

var ReservationsServiceDesc = grpc.ServiceDesc{
	ServiceName: ReservationsServiceName,
	HandlerType: (*ReservationsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetAvailableDates",
			Handler: unaryHandler(methodGetAvailableDates, func(srv ReservationsServiceServer, ctx context.Context, req *GetAvailableDatesRequest) (any, error) {
				return srv.GetAvailableDates(ctx, req)
			}),
		},
		{
			MethodName: "CreateReservation",
			Handler: unaryHandler(methodCreateReservation, func(srv ReservationsServiceServer, ctx context.Context, req *CreateReservationRequest) (any, error) {
				return srv.CreateReservation(ctx, req)
			}),
		},
		{
			MethodName: "CancelReservation",
			Handler: unaryHandler(methodCancelReservation, func(srv ReservationsServiceServer, ctx context.Context, req *CancelReservationRequest) (any, error) {
				return srv.CancelReservation(ctx, req)
			}),
		},
		{
			MethodName: "LookupReservations",
			Handler: unaryHandler(methodLookupReservations, func(srv ReservationsServiceServer, ctx context.Context, req *LookupReservationsRequest) (any, error) {
				return srv.LookupReservations(ctx, req)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "slotbook/v1/reservations.proto",
}

// unaryHandler builds the grpc.MethodDesc handler for one RPC, decoding into
// a fresh Req and running the server interceptor chain.
func unaryHandler[Req any](fullMethod string, call func(ReservationsServiceServer, context.Context, *Req) (any, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ReservationsServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ReservationsServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ReservationsClient calls the reservations service using the JSON codec.
type ReservationsClient struct {
	cc grpc.ClientConnInterface
}

func NewReservationsClient(cc grpc.ClientConnInterface) *ReservationsClient {
	return &ReservationsClient{cc: cc}
}

func (c *ReservationsClient) GetAvailableDates(ctx context.Context, in *GetAvailableDatesRequest, opts ...grpc.CallOption) (*GetAvailableDatesResponse, error) {
	out := new(GetAvailableDatesResponse)
	if err := c.cc.Invoke(ctx, methodGetAvailableDates, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ReservationsClient) CreateReservation(ctx context.Context, in *CreateReservationRequest, opts ...grpc.CallOption) (*CreateReservationResponse, error) {
	out := new(CreateReservationResponse)
	if err := c.cc.Invoke(ctx, methodCreateReservation, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ReservationsClient) CancelReservation(ctx context.Context, in *CancelReservationRequest, opts ...grpc.CallOption) (*CancelReservationResponse, error) {
	out := new(CancelReservationResponse)
	if err := c.cc.Invoke(ctx, methodCancelReservation, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ReservationsClient) LookupReservations(ctx context.Context, in *LookupReservationsRequest, opts ...grpc.CallOption) (*LookupReservationsResponse, error) {
	out := new(LookupReservationsResponse)
	if err := c.cc.Invoke(ctx, methodLookupReservations, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func withJSON(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}
