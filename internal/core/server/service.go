// Package server exposes the dataset store as a back-end table source over gRPC.
//
// TableService has one unary method. Both messages are google.protobuf.Struct:
// the request is the flat param map built by the engine's request builder
// plus a "dataset" key, the response is the result written through the
// configured response shape. No generated code is involved; the service
// descriptor below is registered by hand.
package server

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/sttable/internal/core/db"
	"github.com/solatis/sttable/internal/grid"
	"github.com/solatis/sttable/internal/types"
)

const (
	ServiceName = "sttable.v1.TableService"
	QueryMethod = "/" + ServiceName + "/Query"

	// DatasetParam names the dataset inside a Query request.
	DatasetParam = "dataset"
)

// TableServer is the server API of TableService.
type TableServer interface {
	Query(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// TableServiceDesc describes TableService for grpc.Server.RegisterService.
var TableServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TableServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Query", Handler: queryHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sttable/v1/table.proto",
}

func queryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TableServer).Query(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: QueryMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TableServer).Query(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Querier answers parsed page requests. *db.Store implements it.
type Querier interface {
	Query(ctx context.Context, dataset string, q db.Query) (grid.Result, error)
}

// TableService implements TableServer over a Querier.
type TableService struct {
	store       Querier
	wire        db.Wire
	shape       grid.ResponseShape
	maxPageSize int
}

// NewTableService creates the service. wire and res must match the table
// options of the calling clients; maxPageSize bounds ps (0 means unbounded).
func NewTableService(store Querier, wire db.Wire, res grid.ResRename, maxPageSize int) (*TableService, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	return &TableService{
		store:       store,
		wire:        wire,
		shape:       grid.NewResponseShape(res),
		maxPageSize: maxPageSize,
	}, nil
}

// Query serves one page.
// Error mapping: missing dataset or oversized page is INVALID_ARGUMENT,
// unknown dataset is NOT_FOUND, context expiry is DEADLINE_EXCEEDED,
// anything else from the store is UNAVAILABLE.
func (s *TableService) Query(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	params := req.AsMap()
	dataset := grid.ToText(params[DatasetParam])
	if dataset == "" {
		return nil, status.Error(codes.InvalidArgument, "dataset is required")
	}
	delete(params, DatasetParam)

	q := db.ParseQuery(params, s.wire)
	if s.maxPageSize > 0 && q.PS > s.maxPageSize {
		return nil, status.Errorf(codes.InvalidArgument, "page size %d exceeds maximum %d", q.PS, s.maxPageSize)
	}

	res, err := s.store.Query(ctx, dataset, q)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrUnknownDataset):
			return nil, status.Error(codes.NotFound, err.Error())
		case errors.Is(err, context.DeadlineExceeded):
			return nil, status.Error(codes.DeadlineExceeded, err.Error())
		case errors.Is(err, context.Canceled):
			return nil, status.Error(codes.Canceled, err.Error())
		default:
			return nil, status.Error(codes.Unavailable, err.Error())
		}
	}

	out, err := toStruct(grid.Encode(res, s.shape))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// toStruct converts m to a Struct, first flattening the Go types the engine
// produces (records, string slices) into the ones structpb accepts.
func toStruct(m map[string]any) (*structpb.Struct, error) {
	plain, _ := toPlain(m).(map[string]any)
	return structpb.NewStruct(plain)
}

func toPlain(v any) any {
	switch x := v.(type) {
	case types.Record:
		return toPlain(map[string]any(x))
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = toPlain(item)
		}
		return out
	case []types.Record:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = toPlain(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = toPlain(item)
		}
		return out
	case []string:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = item
		}
		return out
	case types.Direction:
		return string(x)
	default:
		return v
	}
}
