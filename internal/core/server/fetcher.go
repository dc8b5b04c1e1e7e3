package server

import (
	"context"
	"fmt"
	"maps"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// Fetcher is a grid.Fetcher over TableService. The remote "url" of the
// table is the dataset name.
type Fetcher struct {
	conn  grpc.ClientConnInterface
	token string
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithToken sends token as a bearer token on every call.
func WithToken(token string) FetcherOption {
	return func(f *Fetcher) { f.token = token }
}

// NewFetcher creates a Fetcher on conn.
func NewFetcher(conn grpc.ClientConnInterface, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{conn: conn}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch calls TableService.Query with params plus the dataset and returns
// the response as a plain map for the response extractor.
func (f *Fetcher) Fetch(ctx context.Context, dataset string, params map[string]any) (any, error) {
	wire := maps.Clone(params)
	if wire == nil {
		wire = make(map[string]any, 1)
	}
	wire[DatasetParam] = dataset

	in, err := toStruct(wire)
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}

	if f.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, authorizationKey, bearerPrefix+f.token)
	}

	out := new(structpb.Struct)
	if err := f.conn.Invoke(ctx, QueryMethod, in, out); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}
