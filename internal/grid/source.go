// internal/grid/source.go
package grid

import (
	"context"
	"fmt"

	"github.com/solatis/sttable/internal/types"
)

/*
 * Data sources.
 *
 * Data is the tagged variant a table is configured with. It resolves once,
 * in New, into a single Source; the orchestrator then only ever calls
 * Source.Fetch. Front-mode sources return the whole collection and the
 * table sorts, filters and slices it. Back-mode sources return one page
 * plus the total.
 *
 *   Collection(rows)  front   synchronous, a nil collection is empty
 *   Producer(fn)      back    deferred collection, called on every load
 *   Remote(url)       back    Fetcher + Extract
 *   Custom(src)       back    any Source
 */

// Source fetches rows for one request.
type Source interface {
	Fetch(ctx context.Context, req Request) (Result, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, req Request) (Result, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}

// Fetcher is the remote transport collaborator.
// It returns the decoded raw response for url and the wire params.
type Fetcher interface {
	Fetch(ctx context.Context, url string, params map[string]any) (any, error)
}

type dataKind int

const (
	dataNone dataKind = iota
	dataCollection
	dataProducer
	dataRemote
	dataCustom
)

// Data is a table's data source configuration.
type Data struct {
	kind     dataKind
	rows     []types.Record
	producer func(ctx context.Context) ([]types.Record, error)
	url      string
	source   Source
}

// Collection configures an in-memory collection (front mode).
func Collection(rows []types.Record) Data {
	return Data{kind: dataCollection, rows: rows}
}

// Producer configures a deferred producer (back mode unless overridden).
func Producer(fn func(ctx context.Context) ([]types.Record, error)) Data {
	return Data{kind: dataProducer, producer: fn}
}

// Remote configures a remote endpoint fetched through a Fetcher.
func Remote(url string) Data {
	return Data{kind: dataRemote, url: url}
}

// Custom configures an arbitrary back-mode Source.
func Custom(src Source) Data {
	return Data{kind: dataCustom, source: src}
}

// defaultMode returns the mode implied by the variant.
func (d Data) defaultMode() Mode {
	if d.kind == dataCollection {
		return ModeFront
	}
	return ModeBack
}

// resolve turns the variant into a Source.
func (d Data) resolve(fetcher Fetcher, shape ResponseShape) (Source, error) {
	switch d.kind {
	case dataCollection:
		rows := d.rows
		return SourceFunc(func(context.Context, Request) (Result, error) {
			if rows == nil {
				return Result{Rows: []types.Record{}}, nil
			}
			return Result{Rows: rows, Total: len(rows)}, nil
		}), nil
	case dataProducer:
		if d.producer == nil {
			return nil, types.ErrNoSource
		}
		fn := d.producer
		return SourceFunc(func(ctx context.Context, _ Request) (Result, error) {
			rows, err := fn(ctx)
			if err != nil {
				return Result{}, err
			}
			if rows == nil {
				rows = []types.Record{}
			}
			return Result{Rows: rows, Total: len(rows)}, nil
		}), nil
	case dataRemote:
		if fetcher == nil {
			return nil, types.ErrNoFetcher
		}
		return &remoteSource{url: d.url, fetcher: fetcher, shape: shape}, nil
	case dataCustom:
		if d.source == nil {
			return nil, types.ErrNoSource
		}
		return d.source, nil
	default:
		return nil, types.ErrNoSource
	}
}

type remoteSource struct {
	url     string
	fetcher Fetcher
	shape   ResponseShape
}

func (s *remoteSource) Fetch(ctx context.Context, req Request) (Result, error) {
	raw, err := s.fetcher.Fetch(ctx, s.url, req.Params)
	if err != nil {
		return Result{}, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	return Extract(raw, s.shape), nil
}
