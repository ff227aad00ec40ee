package grpc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/simaogato/adscope/internal/domain"
	"github.com/simaogato/adscope/internal/log"
	"github.com/simaogato/adscope/internal/usecase/aggregation"
	"github.com/simaogato/adscope/internal/usecase/catalog"
	"github.com/simaogato/adscope/internal/usecase/scope"
)

// Server implements the ScopeService gRPC server
type Server struct {
	UnimplementedScopeServiceServer

	Catalog  *catalog.Service
	Resolver *scope.Resolver
	Engine   *aggregation.Engine

	logger *log.Logger
}

// NewServer creates a new gRPC server instance
func NewServer(
	catalogService *catalog.Service,
	resolver *scope.Resolver,
	engine *aggregation.Engine,
	logger *log.Logger,
) *Server {
	return &Server{
		Catalog:  catalogService,
		Resolver: resolver,
		Engine:   engine,
		logger:   logger.WithComponent(log.ComponentGRPC),
	}
}

// ListOptions handles the ListOptions RPC
func (s *Server) ListOptions(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	options := s.Catalog.Options()

	entries := make([]any, 0, len(options))
	for _, opt := range options {
		entries = append(entries, map[string]any{
			"label": opt.Label,
			"value": opt.Value,
		})
	}

	catalogError := ""
	if err := s.Catalog.Err(); err != nil {
		catalogError = err.Error()
	}

	resp, err := structpb.NewStruct(map[string]any{
		"options":        entries,
		"catalog_loaded": s.Catalog.Loaded(),
		"catalog_error":  catalogError,
	})
	if err != nil {
		return nil, mapError(fmt.Errorf("failed to encode options: %w", err))
	}
	return resp, nil
}

// Select handles the Select RPC
func (s *Server) Select(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	sel := domain.ParseSelection(req.GetValue())

	// Names can only be checked against a catalog that actually loaded
	if sel.Kind == domain.SelectionLocation && s.Catalog.Loaded() {
		if _, ok := s.Catalog.Lookup(sel.Location); !ok {
			return nil, mapError(fmt.Errorf("%w: %q", domain.ErrUnknownLocation, sel.Location))
		}
	}

	s.Resolver.OnSelectionChanged(ctx, sel)

	return encodeSnapshot(s.Engine.Snapshot())
}

// GetSnapshot handles the GetSnapshot RPC
func (s *Server) GetSnapshot(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return encodeSnapshot(s.Engine.Snapshot())
}

// WatchSnapshots handles the WatchSnapshots RPC.
// Intermediate snapshots may be skipped for slow readers; the latest one is always sent.
func (s *Server) WatchSnapshots(_ *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()

	updates, cancel := s.Engine.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			msg, err := encodeSnapshot(snap)
			if err != nil {
				return err
			}
			if err := stream.Send(msg); err != nil {
				s.logger.DebugContext(ctx, "snapshot stream closed", log.FieldError, err.Error())
				return err
			}
		}
	}
}

func encodeSnapshot(snap domain.ViewSnapshot) (*structpb.Struct, error) {
	msg, err := structpb.NewStruct(snapshotToMap(snap))
	if err != nil {
		return nil, mapError(fmt.Errorf("failed to encode snapshot: %w", err))
	}
	return msg, nil
}

// snapshotToMap converts a snapshot into the Struct layout sent to clients.
// Totals and amounts travel as decimal strings so no precision is lost.
func snapshotToMap(snap domain.ViewSnapshot) map[string]any {
	return map[string]any{
		"revision": snap.Revision,
		"selection": map[string]any{
			"kind":  selectionKindName(snap.Selection.Kind),
			"value": snap.Selection.Value(),
		},
		"ad_spend": breakdownToMap(snap.AdSpend),
		"crypto":   breakdownToMap(snap.Crypto),
	}
}

func breakdownToMap(b domain.Breakdown) map[string]any {
	records := make([]any, 0, len(b.Records))
	for _, rec := range b.Records {
		entry := map[string]any{
			"id":       rec.ID.String(),
			"amount":   rec.Amount,
			"date":     rec.Date,
			"location": rec.LocationName,
			"invalid":  rec.Invalid,
		}
		if rec.Invalid {
			entry["invalid_reason"] = rec.InvalidReason
		} else {
			entry["value"] = rec.Value.String()
		}
		records = append(records, entry)
	}

	return map[string]any{
		"kind":          string(b.Kind),
		"status":        string(b.Status),
		"total":         b.Total.String(),
		"invalid_count": b.InvalidCount,
		"error":         b.Error,
		"records":       records,
	}
}

func selectionKindName(kind domain.SelectionKind) string {
	switch kind {
	case domain.SelectionAll:
		return "all"
	case domain.SelectionLocation:
		return "location"
	default:
		return "unselected"
	}
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	errorMsg := err.Error()

	var netErr *domain.NetworkError
	var parseErr *domain.ParseError

	switch {
	case errors.Is(err, domain.ErrUnknownLocation):
		return status.Errorf(codes.InvalidArgument, "%s", errorMsg)
	case errors.As(err, &netErr):
		return status.Errorf(codes.Unavailable, "%s", errorMsg)
	case errors.As(err, &parseErr):
		return status.Errorf(codes.DataLoss, "%s", errorMsg)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "%s", errorMsg)
	case errors.Is(err, context.Canceled):
		return status.Errorf(codes.Canceled, "%s", errorMsg)
	}

	// Map "not found" errors to NotFound
	if strings.Contains(errorMsg, "not found") {
		return status.Errorf(codes.NotFound, "%s", errorMsg)
	}

	// Default to Internal error for unknown errors
	return status.Errorf(codes.Internal, "%s", errorMsg)
}
