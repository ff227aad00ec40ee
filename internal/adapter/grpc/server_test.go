package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/simaogato/adscope/internal/domain"
	"github.com/simaogato/adscope/internal/log"
	"github.com/simaogato/adscope/internal/usecase/aggregation"
	"github.com/simaogato/adscope/internal/usecase/catalog"
	"github.com/simaogato/adscope/internal/usecase/scope"
)

// MockUpstream is a mock implementation of the location and record sources
type MockUpstream struct {
	mock.Mock
}

func (m *MockUpstream) ListLocations(ctx context.Context) ([]domain.Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Location), args.Error(1)
}

func (m *MockUpstream) ListAdSpends(ctx context.Context, location string) ([]domain.AdSpendRecord, error) {
	args := m.Called(ctx, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AdSpendRecord), args.Error(1)
}

func (m *MockUpstream) ListCryptoEarnings(ctx context.Context, location string) ([]domain.CryptoEarningRecord, error) {
	args := m.Called(ctx, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CryptoEarningRecord), args.Error(1)
}

func amount(text string) domain.RawAmount {
	return domain.RawAmount{Text: text, Present: true}
}

type testService struct {
	client   *ScopeServiceClient
	resolver *scope.Resolver
}

func newTestService(t *testing.T, upstream *MockUpstream) *testService {
	t.Helper()

	logger := log.Discard()
	engine := aggregation.NewEngine(logger)
	resolver := scope.NewResolver(upstream, engine, time.Second, logger)
	catalogService := catalog.NewService(upstream, catalog.Policy{Attempts: 1, Timeout: time.Second}, logger)
	_, _ = catalogService.Load(context.Background())

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(ServerOptions("", logger)...)
	RegisterScopeServiceServer(srv, NewServer(catalogService, resolver, engine, logger))
	go func() {
		_ = srv.Serve(lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		srv.Stop()
		resolver.Wait()
	})

	return &testService{client: NewScopeServiceClient(conn), resolver: resolver}
}

func nycUpstream() *MockUpstream {
	upstream := new(MockUpstream)
	upstream.On("ListLocations", mock.Anything).Return([]domain.Location{
		{ID: "1", Name: "NYC"},
		{ID: "2", Name: "LA"},
	}, nil)
	upstream.On("ListAdSpends", mock.Anything, "NYC").Return([]domain.AdSpendRecord{
		{ID: "1", Amount: amount("10.50"), Date: "2024-01-01"},
		{ID: "2", Amount: amount("5.25"), Date: "2024-01-02"},
	}, nil).Maybe()
	upstream.On("ListCryptoEarnings", mock.Anything, "NYC").Return([]domain.CryptoEarningRecord{
		{ID: "9", CryptoAmount: amount("0.1"), Date: "2024-01-01"},
		{ID: "10", CryptoAmount: amount("0.2"), Date: "2024-01-03"},
	}, nil).Maybe()
	return upstream
}

func breakdownOf(t *testing.T, snap map[string]any, key string) map[string]any {
	t.Helper()
	b, ok := snap[key].(map[string]any)
	require.True(t, ok, "missing breakdown %s", key)
	return b
}

func TestServer_ListOptions(t *testing.T) {
	svc := newTestService(t, nycUpstream())

	resp, err := svc.client.ListOptions(context.Background())

	require.NoError(t, err)
	got := resp.AsMap()
	assert.Equal(t, true, got["catalog_loaded"])
	assert.Equal(t, "", got["catalog_error"])
	assert.Equal(t, []any{
		map[string]any{"label": "Select Location", "value": ""},
		map[string]any{"label": "All", "value": "all"},
		map[string]any{"label": "NYC", "value": "NYC"},
		map[string]any{"label": "LA", "value": "LA"},
	}, got["options"])
}

func TestServer_ListOptions_CatalogFailed(t *testing.T) {
	upstream := new(MockUpstream)
	upstream.On("ListLocations", mock.Anything).Return(nil, &domain.NetworkError{URL: "http://upstream/ad-locations/", StatusCode: 503})
	upstream.On("ListAdSpends", mock.Anything, "Paris").Return([]domain.AdSpendRecord{}, nil)
	upstream.On("ListCryptoEarnings", mock.Anything, "Paris").Return([]domain.CryptoEarningRecord{}, nil)
	svc := newTestService(t, upstream)

	resp, err := svc.client.ListOptions(context.Background())

	require.NoError(t, err)
	got := resp.AsMap()
	assert.Equal(t, false, got["catalog_loaded"])
	assert.Contains(t, got["catalog_error"], "unexpected status 503")
	assert.Len(t, got["options"], 2)

	// Without a catalog, names cannot be checked and are passed through
	_, err = svc.client.Select(context.Background(), "Paris")
	require.NoError(t, err)
	svc.resolver.Wait()
	upstream.AssertCalled(t, "ListAdSpends", mock.Anything, "Paris")
}

func TestServer_SelectLocation(t *testing.T) {
	upstream := nycUpstream()
	svc := newTestService(t, upstream)
	ctx := context.Background()

	resp, err := svc.client.Select(ctx, "NYC")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"kind": "location", "value": "NYC"}, resp.AsMap()["selection"])

	svc.resolver.Wait()

	snapResp, err := svc.client.GetSnapshot(ctx)
	require.NoError(t, err)
	snap := snapResp.AsMap()

	ad := breakdownOf(t, snap, "ad_spend")
	assert.Equal(t, "LOADED", ad["status"])
	assert.Equal(t, "15.75", ad["total"])
	records := ad["records"].([]any)
	require.Len(t, records, 2)
	first := records[0].(map[string]any)
	assert.Equal(t, "10.50", first["amount"])
	assert.Equal(t, "2024-01-01", first["date"])
	assert.Equal(t, "NYC", first["location"])
	assert.Equal(t, "10.5", first["value"])

	crypto := breakdownOf(t, snap, "crypto")
	assert.Equal(t, "LOADED", crypto["status"])
	assert.Equal(t, "0.3", crypto["total"])

	upstream.AssertExpectations(t)
}

func TestServer_SelectUnknownLocation(t *testing.T) {
	upstream := nycUpstream()
	svc := newTestService(t, upstream)

	_, err := svc.client.Select(context.Background(), "Atlantis")

	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())
	assert.Contains(t, st.Message(), "Atlantis")
	upstream.AssertNotCalled(t, "ListAdSpends", mock.Anything, mock.Anything)
}

func TestServer_SelectNothingResets(t *testing.T) {
	upstream := nycUpstream()
	svc := newTestService(t, upstream)
	ctx := context.Background()

	_, err := svc.client.Select(ctx, "NYC")
	require.NoError(t, err)
	svc.resolver.Wait()

	resp, err := svc.client.Select(ctx, "")
	require.NoError(t, err)

	snap := resp.AsMap()
	for _, key := range []string{"ad_spend", "crypto"} {
		b := breakdownOf(t, snap, key)
		assert.Equal(t, "IDLE", b["status"])
		assert.Equal(t, "0", b["total"])
		assert.Empty(t, b["records"])
	}
}

func TestServer_FailedKindKeepsOtherKind(t *testing.T) {
	upstream := new(MockUpstream)
	upstream.On("ListLocations", mock.Anything).Return([]domain.Location{}, nil)
	upstream.On("ListAdSpends", mock.Anything, "").Return(nil, &domain.ParseError{URL: "http://upstream/ad-spends/", Err: errors.New("response is not a JSON array")})
	upstream.On("ListCryptoEarnings", mock.Anything, "").Return([]domain.CryptoEarningRecord{
		{ID: "1", CryptoAmount: amount("2"), Date: "2024-02-01", Location: "NYC"},
		{ID: "2", CryptoAmount: amount("oops"), Date: "2024-02-02", Location: "LA"},
	}, nil)
	svc := newTestService(t, upstream)
	ctx := context.Background()

	_, err := svc.client.Select(ctx, "all")
	require.NoError(t, err)
	svc.resolver.Wait()

	resp, err := svc.client.GetSnapshot(ctx)
	require.NoError(t, err)
	snap := resp.AsMap()

	ad := breakdownOf(t, snap, "ad_spend")
	assert.Equal(t, "FAILED", ad["status"])
	assert.Contains(t, ad["error"], "parse error")
	assert.Equal(t, "0", ad["total"])

	crypto := breakdownOf(t, snap, "crypto")
	assert.Equal(t, "LOADED", crypto["status"])
	assert.Equal(t, "2", crypto["total"])
	assert.Equal(t, float64(1), crypto["invalid_count"])
	records := crypto["records"].([]any)
	require.Len(t, records, 2)
	flagged := records[1].(map[string]any)
	assert.Equal(t, true, flagged["invalid"])
	assert.Equal(t, "oops", flagged["amount"])
	assert.NotEmpty(t, flagged["invalid_reason"])
}

func TestServer_WatchSnapshots(t *testing.T) {
	svc := newTestService(t, nycUpstream())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := svc.client.WatchSnapshots(ctx)
	require.NoError(t, err)

	// The current snapshot arrives first
	first, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "unselected", first.AsMap()["selection"].(map[string]any)["kind"])
	firstRevision := first.AsMap()["revision"].(float64)

	_, err = svc.client.Select(ctx, "NYC")
	require.NoError(t, err)

	var last map[string]any
	for {
		msg, err := stream.Recv()
		require.NoError(t, err)
		last = msg.AsMap()
		if breakdownOf(t, last, "ad_spend")["status"] == "LOADED" &&
			breakdownOf(t, last, "crypto")["status"] == "LOADED" {
			break
		}
	}

	assert.Greater(t, last["revision"].(float64), firstRevision)
	assert.Equal(t, "15.75", breakdownOf(t, last, "ad_spend")["total"])
	assert.Equal(t, "0.3", breakdownOf(t, last, "crypto")["total"])
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"unknown location", errors.Join(domain.ErrUnknownLocation), codes.InvalidArgument},
		{"network", &domain.NetworkError{URL: "u", StatusCode: 500}, codes.Unavailable},
		{"parse", &domain.ParseError{URL: "u", Err: errors.New("bad")}, codes.DataLoss},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded},
		{"not found", errors.New("record not found"), codes.NotFound},
		{"other", errors.New("boom"), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, status.Code(mapError(tt.err)))
		})
	}

	assert.NoError(t, mapError(nil))
}
