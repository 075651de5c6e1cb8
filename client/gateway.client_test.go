package client_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/client"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/client/clienttest"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/cache"
	"github.com/Tanmoy095/LogiSynapse/tms-dashboard/internal/models"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	srv    *clienttest.Server
	api    *client.Client
	token  string
	admin  models.User
	unauth int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{srv: clienttest.NewServer(t)}
	f.admin = f.srv.AddUser(models.User{Email: "ada@tms.io", FirstName: "Ada", LastName: "Lovelace", Role: models.RoleAdmin}, "secret1")

	api, err := client.NewClient(f.srv.Endpoint(), client.Options{
		Tokens:            client.TokenFunc(func() string { return f.token }),
		Cache:             cache.New(),
		Logger:            quietLogger(),
		OnUnauthenticated: func(context.Context) { f.unauth++ },
	})
	require.NoError(t, err)
	f.api = api
	return f
}

func TestNewClient_RequiresEndpoint(t *testing.T) {
	_, err := client.NewClient("", client.Options{})
	require.Error(t, err)
}

func TestLogin_NoAuthHeaderWithoutToken(t *testing.T) {
	f := newFixture(t)

	payload, err := f.api.Login(context.Background(), "ada@tms.io", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, payload.Token)
	require.NotNil(t, payload.User)
	assert.Equal(t, models.RoleAdmin, payload.User.Role)

	reqs := f.srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Login", reqs[0].Operation)
	assert.Empty(t, reqs[0].Authorization)
	_, err = uuid.Parse(reqs[0].RequestID)
	assert.NoError(t, err)
}

func TestLogin_BadCredentialsKeepServerMessage(t *testing.T) {
	f := newFixture(t)

	_, err := f.api.Login(context.Background(), "ada@tms.io", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.Error())
	assert.Equal(t, codes.InvalidArgument, client.Code(err))
	assert.Zero(t, f.unauth)
}

func TestTokenIsReadPerRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.token = f.srv.IssueToken(f.admin.ID)
	_, err := f.api.ShipmentStats(ctx)
	require.NoError(t, err)

	f.token = f.srv.IssueToken(f.admin.ID)
	_, err = f.api.ShipmentStats(ctx)
	require.NoError(t, err)

	reqs := f.srv.Requests()
	require.Len(t, reqs, 2)
	assert.NotEqual(t, reqs[0].Authorization, reqs[1].Authorization)
	assert.Equal(t, "Bearer "+f.token, reqs[1].Authorization)
}

func TestUnauthenticatedRunsHandler(t *testing.T) {
	f := newFixture(t)
	f.token = "stale"

	_, err := f.api.Shipments(context.Background(), models.ShipmentsQuery{Limit: 20})
	require.Error(t, err)
	assert.True(t, errors.Is(err, client.ErrUnauthenticated))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, 1, f.unauth)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		code string
		want codes.Code
	}{
		{"FORBIDDEN", codes.PermissionDenied},
		{"BAD_USER_INPUT", codes.InvalidArgument},
		{"GRAPHQL_VALIDATION_FAILED", codes.InvalidArgument},
		{"NOT_FOUND", codes.NotFound},
		{"INTERNAL_SERVER_ERROR", codes.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			f := newFixture(t)
			f.token = f.srv.IssueToken(f.admin.ID)
			f.srv.FailNext("GetShipmentStats", tt.code, "boom")

			_, err := f.api.ShipmentStats(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.want, client.Code(err))
			assert.Equal(t, "boom", err.Error())
			assert.False(t, errors.Is(err, client.ErrUnauthenticated))

			var apiErr *client.Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, "GetShipmentStats", apiErr.Op)
			require.Len(t, apiErr.GraphQL, 1)
		})
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	api, err := client.NewClient(srv.URL, client.Options{Logger: quietLogger()})
	require.NoError(t, err)

	_, err = api.ShipmentStats(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, client.ErrNetwork))
	assert.Equal(t, codes.Unavailable, client.Code(err))

	srv.Close()
	_, err = api.Me(context.Background())
	assert.True(t, errors.Is(err, client.ErrNetwork))
}

func TestShipments_AccumulatesPages(t *testing.T) {
	f := newFixture(t)
	f.token = f.srv.IssueToken(f.admin.ID)
	for i := 0; i < 5; i++ {
		f.srv.AddShipment(models.Shipment{Carrier: "DHL", Cost: decimal.NewFromInt(100)})
	}
	ctx := context.Background()
	sort := &models.ShipmentSort{Field: models.SortCreatedAt, Order: models.SortDesc}

	conn, err := f.api.Shipments(ctx, models.ShipmentsQuery{Sort: sort, Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, conn.Edges, 2)
	assert.Equal(t, 5, conn.TotalCount)

	conn, err = f.api.Shipments(ctx, models.ShipmentsQuery{Sort: sort, Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, conn.Edges, 4)
	assert.Equal(t, 2, conn.PageInfo.CurrentPage)

	cached, ok := f.api.CachedShipments(models.ShipmentsQuery{Sort: sort})
	require.True(t, ok)
	assert.Len(t, cached.Edges, 4)

	conn, err = f.api.Shipments(ctx, models.ShipmentsQuery{Sort: sort, Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, conn.Edges, 2)
}

func TestShipment_NotFoundIsNil(t *testing.T) {
	f := newFixture(t)
	f.token = f.srv.IssueToken(f.admin.ID)

	sh, err := f.api.Shipment(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, sh)
}

func TestFlagUnflag_Idempotent(t *testing.T) {
	f := newFixture(t)
	f.token = f.srv.IssueToken(f.admin.ID)
	created := f.srv.AddShipment(models.Shipment{Carrier: "UPS"})
	ctx := context.Background()

	_, err := f.api.FlagShipment(ctx, created.ID, "damaged box")
	require.NoError(t, err)
	sh, err := f.api.FlagShipment(ctx, created.ID, "wrong address")
	require.NoError(t, err)
	assert.True(t, sh.IsFlagged)
	require.NotNil(t, sh.FlagReason)
	assert.Equal(t, "wrong address", *sh.FlagReason)

	_, err = f.api.UnflagShipment(ctx, created.ID)
	require.NoError(t, err)
	sh, err = f.api.UnflagShipment(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, sh.IsFlagged)
	assert.Nil(t, sh.FlagReason)

	cached, ok := f.api.CachedShipment(created.ID)
	require.True(t, ok)
	assert.False(t, cached.IsFlagged)
}

func TestDeleteShipment_EvictsFromCache(t *testing.T) {
	f := newFixture(t)
	f.token = f.srv.IssueToken(f.admin.ID)
	a := f.srv.AddShipment(models.Shipment{})
	f.srv.AddShipment(models.Shipment{})
	ctx := context.Background()

	_, err := f.api.Shipments(ctx, models.ShipmentsQuery{Limit: 20})
	require.NoError(t, err)

	res, err := f.api.DeleteShipment(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, res.Success)

	cached, ok := f.api.CachedShipments(models.ShipmentsQuery{})
	require.True(t, ok)
	require.Len(t, cached.Edges, 1)
	assert.NotEqual(t, a.ID, cached.Edges[0].Node.ID)
}

func TestUpdateShipmentStatus_AnyTransition(t *testing.T) {
	f := newFixture(t)
	f.token = f.srv.IssueToken(f.admin.ID)
	created := f.srv.AddShipment(models.Shipment{Status: models.ShipmentStatusDelivered})

	sh, err := f.api.UpdateShipmentStatus(context.Background(), created.ID, models.ShipmentStatusPending)
	require.NoError(t, err)
	assert.Equal(t, models.ShipmentStatusPending, sh.Status)
}

func TestCreateAndUpdateShipment(t *testing.T) {
	f := newFixture(t)
	f.token = f.srv.IssueToken(f.admin.ID)
	ctx := context.Background()

	created, err := f.api.CreateShipment(ctx, models.CreateShipmentInput{
		Type:        models.TypeExpress,
		Origin:      models.AddressInput{City: "Austin", Country: "US"},
		Destination: models.AddressInput{City: "Denver", Country: "US"},
		Weight:      12.5,
		Description: "Laptops",
		Carrier:     "FedEx",
		Cost:        decimal.RequireFromString("249.99"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, decimal.RequireFromString("249.99").Equal(created.Cost))

	carrier := "UPS"
	updated, err := f.api.UpdateShipment(ctx, created.ID, models.UpdateShipmentInput{Carrier: &carrier})
	require.NoError(t, err)
	assert.Equal(t, "UPS", updated.Carrier)
	assert.Equal(t, "Laptops", updated.Description)
}

func TestShipmentStats_ConcurrentCallersShareResult(t *testing.T) {
	f := newFixture(t)
	f.token = f.srv.IssueToken(f.admin.ID)
	f.srv.AddShipment(models.Shipment{Status: models.ShipmentStatusDelivered, Cost: decimal.NewFromInt(40)})
	f.srv.AddShipment(models.Shipment{Status: models.ShipmentStatusPending, Cost: decimal.NewFromInt(60)})

	var g errgroup.Group
	results := make([]models.ShipmentStats, 4)
	for i := range results {
		g.Go(func() error {
			s, err := f.api.ShipmentStats(context.Background())
			results[i] = s
			return err
		})
	}
	require.NoError(t, g.Wait())

	for _, s := range results {
		assert.Equal(t, 2, s.Total)
		assert.True(t, s.TotalCost.Equal(decimal.NewFromInt(100)))
	}
	calls := f.srv.Calls("GetShipmentStats")
	assert.GreaterOrEqual(t, calls, 1)
	assert.LessOrEqual(t, calls, len(results))

	cached, ok := f.api.CachedStats()
	require.True(t, ok)
	assert.Equal(t, 1, cached.Delivered)
}

func TestMe(t *testing.T) {
	f := newFixture(t)
	f.token = f.srv.IssueToken(f.admin.ID)

	me, err := f.api.Me(context.Background())
	require.NoError(t, err)
	require.NotNil(t, me)
	assert.Equal(t, "Ada Lovelace", me.FullName)
}
