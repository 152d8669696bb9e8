package service

import (
	"context"
	"testing"
	"time"

	"github.com/haierkeys/campus-share-service/internal/domain"
	"github.com/haierkeys/campus-share-service/internal/dto"
	"github.com/haierkeys/campus-share-service/pkg/app"
	"github.com/haierkeys/campus-share-service/pkg/code"
	"github.com/haierkeys/campus-share-service/pkg/timex"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func rideRequest(maxSeats int64, total string, expiry time.Time) *dto.RideCreateRequest {
	return &dto.RideCreateRequest{
		From:       "North Gate",
		To:         "Central Station",
		MaxSeats:   maxSeats,
		TotalPrice: price(total),
		ExpiryTime: timex.Time(expiry),
	}
}

func foodRequest(maxParticipants int64, total string, expiry time.Time) *dto.FoodOrderCreateRequest {
	return &dto.FoodOrderCreateRequest{
		Restaurant:       "Noodle House",
		MinSpent:         decimal.NewFromInt(30),
		Offers:           []*dto.FoodOfferRequest{{IsPercentage: true, Amount: decimal.NewFromInt(10)}},
		MaxParticipants:  maxParticipants,
		TotalPrice:       price(total),
		DeliveryLocation: "Dorm 7",
		Cuisine:          "Sichuan",
		Items:            []*dto.FoodItemRequest{{Name: "Dan dan", Quantity: 2, Price: decimal.NewFromInt(25)}},
		ExpiryTime:       timex.Time(expiry),
	}
}

func TestRideService_ScenarioA_FullAfterSecondSeat(t *testing.T) {
	f := newRideFixture(nil)
	ctx := context.Background()

	ride, err := f.svc.Create(ctx, 1, rideRequest(2, "30", testNow.Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "open", ride.State)
	assert.Equal(t, "Owner", ride.Owner.Name)

	joined, err := f.svc.Join(ctx, 2, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), joined.PaymentSummary.TotalParticipants)
	assert.True(t, decimal.NewFromInt(15).Equal(joined.PaymentSummary.SplitAmount))
	assert.Equal(t, "full", joined.State)
	require.Len(t, joined.Participants, 1)
	assert.Equal(t, "Bo", joined.Participants[0].Name)

	_, err = f.svc.Join(ctx, 3, ride.ID)
	assert.ErrorIs(t, err, code.ErrorPoolFull)
}

func TestFoodOrderService_ScenarioB_UnboundedCounter(t *testing.T) {
	f := newFoodFixture(nil)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, 1, foodRequest(0, "100", testNow.Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), order.CurrentParticipants)
	assert.True(t, decimal.NewFromInt(100).Equal(order.SplitAmount))

	var last *dto.FoodOrderDetailDTO
	for _, uid := range []int64{2, 3, 4} {
		last, err = f.svc.Join(ctx, uid, order.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(4), last.CurrentParticipants)
	assert.True(t, decimal.RequireFromString("25.00").Equal(last.PaymentSummary.SplitAmount))
	assert.True(t, decimal.NewFromInt(30).Equal(last.PaymentSummary.MinSpent))
	require.NotNil(t, last.PaymentSummary.Offer)
	assert.True(t, last.PaymentSummary.Offer.IsPercentage)
	assert.Equal(t, int64(4), f.repo.stored(order.ID).HeadCount)
}

func TestRideService_ScenarioC_LazyExpiryOnRead(t *testing.T) {
	f := newRideFixture(nil)
	ctx := context.Background()

	stale := f.repo.put(&domain.Ride{
		Pool: domain.Pool{OwnerUID: 1, CapacityLimit: 4, TotalPrice: decimal.NewFromInt(40), ExpiryTime: testNow.Add(-time.Second)},
		To:   "Airport",
	})

	detail, err := f.svc.Get(ctx, 2, stale.ID)
	require.NoError(t, err)
	assert.True(t, detail.Expired)
	assert.True(t, detail.PaymentSummary.IsExpired)
	assert.Equal(t, "expired", detail.State)
	assert.True(t, f.repo.stored(stale.ID).Expired)
	assert.Equal(t, 1, f.repo.markCalls)

	_, err = f.svc.Join(ctx, 2, stale.ID)
	assert.ErrorIs(t, err, code.ErrorPoolExpired)
}

func TestRideService_ScenarioD_OwnerCannotLeave(t *testing.T) {
	f := newRideFixture(nil)
	ctx := context.Background()

	ride, err := f.svc.Create(ctx, 1, rideRequest(3, "30", testNow.Add(time.Minute)))
	require.NoError(t, err)

	_, err = f.svc.Leave(ctx, 1, ride.ID)
	assert.ErrorIs(t, err, code.ErrorPoolOwnerCannotLeave)

	f.clock.Advance(time.Hour)
	_, err = f.svc.Leave(ctx, 1, ride.ID)
	assert.ErrorIs(t, err, code.ErrorPoolOwnerCannotLeave)
}

func TestRideService_ScenarioE_Sweep(t *testing.T) {
	f := newRideFixture(nil)

	for i := 0; i < 5; i++ {
		f.repo.put(&domain.Ride{Pool: domain.Pool{OwnerUID: 1, CapacityLimit: 2, ExpiryTime: testNow.Add(-time.Duration(i+1) * time.Minute)}})
	}
	for i := 0; i < 3; i++ {
		f.repo.put(&domain.Ride{Pool: domain.Pool{OwnerUID: 1, CapacityLimit: 2, ExpiryTime: testNow.Add(time.Duration(i+1) * time.Minute)}})
	}

	n, err := f.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	n, err = f.svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRideService_CreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     *dto.RideCreateRequest
		wantErr error
	}{
		{"past expiry", rideRequest(3, "10", testNow.Add(-time.Minute)), code.ErrorPoolPastExpiry},
		{"expiry equals now", rideRequest(3, "10", testNow), code.ErrorPoolPastExpiry},
		{"missing expiry", rideRequest(3, "10", time.Time{}), code.ErrorInvalidParams},
		{"zero seats", rideRequest(0, "10", testNow.Add(time.Hour)), code.ErrorInvalidParams},
		{"too many seats", rideRequest(11, "10", testNow.Add(time.Hour)), code.ErrorInvalidParams},
		{"negative price", rideRequest(3, "-1", testNow.Add(time.Hour)), code.ErrorInvalidParams},
		{"missing price", &dto.RideCreateRequest{MaxSeats: 2, ExpiryTime: timex.Time(testNow.Add(time.Hour))}, code.ErrorInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRideFixture(nil)
			_, err := f.svc.Create(context.Background(), 1, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.repo.items)
		})
	}
}

func TestFoodOrderService_CreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *dto.FoodOrderCreateRequest)
		wantErr error
	}{
		{"limit of one", func(r *dto.FoodOrderCreateRequest) { r.MaxParticipants = 1 }, code.ErrorInvalidParams},
		{"percentage above 100", func(r *dto.FoodOrderCreateRequest) { r.Offers[0].Amount = decimal.NewFromInt(101) }, code.ErrorInvalidParams},
		{"zero quantity", func(r *dto.FoodOrderCreateRequest) { r.Items[0].Quantity = 0 }, code.ErrorInvalidParams},
		{"past expiry", func(r *dto.FoodOrderCreateRequest) { r.ExpiryTime = timex.Time(testNow.Add(-time.Second)) }, code.ErrorPoolPastExpiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFoodFixture(nil)
			req := foodRequest(4, "80", testNow.Add(time.Hour))
			tt.mutate(req)
			_, err := f.svc.Create(context.Background(), 1, req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRideService_JoinRejections(t *testing.T) {
	f := newRideFixture(nil)
	ctx := context.Background()

	ride, err := f.svc.Create(ctx, 1, rideRequest(4, "40", testNow.Add(time.Hour)))
	require.NoError(t, err)
	_, err = f.svc.Join(ctx, 2, ride.ID)
	require.NoError(t, err)

	tests := []struct {
		name    string
		uid     int64
		id      int64
		wantErr error
	}{
		{"self join", 1, ride.ID, code.ErrorPoolSelfJoin},
		{"already joined", 2, ride.ID, code.ErrorPoolAlreadyJoined},
		{"not found", 3, ride.ID + 100, code.ErrorRideNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Join(ctx, tt.uid, tt.id)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRideService_LeaveAndDelete(t *testing.T) {
	f := newRideFixture(nil)
	ctx := context.Background()

	ride, err := f.svc.Create(ctx, 1, rideRequest(4, "40", testNow.Add(time.Hour)))
	require.NoError(t, err)

	_, err = f.svc.Leave(ctx, 3, ride.ID)
	assert.ErrorIs(t, err, code.ErrorPoolNotParticipant)

	_, err = f.svc.Join(ctx, 2, ride.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, 2, ride.ID), code.ErrorPoolNotOwner)
	assert.ErrorIs(t, f.svc.Delete(ctx, 1, ride.ID), code.ErrorPoolHasParticipants)

	left, err := f.svc.Leave(ctx, 2, ride.ID)
	require.NoError(t, err)
	assert.Empty(t, left.Participants)
	assert.Nil(t, left.PaymentSummary.YourAmount)
	assert.True(t, decimal.NewFromInt(40).Equal(left.SplitAmount))

	require.NoError(t, f.svc.Delete(ctx, 1, ride.ID))
	_, err = f.svc.Get(ctx, 1, ride.ID)
	assert.ErrorIs(t, err, code.ErrorRideNotFound)
}

func TestRideService_LeaveAfterExpiryIsRejected(t *testing.T) {
	f := newRideFixture(nil)
	ctx := context.Background()

	ride, err := f.svc.Create(ctx, 1, rideRequest(4, "40", testNow.Add(time.Minute)))
	require.NoError(t, err)
	_, err = f.svc.Join(ctx, 2, ride.ID)
	require.NoError(t, err)

	f.clock.Advance(2 * time.Minute)
	_, err = f.svc.Leave(ctx, 2, ride.ID)
	assert.ErrorIs(t, err, code.ErrorPoolExpired)
	assert.True(t, f.repo.stored(ride.ID).HasParticipant(2))
}

func TestRideService_DetailsViewerAmount(t *testing.T) {
	f := newRideFixture(nil)
	ctx := context.Background()

	ride, err := f.svc.Create(ctx, 1, rideRequest(4, "10", testNow.Add(time.Hour)))
	require.NoError(t, err)
	_, err = f.svc.Join(ctx, 2, ride.ID)
	require.NoError(t, err)
	_, err = f.svc.Join(ctx, 3, ride.ID)
	require.NoError(t, err)

	tests := []struct {
		name    string
		viewer  int64
		wantNil bool
	}{
		{"owner", 1, false},
		{"participant", 2, false},
		{"outsider", 4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail, err := f.svc.Get(ctx, tt.viewer, ride.ID)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString("3.33").Equal(detail.PaymentSummary.SplitAmount))
			if tt.wantNil {
				assert.Nil(t, detail.PaymentSummary.YourAmount)
				return
			}
			require.NotNil(t, detail.PaymentSummary.YourAmount)
			assert.True(t, detail.PaymentSummary.SplitAmount.Equal(*detail.PaymentSummary.YourAmount))
		})
	}
}

func TestRideService_ConflictRechecksGuard(t *testing.T) {
	f := newRideFixture(nil)
	ctx := context.Background()

	ride, err := f.svc.Create(ctx, 1, rideRequest(2, "20", testNow.Add(time.Hour)))
	require.NoError(t, err)

	// 另一个请求在守卫之后、写入之前占走最后一个座位
	f.repo.beforeWrite = func() {
		require.NoError(t, f.repo.AddParticipant(ctx, ride.ID, 4, testNow))
	}

	_, err = f.svc.Join(ctx, 2, ride.ID)
	assert.ErrorIs(t, err, code.ErrorPoolFull)
	stored := f.repo.stored(ride.ID)
	assert.Equal(t, []int64{4}, stored.ParticipantUIDs())
	assert.Equal(t, int64(1), stored.CurrentSeats())
}

func TestRideService_ConflictRetriesThenBusy(t *testing.T) {
	t.Run("recovers", func(t *testing.T) {
		f := newRideFixture(nil)
		ride, err := f.svc.Create(context.Background(), 1, rideRequest(3, "30", testNow.Add(time.Hour)))
		require.NoError(t, err)

		f.repo.forceConflicts = 2
		joined, err := f.svc.Join(context.Background(), 2, ride.ID)
		require.NoError(t, err)
		assert.Len(t, joined.Participants, 1)
	})

	t.Run("gives up", func(t *testing.T) {
		cfg := testConfig()
		cfg.Pool.ConflictRetries = 1
		f := newRideFixture(cfg)
		ride, err := f.svc.Create(context.Background(), 1, rideRequest(3, "30", testNow.Add(time.Hour)))
		require.NoError(t, err)

		f.repo.forceConflicts = 5
		_, err = f.svc.Join(context.Background(), 2, ride.ID)
		assert.ErrorIs(t, err, code.ErrorPoolBusy)
		assert.False(t, f.repo.stored(ride.ID).HasParticipant(2))
	})
}

func TestRideService_InfrastructureRetry(t *testing.T) {
	tests := []struct {
		name    string
		getErrs int
		wantErr error
	}{
		{"transient", 2, nil},
		{"persistent", 10, code.ErrorDBQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRideFixture(nil)
			ride, err := f.svc.Create(context.Background(), 1, rideRequest(3, "30", testNow.Add(time.Hour)))
			require.NoError(t, err)

			f.repo.getErrs = tt.getErrs
			_, err = f.svc.Get(context.Background(), 1, ride.ID)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRideService_SearchIsReadOnly(t *testing.T) {
	cfg := testConfig()
	cfg.Pool.SearchLimit = 2
	f := newRideFixture(cfg)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := f.svc.Create(ctx, 1, rideRequest(3, "30", testNow.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}
	stale := f.repo.put(&domain.Ride{Pool: domain.Pool{OwnerUID: 1, CapacityLimit: 3, ExpiryTime: testNow.Add(-time.Minute)}, To: "Central Station"})

	list, total, err := f.svc.Search(ctx, 2, &dto.RideSearchRequest{To: "central"}, &app.Pager{Page: 1, PageSize: 50})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, list, 2)
	assert.Equal(t, 2, f.repo.lastFilter.Limit)
	assert.Equal(t, "central", f.repo.lastFilter.Destination)

	list, total, err = f.svc.Search(ctx, 2, &dto.RideSearchRequest{To: "central", IncludeExpired: true}, &app.Pager{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, list, 2)
	assert.Equal(t, "open", list[1].State)

	list, _, err = f.svc.Search(ctx, 2, &dto.RideSearchRequest{To: "central", IncludeExpired: true}, &app.Pager{Page: 1, PageSize: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, stale.ID, list[0].ID)
	assert.Equal(t, "expired", list[0].State)

	assert.Zero(t, f.repo.markCalls)
	assert.False(t, f.repo.stored(stale.ID).Expired)
}

func TestRideService_SearchDate(t *testing.T) {
	f := newRideFixture(nil)

	_, _, err := f.svc.Search(context.Background(), 1, &dto.RideSearchRequest{To: "x", Date: "2026-02-30"}, nil)
	assert.ErrorIs(t, err, code.ErrorInvalidParams)

	_, _, err = f.svc.Search(context.Background(), 1, &dto.RideSearchRequest{To: "x", Date: "2026-03-01"}, nil)
	require.NoError(t, err)
	require.NotNil(t, f.repo.lastFilter.Date)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *f.repo.lastFilter.Date)
}

func TestFoodOrderService_Mine(t *testing.T) {
	f := newFoodFixture(nil)
	ctx := context.Background()

	own, err := f.svc.Create(ctx, 2, foodRequest(0, "60", testNow.Add(time.Hour)))
	require.NoError(t, err)
	other, err := f.svc.Create(ctx, 3, foodRequest(3, "60", testNow.Add(time.Hour)))
	require.NoError(t, err)
	_, err = f.svc.Join(ctx, 2, other.ID)
	require.NoError(t, err)

	mine, err := f.svc.Mine(ctx, 2)
	require.NoError(t, err)
	require.Len(t, mine.CreatedOrders, 1)
	require.Len(t, mine.JoinedOrders, 1)
	assert.Equal(t, own.ID, mine.CreatedOrders[0].ID)
	assert.Equal(t, other.ID, mine.JoinedOrders[0].ID)
	assert.Equal(t, "Cy", mine.JoinedOrders[0].Owner.Name)
	assert.True(t, decimal.NewFromInt(30).Equal(mine.JoinedOrders[0].SplitAmount))
}

func TestFoodOrderService_FullAtLimit(t *testing.T) {
	f := newFoodFixture(nil)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, 1, foodRequest(3, "90", testNow.Add(time.Hour)))
	require.NoError(t, err)

	_, err = f.svc.Join(ctx, 2, order.ID)
	require.NoError(t, err)
	detail, err := f.svc.Join(ctx, 3, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "full", detail.State)
	assert.True(t, decimal.NewFromInt(30).Equal(detail.PaymentSummary.SplitAmount))

	_, err = f.svc.Join(ctx, 4, order.ID)
	assert.ErrorIs(t, err, code.ErrorPoolFull)

	left, err := f.svc.Leave(ctx, 3, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "open", left.State)
	assert.Equal(t, int64(2), left.CurrentParticipants)
}
