package domain

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ownerUID = int64(1)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newRide(maxSeats int64, price string, expiry time.Time) *Ride {
	r := &Ride{From: "Campus", To: "Airport"}
	r.OwnerUID = ownerUID
	r.CapacityLimit = maxSeats
	r.TotalPrice = decimal.RequireFromString(price)
	r.ExpiryTime = expiry
	RidePolicy.Init(&r.Pool)
	return r
}

func newFoodOrder(maxParticipants int64, price string, expiry time.Time) *FoodOrder {
	f := &FoodOrder{Restaurant: "Noodle House"}
	f.OwnerUID = ownerUID
	f.CapacityLimit = maxParticipants
	f.TotalPrice = decimal.RequireFromString(price)
	f.ExpiryTime = expiry
	FoodPolicy.Init(&f.Pool)
	return f
}

// join 模拟编排器：先做过期判定再授权
func join(p Policy, pool *Pool, uid int64, now time.Time) error {
	EvaluateExpiry(pool, now)
	if err := p.AuthorizeJoin(pool, uid); err != nil {
		return err
	}
	p.Admit(pool, uid, now)
	return nil
}

func leave(p Policy, pool *Pool, uid int64, now time.Time) error {
	EvaluateExpiry(pool, now)
	if err := p.AuthorizeLeave(pool, uid); err != nil {
		return err
	}
	p.Release(pool, uid)
	return nil
}

func requireReason(t *testing.T, err error, reason RejectReason) {
	t.Helper()
	r, ok := AsRejection(err)
	require.True(t, ok, "expected rejection, got %v", err)
	assert.Equal(t, reason, r.Reason)
}

func TestScenarioA_RideFillsAtCapacity(t *testing.T) {
	now := baseTime
	ride := newRide(2, "30", now.Add(time.Hour))

	require.NoError(t, join(RidePolicy, &ride.Pool, 2, now))
	assert.Equal(t, int64(2), RidePolicy.EffectiveCount(&ride.Pool))
	assert.Equal(t, int64(1), ride.CurrentSeats())

	split, err := RidePolicy.ComputeSplit(&ride.Pool)
	require.NoError(t, err)
	assert.Equal(t, "15", split.String())
	assert.Equal(t, PoolStateFull, RidePolicy.State(&ride.Pool))

	requireReason(t, join(RidePolicy, &ride.Pool, 3, now), ReasonFull)
}

func TestScenarioB_FoodOrderUnboundedSplit(t *testing.T) {
	now := baseTime
	order := newFoodOrder(0, "100", now.Add(time.Hour))
	assert.Equal(t, int64(1), order.CurrentParticipants())

	for uid := int64(2); uid <= 4; uid++ {
		require.NoError(t, join(FoodPolicy, &order.Pool, uid, now))
	}
	assert.Equal(t, int64(4), order.CurrentParticipants())

	split, err := FoodPolicy.ComputeSplit(&order.Pool)
	require.NoError(t, err)
	assert.Equal(t, "25.00", split.StringFixed(2))
	assert.Equal(t, PoolStateOpen, FoodPolicy.State(&order.Pool))
}

func TestScenarioC_LazyExpiryBlocksJoin(t *testing.T) {
	now := baseTime
	ride := newRide(4, "20", now.Add(-time.Second))

	isExpired, changed := EvaluateExpiry(&ride.Pool, now)
	assert.True(t, isExpired)
	assert.True(t, changed)
	assert.True(t, ride.Expired)

	isExpired, changed = EvaluateExpiry(&ride.Pool, now)
	assert.True(t, isExpired)
	assert.False(t, changed)

	requireReason(t, join(RidePolicy, &ride.Pool, 2, now), ReasonExpired)
}

func TestScenarioD_OwnerCannotLeave(t *testing.T) {
	tests := []struct {
		name    string
		expired bool
	}{
		{"open", false},
		{"expired", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ride := newRide(3, "10", baseTime.Add(time.Hour))
			ride.Expired = tt.expired
			requireReason(t, RidePolicy.AuthorizeLeave(&ride.Pool, ownerUID), ReasonOwnerCannotLeave)
		})
	}
}

func TestAuthorizeJoin_Order(t *testing.T) {
	now := baseTime
	tests := []struct {
		name   string
		policy Policy
		setup  func() *Pool
		uid    int64
		reason RejectReason
	}{
		{
			name:   "expired wins over self join",
			policy: RidePolicy,
			setup: func() *Pool {
				r := newRide(2, "10", now.Add(time.Hour))
				r.Expired = true
				return &r.Pool
			},
			uid:    ownerUID,
			reason: ReasonExpired,
		},
		{
			name:   "self join wins over full",
			policy: RidePolicy,
			setup: func() *Pool {
				r := newRide(1, "10", now.Add(time.Hour))
				return &r.Pool
			},
			uid:    ownerUID,
			reason: ReasonSelfJoin,
		},
		{
			name:   "already joined wins over full",
			policy: RidePolicy,
			setup: func() *Pool {
				r := newRide(2, "10", now.Add(time.Hour))
				RidePolicy.Admit(&r.Pool, 2, now)
				return &r.Pool
			},
			uid:    2,
			reason: ReasonAlreadyJoined,
		},
		{
			name:   "food full at max participants",
			policy: FoodPolicy,
			setup: func() *Pool {
				f := newFoodOrder(2, "10", now.Add(time.Hour))
				FoodPolicy.Admit(&f.Pool, 2, now)
				return &f.Pool
			},
			uid:    3,
			reason: ReasonFull,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireReason(t, tt.policy.AuthorizeJoin(tt.setup(), tt.uid), tt.reason)
		})
	}
}

func TestAuthorizeLeave(t *testing.T) {
	now := baseTime
	order := newFoodOrder(0, "40", now.Add(time.Hour))
	require.NoError(t, join(FoodPolicy, &order.Pool, 2, now))

	requireReason(t, FoodPolicy.AuthorizeLeave(&order.Pool, 3), ReasonNotParticipant)

	require.NoError(t, leave(FoodPolicy, &order.Pool, 2, now))
	assert.Equal(t, int64(1), order.CurrentParticipants())
	assert.Empty(t, order.Participants)

	require.NoError(t, join(FoodPolicy, &order.Pool, 2, now))
	requireReason(t, leave(FoodPolicy, &order.Pool, 2, now.Add(2*time.Hour)), ReasonExpired)
	assert.True(t, order.HasParticipant(2))
}

func TestAuthorizeDelete(t *testing.T) {
	now := baseTime
	ride := newRide(3, "10", now.Add(time.Hour))

	requireReason(t, RidePolicy.AuthorizeDelete(&ride.Pool, 2), ReasonNotOwner)
	assert.NoError(t, RidePolicy.AuthorizeDelete(&ride.Pool, ownerUID))

	RidePolicy.Admit(&ride.Pool, 2, now)
	requireReason(t, RidePolicy.AuthorizeDelete(&ride.Pool, ownerUID), ReasonHasParticipants)
}

func TestValidateCapacity(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		limit   int64
		wantErr bool
	}{
		{"ride missing", RidePolicy, 0, true},
		{"ride min", RidePolicy, 1, false},
		{"ride max", RidePolicy, 10, false},
		{"ride over", RidePolicy, 11, true},
		{"food unbounded", FoodPolicy, 0, false},
		{"food one", FoodPolicy, 1, true},
		{"food two", FoodPolicy, 2, false},
		{"food large", FoodPolicy, 500, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.ValidateCapacity(tt.limit)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCapacity)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestComputeSplit(t *testing.T) {
	now := baseTime

	ride := newRide(4, "10", now.Add(time.Hour))
	RidePolicy.Admit(&ride.Pool, 2, now)
	split, err := RidePolicy.ComputeSplit(&ride.Pool)
	require.NoError(t, err)
	assert.Equal(t, "5", split.String())

	RidePolicy.Admit(&ride.Pool, 3, now)
	split, err = RidePolicy.ComputeSplit(&ride.Pool)
	require.NoError(t, err)
	assert.Equal(t, "3.33", split.String())

	broken := newFoodOrder(0, "10", now.Add(time.Hour))
	broken.HeadCount = 0
	_, err = FoodPolicy.ComputeSplit(&broken.Pool)
	assert.ErrorIs(t, err, ErrNoParticipants)
}

func TestSummarize_ViewerAmount(t *testing.T) {
	now := baseTime
	order := newFoodOrder(0, "90", now.Add(time.Hour))
	FoodPolicy.Admit(&order.Pool, 2, now)

	tests := []struct {
		name    string
		viewer  int64
		visible bool
	}{
		{"owner", ownerUID, true},
		{"participant", 2, true},
		{"stranger", 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, err := FoodPolicy.Summarize(&order.Pool, tt.viewer)
			require.NoError(t, err)
			assert.Equal(t, int64(2), summary.TotalParticipants)
			assert.Equal(t, "45", summary.SplitAmount.String())
			if tt.visible {
				require.NotNil(t, summary.ViewerAmount)
				assert.True(t, summary.ViewerAmount.Equal(summary.SplitAmount))
			} else {
				assert.Nil(t, summary.ViewerAmount)
			}
		})
	}
}

// step 把一个整数解码为操作：0 加入，1 退出，2 时间推进
func step(policy Policy, pool *Pool, code int, now time.Time) time.Time {
	uid := int64(code/3%6) + 1
	switch code % 3 {
	case 0:
		_ = join(policy, pool, uid, now)
	case 1:
		_ = leave(policy, pool, uid, now)
	default:
		now = now.Add(10 * time.Minute)
		EvaluateExpiry(pool, now)
	}
	return now
}

func checkInvariants(policy Policy, pool *Pool) bool {
	seen := make(map[int64]bool, len(pool.Participants))
	for _, pt := range pool.Participants {
		if pt.UID == pool.OwnerUID || seen[pt.UID] {
			return false
		}
		seen[pt.UID] = true
	}
	if pool.CapacityLimit > 0 && policy.EffectiveCount(pool) > pool.CapacityLimit {
		return false
	}
	return policy.EffectiveCount(pool) >= 1
}

func TestProperty_PoolInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	run := func(policy Policy, capacity int64, ops []int) bool {
		now := baseTime
		pool := &Pool{OwnerUID: ownerUID, CapacityLimit: capacity, ExpiryTime: now.Add(time.Hour)}
		policy.Init(pool)
		wasExpired := false
		for _, op := range ops {
			now = step(policy, pool, op, now)
			if wasExpired && !pool.Expired {
				return false
			}
			wasExpired = pool.Expired
			if !checkInvariants(policy, pool) {
				return false
			}
		}
		return true
	}

	properties.Property("ride invariants hold for any operation sequence", prop.ForAll(
		func(capacity int64, ops []int) bool {
			return run(RidePolicy, capacity, ops)
		},
		gen.Int64Range(1, 10),
		gen.SliceOf(gen.IntRange(0, 17)),
	))

	properties.Property("food order invariants hold for any operation sequence", prop.ForAll(
		func(capacity int64, ops []int) bool {
			if capacity == 1 {
				capacity = 0
			}
			return run(FoodPolicy, capacity, ops)
		},
		gen.Int64Range(0, 8),
		gen.SliceOf(gen.IntRange(0, 17)),
	))

	properties.TestingRun(t)
}

func TestProperty_SplitIsPure(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("computeSplit is stable across calls", prop.ForAll(
		func(cents int64, joined int) bool {
			order := newFoodOrder(0, "0", baseTime.Add(time.Hour))
			order.TotalPrice = decimal.New(cents, -2)
			for i := 0; i < joined; i++ {
				FoodPolicy.Admit(&order.Pool, int64(i+2), baseTime)
			}
			first, err1 := FoodPolicy.ComputeSplit(&order.Pool)
			second, err2 := FoodPolicy.ComputeSplit(&order.Pool)
			return err1 == nil && err2 == nil && first.Equal(second) && first.Exponent() >= -SplitPlaces
		},
		gen.Int64Range(0, 10_000_000),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}

func TestProperty_DeleteRequiresEmptyPool(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("owner delete succeeds iff no participants", prop.ForAll(
		func(joined int) bool {
			ride := newRide(10, "10", baseTime.Add(time.Hour))
			for i := 0; i < joined; i++ {
				RidePolicy.Admit(&ride.Pool, int64(i+2), baseTime)
			}
			err := RidePolicy.AuthorizeDelete(&ride.Pool, ownerUID)
			if joined == 0 {
				return err == nil
			}
			r, ok := AsRejection(err)
			return ok && r.Reason == ReasonHasParticipants
		},
		gen.IntRange(0, 9),
	))

	properties.TestingRun(t)
}
