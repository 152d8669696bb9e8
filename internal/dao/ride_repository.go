package dao

import (
	"context"
	"time"

	"github.com/haierkeys/campus-share-service/internal/domain"
	"github.com/haierkeys/campus-share-service/internal/model"
	"github.com/haierkeys/campus-share-service/pkg/convert"
	"github.com/haierkeys/campus-share-service/pkg/timex"

	"gorm.io/gorm"
)

// rideRepository 实现 domain.RideRepository 接口
type rideRepository struct {
	store *poolStore
}

// NewRideRepository 创建 RideRepository 实例
func NewRideRepository(dao *Dao) domain.RideRepository {
	return &rideRepository{store: newPoolStore(dao, rideSchema)}
}

// toDomain 将数据库模型转换为领域模型，参与者由调用方填充
func (r *rideRepository) toDomain(m *model.Ride) *domain.Ride {
	ride := &domain.Ride{
		From:           m.FromLocation,
		To:             m.ToLocation,
		VehicleDetails: m.VehicleDetails,
	}
	ride.ID = m.ID
	ride.OwnerUID = m.CreatedBy
	ride.CapacityLimit = m.MaxSeats
	ride.HeadCount = m.CurrentSeats
	ride.TotalPrice = m.TotalPrice
	ride.ExpiryTime = time.Time(m.ExpiryTime)
	ride.Expired = m.Expired == 1
	ride.Notes = m.Notes
	ride.CreatedAt = time.Time(m.CreatedAt)
	ride.UpdatedAt = time.Time(m.UpdatedAt)
	return ride
}

// toModel 将领域模型转换为数据库模型
func (r *rideRepository) toModel(ride *domain.Ride) *model.Ride {
	return &model.Ride{
		ID:             ride.ID,
		CreatedBy:      ride.OwnerUID,
		FromLocation:   ride.From,
		ToLocation:     ride.To,
		VehicleDetails: ride.VehicleDetails,
		MaxSeats:       ride.CapacityLimit,
		CurrentSeats:   ride.HeadCount,
		TotalPrice:     ride.TotalPrice,
		ExpiryTime:     timex.Time(ride.ExpiryTime.UTC()),
		Expired:        convert.Bool2Int(ride.Expired),
		Notes:          ride.Notes,
		CreatedAt:      timex.Time(ride.CreatedAt.UTC()),
		UpdatedAt:      timex.Time(ride.UpdatedAt.UTC()),
	}
}

// GetByID 根据ID获取拼车
func (r *rideRepository) GetByID(ctx context.Context, id int64) (*domain.Ride, error) {
	return getPool(ctx, r.store, id, r.toDomain)
}

// Search 按目的地与创建日期搜索
func (r *rideRepository) Search(ctx context.Context, filter *domain.PoolFilter) ([]*domain.Ride, int64, error) {
	return searchPools(ctx, r.store, filter, func(db *gorm.DB) *gorm.DB {
		db = containsFold(db, "to_location", filter.Destination)
		if filter.Date != nil {
			day := filter.Date.UTC()
			db = db.Where("created_at >= ? AND created_at < ?", day, day.Add(24*time.Hour))
		}
		return db
	}, r.toDomain)
}

// ListByOwner 用户发起的拼车
func (r *rideRepository) ListByOwner(ctx context.Context, uid int64) ([]*domain.Ride, error) {
	return listByOwner(ctx, r.store, uid, r.toDomain)
}

// ListByParticipant 用户加入的拼车
func (r *rideRepository) ListByParticipant(ctx context.Context, uid int64) ([]*domain.Ride, error) {
	return listByParticipant(ctx, r.store, uid, r.toDomain)
}

// Create 创建拼车
func (r *rideRepository) Create(ctx context.Context, ride *domain.Ride) (*domain.Ride, error) {
	now := time.Now().UTC()
	ride.CreatedAt, ride.UpdatedAt = now, now
	return createPool(ctx, r.store, r.toModel(ride), r.toDomain)
}

// MarkExpired 将拼车置为过期
func (r *rideRepository) MarkExpired(ctx context.Context, id int64) (bool, error) {
	return r.store.markExpired(ctx, id)
}

// AddParticipant 原子地加入拼车
func (r *rideRepository) AddParticipant(ctx context.Context, id, uid int64, now time.Time) error {
	return r.store.addParticipant(ctx, id, uid, now)
}

// RemoveParticipant 原子地退出拼车
func (r *rideRepository) RemoveParticipant(ctx context.Context, id, uid int64, now time.Time) error {
	return r.store.removeParticipant(ctx, id, uid, now)
}

// Delete 删除无人加入的拼车
func (r *rideRepository) Delete(ctx context.Context, id, ownerUID int64) error {
	return r.store.delete(ctx, id, ownerUID)
}

// ExpireDue 批量置过期
func (r *rideRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	return r.store.expireDue(ctx, now)
}

// 确保 rideRepository 实现了 domain.RideRepository 接口
var _ domain.RideRepository = (*rideRepository)(nil)
