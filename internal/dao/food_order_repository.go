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

// foodOrderRepository 实现 domain.FoodOrderRepository 接口
type foodOrderRepository struct {
	store *poolStore
}

// NewFoodOrderRepository 创建 FoodOrderRepository 实例
func NewFoodOrderRepository(dao *Dao) domain.FoodOrderRepository {
	return &foodOrderRepository{store: newPoolStore(dao, foodOrderSchema)}
}

func (r *foodOrderRepository) toDomain(m *model.FoodOrder) *domain.FoodOrder {
	order := &domain.FoodOrder{
		Restaurant:       m.Restaurant,
		MinSpent:         m.MinSpent,
		DeliveryLocation: m.DeliveryLocation,
		Cuisine:          m.Cuisine,
		Offers:           make([]domain.FoodOffer, 0, len(m.Offers)),
		Items:            make([]domain.FoodItem, 0, len(m.Items)),
	}
	for _, o := range m.Offers {
		order.Offers = append(order.Offers, domain.FoodOffer{IsPercentage: o.IsPercentage, Amount: o.Amount})
	}
	for _, it := range m.Items {
		order.Items = append(order.Items, domain.FoodItem{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	order.ID = m.ID
	order.OwnerUID = m.CreatedBy
	order.CapacityLimit = m.MaxParticipants
	order.HeadCount = m.CurrentParticipants
	order.TotalPrice = m.TotalPrice
	order.ExpiryTime = time.Time(m.ExpiryTime)
	order.Expired = m.Expired == 1
	order.Notes = m.Notes
	order.CreatedAt = time.Time(m.CreatedAt)
	order.UpdatedAt = time.Time(m.UpdatedAt)
	return order
}

func (r *foodOrderRepository) toModel(order *domain.FoodOrder) *model.FoodOrder {
	m := &model.FoodOrder{
		ID:                  order.ID,
		CreatedBy:           order.OwnerUID,
		Restaurant:          order.Restaurant,
		MinSpent:            order.MinSpent,
		CurrentParticipants: order.HeadCount,
		MaxParticipants:     order.CapacityLimit,
		TotalPrice:          order.TotalPrice,
		DeliveryLocation:    order.DeliveryLocation,
		Cuisine:             order.Cuisine,
		ExpiryTime:          timex.Time(order.ExpiryTime.UTC()),
		Expired:             convert.Bool2Int(order.Expired),
		Notes:               order.Notes,
		CreatedAt:           timex.Time(order.CreatedAt.UTC()),
		UpdatedAt:           timex.Time(order.UpdatedAt.UTC()),
		Offers:              make([]model.FoodOffer, 0, len(order.Offers)),
		Items:               make([]model.FoodItem, 0, len(order.Items)),
	}
	for _, o := range order.Offers {
		m.Offers = append(m.Offers, model.FoodOffer{IsPercentage: o.IsPercentage, Amount: o.Amount})
	}
	for _, it := range order.Items {
		m.Items = append(m.Items, model.FoodItem{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	return m
}

// GetByID 根据ID获取拼单
func (r *foodOrderRepository) GetByID(ctx context.Context, id int64) (*domain.FoodOrder, error) {
	return getPool(ctx, r.store, id, r.toDomain)
}

// Search 按餐厅、菜系与配送地点搜索
func (r *foodOrderRepository) Search(ctx context.Context, filter *domain.PoolFilter) ([]*domain.FoodOrder, int64, error) {
	return searchPools(ctx, r.store, filter, func(db *gorm.DB) *gorm.DB {
		db = containsFold(db, "restaurant", filter.Restaurant)
		db = containsFold(db, "cuisine", filter.Cuisine)
		return containsFold(db, "delivery_location", filter.Location)
	}, r.toDomain)
}

// ListByOwner 用户发起的拼单
func (r *foodOrderRepository) ListByOwner(ctx context.Context, uid int64) ([]*domain.FoodOrder, error) {
	return listByOwner(ctx, r.store, uid, r.toDomain)
}

// ListByParticipant 用户加入的拼单
func (r *foodOrderRepository) ListByParticipant(ctx context.Context, uid int64) ([]*domain.FoodOrder, error) {
	return listByParticipant(ctx, r.store, uid, r.toDomain)
}

// Create 创建拼单
func (r *foodOrderRepository) Create(ctx context.Context, order *domain.FoodOrder) (*domain.FoodOrder, error) {
	now := time.Now().UTC()
	order.CreatedAt, order.UpdatedAt = now, now
	return createPool(ctx, r.store, r.toModel(order), r.toDomain)
}

// MarkExpired 将拼单置为过期
func (r *foodOrderRepository) MarkExpired(ctx context.Context, id int64) (bool, error) {
	return r.store.markExpired(ctx, id)
}

// AddParticipant 原子地加入拼单
func (r *foodOrderRepository) AddParticipant(ctx context.Context, id, uid int64, now time.Time) error {
	return r.store.addParticipant(ctx, id, uid, now)
}

// RemoveParticipant 原子地退出拼单
func (r *foodOrderRepository) RemoveParticipant(ctx context.Context, id, uid int64, now time.Time) error {
	return r.store.removeParticipant(ctx, id, uid, now)
}

// Delete 删除无人加入的拼单
func (r *foodOrderRepository) Delete(ctx context.Context, id, ownerUID int64) error {
	return r.store.delete(ctx, id, ownerUID)
}

// ExpireDue 批量置过期
func (r *foodOrderRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	return r.store.expireDue(ctx, now)
}

var _ domain.FoodOrderRepository = (*foodOrderRepository)(nil)
