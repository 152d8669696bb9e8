package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/haierkeys/campus-share-service/internal/domain"
	"github.com/haierkeys/campus-share-service/internal/model"
	"github.com/haierkeys/campus-share-service/pkg/timex"
	"github.com/haierkeys/campus-share-service/pkg/writequeue"

	"gorm.io/gorm"
)

// poolSchema 描述一种可分摊资源的表结构
type poolSchema struct {
	kind        domain.PoolKind
	migrateKey  string
	table       string
	memberTable string
	memberFK    string
	countColumn string
	// joinCapacity 追加参与者时的容量条件
	joinCapacity string
	// leaveFloor 退出时计数器必须大于该值
	leaveFloor int64
	newMember  func(poolID, uid int64, joinedAt time.Time) interface{}
}

var rideSchema = poolSchema{
	kind:         domain.PoolKindRide,
	migrateKey:   "Ride",
	table:        model.TableNameRide,
	memberTable:  model.TableNameRideParticipant,
	memberFK:     "ride_id",
	countColumn:  "current_seats",
	joinCapacity: "current_seats + 1 < max_seats",
	leaveFloor:   domain.RidePolicy.Baseline,
	newMember: func(poolID, uid int64, joinedAt time.Time) interface{} {
		return &model.RideParticipant{RideID: poolID, UID: uid, JoinedAt: timex.Time(joinedAt)}
	},
}

var foodOrderSchema = poolSchema{
	kind:         domain.PoolKindFood,
	migrateKey:   "FoodOrder",
	table:        model.TableNameFoodOrder,
	memberTable:  model.TableNameFoodOrderParticipant,
	memberFK:     "food_order_id",
	countColumn:  "current_participants",
	joinCapacity: "(max_participants = 0 OR current_participants < max_participants)",
	leaveFloor:   domain.FoodPolicy.Baseline,
	newMember: func(poolID, uid int64, joinedAt time.Time) interface{} {
		return &model.FoodOrderParticipant{FoodOrderID: poolID, UID: uid, JoinedAt: timex.Time(joinedAt)}
	},
}

// participantRow 参与者表的通用投影
type participantRow struct {
	PoolID   int64      `gorm:"column:pool_id"`
	UID      int64      `gorm:"column:uid"`
	JoinedAt timex.Time `gorm:"column:joined_at"`
}

// poolStore 两种资源共用的条件更新与参与者读写
type poolStore struct {
	dao    *Dao
	schema poolSchema
}

func newPoolStore(dao *Dao, schema poolSchema) *poolStore {
	return &poolStore{dao: dao, schema: schema}
}

func (s *poolStore) db(ctx context.Context) *gorm.DB {
	return s.dao.UseWithOnceFunc(func(g *gorm.DB) error {
		return model.AutoMigrate(g, s.schema.migrateKey)
	}, "pool#"+s.schema.table).WithContext(ctx)
}

func (s *poolStore) writeKey(id int64) string {
	return writequeue.Key(s.schema.kind.String(), id)
}

// addParticipant 条件更新计数器并写入参与者，二者在同一事务内
func (s *poolStore) addParticipant(ctx context.Context, id, uid int64, now time.Time) error {
	now = now.UTC()
	return s.dao.ExecuteWrite(ctx, s.writeKey(id), func() error {
		ctx, cancel := s.dao.WithTimeout(ctx)
		defer cancel()

		err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Table(s.schema.table).
				Where("id = ? AND expired = 0 AND expiry_time > ? AND created_by <> ?", id, now, uid).
				Where(s.schema.joinCapacity).
				Updates(map[string]interface{}{
					s.schema.countColumn: gorm.Expr(s.schema.countColumn + " + 1"),
					"updated_at":         now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return domain.ErrPoolConflict
			}

			var exists int64
			if err := tx.Table(s.schema.memberTable).
				Where(s.schema.memberFK+" = ? AND uid = ?", id, uid).
				Count(&exists).Error; err != nil {
				return err
			}
			if exists > 0 {
				return domain.ErrPoolConflict
			}
			return tx.Create(s.schema.newMember(id, uid, now)).Error
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrPoolConflict
		}
		return err
	})
}

// removeParticipant 删除参与者并条件递减计数器
func (s *poolStore) removeParticipant(ctx context.Context, id, uid int64, now time.Time) error {
	now = now.UTC()
	return s.dao.ExecuteWrite(ctx, s.writeKey(id), func() error {
		ctx, cancel := s.dao.WithTimeout(ctx)
		defer cancel()

		return s.db(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Table(s.schema.table).
				Where("id = ? AND expired = 0 AND expiry_time > ? AND "+s.schema.countColumn+" > ?", id, now, s.schema.leaveFloor).
				Updates(map[string]interface{}{
					s.schema.countColumn: gorm.Expr(s.schema.countColumn + " - 1"),
					"updated_at":         now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return domain.ErrPoolConflict
			}

			del := tx.Exec("DELETE FROM "+s.schema.memberTable+" WHERE "+s.schema.memberFK+" = ? AND uid = ?", id, uid)
			if del.Error != nil {
				return del.Error
			}
			if del.RowsAffected == 0 {
				return domain.ErrPoolConflict
			}
			return nil
		})
	})
}

// delete 仅当发起人匹配且没有参与者时删除
func (s *poolStore) delete(ctx context.Context, id, ownerUID int64) error {
	return s.dao.ExecuteWrite(ctx, s.writeKey(id), func() error {
		ctx, cancel := s.dao.WithTimeout(ctx)
		defer cancel()

		res := s.db(ctx).Exec(
			"DELETE FROM "+s.schema.table+" WHERE id = ? AND created_by = ? AND NOT EXISTS "+
				"(SELECT 1 FROM "+s.schema.memberTable+" WHERE "+s.schema.memberFK+" = ?)",
			id, ownerUID, id,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrPoolConflict
		}
		return nil
	})
}

// markExpired 单个资源置为过期
func (s *poolStore) markExpired(ctx context.Context, id int64) (bool, error) {
	var changed bool
	err := s.dao.ExecuteWrite(ctx, s.writeKey(id), func() error {
		ctx, cancel := s.dao.WithTimeout(ctx)
		defer cancel()

		res := s.db(ctx).Table(s.schema.table).
			Where("id = ? AND expired = 0", id).
			Updates(map[string]interface{}{"expired": 1, "updated_at": time.Now().UTC()})
		if res.Error != nil {
			return res.Error
		}
		changed = res.RowsAffected > 0
		return nil
	})
	return changed, err
}

// expireDue 批量置过期，只会把 expired 从 0 改为 1
func (s *poolStore) expireDue(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := s.dao.WithTimeout(ctx)
	defer cancel()

	now = now.UTC()
	res := s.db(ctx).Table(s.schema.table).
		Where("expired = 0 AND expiry_time <= ?", now).
		Updates(map[string]interface{}{"expired": 1, "updated_at": now})
	return res.RowsAffected, res.Error
}

// participants 按资源 ID 批量读取参与者，按加入顺序排列
func (s *poolStore) participants(ctx context.Context, ids []int64) (map[int64][]domain.Participant, error) {
	out := make(map[int64][]domain.Participant, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []participantRow
	err := s.db(ctx).Table(s.schema.memberTable).
		Select(s.schema.memberFK+" AS pool_id, uid, joined_at").
		Where(s.schema.memberFK+" IN ?", ids).
		Order("joined_at ASC, id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.PoolID] = append(out[row.PoolID], domain.Participant{UID: row.UID, JoinedAt: time.Time(row.JoinedAt)})
	}
	return out, nil
}

// participantPoolIDs 用户加入的资源 ID
func (s *poolStore) participantPoolIDs(ctx context.Context, uid int64) ([]int64, error) {
	var ids []int64
	err := s.db(ctx).Table(s.schema.memberTable).
		Where("uid = ?", uid).
		Pluck(s.schema.memberFK, &ids).Error
	return ids, err
}

// visible 默认排除已过期及截止时间已到的资源
func visible(db *gorm.DB, filter *domain.PoolFilter) *gorm.DB {
	if filter.IncludeExpired {
		return db
	}
	now := filter.Now
	if now.IsZero() {
		now = time.Now()
	}
	return db.Where("expired = 0 AND expiry_time > ?", now.UTC())
}

// containsFold 不区分大小写的子串匹配，通配符按字面量处理
func containsFold(db *gorm.DB, column, value string) *gorm.DB {
	value = strings.TrimSpace(value)
	if value == "" {
		return db
	}
	return db.Where("LOWER("+column+") LIKE ? ESCAPE '!'", "%"+escapeLike(strings.ToLower(value))+"%")
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// page 按截止时间升序并分页
func page(db *gorm.DB, filter *domain.PoolFilter) *gorm.DB {
	db = db.Order("expiry_time ASC, id ASC")
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		db = db.Offset(filter.Offset)
	}
	return db
}

// loadPools 查询资源并附加参与者
func loadPools[M any, T domain.Shareable](ctx context.Context, s *poolStore, query *gorm.DB, toDomain func(*M) T) ([]T, error) {
	var ms []*M
	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]T, 0, len(ms))
	ids := make([]int64, 0, len(ms))
	for _, m := range ms {
		t := toDomain(m)
		out = append(out, t)
		ids = append(ids, t.Base().ID)
	}
	parts, err := s.participants(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, t := range out {
		base := t.Base()
		base.Participants = parts[base.ID]
		if base.Participants == nil {
			base.Participants = []domain.Participant{}
		}
	}
	return out, nil
}

// getPool 按 ID 查询单个资源，不存在时返回 gorm.ErrRecordNotFound
func getPool[M any, T domain.Shareable](ctx context.Context, s *poolStore, id int64, toDomain func(*M) T) (T, error) {
	var zero T
	ctx, cancel := s.dao.WithTimeout(ctx)
	defer cancel()

	pools, err := loadPools(ctx, s, s.db(ctx).Where("id = ?", id).Limit(1), toDomain)
	if err != nil {
		return zero, err
	}
	if len(pools) == 0 {
		return zero, gorm.ErrRecordNotFound
	}
	return pools[0], nil
}

// searchPools 统计总数后分页查询
func searchPools[M any, T domain.Shareable](ctx context.Context, s *poolStore, filter *domain.PoolFilter, scope func(*gorm.DB) *gorm.DB, toDomain func(*M) T) ([]T, int64, error) {
	ctx, cancel := s.dao.WithTimeout(ctx)
	defer cancel()

	query := scope(visible(s.db(ctx).Model(new(M)), filter)).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []T{}, 0, nil
	}
	pools, err := loadPools(ctx, s, page(query, filter), toDomain)
	if err != nil {
		return nil, 0, err
	}
	return pools, total, nil
}

// listByOwner 用户创建的资源，新建的在前
func listByOwner[M any, T domain.Shareable](ctx context.Context, s *poolStore, uid int64, toDomain func(*M) T) ([]T, error) {
	ctx, cancel := s.dao.WithTimeout(ctx)
	defer cancel()

	return loadPools(ctx, s, s.db(ctx).Where("created_by = ?", uid).Order("created_at DESC, id DESC"), toDomain)
}

// listByParticipant 用户加入的资源，新建的在前
func listByParticipant[M any, T domain.Shareable](ctx context.Context, s *poolStore, uid int64, toDomain func(*M) T) ([]T, error) {
	ctx, cancel := s.dao.WithTimeout(ctx)
	defer cancel()

	ids, err := s.participantPoolIDs(ctx, uid)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []T{}, nil
	}
	return loadPools(ctx, s, s.db(ctx).Where("id IN ?", ids).Order("created_at DESC, id DESC"), toDomain)
}

// createPool 写入新资源
func createPool[M any, T domain.Shareable](ctx context.Context, s *poolStore, m *M, toDomain func(*M) T) (T, error) {
	ctx, cancel := s.dao.WithTimeout(ctx)
	defer cancel()

	var zero T
	if err := s.db(ctx).Create(m).Error; err != nil {
		return zero, err
	}
	t := toDomain(m)
	t.Base().Participants = []domain.Participant{}
	return t, nil
}
