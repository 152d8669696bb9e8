package service

import (
	"context"
	"strings"
	"time"

	"github.com/haierkeys/campus-share-service/internal/domain"
	"github.com/haierkeys/campus-share-service/internal/dto"
	"github.com/haierkeys/campus-share-service/pkg/app"
	"github.com/haierkeys/campus-share-service/pkg/code"
	"github.com/haierkeys/campus-share-service/pkg/timex"

	"go.uber.org/zap"
)

// RideService 拼车业务服务接口
type RideService interface {
	// Create 发布拼车
	Create(ctx context.Context, uid int64, params *dto.RideCreateRequest) (*dto.RideDetailDTO, error)

	// Search 按目的地与日期搜索
	Search(ctx context.Context, uid int64, params *dto.RideSearchRequest, pager *app.Pager) ([]*dto.RideDTO, int, error)

	// Mine 我发起的与我加入的拼车
	Mine(ctx context.Context, uid int64) (*dto.MyRidesDTO, error)

	// Get 拼车详情
	Get(ctx context.Context, uid, id int64) (*dto.RideDetailDTO, error)

	// Join 加入拼车
	Join(ctx context.Context, uid, id int64) (*dto.RideDetailDTO, error)

	// Leave 退出拼车
	Leave(ctx context.Context, uid, id int64) (*dto.RideDetailDTO, error)

	// Delete 删除拼车
	Delete(ctx context.Context, uid, id int64) error

	// Sweep 批量标记到期拼车
	Sweep(ctx context.Context) (int64, error)

	// Kind 资源类型
	Kind() domain.PoolKind
}

type rideService struct {
	engine    *poolEngine[*domain.Ride]
	directory *UserDirectory
	logger    *zap.Logger
}

// NewRideService 创建 RideService 实例
func NewRideService(repo domain.RideRepository, directory *UserDirectory, clock domain.Clock, logger *zap.Logger, config *ServiceConfig) RideService {
	cfg := config.normalize()
	return &rideService{
		engine:    newPoolEngine[*domain.Ride](domain.RidePolicy, repo, clock, code.ErrorRideNotFound, cfg.Pool, logger),
		directory: directory,
		logger:    logger,
	}
}

func (s *rideService) Kind() domain.PoolKind {
	return domain.PoolKindRide
}

func (s *rideService) toDTO(r *domain.Ride, users map[int64]*domain.User) *dto.RideDTO {
	split, state := s.engine.Listing(r)
	return &dto.RideDTO{
		ID:             r.ID,
		From:           r.From,
		To:             r.To,
		VehicleDetails: r.VehicleDetails,
		MaxSeats:       r.MaxSeats(),
		CurrentSeats:   r.CurrentSeats(),
		TotalPrice:     r.TotalPrice,
		SplitAmount:    split,
		State:          string(state),
		Expired:        r.Expired,
		ExpiryTime:     timex.Time(r.ExpiryTime),
		Notes:          r.Notes,
		Owner:          userBrief(r.OwnerUID, users),
		CreatedAt:      timex.Time(r.CreatedAt),
		UpdatedAt:      timex.Time(r.UpdatedAt),
	}
}

func (s *rideService) toDetailDTO(ctx context.Context, r *domain.Ride, summary domain.PaymentSummary) *dto.RideDetailDTO {
	users := lookupUsers(ctx, s.directory, s.logger, &r.Pool)
	return &dto.RideDetailDTO{
		RideDTO:        *s.toDTO(r, users),
		Participants:   participantsDTO(&r.Pool, users),
		PaymentSummary: paymentSummaryDTO(summary),
	}
}

func (s *rideService) toListDTO(rides []*domain.Ride, users map[int64]*domain.User) []*dto.RideDTO {
	out := make([]*dto.RideDTO, 0, len(rides))
	for _, r := range rides {
		out = append(out, s.toDTO(r, users))
	}
	return out
}

// Create 发布拼车
func (s *rideService) Create(ctx context.Context, uid int64, params *dto.RideCreateRequest) (*dto.RideDetailDTO, error) {
	if params.TotalPrice == nil {
		return nil, code.ErrorInvalidParams.WithDetails("totalPrice is required")
	}

	ride := &domain.Ride{
		Pool: domain.Pool{
			OwnerUID:      uid,
			CapacityLimit: params.MaxSeats,
			TotalPrice:    *params.TotalPrice,
			ExpiryTime:    params.ExpiryTime.Std(),
			Notes:         strings.TrimSpace(params.Notes),
		},
		From:           strings.TrimSpace(params.From),
		To:             strings.TrimSpace(params.To),
		VehicleDetails: strings.TrimSpace(params.VehicleDetails),
	}

	created, err := s.engine.Create(ctx, ride)
	if err != nil {
		return nil, err
	}
	return s.result(ctx, created, uid)
}

// Search 按目的地与日期搜索
func (s *rideService) Search(ctx context.Context, uid int64, params *dto.RideSearchRequest, pager *app.Pager) ([]*dto.RideDTO, int, error) {
	filter := &domain.PoolFilter{
		Destination:    strings.TrimSpace(params.To),
		IncludeExpired: params.IncludeExpired,
	}
	if params.Date != "" {
		day, err := time.ParseInLocation(time.DateOnly, params.Date, time.UTC)
		if err != nil {
			return nil, 0, code.ErrorInvalidParams.WithDetails("date must be YYYY-MM-DD")
		}
		filter.Date = &day
	}
	if pager != nil {
		filter.Limit = pager.PageSize
		filter.Offset = app.GetPageOffset(pager.Page, pager.PageSize)
	}

	rides, total, err := s.engine.Search(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	users := lookupUsers(ctx, s.directory, s.logger, basePools(rides)...)
	return s.toListDTO(rides, users), int(total), nil
}

// Mine 我发起的与我加入的拼车
func (s *rideService) Mine(ctx context.Context, uid int64) (*dto.MyRidesDTO, error) {
	created, joined, err := s.engine.Mine(ctx, uid)
	if err != nil {
		return nil, err
	}
	users := lookupUsers(ctx, s.directory, s.logger, basePools(created, joined)...)
	return &dto.MyRidesDTO{
		CreatedRides: s.toListDTO(created, users),
		JoinedRides:  s.toListDTO(joined, users),
	}, nil
}

// Get 拼车详情
func (s *rideService) Get(ctx context.Context, uid, id int64) (*dto.RideDetailDTO, error) {
	ride, summary, err := s.engine.Details(ctx, id, uid)
	if err != nil {
		return nil, err
	}
	return s.toDetailDTO(ctx, ride, summary), nil
}

// Join 加入拼车
func (s *rideService) Join(ctx context.Context, uid, id int64) (*dto.RideDetailDTO, error) {
	ride, err := s.engine.Join(ctx, id, uid)
	if err != nil {
		return nil, err
	}
	return s.result(ctx, ride, uid)
}

// Leave 退出拼车
func (s *rideService) Leave(ctx context.Context, uid, id int64) (*dto.RideDetailDTO, error) {
	ride, err := s.engine.Leave(ctx, id, uid)
	if err != nil {
		return nil, err
	}
	return s.result(ctx, ride, uid)
}

// Delete 删除拼车
func (s *rideService) Delete(ctx context.Context, uid, id int64) error {
	return s.engine.Delete(ctx, id, uid)
}

// Sweep 批量标记到期拼车
func (s *rideService) Sweep(ctx context.Context) (int64, error) {
	return s.engine.Sweep(ctx)
}

func (s *rideService) result(ctx context.Context, ride *domain.Ride, viewerUID int64) (*dto.RideDetailDTO, error) {
	summary, err := s.engine.summarize(ride, viewerUID)
	if err != nil {
		return nil, err
	}
	return s.toDetailDTO(ctx, ride, summary), nil
}
