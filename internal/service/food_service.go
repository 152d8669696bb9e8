package service

import (
	"context"
	"strings"

	"github.com/haierkeys/campus-share-service/internal/domain"
	"github.com/haierkeys/campus-share-service/internal/dto"
	"github.com/haierkeys/campus-share-service/pkg/app"
	"github.com/haierkeys/campus-share-service/pkg/code"
	"github.com/haierkeys/campus-share-service/pkg/timex"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var percentCap = decimal.NewFromInt(100)

// FoodOrderService 拼单业务服务接口
type FoodOrderService interface {
	// Create 发布拼单
	Create(ctx context.Context, uid int64, params *dto.FoodOrderCreateRequest) (*dto.FoodOrderDetailDTO, error)

	// Search 按餐厅、菜系、送达地点搜索
	Search(ctx context.Context, uid int64, params *dto.FoodOrderSearchRequest, pager *app.Pager) ([]*dto.FoodOrderDTO, int, error)

	// Mine 我发起的与我加入的拼单
	Mine(ctx context.Context, uid int64) (*dto.MyFoodOrdersDTO, error)

	// Get 拼单详情
	Get(ctx context.Context, uid, id int64) (*dto.FoodOrderDetailDTO, error)

	// Join 加入拼单
	Join(ctx context.Context, uid, id int64) (*dto.FoodOrderDetailDTO, error)

	// Leave 退出拼单
	Leave(ctx context.Context, uid, id int64) (*dto.FoodOrderDetailDTO, error)

	// Delete 删除拼单
	Delete(ctx context.Context, uid, id int64) error

	// Sweep 批量标记到期拼单
	Sweep(ctx context.Context) (int64, error)

	// Kind 资源类型
	Kind() domain.PoolKind
}

type foodOrderService struct {
	engine    *poolEngine[*domain.FoodOrder]
	directory *UserDirectory
	logger    *zap.Logger
}

// NewFoodOrderService 创建 FoodOrderService 实例
func NewFoodOrderService(repo domain.FoodOrderRepository, directory *UserDirectory, clock domain.Clock, logger *zap.Logger, config *ServiceConfig) FoodOrderService {
	cfg := config.normalize()
	return &foodOrderService{
		engine:    newPoolEngine[*domain.FoodOrder](domain.FoodPolicy, repo, clock, code.ErrorFoodOrderNotFound, cfg.Pool, logger),
		directory: directory,
		logger:    logger,
	}
}

func (s *foodOrderService) Kind() domain.PoolKind {
	return domain.PoolKindFood
}

func offerDTO(o domain.FoodOffer) *dto.FoodOfferDTO {
	return &dto.FoodOfferDTO{IsPercentage: o.IsPercentage, Amount: o.Amount}
}

func (s *foodOrderService) toDTO(f *domain.FoodOrder, users map[int64]*domain.User) *dto.FoodOrderDTO {
	split, state := s.engine.Listing(f)

	offers := make([]*dto.FoodOfferDTO, 0, len(f.Offers))
	for _, o := range f.Offers {
		offers = append(offers, offerDTO(o))
	}
	items := make([]*dto.FoodItemDTO, 0, len(f.Items))
	for _, it := range f.Items {
		items = append(items, &dto.FoodItemDTO{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}

	return &dto.FoodOrderDTO{
		ID:                  f.ID,
		Restaurant:          f.Restaurant,
		MinSpent:            f.MinSpent,
		Offers:              offers,
		CurrentParticipants: f.CurrentParticipants(),
		MaxParticipants:     f.MaxParticipants(),
		TotalPrice:          f.TotalPrice,
		SplitAmount:         split,
		DeliveryLocation:    f.DeliveryLocation,
		Cuisine:             f.Cuisine,
		Items:               items,
		State:               string(state),
		Expired:             f.Expired,
		ExpiryTime:          timex.Time(f.ExpiryTime),
		Notes:               f.Notes,
		Owner:               userBrief(f.OwnerUID, users),
		CreatedAt:           timex.Time(f.CreatedAt),
		UpdatedAt:           timex.Time(f.UpdatedAt),
	}
}

func (s *foodOrderService) toDetailDTO(ctx context.Context, f *domain.FoodOrder, summary domain.PaymentSummary) *dto.FoodOrderDetailDTO {
	users := lookupUsers(ctx, s.directory, s.logger, &f.Pool)
	ps := &dto.FoodPaymentSummaryDTO{
		PaymentSummaryDTO: *paymentSummaryDTO(summary),
		MinSpent:          f.MinSpent,
	}
	if len(f.Offers) > 0 {
		ps.Offer = offerDTO(f.Offers[0])
	}
	return &dto.FoodOrderDetailDTO{
		FoodOrderDTO:   *s.toDTO(f, users),
		Participants:   participantsDTO(&f.Pool, users),
		PaymentSummary: ps,
	}
}

func (s *foodOrderService) toListDTO(orders []*domain.FoodOrder, users map[int64]*domain.User) []*dto.FoodOrderDTO {
	out := make([]*dto.FoodOrderDTO, 0, len(orders))
	for _, f := range orders {
		out = append(out, s.toDTO(f, users))
	}
	return out
}

// Create 发布拼单
func (s *foodOrderService) Create(ctx context.Context, uid int64, params *dto.FoodOrderCreateRequest) (*dto.FoodOrderDetailDTO, error) {
	if params.TotalPrice == nil {
		return nil, code.ErrorInvalidParams.WithDetails("totalPrice is required")
	}

	offers := make([]domain.FoodOffer, 0, len(params.Offers))
	for _, o := range params.Offers {
		if o == nil {
			continue
		}
		if o.Amount.IsNegative() || (o.IsPercentage && o.Amount.GreaterThan(percentCap)) {
			return nil, code.ErrorInvalidParams.WithDetails("offer amount is out of range")
		}
		offers = append(offers, domain.FoodOffer{IsPercentage: o.IsPercentage, Amount: o.Amount})
	}

	items := make([]domain.FoodItem, 0, len(params.Items))
	for _, it := range params.Items {
		if it == nil {
			continue
		}
		if it.Quantity < 1 || it.Price.IsNegative() {
			return nil, code.ErrorInvalidParams.WithDetails("item quantity or price is out of range")
		}
		items = append(items, domain.FoodItem{Name: strings.TrimSpace(it.Name), Quantity: it.Quantity, Price: it.Price})
	}

	order := &domain.FoodOrder{
		Pool: domain.Pool{
			OwnerUID:      uid,
			CapacityLimit: params.MaxParticipants,
			TotalPrice:    *params.TotalPrice,
			ExpiryTime:    params.ExpiryTime.Std(),
			Notes:         strings.TrimSpace(params.Notes),
		},
		Restaurant:       strings.TrimSpace(params.Restaurant),
		MinSpent:         params.MinSpent,
		Offers:           offers,
		DeliveryLocation: strings.TrimSpace(params.DeliveryLocation),
		Cuisine:          strings.TrimSpace(params.Cuisine),
		Items:            items,
	}

	created, err := s.engine.Create(ctx, order)
	if err != nil {
		return nil, err
	}
	return s.result(ctx, created, uid)
}

// Search 按餐厅、菜系、送达地点搜索
func (s *foodOrderService) Search(ctx context.Context, uid int64, params *dto.FoodOrderSearchRequest, pager *app.Pager) ([]*dto.FoodOrderDTO, int, error) {
	filter := &domain.PoolFilter{
		Restaurant:     strings.TrimSpace(params.Restaurant),
		Cuisine:        strings.TrimSpace(params.Cuisine),
		Location:       strings.TrimSpace(params.Location),
		IncludeExpired: params.IncludeExpired,
	}
	if pager != nil {
		filter.Limit = pager.PageSize
		filter.Offset = app.GetPageOffset(pager.Page, pager.PageSize)
	}

	orders, total, err := s.engine.Search(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	users := lookupUsers(ctx, s.directory, s.logger, basePools(orders)...)
	return s.toListDTO(orders, users), int(total), nil
}

// Mine 我发起的与我加入的拼单
func (s *foodOrderService) Mine(ctx context.Context, uid int64) (*dto.MyFoodOrdersDTO, error) {
	created, joined, err := s.engine.Mine(ctx, uid)
	if err != nil {
		return nil, err
	}
	users := lookupUsers(ctx, s.directory, s.logger, basePools(created, joined)...)
	return &dto.MyFoodOrdersDTO{
		CreatedOrders: s.toListDTO(created, users),
		JoinedOrders:  s.toListDTO(joined, users),
	}, nil
}

// Get 拼单详情
func (s *foodOrderService) Get(ctx context.Context, uid, id int64) (*dto.FoodOrderDetailDTO, error) {
	order, summary, err := s.engine.Details(ctx, id, uid)
	if err != nil {
		return nil, err
	}
	return s.toDetailDTO(ctx, order, summary), nil
}

// Join 加入拼单
func (s *foodOrderService) Join(ctx context.Context, uid, id int64) (*dto.FoodOrderDetailDTO, error) {
	order, err := s.engine.Join(ctx, id, uid)
	if err != nil {
		return nil, err
	}
	return s.result(ctx, order, uid)
}

// Leave 退出拼单
func (s *foodOrderService) Leave(ctx context.Context, uid, id int64) (*dto.FoodOrderDetailDTO, error) {
	order, err := s.engine.Leave(ctx, id, uid)
	if err != nil {
		return nil, err
	}
	return s.result(ctx, order, uid)
}

// Delete 删除拼单
func (s *foodOrderService) Delete(ctx context.Context, uid, id int64) error {
	return s.engine.Delete(ctx, id, uid)
}

// Sweep 批量标记到期拼单
func (s *foodOrderService) Sweep(ctx context.Context) (int64, error) {
	return s.engine.Sweep(ctx)
}

func (s *foodOrderService) result(ctx context.Context, order *domain.FoodOrder, viewerUID int64) (*dto.FoodOrderDetailDTO, error) {
	summary, err := s.engine.summarize(order, viewerUID)
	if err != nil {
		return nil, err
	}
	return s.toDetailDTO(ctx, order, summary), nil
}
