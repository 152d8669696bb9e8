package service

import (
	"context"

	"github.com/haierkeys/campus-share-service/internal/domain"
	"github.com/haierkeys/campus-share-service/internal/dto"
	"github.com/haierkeys/campus-share-service/pkg/timex"

	"go.uber.org/zap"
)

// lookupUsers 展示字段加载失败时降级为仅 UID
func lookupUsers(ctx context.Context, dir *UserDirectory, lg *zap.Logger, pools ...*domain.Pool) map[int64]*domain.User {
	var uids []int64
	for _, p := range pools {
		uids = append(uids, p.OwnerUID)
		uids = append(uids, p.ParticipantUIDs()...)
	}
	if len(uids) == 0 {
		return map[int64]*domain.User{}
	}
	users, err := dir.Lookup(ctx, uids)
	if err != nil {
		lg.Warn("load display fields failed", zap.Error(err))
		return map[int64]*domain.User{}
	}
	return users
}

func userBrief(uid int64, users map[int64]*domain.User) *dto.UserBriefDTO {
	u, ok := users[uid]
	if !ok {
		return &dto.UserBriefDTO{UID: uid}
	}
	return &dto.UserBriefDTO{
		UID:    u.UID,
		Name:   u.Name,
		Email:  u.Email,
		Phone:  u.Phone,
		Avatar: u.Avatar,
	}
}

func participantsDTO(pool *domain.Pool, users map[int64]*domain.User) []*dto.ParticipantDTO {
	out := make([]*dto.ParticipantDTO, 0, len(pool.Participants))
	for _, p := range pool.Participants {
		out = append(out, &dto.ParticipantDTO{
			UserBriefDTO: *userBrief(p.UID, users),
			JoinedAt:     timex.Time(p.JoinedAt),
		})
	}
	return out
}

func paymentSummaryDTO(s domain.PaymentSummary) *dto.PaymentSummaryDTO {
	return &dto.PaymentSummaryDTO{
		SplitAmount:       s.SplitAmount,
		TotalParticipants: s.TotalParticipants,
		IsExpired:         s.IsExpired,
		YourAmount:        s.ViewerAmount,
	}
}

func basePools[T domain.Shareable](items ...[]T) []*domain.Pool {
	var out []*domain.Pool
	for _, list := range items {
		for _, item := range list {
			out = append(out, item.Base())
		}
	}
	return out
}
