package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolConflict 条件更新未命中，资源已被并发修改
	ErrPoolConflict = errors.New("pool changed concurrently")
	// ErrNoParticipants 有效人数小于 1，无法分摊
	ErrNoParticipants = errors.New("effective participant count is below one")
	// ErrInvalidCapacity 人数上限不合法
	ErrInvalidCapacity = errors.New("invalid capacity limit")
)

// RejectReason 守卫拒绝原因
type RejectReason string

const (
	ReasonExpired          RejectReason = "EXPIRED"
	ReasonSelfJoin         RejectReason = "SELF_JOIN"
	ReasonAlreadyJoined    RejectReason = "ALREADY_JOINED"
	ReasonFull             RejectReason = "FULL"
	ReasonOwnerCannotLeave RejectReason = "OWNER_CANNOT_LEAVE"
	ReasonNotParticipant   RejectReason = "NOT_A_PARTICIPANT"
	ReasonNotOwner         RejectReason = "NOT_OWNER"
	ReasonHasParticipants  RejectReason = "HAS_PARTICIPANTS"
)

// Rejection 守卫拒绝，属于预期结果而非故障
type Rejection struct {
	Reason RejectReason
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("rejected: %s", r.Reason)
}

func reject(reason RejectReason) error {
	return &Rejection{Reason: reason}
}

// AsRejection 从错误链中取出 Rejection
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
