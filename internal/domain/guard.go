package domain

// AuthorizeJoin 依次检查：已过期、加入自己的、已加入、已满
// pool 须已经过 EvaluateExpiry
func (p Policy) AuthorizeJoin(pool *Pool, uid int64) error {
	switch {
	case pool.Expired:
		return reject(ReasonExpired)
	case pool.IsOwner(uid):
		return reject(ReasonSelfJoin)
	case pool.HasParticipant(uid):
		return reject(ReasonAlreadyJoined)
	case p.IsFull(pool):
		return reject(ReasonFull)
	}
	return nil
}

// AuthorizeLeave 依次检查：发起人、已过期、非参与者
// 过期后成员关系冻结，参与者不能退出
func (p Policy) AuthorizeLeave(pool *Pool, uid int64) error {
	switch {
	case pool.IsOwner(uid):
		return reject(ReasonOwnerCannotLeave)
	case pool.Expired:
		return reject(ReasonExpired)
	case !pool.HasParticipant(uid):
		return reject(ReasonNotParticipant)
	}
	return nil
}

// AuthorizeDelete 只有发起人可以删除，且不能有参与者
func (p Policy) AuthorizeDelete(pool *Pool, uid int64) error {
	switch {
	case !pool.IsOwner(uid):
		return reject(ReasonNotOwner)
	case len(pool.Participants) > 0:
		return reject(ReasonHasParticipants)
	}
	return nil
}
