package domain

import "github.com/shopspring/decimal"

// SplitPlaces 分摊金额保留的小数位
const SplitPlaces = 2

// PaymentSummary 详情页的费用汇总
type PaymentSummary struct {
	SplitAmount       decimal.Decimal
	TotalParticipants int64
	IsExpired         bool
	// ViewerAmount 仅当查看者是发起人或参与者时非空
	ViewerAmount *decimal.Decimal
}

// ComputeSplit 总价 / 有效人数，按银行家舍入保留两位小数
func (p Policy) ComputeSplit(pool *Pool) (decimal.Decimal, error) {
	count := p.EffectiveCount(pool)
	if count < 1 {
		return decimal.Zero, ErrNoParticipants
	}
	return pool.TotalPrice.Div(decimal.NewFromInt(count)).RoundBank(SplitPlaces), nil
}

// Summarize 生成 viewer 视角的费用汇总
func (p Policy) Summarize(pool *Pool, viewerUID int64) (PaymentSummary, error) {
	split, err := p.ComputeSplit(pool)
	if err != nil {
		return PaymentSummary{}, err
	}
	summary := PaymentSummary{
		SplitAmount:       split,
		TotalParticipants: p.EffectiveCount(pool),
		IsExpired:         pool.Expired,
	}
	if pool.IsOwner(viewerUID) || pool.HasParticipant(viewerUID) {
		amount := split
		summary.ViewerAmount = &amount
	}
	return summary, nil
}
