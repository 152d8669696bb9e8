package domain

// Ride 拼车
type Ride struct {
	Pool
	From           string
	To             string
	VehicleDetails string
}

// MaxSeats 座位上限
func (r *Ride) MaxSeats() int64 {
	return r.CapacityLimit
}

// CurrentSeats 已被参与者占用的座位数
func (r *Ride) CurrentSeats() int64 {
	return r.HeadCount
}
