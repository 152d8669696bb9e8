package timex

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layout 接收的本地时间格式
const Layout = "2006-01-02 15:04:05"

// storeLayout sqlite 驱动写入 DATETIME 列时使用的格式
const storeLayout = "2006-01-02 15:04:05.999999999-07:00"

// Time 以 RFC3339 输出的时间类型，反序列化时兼容本地格式与 Unix 秒
type Time time.Time

func Now() Time {
	return Time(time.Now())
}

func (t Time) Std() time.Time {
	return time.Time(t)
}

func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t Time) Unix() int64 {
	return time.Time(t).Unix()
}

func (t Time) UnixMilli() int64 {
	return time.Time(t).UnixMilli()
}

func (t Time) UnixMicro() int64 {
	return time.Time(t).UnixMicro()
}

func (t Time) UnixNano() int64 {
	return time.Time(t).UnixNano()
}

func (t Time) String() string {
	return time.Time(t).Format(time.RFC3339)
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(time.Time(t).Format(time.RFC3339))), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*t = Time{}
		return nil
	}

	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	} else {
		sec, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("timex: invalid time %s", s)
		}
		*t = Time(time.Unix(sec, 0))
		return nil
	}

	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Parse 解析 RFC3339 或 Layout 格式（按本地时区）的时间
func Parse(s string) (Time, error) {
	s = strings.TrimSpace(s)
	if v, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Time(v), nil
	}
	if v, err := time.Parse(storeLayout, s); err == nil {
		return Time(v), nil
	}
	if v, err := time.ParseInLocation(Layout, s, time.Local); err == nil {
		return Time(v), nil
	}
	if v, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return Time(v), nil
	}
	return Time{}, fmt.Errorf("timex: invalid time %q", s)
}

func (t Time) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return time.Time(t), nil
}

func (t *Time) Scan(v interface{}) error {
	switch value := v.(type) {
	case time.Time:
		*t = Time(value)
	case nil:
		*t = Time{}
	case string:
		parsed, err := Parse(value)
		if err != nil {
			return err
		}
		*t = parsed
	case []byte:
		parsed, err := Parse(string(value))
		if err != nil {
			return err
		}
		*t = parsed
	default:
		return fmt.Errorf("timex: can not convert %v to timestamp", v)
	}
	return nil
}
