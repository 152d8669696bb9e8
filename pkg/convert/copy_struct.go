package convert

import (
	"time"

	"github.com/haierkeys/campus-share-service/pkg/timex"

	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

var timeConverters = []copier.TypeConverter{
	{
		SrcType: timex.Time{},
		DstType: time.Time{},
		Fn: func(src interface{}) (interface{}, error) {
			t, ok := src.(timex.Time)
			if !ok {
				return nil, errors.New("src type not matching timex.Time")
			}
			return time.Time(t), nil
		},
	},
	{
		SrcType: time.Time{},
		DstType: timex.Time{},
		Fn: func(src interface{}) (interface{}, error) {
			t, ok := src.(time.Time)
			if !ok {
				return nil, errors.New("src type not matching time.Time")
			}
			return timex.Time(t.UTC()), nil
		},
	},
}

// StructAssign copies same-named fields from src into dst.
// timex.Time and time.Time are converted in both directions; time.Time is stored as UTC.
// StructAssign 按字段名复制 src 到 dst，timex.Time 与 time.Time 互相转换
func StructAssign(dst, src any) error {
	if err := copier.CopyWithOption(dst, src, copier.Option{
		IgnoreEmpty: false,
		DeepCopy:    true,
		Converters:  timeConverters,
	}); err != nil {
		return errors.Wrap(err, "struct assign")
	}
	return nil
}
