package schedule

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout 日期在边界上的序列化格式（ISO-8601日期）
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// Date 日历日期（无时分秒、无时区）
// 内部固定为UTC零点，所有加减运算按民用日历进行，不会因时区或夏令时漂移。
// 零值表示"未设置"。
type Date struct {
	t time.Time
}

// NewDate 根据年月日创建日期
func NewDate(year int, month time.Month, dayOfMonth int) Date {
	return Date{t: time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)}
}

// DateOf 取time.Time在其自身时区下的日历日期
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// Today 当前本地日期
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate 解析日期字符串
// 接受 YYYY-MM-DD，也接受带时间部分的ISO-8601字符串（时间部分被丢弃）。
// 空字符串得到零值；0001-01-01 与零值无法区分，作为非法日期拒绝。
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	for _, layout := range []string{DateLayout, time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		d := DateOf(t)
		if d.IsZero() {
			return Date{}, fmt.Errorf("invalid date %q: 0001-01-01 is reserved for unset dates", s)
		}
		return d, nil
	}
	return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
}

// MustParseDate 解析日期，失败时panic（仅用于常量和测试）
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero 是否为未设置的日期
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// AddDays 返回加上n天后的日期
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// Before 是否早于other
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// After 是否晚于other
func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

// Equal 是否为同一天
func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

// DaysUntil 从d到other相差的整天数（other早于d时为负数）
// 两者都是UTC零点，按秒数相减，不经过time.Duration，跨度超过约292年也不会溢出。
func (d Date) DaysUntil(other Date) int {
	return int((other.t.Unix() - d.t.Unix()) / secondsPerDay)
}

// Time 返回UTC零点的time.Time
func (d Date) Time() time.Time {
	return d.t
}

// String 返回YYYY-MM-DD，零值返回空字符串
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// MarshalText 实现encoding.TextMarshaler（YAML编码使用）
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText 实现encoding.TextUnmarshaler（YAML解码使用）
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON 零值输出null
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON 接受null、空字符串或日期字符串
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	return d.UnmarshalText([]byte(s))
}

// Value 实现driver.Valuer，以YYYY-MM-DD文本入库，零值存NULL
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan 实现sql.Scanner
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	case time.Time:
		*d = DateOf(v.UTC())
		return nil
	default:
		return fmt.Errorf("cannot scan %T into schedule.Date", src)
	}
}
