// Package timex provides a time type persisted as ISO-8601 text
// Package timex 提供以 ISO-8601 文本形式存储的时间类型
package timex

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Layout ISO-8601 UTC layout with millisecond precision
// Layout 毫秒精度的 ISO-8601 UTC 格式
const Layout = "2006-01-02T15:04:05.000Z07:00"

// Time wraps time.Time so that it is stored and serialized as ISO-8601 text
// Time 包装 time.Time，以 ISO-8601 文本形式存储和序列化
type Time time.Time

// Now returns the current UTC time truncated to milliseconds
// Now 返回截断到毫秒的当前 UTC 时间
func Now() Time {
	return Time(time.Now().UTC().Truncate(time.Millisecond))
}

// Parse parses an ISO-8601 / RFC3339 string
// Parse 解析 ISO-8601 / RFC3339 字符串
func Parse(s string) (Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Time{}, err
	}
	return Time(t.UTC()), nil
}

func (t Time) String() string {
	return time.Time(t).UTC().Format(Layout)
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

func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t Time) Equal(u Time) bool {
	return time.Time(t).Equal(time.Time(u))
}

func (t Time) Before(u Time) bool {
	return time.Time(t).Before(time.Time(u))
}

// MarshalJSON outputs the ISO-8601 string
// MarshalJSON 输出 ISO-8601 字符串
func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON parses the ISO-8601 string
// UnmarshalJSON 解析 ISO-8601 字符串
func (t *Time) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*t = Time{}
		return nil
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Value implements driver.Valuer, the column is TEXT
// Value 实现 driver.Valuer，字段类型为 TEXT
func (t Time) Value() (driver.Value, error) {
	return t.String(), nil
}

// Scan implements sql.Scanner
// Scan 实现 sql.Scanner
func (t *Time) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = Time{}
		return nil
	case time.Time:
		*t = Time(v.UTC())
		return nil
	case string:
		return t.scanString(v)
	case []byte:
		return t.scanString(string(v))
	}
	return fmt.Errorf("timex: cannot scan %T into Time", src)
}

func (t *Time) scanString(s string) error {
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}
