package timex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTime_UnixMethods(t *testing.T) {
	// Create a fixed time
	// 创建一个固定时间
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tt := Time(now)

	assert.Equal(t, now.Unix(), tt.Unix())
	assert.Equal(t, now.UnixMilli(), tt.UnixMilli())
	assert.Equal(t, now.UnixMicro(), tt.UnixMicro())
	assert.Equal(t, now.UnixNano(), tt.UnixNano())

	// Verify it's not returning time.Now() by waiting a bit
	// 通过等待一会确认它不是返回 time.Now()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, now.Unix(), tt.Unix())
}

func TestTime_StringIsISO8601(t *testing.T) {
	tt := Time(time.Date(2024, 3, 5, 7, 8, 9, 123456789, time.UTC))
	assert.Equal(t, "2024-03-05T07:08:09.123Z", tt.String())

	b, err := tt.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-05T07:08:09.123Z"`, string(b))
}

func TestTime_ValueScanRoundTrip(t *testing.T) {
	tt := Now()

	v, err := tt.Value()
	require.NoError(t, err)

	var back Time
	require.NoError(t, back.Scan(v))
	assert.True(t, tt.Equal(back))

	require.NoError(t, back.Scan([]byte("2024-01-01T00:00:00.000Z")))
	assert.Equal(t, int64(1704067200), back.Unix())

	assert.Error(t, back.Scan(42))
}

func TestTime_UnmarshalJSON(t *testing.T) {
	var tt Time
	require.NoError(t, tt.UnmarshalJSON([]byte(`"2024-01-01T08:00:00+08:00"`)))
	assert.Equal(t, "2024-01-01T00:00:00.000Z", tt.String())

	require.NoError(t, tt.UnmarshalJSON([]byte(`null`)))
	assert.True(t, tt.IsZero())
}
