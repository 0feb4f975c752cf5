package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimeAgo(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		ago  time.Duration
		want string
	}{
		{0, "방금 전"},
		{30 * time.Second, "방금 전"},
		{60 * time.Second, "방금 전"},
		{61 * time.Second, "1분 전"},
		{2 * time.Hour, "2시간 전"},
		{3 * 24 * time.Hour, "3일 전"},
		{45 * 24 * time.Hour, "1달 전"},
		{800 * 24 * time.Hour, "2년 전"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, TimeAgo(now, now.Add(-tc.ago)), tc.ago.String())
	}
}

func TestDate(t *testing.T) {
	require.Equal(t, "2024.03.10", Date(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)))
}

func TestBytesAndCount(t *testing.T) {
	require.Equal(t, "1.5 MB", Bytes(1_500_000))
	require.Equal(t, "0 B", Bytes(-1))
	require.Equal(t, "12,345", Count(12345))
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "hello", Truncate("hello", 10))
	require.Equal(t, "he...", Truncate("hello world", 5))
	require.Equal(t, "한사랑...", Truncate("한사랑교회 주보", 6))
}
