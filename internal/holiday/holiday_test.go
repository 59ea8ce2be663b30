package holiday

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTradingDayWeekend(t *testing.T) {
	// 周六周日永远不交易，不依赖任何外部接口
	saturday := time.Date(2026, 8, 29, 10, 0, 0, 0, time.Local)
	sunday := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)

	assert.Equal(t, time.Saturday, saturday.Weekday())
	assert.False(t, IsTradingDay(saturday))
	assert.False(t, IsTradingDay(sunday))
}

func TestCustomHolidays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"holidays": ["2026-10-01", "2026-10-02"]}`), 0o644))
	require.NoError(t, LoadCustomHolidays(path))

	// 2026-10-01为周四，但已配置为节假日
	national := time.Date(2026, 10, 1, 10, 0, 0, 0, time.Local)
	assert.Equal(t, time.Thursday, national.Weekday())
	assert.False(t, IsTradingDay(national))
}

func TestLoadCustomHolidaysMissingFile(t *testing.T) {
	assert.NoError(t, LoadCustomHolidays(""))
	assert.NoError(t, LoadCustomHolidays(filepath.Join(t.TempDir(), "absent.json")))
}

func TestLoadCustomHolidaysBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	assert.Error(t, LoadCustomHolidays(path))
}
