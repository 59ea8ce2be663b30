package stockdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecID(t *testing.T) {
	assert.Equal(t, "1.600000", secID("600000"))
	assert.Equal(t, "1.510300", secID("510300"))
	assert.Equal(t, "0.000001", secID("000001"))
	assert.Equal(t, "0.159915", secID("159915"))
}

func TestSinaSymbol(t *testing.T) {
	assert.Equal(t, "sh600000", sinaSymbol("600000"))
	assert.Equal(t, "sh510300", sinaSymbol("510300"))
	assert.Equal(t, "sz000001", sinaSymbol("000001"))
}

func TestExtractJSONPBody(t *testing.T) {
	body := []byte(`jQuery123({"data": {"list": []}})`)
	assert.Equal(t, `{"data": {"list": []}}`, string(extractJSONPBody(body)))

	// 非JSONP返回原样
	plain := []byte(`{"data": 1}`)
	assert.Equal(t, string(plain), string(extractJSONPBody(plain)))
}

func TestStripHTMLTags(t *testing.T) {
	assert.Equal(t, "业绩预告", stripHTMLTags("<em>业绩</em>预告"))
	assert.Equal(t, "无标签", stripHTMLTags("无标签"))
}

func TestTruncateDate(t *testing.T) {
	assert.Equal(t, "2026-08-28", truncateDate("2026-08-28 09:30:00"))
	assert.Equal(t, "2026-08-28", truncateDate(" 2026-08-28 "))
	assert.Equal(t, "", truncateDate(""))
}

func TestInMemoryCacheProvider(t *testing.T) {
	p := NewInMemoryCacheProvider()

	type payload struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}

	require.NoError(t, p.Set("k1", payload{Name: "测试", Price: 10.5}, time.Minute))

	var out payload
	require.NoError(t, p.Get("k1", &out))
	assert.Equal(t, "测试", out.Name)
	assert.InDelta(t, 10.5, out.Price, 1e-9)

	// 未命中与过期返回各自的哨兵错误
	assert.ErrorIs(t, p.Get("missing", &out), errCacheMiss)
	require.NoError(t, p.Set("k2", payload{}, time.Nanosecond))
	time.Sleep(5 * time.Millisecond)
	assert.ErrorIs(t, p.Get("k2", &out), errCacheExpired)

	// expiration为0时永不过期
	require.NoError(t, p.Set("k3", payload{Name: "常驻"}, 0))
	require.NoError(t, p.Get("k3", &out))
	assert.Equal(t, "常驻", out.Name)
}
