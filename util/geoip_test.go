package util

import (
	"testing"

	cache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
)

func TestInitGeoIP_EmptyPath(t *testing.T) {
	t.Setenv("GEOIP_DB_PATH", "")
	assert.NoError(t, InitGeoIP(""))
}

func TestInitGeoIP_NonExistentFile(t *testing.T) {
	assert.Error(t, InitGeoIP("/nonexistent/path/to/geoip.mmdb"))
}

func TestGetIPLocation_LocalAndInvalid(t *testing.T) {
	for _, ip := range []string{"", "127.0.0.1", "::1", "10.0.0.1", "192.168.1.1", "172.16.0.5", "::", "fe80::1", "not-an-ip"} {
		assert.Equal(t, IPLocation{}, GetIPLocation(ip), ip)
	}
}

func TestGetIPLocation_NoDB(t *testing.T) {
	geoipMu.Lock()
	geoipDB, geoipCache = nil, nil
	geoipMu.Unlock()

	assert.Equal(t, IPLocation{}, GetIPLocation("8.8.8.8"))
	_, _, size := GetGeoIPCacheMetrics()
	assert.Equal(t, 0, size)
}

func TestGetIPLocation_CacheHit(t *testing.T) {
	geoipMu.Lock()
	geoipDB = nil
	geoipCache = cache.New(cache.NoExpiration, 0)
	geoipMu.Unlock()
	t.Cleanup(func() {
		geoipMu.Lock()
		geoipCache = nil
		geoipMu.Unlock()
	})

	geoipCache.Set("8.8.8.8", IPLocation{City: "Mountain View", Country: "United States"}, cache.DefaultExpiration)
	hitsBefore, _, _ := GetGeoIPCacheMetrics()

	loc := GetIPLocation("8.8.8.8")
	assert.Equal(t, "Mountain View/United States", loc.String())

	hits, _, size := GetGeoIPCacheMetrics()
	assert.Equal(t, hitsBefore+1, hits)
	assert.Equal(t, 1, size)
}

func TestIPLocation_String(t *testing.T) {
	assert.Equal(t, "Moscow/Russia", IPLocation{City: "Moscow", Country: "Russia"}.String())
	assert.Equal(t, "Russia", IPLocation{Country: "Russia"}.String())
	assert.Equal(t, "Moscow", IPLocation{City: "Moscow"}.String())
	assert.Equal(t, "", IPLocation{}.String())
}

func TestCloseGeoIP_Idempotent(t *testing.T) {
	CloseGeoIP()
	CloseGeoIP()
}
