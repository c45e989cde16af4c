package util

import (
	"log/slog"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oschwald/geoip2-golang"
	cache "github.com/patrickmn/go-cache"
)

// IPLocation is the resolved place of a client address.
type IPLocation struct {
	City    string
	Country string
}

// String renders "City/Country", or whichever part is known.
func (l IPLocation) String() string {
	switch {
	case l.City != "" && l.Country != "":
		return l.City + "/" + l.Country
	case l.Country != "":
		return l.Country
	default:
		return l.City
	}
}

var (
	geoipMu        sync.RWMutex
	geoipDB        *geoip2.Reader
	geoipCache     *cache.Cache
	geoipCacheHits int64
	geoipCacheMiss int64
)

// InitGeoIP opens a GeoIP2/GeoLite2 .mmdb file and sets up the lookup cache.
// An empty path falls back to GEOIP_DB_PATH; if that is empty too, lookups
// stay disabled.
func InitGeoIP(dbPath string) error {
	if dbPath == "" {
		dbPath = os.Getenv("GEOIP_DB_PATH")
	}
	if dbPath == "" {
		return nil
	}

	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}
	geoipMu.Lock()
	geoipDB = r
	geoipCache = cache.New(24*time.Hour, time.Hour)
	geoipMu.Unlock()
	slog.Info("geoip database loaded", "path", dbPath)
	return nil
}

// CloseGeoIP closes the GeoIP DB if opened.
func CloseGeoIP() {
	geoipMu.Lock()
	defer geoipMu.Unlock()
	if geoipDB != nil {
		_ = geoipDB.Close()
		geoipDB = nil
	}
}

func isLocalIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() || ip.IsLinkLocalUnicast()
}

// GetIPLocation resolves ip through the local GeoIP database, consulting the
// in-memory cache first. Unknown, local and unparsable addresses resolve to
// an empty location.
func GetIPLocation(ip string) IPLocation {
	parsed := net.ParseIP(ip)
	if parsed == nil || isLocalIP(parsed) {
		return IPLocation{}
	}

	geoipMu.RLock()
	db, c := geoipDB, geoipCache
	geoipMu.RUnlock()

	if c != nil {
		if v, ok := c.Get(ip); ok {
			atomic.AddInt64(&geoipCacheHits, 1)
			if loc, ok := v.(IPLocation); ok {
				return loc
			}
		}
	}
	atomic.AddInt64(&geoipCacheMiss, 1)

	if db == nil {
		return IPLocation{}
	}
	rec, err := db.City(parsed)
	if err != nil {
		return IPLocation{}
	}

	loc := IPLocation{City: rec.City.Names["en"], Country: rec.Country.Names["en"]}
	if loc.Country == "" {
		loc.Country = rec.Country.IsoCode
	}
	if c != nil {
		c.Set(ip, loc, cache.DefaultExpiration)
	}
	return loc
}

// GetGeoIPCacheMetrics returns the cache hits and misses and current cache size.
func GetGeoIPCacheMetrics() (hits int64, misses int64, size int) {
	hits = atomic.LoadInt64(&geoipCacheHits)
	misses = atomic.LoadInt64(&geoipCacheMiss)
	geoipMu.RLock()
	defer geoipMu.RUnlock()
	if geoipCache != nil {
		size = geoipCache.ItemCount()
	}
	return hits, misses, size
}
