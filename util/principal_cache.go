package util

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/veterinary-salons/backend/model"
	"gorm.io/gorm"
)

// Principal is the authenticated account as seen by handlers.
type Principal struct {
	UserID         uint
	Email          string
	ProfileType    string
	ProfileID      uint
	EmailConfirmed bool
}

// IsCustomer reports whether the principal owns customer profile id.
func (p Principal) IsCustomer(id uint) bool {
	return p.ProfileType == model.ProfileCustomer && p.ProfileID == id
}

// IsSupplier reports whether the principal owns supplier profile id.
func (p Principal) IsSupplier(id uint) bool {
	return p.ProfileType == model.ProfileSupplier && p.ProfileID == id
}

const defaultPrincipalTTL = 5 * time.Minute

var (
	principalMu    sync.Mutex
	principalCache *cache.Cache
)

// InitPrincipalCache (re)creates the cache. ttl <= 0 uses the default.
func InitPrincipalCache(ttl time.Duration) {
	if ttl <= 0 {
		ttl = defaultPrincipalTTL
	}
	principalMu.Lock()
	defer principalMu.Unlock()
	principalCache = cache.New(ttl, 2*ttl)
}

// InitPrincipalCacheFromEnv reads PRINCIPAL_CACHE_TTL as seconds.
func InitPrincipalCacheFromEnv() {
	secs, err := strconv.Atoi(os.Getenv("PRINCIPAL_CACHE_TTL"))
	if err != nil {
		InitPrincipalCache(0)
		return
	}
	InitPrincipalCache(time.Duration(secs) * time.Second)
}

func principals() *cache.Cache {
	principalMu.Lock()
	defer principalMu.Unlock()
	if principalCache == nil {
		principalCache = cache.New(defaultPrincipalTTL, 2*defaultPrincipalTTL)
	}
	return principalCache
}

func principalKey(userID uint) string { return strconv.FormatUint(uint64(userID), 10) }

// LoadPrincipal returns the principal of userID from the cache, falling
// back to the users table.
func LoadPrincipal(db *gorm.DB, userID uint) (Principal, error) {
	c := principals()
	if v, ok := c.Get(principalKey(userID)); ok {
		if p, ok := v.(Principal); ok {
			return p, nil
		}
	}
	if db == nil {
		return Principal{}, fmt.Errorf("db is nil")
	}
	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		return Principal{}, err
	}
	p := Principal{
		UserID:         user.ID,
		Email:          user.Email,
		ProfileType:    user.ProfileType,
		ProfileID:      user.ProfileID,
		EmailConfirmed: user.EmailConfirmed,
	}
	c.SetDefault(principalKey(userID), p)
	return p, nil
}

// ForgetPrincipal drops a cached principal after the user row changed.
func ForgetPrincipal(userID uint) {
	principals().Delete(principalKey(userID))
}
