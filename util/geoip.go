package util

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oschwald/geoip2-golang"
	cache "github.com/patrickmn/go-cache"
)

// IPLocation is the resolved location of a client IP.
type IPLocation struct {
	City    string
	Country string
}

// DownloadRequest describes where to fetch a GeoIP database from and where to write it.
type DownloadRequest struct {
	URL      string
	DestPath string
	Timeout  time.Duration
}

var (
	geoipMu        sync.RWMutex
	geoipDB        *geoip2.Reader
	geoipCache     *cache.Cache
	geoipCacheHits int64
	geoipCacheMiss int64
)

// InitGeoIP opens the GeoIP2/GeoLite2 database at dbPath and sets up the lookup cache.
// An empty dbPath is a no-op.
func InitGeoIP(dbPath string) error {
	if dbPath == "" {
		return nil
	}

	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}

	geoipMu.Lock()
	defer geoipMu.Unlock()
	geoipDB = r
	// Cache entries for 24h, purge every hour
	geoipCache = cache.New(24*time.Hour, 1*time.Hour)
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

// DownloadGeoIPWithRequest downloads a GeoIP MMDB file and writes it to req.DestPath.
// Gzip-compressed downloads (URL ending in .gz) are decompressed on the fly.
// The temp file is removed when anything fails.
func DownloadGeoIPWithRequest(ctx context.Context, req DownloadRequest) (string, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return "", err
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download, status: %d", resp.StatusCode)
	}

	dir := filepath.Dir(req.DestPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	tmpFile, err := os.CreateTemp(dir, "geoip-*.tmp")
	if err != nil {
		return "", err
	}
	tmpName := tmpFile.Name()
	committed := false
	defer func() {
		_ = tmpFile.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	var src io.Reader = resp.Body
	if strings.HasSuffix(req.URL, ".gz") {
		gzReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", err
		}
		defer gzReader.Close()
		src = gzReader
	}

	if _, err := io.Copy(tmpFile, src); err != nil {
		return "", err
	}
	if err := tmpFile.Sync(); err != nil {
		return "", err
	}
	if err := tmpFile.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmpName, req.DestPath); err != nil {
		return "", err
	}
	committed = true
	return req.DestPath, nil
}

// ValidateGeoIP attempts to open the MMDB file to ensure it's a valid DB.
func ValidateGeoIP(path string) error {
	r, err := geoip2.Open(path)
	if err != nil {
		return err
	}
	_ = r.Close()
	return nil
}

func isPrivateOrInvalidIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return true
	}
	return parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() ||
		parsed.IsLinkLocalUnicast() || parsed.IsLinkLocalMulticast()
}

// GetIPLocation returns the city and country for ip using the local GeoIP
// database and an in-memory cache. The zero IPLocation is returned when no
// lookup is possible.
func GetIPLocation(ip string) IPLocation {
	if ip == "" || isPrivateOrInvalidIP(ip) {
		return IPLocation{}
	}

	geoipMu.RLock()
	db := geoipDB
	c := geoipCache
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

	rec, err := db.City(net.ParseIP(ip))
	if err != nil {
		logger := currentAuditLogger()
		logger.Debug().Err(err).Str("ip", ip).Msg("geoip lookup failed")
		return IPLocation{}
	}

	loc := IPLocation{
		City:    rec.City.Names["en"],
		Country: rec.Country.Names["en"],
	}
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
		return hits, misses, geoipCache.ItemCount()
	}
	return hits, misses, 0
}
