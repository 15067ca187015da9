package metadata

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	json "github.com/goccy/go-json"
	"github.com/mozillazg/go-unidecode"
	"github.com/spf13/afero"

	"cinemuse/internal/metrics"
)

type fileCache struct {
	fs  afero.Fs
	dir string
	ttl time.Duration
	now func() time.Time
}

func newFileCache(fs afero.Fs, dir string, ttlHours int) *fileCache {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &fileCache{fs: fs, dir: dir, ttl: time.Duration(ttlHours) * time.Hour, now: time.Now}
}

// jitteredTTL returns a TTL for the given key that is deterministically staggered
// between the base TTL and base TTL + 6 hours. The same key always gets the same TTL.
func (c *fileCache) jitteredTTL(key string) time.Duration {
	h := sha256.Sum256([]byte(key))
	n := binary.BigEndian.Uint64(h[:8])
	jitter := time.Duration(n % uint64(6*time.Hour))
	return c.ttl + jitter
}

func (c *fileCache) get(kind, key string, v any) (bool, error) {
	if key == "" {
		return false, errors.New("empty key")
	}
	path := filepath.Join(c.dir, key+".json")
	fi, err := c.fs.Stat(path)
	if err != nil {
		metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()
		return false, nil
	}
	if c.now().Sub(fi.ModTime()) > c.jitteredTTL(key) {
		_ = c.fs.Remove(path)
		metrics.CacheLookups.WithLabelValues(kind, "expired").Inc()
		return false, nil
	}
	data, err := afero.ReadFile(c.fs, path)
	if err != nil || json.Unmarshal(data, v) != nil {
		metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()
		return false, nil
	}
	metrics.CacheLookups.WithLabelValues(kind, "hit").Inc()
	return true, nil
}

func (c *fileCache) set(key string, v any) error {
	if key == "" {
		return errors.New("empty key")
	}
	if err := c.fs.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(c.dir, key+".json")
	tmp := path + ".tmp"
	if err := afero.WriteFile(c.fs, tmp, data, 0o644); err != nil {
		_ = c.fs.Remove(tmp)
		return err
	}
	return c.fs.Rename(tmp, path)
}

const maxSlugLen = 60

// slug transliterates a title to lowercase ASCII words joined by dashes,
// e.g. "让子弹飞" -> "rang-zi-dan-fei".
func slug(title string) string {
	ascii := strings.ToLower(unidecode.Unidecode(title))
	var b strings.Builder
	dash := false
	for _, r := range ascii {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if b.Len() > 0 && !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.Trim(b.String(), "-")
	if len(s) > maxSlugLen {
		s = strings.Trim(s[:maxSlugLen], "-")
	}
	if s == "" {
		s = "untitled"
	}
	return s
}

// cacheKey joins readable parts with a short hash of the exact inputs, so two
// titles that transliterate identically still get distinct entries.
func cacheKey(kind string, parts ...string) string {
	h := sha256.Sum256([]byte(kind + "\x00" + strings.Join(parts, "\x00")))
	readable := make([]string, 0, len(parts)+2)
	readable = append(readable, kind)
	for _, p := range parts {
		readable = append(readable, slug(p))
	}
	readable = append(readable, hex.EncodeToString(h[:4]))
	return strings.Join(readable, "_")
}
