package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// lagsHookFunc decodes Lags from an integer L (expanded to 1..L), a list,
// or a string holding either form ("3", "2,5,7", "[2, 5, 7]")
func lagsHookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(Lags{}) {
			return data, nil
		}

		switch from.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return expandLags(int(reflect.ValueOf(data).Int()))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return expandLags(int(reflect.ValueOf(data).Uint()))
		case reflect.Float32, reflect.Float64:
			f := reflect.ValueOf(data).Float()
			if f != float64(int(f)) {
				return nil, fmt.Errorf("lags must be an integer, got %v", f)
			}
			return expandLags(int(f))
		case reflect.String:
			return parseLags(data.(string))
		default:
			return data, nil
		}
	}
}

func expandLags(n int) (Lags, error) {
	if n < 1 {
		return nil, fmt.Errorf("lag count must be at least 1, got %d", n)
	}
	lags := make(Lags, n)
	for i := range lags {
		lags[i] = i + 1
	}
	return lags, nil
}

// parseLags reads a bare count ("3") as 1..n and anything else, including
// a bracketed single value ("[7]"), as an explicit lag list
func parseLags(s string) (Lags, error) {
	s = strings.TrimSpace(s)
	bracketed := strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]")
	if bracketed {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" {
		return nil, fmt.Errorf("lags is empty")
	}
	parts := strings.Split(s, ",")
	if len(parts) == 1 && !bracketed {
		n, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid lags %q: %w", s, err)
		}
		return expandLags(n)
	}

	lags := make(Lags, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid lag %q: %w", p, err)
		}
		lags = append(lags, n)
	}
	return lags, nil
}

// EnsureDirectories ensures all required directories exist
func (c *Config) EnsureDirectories() error {
	return os.MkdirAll(c.Data.ModelDir, 0o755)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.HTTPPort)
}
