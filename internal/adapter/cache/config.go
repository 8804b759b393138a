package cache

// RedisConfig holds the connection and keying options for the Redis-backed
// block cache. It is validated via go-playground/validator tags.
type RedisConfig struct {
	Host               string `validate:"required,hostname|ip"`
	Port               string `validate:"required,numeric"`
	Password           string
	DB                 int `validate:"gte=0"`
	UseTLS             bool
	PoolSize           int `validate:"gte=0"`
	MaxRetries         int `validate:"gte=0"`
	DialTimeoutSeconds int `validate:"gte=0"`
	// KeyPrefix namespaces the cache entries, e.g. "lightrpc:block".
	KeyPrefix string `validate:"required"`
	// TTLSeconds bounds how long an entry lives. Zero keeps entries until
	// Redis evicts them.
	TTLSeconds int `validate:"gte=0"`
}

// MemoryConfig sizes the in-process block cache.
type MemoryConfig struct {
	Size       int `validate:"required,gte=1"`
	TTLSeconds int `validate:"gte=0"`
}
