package cache

// EvictionPolicy decides how many entries an oversized insertion may evict.
type EvictionPolicy uint8

const (
	// EvictUntilFit evicts least recently used entries until the new entry
	// fits; entries larger than the whole budget are rejected.
	EvictUntilFit EvictionPolicy = iota
	// EvictOne evicts at most one entry per insertion and inserts anyway,
	// so the budget may be exceeded after a single large insertion.
	EvictOne
)

func (p EvictionPolicy) String() string {
	switch p {
	case EvictUntilFit:
		return "until_fit"
	case EvictOne:
		return "one"
	default:
		return "unknown"
	}
}

// ParsePolicy maps "one" to EvictOne; everything else is EvictUntilFit.
func ParsePolicy(s string) EvictionPolicy {
	if s == "one" {
		return EvictOne
	}
	return EvictUntilFit
}

type Config struct {
	// MaxSize is the byte budget. Zero or less disables eviction.
	MaxSize int64  `yaml:"max_size"`
	Policy  string `yaml:"policy"`
}

func DefaultConfig() Config {
	return Config{
		MaxSize: 100 * 1024 * 1024, // 100MB
		Policy:  EvictUntilFit.String(),
	}
}
