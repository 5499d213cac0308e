package model

// CacheKV is one cache entry. ExpiresAt is RFC3339Nano; empty means the entry
// never expires at the store level.
type CacheKV struct {
	Key       string `gorm:"column:key;type:text;primaryKey"`
	Value     string `gorm:"column:value;type:text;not null"`
	ExpiresAt string `gorm:"column:expires_at;type:text"`
	UpdatedAt string `gorm:"column:updated_at;type:text;not null"`
}

func (CacheKV) TableName() string {
	return "cache_kv"
}
