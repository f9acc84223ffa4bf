package types

// SystemAnalytics is the cached administrative aggregate.
type SystemAnalytics struct {
	TotalUsers     int64  `json:"totalUsers"`
	ActiveToday    int64  `json:"activeToday"`
	Revenue        int64  `json:"revenue"`
	SynthesisCount int64  `json:"synthesisCount"`
	DBStatus       string `json:"dbStatus"`
	RedisStatus    string `json:"redisStatus"`
}
