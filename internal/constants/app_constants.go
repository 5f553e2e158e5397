package constants

import "time"

const (
	// ParserVersion 当前启发式解析器版本，写入事件与缓存便于追溯
	ParserVersion = "heuristic-1.0"

	// DefaultRecordTTL 解析结果缓存的默认过期时间
	DefaultRecordTTL = 24 * time.Hour

	// OriginalsObjectPrefix 原始简历在对象存储中的路径前缀
	OriginalsObjectPrefix = "resumes/"
)
