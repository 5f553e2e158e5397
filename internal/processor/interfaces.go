package processor

import (
	"context"

	"resume-flow-go/internal/storage"
	"resume-flow-go/internal/storage/models"
	"resume-flow-go/internal/types"
)

//
// 解析相关接口
//

// TextExtractor 把上传的文档解码为纯文本
type TextExtractor interface {
	// ExtractText 按文件名判断格式并返回文本
	ExtractText(ctx context.Context, filename string, data []byte) (string, error)
}

// ResumeExtractor 从纯文本提取结构化简历
type ResumeExtractor interface {
	Extract(text string) (*types.ResumeRecord, error)
}

//
// 岗位匹配相关接口
//

// JobMatcher 对岗位目录打分并过滤
type JobMatcher interface {
	Match(record *types.ResumeRecord) []types.JobMatch
	Filter(matches []types.JobMatch, filter types.JobFilter) []types.JobMatch
}

//
// 存储相关接口
//

// RecordCache 按文本MD5缓存解析结果，未命中时返回 storage.ErrNotFound
type RecordCache interface {
	GetParsedRecord(ctx context.Context, textMD5 string) (*types.ResumeRecord, error)
	SetParsedRecord(ctx context.Context, textMD5 string, record *types.ResumeRecord) error
}

// ObjectStore 归档原始文件
type ObjectStore interface {
	// UploadOriginal 返回对象名
	UploadOriginal(ctx context.Context, submissionUUID, filename string, data []byte) (string, error)
}

// RecordStore 持久化解析记录，不存在时返回 gorm.ErrRecordNotFound
type RecordStore interface {
	SaveParsedResume(ctx context.Context, row *models.ParsedResume) error
	GetParsedResume(ctx context.Context, submissionUUID string) (*models.ParsedResume, error)
	FindParsedResumesByTextMD5(ctx context.Context, textMD5 string) ([]models.ParsedResume, error)
}

// EventPublisher 发布解析完成事件
type EventPublisher interface {
	PublishParsedEvent(ctx context.Context, msg storage.ResumeParsedMessage) error
}

// OutboxWriter 在同一事务中写入解析记录和待发布事件
type OutboxWriter interface {
	SaveParsedResumeWithEvent(ctx context.Context, row *models.ParsedResume, event *models.OutboxMessage) error
}
