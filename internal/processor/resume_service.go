package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-flow-go/internal/config"
	"resume-flow-go/internal/constants"
	"resume-flow-go/internal/jobs"
	"resume-flow-go/internal/logger"
	"resume-flow-go/internal/parser"
	"resume-flow-go/internal/storage"
	"resume-flow-go/internal/storage/models"
	"resume-flow-go/internal/tracing"
	"resume-flow-go/internal/types"
	"resume-flow-go/pkg/utils"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// 定义tracer
var tracer = otel.Tracer("resume-flow-go/processor")

// ParseResult 一次解析请求的结果
type ParseResult struct {
	SubmissionUUID string              `json:"submission_uuid"`
	FileName       string              `json:"file_name,omitempty"`
	TextMD5        string              `json:"text_md5"`
	Cached         bool                `json:"cached"` // 结果来自缓存或历史记录
	Record         *types.ResumeRecord `json:"record"`
}

// ResumeService 简历解析与岗位匹配服务
// 采用Facade模式，内部持有所有需要的组件
type ResumeService struct {
	components Components
	settings   Settings
}

// NewResumeService 创建服务实例，未提供的提取器和匹配器使用默认实现
func NewResumeService(comp Components, set Settings, opts ...SettingOpt) *ResumeService {
	for _, opt := range opts {
		opt(&set)
	}
	if comp.ResumeExtractor == nil {
		comp.ResumeExtractor = parser.NewHeuristicExtractor()
	}
	if comp.Matcher == nil {
		comp.Matcher = jobs.NewMatcher()
	}
	if comp.TextExtractor == nil {
		logger.Warn().Msg("ResumeService 未配置文档解码器，上传功能不可用")
	}
	return &ResumeService{components: comp, settings: set}
}

// NewResumeServiceFromConfig 按配置组装服务，存储组件可以为 nil
func NewResumeServiceFromConfig(ctx context.Context, cfg *config.Config, st *storage.Storage, compOpts ...ComponentOpt) (*ResumeService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	docOpts := []parser.DocumentOption{
		parser.WithExtractTimeout(config.GetDuration(cfg.Parser.ExtractTimeout, 30*time.Second)),
	}
	if cfg.Parser.TikaURL != "" {
		tika, err := parser.NewTikaPDFExtractor(cfg.Parser.TikaURL,
			parser.WithTikaTimeout(config.GetDuration(cfg.Parser.TikaTimeout, 30*time.Second)))
		if err != nil {
			return nil, fmt.Errorf("创建Tika解码器失败: %w", err)
		}
		docOpts = append(docOpts, parser.WithPDFBackend(tika))
		logger.Info().Str("tika_url", cfg.Parser.TikaURL).Msg("PDF解码使用Tika服务")
	}

	documents, err := parser.NewDocumentTextExtractor(ctx, docOpts...)
	if err != nil {
		return nil, fmt.Errorf("创建文档解码器失败: %w", err)
	}

	comp := Components{
		TextExtractor:   documents,
		ResumeExtractor: parser.NewHeuristicExtractor(),
		Matcher: jobs.NewMatcher(
			jobs.WithBestMatchThreshold(cfg.Jobs.BestMatchThreshold),
			jobs.WithBaseScore(cfg.Jobs.BaseScore),
		),
	}
	WithStorage(st)(&comp)
	if cfg.Outbox.Enabled && st != nil && st.MySQL != nil {
		WithOutbox(st.MySQL)(&comp)
	}
	for _, opt := range compOpts {
		opt(&comp)
	}

	set := Settings{
		ParseDelay:     config.GetDuration(cfg.Pacing.ParseDelay, 2*time.Second),
		SearchDelay:    config.GetDuration(cfg.Pacing.SearchDelay, 1500*time.Millisecond),
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}
	WithEventRoute(cfg.RabbitMQ.ResumeEventsExchange, cfg.RabbitMQ.ParsedRoutingKey)(&set)
	return NewResumeService(comp, set), nil
}

// Settings 返回当前设置
func (s *ResumeService) Settings() Settings {
	return s.settings
}

// ParseText 解析已是纯文本的简历
func (s *ResumeService) ParseText(ctx context.Context, text string) (*ParseResult, error) {
	submissionUUID, err := newSubmissionUUID()
	if err != nil {
		return nil, err
	}
	return s.parse(ctx, submissionUUID, "", text, nil)
}

// ParseUpload 校验并解码上传文件后解析
func (s *ResumeService) ParseUpload(ctx context.Context, filename string, data []byte) (*ParseResult, error) {
	submissionUUID, err := newSubmissionUUID()
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "ResumeService.ParseUpload",
		trace.WithAttributes(
			attribute.String("submission_uuid", submissionUUID),
			attribute.String("file_name",
				tracing.SafeAttributeValue("file_name", tracing.SafeFileName(filename), tracing.MaxFileNameLength)),
			attribute.Int("file_size", len(data)),
		))
	defer span.End()

	if parser.DetectFileKind(filename) == parser.FileKindUnknown {
		err := NewUnsupportedFileError(submissionUUID, filename)
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}
	if s.settings.MaxUploadBytes > 0 && int64(len(data)) > s.settings.MaxUploadBytes {
		err := NewFileTooLargeError(submissionUUID,
			fmt.Sprintf("%d bytes > %d bytes", len(data), s.settings.MaxUploadBytes))
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}
	if s.components.TextExtractor == nil {
		return nil, ErrExtractorNotInit
	}

	text, err := s.components.TextExtractor.ExtractText(ctx, filename, data)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDecode)
		if errors.Is(err, parser.ErrUnsupportedFormat) {
			return nil, NewUnsupportedFileError(submissionUUID, err.Error())
		}
		return nil, NewDecodeError(submissionUUID, err.Error())
	}

	return s.parse(ctx, submissionUUID, filename, text, data)
}

func (s *ResumeService) parse(ctx context.Context, submissionUUID, fileName, text string, original []byte) (*ParseResult, error) {
	ctx, span := tracer.Start(ctx, "ResumeService.Parse",
		trace.WithAttributes(attribute.String("submission_uuid", submissionUUID)))
	defer span.End()

	if strings.TrimSpace(text) == "" {
		err := NewEmptyResumeError(submissionUUID)
		tracing.RecordError(span, err, tracing.ErrorTypeExtract)
		return nil, err
	}

	textMD5 := utils.CalculateMD5([]byte(text))
	span.SetAttributes(attribute.String("text_md5", textMD5))
	result := &ParseResult{
		SubmissionUUID: submissionUUID,
		FileName:       fileName,
		TextMD5:        textMD5,
	}

	if record := s.lookupPrevious(ctx, textMD5); record != nil {
		span.SetAttributes(attribute.Bool("cached", true))
		result.Cached = true
		result.Record = record
		return result, nil
	}

	if err := wait(ctx, s.settings.ParseDelay); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeTimeout)
		return nil, fmt.Errorf("解析被取消: %w", err)
	}

	record, err := s.components.ResumeExtractor.Extract(text)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeExtract)
		if errors.Is(err, parser.ErrEmptyInput) {
			return nil, NewEmptyResumeError(submissionUUID)
		}
		return nil, NewParseError(submissionUUID, err.Error())
	}
	result.Record = record
	span.SetAttributes(
		attribute.String("resume.email", tracing.SafeAttributeValue("resume.email", record.Email, tracing.DefaultMaxLength)),
		attribute.Int("resume.skills", len(record.Skills)),
		attribute.Int("resume.experience", len(record.Experience)),
	)

	s.persist(ctx, result, original)

	logger.Ctx(ctx).Info().
		Str("submission_uuid", submissionUUID).
		Str("file_name", fileName).
		Str("name", tracing.MaskPII(record.Name)).
		Int("skills", len(record.Skills)).
		Int("experience", len(record.Experience)).
		Int("education", len(record.Education)).
		Msg("简历解析完成")
	return result, nil
}

// lookupPrevious 先查Redis，再查MySQL中相同文本的历史记录
func (s *ResumeService) lookupPrevious(ctx context.Context, textMD5 string) *types.ResumeRecord {
	if s.components.Cache != nil {
		record, err := s.components.Cache.GetParsedRecord(ctx, textMD5)
		switch {
		case err == nil:
			return record
		case !errors.Is(err, storage.ErrNotFound):
			logger.Ctx(ctx).Warn().Err(err).Str("text_md5", textMD5).Msg("读取解析缓存失败")
		}
	}

	if s.components.Records == nil {
		return nil
	}
	rows, err := s.components.Records.FindParsedResumesByTextMD5(ctx, textMD5)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("text_md5", textMD5).Msg("查询历史解析记录失败")
		return nil
	}
	if len(rows) == 0 {
		return nil
	}
	record, err := rows[0].ToRecord()
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("submission_uuid", rows[0].SubmissionUUID).Msg("还原历史解析记录失败")
		return nil
	}
	if s.components.Cache != nil {
		if err := s.components.Cache.SetParsedRecord(ctx, textMD5, record); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("text_md5", textMD5).Msg("回填解析缓存失败")
		}
	}
	return record
}

// persist 尽力写入缓存、对象存储、数据库并发布事件，失败只记录日志
func (s *ResumeService) persist(ctx context.Context, result *ParseResult, original []byte) {
	if s.components.Cache != nil {
		if err := s.components.Cache.SetParsedRecord(ctx, result.TextMD5, result.Record); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("submission_uuid", result.SubmissionUUID).Msg("写入解析缓存失败")
		}
	}

	var objectKey string
	if s.components.Objects != nil && len(original) > 0 {
		key, err := s.components.Objects.UploadOriginal(ctx, result.SubmissionUUID, result.FileName, original)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("submission_uuid", result.SubmissionUUID).Msg("归档原始简历失败")
		} else {
			objectKey = key
		}
	}

	var event *storage.ResumeParsedMessage
	if s.components.Events != nil || s.components.Outbox != nil {
		event = &storage.ResumeParsedMessage{
			SubmissionUUID:    result.SubmissionUUID,
			FileName:          result.FileName,
			TextMD5:           result.TextMD5,
			OriginalObjectKey: objectKey,
			ParserVersion:     constants.ParserVersion,
			Name:              result.Record.Name,
			Email:             result.Record.Email,
			SkillCount:        len(result.Record.Skills),
			ExperienceCount:   len(result.Record.Experience),
			EducationCount:    len(result.Record.Education),
			ParsedAt:          time.Now(),
		}
	}

	if s.components.Outbox != nil {
		if err := s.saveWithOutbox(ctx, result, objectKey, event); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("submission_uuid", result.SubmissionUUID).Msg("保存解析记录及outbox事件失败")
		}
		return
	}

	if s.components.Records != nil {
		row, err := models.NewParsedResume(result.SubmissionUUID, result.FileName, result.TextMD5, objectKey, result.Record)
		if err == nil {
			err = s.components.Records.SaveParsedResume(ctx, row)
		}
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("submission_uuid", result.SubmissionUUID).Msg("保存解析记录失败")
		}
	}

	if s.components.Events != nil {
		if err := s.components.Events.PublishParsedEvent(ctx, *event); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("submission_uuid", result.SubmissionUUID).Msg("发布解析事件失败")
		}
	}
}

func (s *ResumeService) saveWithOutbox(ctx context.Context, result *ParseResult, objectKey string, event *storage.ResumeParsedMessage) error {
	row, err := models.NewParsedResume(result.SubmissionUUID, result.FileName, result.TextMD5, objectKey, result.Record)
	if err != nil {
		return err
	}
	msg, err := models.NewOutboxMessage(result.SubmissionUUID, models.EventTypeResumeParsed,
		s.settings.EventExchange, s.settings.EventRoutingKey, event)
	if err != nil {
		return err
	}
	return s.components.Outbox.SaveParsedResumeWithEvent(ctx, row, msg)
}

// GetResult 按提交UUID读取已持久化的解析结果
func (s *ResumeService) GetResult(ctx context.Context, submissionUUID string) (*ParseResult, error) {
	if s.components.Records == nil {
		return nil, ErrStoreNotInit
	}
	row, err := s.components.Records.GetParsedResume(ctx, submissionUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrResultNotFound, submissionUUID)
		}
		return nil, fmt.Errorf("读取解析记录失败: %w", err)
	}
	record, err := row.ToRecord()
	if err != nil {
		return nil, err
	}
	return &ParseResult{
		SubmissionUUID: row.SubmissionUUID,
		FileName:       row.FileName,
		TextMD5:        row.TextMD5,
		Cached:         true,
		Record:         record,
	}, nil
}

// SearchJobs 对岗位目录打分并按 filter 过滤
func (s *ResumeService) SearchJobs(ctx context.Context, record *types.ResumeRecord, filter types.JobFilter) ([]types.JobMatch, error) {
	ctx, span := tracer.Start(ctx, "ResumeService.SearchJobs",
		trace.WithAttributes(attribute.String("filter", string(filter))))
	defer span.End()

	if err := wait(ctx, s.settings.SearchDelay); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeTimeout)
		return nil, fmt.Errorf("岗位搜索被取消: %w", err)
	}

	matches := s.components.Matcher.Filter(s.components.Matcher.Match(record), filter)
	span.SetAttributes(attribute.Int("jobs.total", len(matches)))
	return matches, nil
}

// wait 展示性等待，ctx 取消时提前返回
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func newSubmissionUUID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("生成提交UUID失败: %w", err)
	}
	return id.String(), nil
}
