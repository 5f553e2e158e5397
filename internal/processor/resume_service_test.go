package processor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"resume-flow-go/internal/config"
	"resume-flow-go/internal/parser"
	"resume-flow-go/internal/storage"
	"resume-flow-go/internal/storage/models"
	"resume-flow-go/internal/tracing"
	"resume-flow-go/internal/types"
	"resume-flow-go/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/gorm"
)

const sampleResume = "John Smith\njohn@x.com\n555-123-4567\nSkills\nJavaScript, React\nExperience\nSenior Developer at Acme - Jan 2020 - Present\nBuilt things."

// MockTextExtractor 模拟文档解码器
type MockTextExtractor struct {
	text  string
	err   error
	calls int
}

func (m *MockTextExtractor) ExtractText(ctx context.Context, filename string, data []byte) (string, error) {
	m.calls++
	return m.text, m.err
}

// MockRecordCache 内存缓存
type MockRecordCache struct {
	mu      sync.Mutex
	records map[string]*types.ResumeRecord
	getErr  error
	setErr  error
	sets    int
}

func newMockRecordCache() *MockRecordCache {
	return &MockRecordCache{records: make(map[string]*types.ResumeRecord)}
}

func (m *MockRecordCache) GetParsedRecord(ctx context.Context, textMD5 string) (*types.ResumeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	record, ok := m.records[textMD5]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return record, nil
}

func (m *MockRecordCache) SetParsedRecord(ctx context.Context, textMD5 string, record *types.ResumeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.records[textMD5] = record
	return nil
}

// MockObjectStore 记录上传的对象
type MockObjectStore struct {
	objects map[string][]byte
	err     error
}

func (m *MockObjectStore) UploadOriginal(ctx context.Context, submissionUUID, filename string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	key := storage.OriginalObjectName(submissionUUID, filename)
	m.objects[key] = data
	return key, nil
}

// MockRecordStore 内存记录表
type MockRecordStore struct {
	rows    []*models.ParsedResume
	saveErr error
}

func (m *MockRecordStore) SaveParsedResume(ctx context.Context, row *models.ParsedResume) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.rows = append(m.rows, row)
	return nil
}

func (m *MockRecordStore) GetParsedResume(ctx context.Context, submissionUUID string) (*models.ParsedResume, error) {
	for _, row := range m.rows {
		if row.SubmissionUUID == submissionUUID {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockRecordStore) FindParsedResumesByTextMD5(ctx context.Context, textMD5 string) ([]models.ParsedResume, error) {
	var found []models.ParsedResume
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].TextMD5 == textMD5 {
			found = append(found, *m.rows[i])
		}
	}
	return found, nil
}

// MockEventPublisher 记录发布的事件
type MockEventPublisher struct {
	messages []storage.ResumeParsedMessage
	err      error
}

func (m *MockEventPublisher) PublishParsedEvent(ctx context.Context, msg storage.ResumeParsedMessage) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

// MockOutboxWriter 记录同事务写入的记录和事件
type MockOutboxWriter struct {
	store  *MockRecordStore
	events []*models.OutboxMessage
}

func (m *MockOutboxWriter) SaveParsedResumeWithEvent(ctx context.Context, row *models.ParsedResume, event *models.OutboxMessage) error {
	if err := m.store.SaveParsedResume(ctx, row); err != nil {
		return err
	}
	m.events = append(m.events, event)
	return nil
}

func newTestService(comp Components, opts ...SettingOpt) *ResumeService {
	return NewResumeService(comp, Settings{MaxUploadBytes: 1024}, opts...)
}

func TestParseText_ExtractsRecord(t *testing.T) {
	svc := newTestService(Components{})

	result, err := svc.ParseText(context.Background(), sampleResume)
	require.NoError(t, err)

	assert.NotEmpty(t, result.SubmissionUUID)
	assert.Equal(t, utils.CalculateMD5([]byte(sampleResume)), result.TextMD5)
	assert.False(t, result.Cached)
	require.NotNil(t, result.Record)
	assert.Equal(t, "John Smith", result.Record.Name)
	assert.Equal(t, "john@x.com", result.Record.Email)
	require.Len(t, result.Record.Experience, 1)
	assert.Equal(t, types.PresentLabel, result.Record.Experience[0].EndDate)
}

func TestParseText_EmptyInput(t *testing.T) {
	svc := newTestService(Components{})

	for _, input := range []string{"", " ", "\n\t "} {
		_, err := svc.ParseText(context.Background(), input)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrEmptyResume))
		assert.True(t, errors.Is(err, parser.ErrEmptyInput))

		var procErr *ResumeProcessError
		require.True(t, errors.As(err, &procErr))
		assert.Equal(t, "extract", procErr.Op)
	}
}

func TestParseText_UniqueSubmissionUUIDs(t *testing.T) {
	svc := newTestService(Components{})

	first, err := svc.ParseText(context.Background(), sampleResume)
	require.NoError(t, err)
	second, err := svc.ParseText(context.Background(), sampleResume)
	require.NoError(t, err)
	assert.NotEqual(t, first.SubmissionUUID, second.SubmissionUUID)
}

func TestParseText_CacheHitSkipsExtraction(t *testing.T) {
	cache := newMockRecordCache()
	events := &MockEventPublisher{}
	svc := newTestService(Components{Cache: cache, Events: events})

	first, err := svc.ParseText(context.Background(), sampleResume)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, cache.sets)
	require.Len(t, events.messages, 1)

	second, err := svc.ParseText(context.Background(), sampleResume)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Record, second.Record)
	assert.Len(t, events.messages, 1, "缓存命中不应重复发布事件")
}

func TestParseText_CacheErrorFallsThrough(t *testing.T) {
	cache := newMockRecordCache()
	cache.getErr = errors.New("connection refused")
	cache.setErr = errors.New("connection refused")
	svc := newTestService(Components{Cache: cache})

	result, err := svc.ParseText(context.Background(), sampleResume)
	require.NoError(t, err, "缓存故障不应影响解析")
	assert.False(t, result.Cached)
	assert.Equal(t, "John Smith", result.Record.Name)
}

func TestParseText_RecordStoreFallbackWarmsCache(t *testing.T) {
	store := &MockRecordStore{}
	firstSvc := newTestService(Components{Records: store})
	first, err := firstSvc.ParseText(context.Background(), sampleResume)
	require.NoError(t, err)
	require.Len(t, store.rows, 1)

	cache := newMockRecordCache()
	svc := newTestService(Components{Records: store, Cache: cache})
	second, err := svc.ParseText(context.Background(), sampleResume)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Record.Name, second.Record.Name)
	assert.Len(t, store.rows, 1)

	cached, err := cache.GetParsedRecord(context.Background(), second.TextMD5)
	require.NoError(t, err)
	assert.Equal(t, "John Smith", cached.Name)
}

func TestParseUpload_PersistsEverything(t *testing.T) {
	extractor := &MockTextExtractor{text: sampleResume}
	objects := &MockObjectStore{}
	store := &MockRecordStore{}
	events := &MockEventPublisher{}
	svc := newTestService(Components{
		TextExtractor: extractor,
		Objects:       objects,
		Records:       store,
		Events:        events,
	})

	data := []byte("%PDF-1.4 fake")
	result, err := svc.ParseUpload(context.Background(), "resume.PDF", data)
	require.NoError(t, err)
	assert.Equal(t, "resume.PDF", result.FileName)
	assert.Equal(t, 1, extractor.calls)

	objectKey := storage.OriginalObjectName(result.SubmissionUUID, "resume.PDF")
	assert.Equal(t, "resumes/"+result.SubmissionUUID+".pdf", objectKey)
	assert.Equal(t, data, objects.objects[objectKey])

	require.Len(t, store.rows, 1)
	assert.Equal(t, result.SubmissionUUID, store.rows[0].SubmissionUUID)
	assert.Equal(t, objectKey, store.rows[0].OriginalObjectKey)
	assert.Equal(t, result.TextMD5, store.rows[0].TextMD5)

	require.Len(t, events.messages, 1)
	msg := events.messages[0]
	assert.Equal(t, result.SubmissionUUID, msg.SubmissionUUID)
	assert.Equal(t, objectKey, msg.OriginalObjectKey)
	assert.Equal(t, "John Smith", msg.Name)
	assert.Equal(t, len(result.Record.Skills), msg.SkillCount)
	assert.Equal(t, 1, msg.ExperienceCount)
}

func TestParseText_OutboxReplacesDirectPublish(t *testing.T) {
	store := &MockRecordStore{}
	outbox := &MockOutboxWriter{store: store}
	events := &MockEventPublisher{}
	svc := newTestService(Components{
		Records: store,
		Events:  events,
		Outbox:  outbox,
	}, WithEventRoute("resume.events.exchange", "resume.parsed"))

	result, err := svc.ParseText(context.Background(), sampleResume)
	require.NoError(t, err)

	assert.Empty(t, events.messages, "启用outbox后不直接发布")
	require.Len(t, store.rows, 1, "记录只写入一次")
	require.Len(t, outbox.events, 1)

	event := outbox.events[0]
	assert.Equal(t, result.SubmissionUUID, event.AggregateID)
	assert.Equal(t, models.EventTypeResumeParsed, event.EventType)
	assert.Equal(t, "resume.events.exchange", event.TargetExchange)
	assert.Equal(t, "resume.parsed", event.TargetRoutingKey)
	assert.Equal(t, models.OutboxStatusPending, event.Status)

	var payload storage.ResumeParsedMessage
	require.NoError(t, json.Unmarshal([]byte(event.Payload), &payload))
	assert.Equal(t, result.SubmissionUUID, payload.SubmissionUUID)
	assert.Equal(t, "John Smith", payload.Name)

	got, err := svc.GetResult(context.Background(), result.SubmissionUUID)
	require.NoError(t, err)
	assert.Equal(t, "John Smith", got.Record.Name)
}

func TestParseUpload_SideEffectFailuresAreIgnored(t *testing.T) {
	svc := newTestService(Components{
		TextExtractor: &MockTextExtractor{text: sampleResume},
		Objects:       &MockObjectStore{err: errors.New("bucket missing")},
		Records:       &MockRecordStore{saveErr: errors.New("db down")},
		Events:        &MockEventPublisher{err: errors.New("channel closed")},
	})

	result, err := svc.ParseUpload(context.Background(), "resume.txt", []byte(sampleResume))
	require.NoError(t, err)
	assert.Equal(t, "John Smith", result.Record.Name)
}

func TestParseUpload_Validation(t *testing.T) {
	extractor := &MockTextExtractor{text: sampleResume}
	svc := newTestService(Components{TextExtractor: extractor})

	_, err := svc.ParseUpload(context.Background(), "photo.png", []byte("png"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFileType))
	assert.Contains(t, err.Error(), "Please upload a PDF, Word document, or text file")

	_, err = svc.ParseUpload(context.Background(), "big.txt", make([]byte, 2048))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileTooLarge))

	assert.Equal(t, 0, extractor.calls, "校验失败时不应调用解码器")
}

func TestParseUpload_DecodeErrors(t *testing.T) {
	svc := newTestService(Components{TextExtractor: &MockTextExtractor{err: errors.New("corrupt xref table")}})
	_, err := svc.ParseUpload(context.Background(), "resume.pdf", []byte("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecodeFailed))

	svc = newTestService(Components{TextExtractor: &MockTextExtractor{err: parser.ErrUnsupportedFormat}})
	_, err = svc.ParseUpload(context.Background(), "resume.txt", []byte{0xff, 0xfe})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFileType))

	svc = newTestService(Components{TextExtractor: &MockTextExtractor{text: "   "}})
	_, err = svc.ParseUpload(context.Background(), "resume.txt", []byte("   "))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyResume))
}

func TestParseUpload_NoExtractor(t *testing.T) {
	svc := newTestService(Components{})
	_, err := svc.ParseUpload(context.Background(), "resume.txt", []byte(sampleResume))
	assert.ErrorIs(t, err, ErrExtractorNotInit)
}

func TestParseText_PacingDelayHonoursCancellation(t *testing.T) {
	svc := newTestService(Components{}, WithParseDelay(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := svc.ParseText(ctx, sampleResume)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestParseText_PacingDelayWaits(t *testing.T) {
	svc := newTestService(Components{}, WithParseDelay(30*time.Millisecond))

	start := time.Now()
	_, err := svc.ParseText(context.Background(), sampleResume)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestGetResult(t *testing.T) {
	store := &MockRecordStore{}
	svc := newTestService(Components{Records: store})

	parsed, err := svc.ParseText(context.Background(), sampleResume)
	require.NoError(t, err)

	got, err := svc.GetResult(context.Background(), parsed.SubmissionUUID)
	require.NoError(t, err)
	assert.Equal(t, parsed.SubmissionUUID, got.SubmissionUUID)
	assert.Equal(t, parsed.Record.Name, got.Record.Name)
	assert.Equal(t, parsed.Record.Experience, got.Record.Experience)

	_, err = svc.GetResult(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrResultNotFound)

	_, err = newTestService(Components{}).GetResult(context.Background(), "any")
	assert.ErrorIs(t, err, ErrStoreNotInit)
}

func TestSearchJobs(t *testing.T) {
	svc := newTestService(Components{})
	parsed, err := svc.ParseText(context.Background(), sampleResume)
	require.NoError(t, err)

	all, err := svc.SearchJobs(context.Background(), parsed.Record, types.JobFilterAll)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, all[i-1].MatchPercentage, all[i].MatchPercentage)
	}

	best, err := svc.SearchJobs(context.Background(), parsed.Record, types.JobFilterBest)
	require.NoError(t, err)
	for _, match := range best {
		assert.GreaterOrEqual(t, match.MatchPercentage, 80)
	}
}

func TestSearchJobs_Cancelled(t *testing.T) {
	svc := newTestService(Components{}, WithSearchDelay(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.SearchJobs(ctx, &types.ResumeRecord{}, types.JobFilterAll)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithStorage_SkipsNilAdapters(t *testing.T) {
	comp := Components{}
	WithStorage(&storage.Storage{})(&comp)
	assert.Nil(t, comp.Cache)
	assert.Nil(t, comp.Objects)
	assert.Nil(t, comp.Records)
	assert.Nil(t, comp.Events)

	WithStorage(nil)(&comp)
	assert.Nil(t, comp.Cache)
}

func TestNewResumeServiceFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Pacing.ParseDelay = "0s"
	cfg.Pacing.SearchDelay = "bogus"
	cfg.Upload.MaxSizeMB = 2

	svc, err := NewResumeServiceFromConfig(context.Background(), cfg, &storage.Storage{})
	require.NoError(t, err)

	settings := svc.Settings()
	assert.Equal(t, time.Duration(0), settings.ParseDelay)
	assert.Equal(t, 1500*time.Millisecond, settings.SearchDelay)
	assert.Equal(t, int64(2*1024*1024), settings.MaxUploadBytes)

	result, err := svc.ParseUpload(context.Background(), "resume.txt", []byte(sampleResume))
	require.NoError(t, err)
	assert.Equal(t, "John Smith", result.Record.Name)

	_, err = NewResumeServiceFromConfig(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestNewResumeServiceFromConfig_TikaBackend(t *testing.T) {
	tika := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		_, _ = w.Write([]byte(sampleResume))
	}))
	defer tika.Close()

	cfg := config.DefaultConfig()
	cfg.Pacing.ParseDelay = "0s"
	cfg.Parser.TikaURL = tika.URL

	svc, err := NewResumeServiceFromConfig(context.Background(), cfg, nil)
	require.NoError(t, err)

	result, err := svc.ParseUpload(context.Background(), "resume.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "John Smith", result.Record.Name)
}

// 包级 tracer 只会委托给第一次设置的全局 provider，所以 recorder 只建一次
var processorSpans = sync.OnceValue(func() *tracetest.SpanRecorder {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	return recorder
})

func TestParseUpload_SpanAttributesMasked(t *testing.T) {
	recorder := processorSpans()
	svc := newTestService(Components{TextExtractor: &MockTextExtractor{text: sampleResume}})

	result, err := svc.ParseUpload(context.Background(), "john_smith_resume.pdf", []byte("%PDF"))
	require.NoError(t, err)

	attrs := map[string]string{}
	for _, span := range recorder.Ended() {
		mine := false
		for _, kv := range span.Attributes() {
			if string(kv.Key) == "submission_uuid" && kv.Value.AsString() == result.SubmissionUUID {
				mine = true
			}
		}
		if !mine {
			continue
		}
		for _, kv := range span.Attributes() {
			attrs[string(kv.Key)] = kv.Value.Emit()
		}
	}

	assert.Equal(t, "jo******om", attrs["resume.email"])
	assert.Equal(t, tracing.MaskPII("john_smith_resume.pdf"), attrs["file_name"])
	assert.NotContains(t, attrs["file_name"], "smith")
	assert.Equal(t, "1", attrs["resume.experience"])
}
