package processor

import (
	"time"

	"resume-flow-go/internal/storage"
)

// Components 服务依赖的组件，nil 表示对应功能关闭
type Components struct {
	// 核心组件接口
	TextExtractor   TextExtractor   // 文档解码
	ResumeExtractor ResumeExtractor // 字段提取
	Matcher         JobMatcher      // 岗位匹配

	// 存储层依赖
	Cache   RecordCache
	Objects ObjectStore
	Records RecordStore
	Events  EventPublisher
	// 设置后解析记录与事件同事务写入，由 outbox 中继投递，Events 不再直接发布
	Outbox OutboxWriter
}

// Settings 纯配置项，不包含任何业务逻辑组件
type Settings struct {
	ParseDelay     time.Duration // 解析前的展示性等待
	SearchDelay    time.Duration // 岗位搜索前的展示性等待
	MaxUploadBytes int64         // 上传文件大小上限，<=0 表示不限制

	// 写入 outbox 的事件投递目标
	EventExchange   string
	EventRoutingKey string
}

// ComponentOpt 组件选项类型，仅改变 Components 结构体内的字段
type ComponentOpt func(*Components)

// SettingOpt 设置选项类型，仅改变 Settings 结构体内的字段
type SettingOpt func(*Settings)

// ----- 组件选项 -----

// WithTextExtractor 设置文档解码组件
func WithTextExtractor(extractor TextExtractor) ComponentOpt {
	return func(c *Components) {
		c.TextExtractor = extractor
	}
}

// WithResumeExtractor 设置字段提取组件
func WithResumeExtractor(extractor ResumeExtractor) ComponentOpt {
	return func(c *Components) {
		c.ResumeExtractor = extractor
	}
}

// WithJobMatcher 设置岗位匹配组件
func WithJobMatcher(matcher JobMatcher) ComponentOpt {
	return func(c *Components) {
		c.Matcher = matcher
	}
}

// WithRecordCache 设置解析结果缓存
func WithRecordCache(cache RecordCache) ComponentOpt {
	return func(c *Components) {
		c.Cache = cache
	}
}

// WithObjectStore 设置原始文件存储
func WithObjectStore(store ObjectStore) ComponentOpt {
	return func(c *Components) {
		c.Objects = store
	}
}

// WithRecordStore 设置解析记录存储
func WithRecordStore(store RecordStore) ComponentOpt {
	return func(c *Components) {
		c.Records = store
	}
}

// WithEventPublisher 设置事件发布组件
func WithEventPublisher(publisher EventPublisher) ComponentOpt {
	return func(c *Components) {
		c.Events = publisher
	}
}

// WithOutbox 设置事务性发件箱
func WithOutbox(w OutboxWriter) ComponentOpt {
	return func(c *Components) {
		c.Outbox = w
	}
}

// WithStorage 把已初始化的存储组件接入服务
// 只接入非 nil 的适配器，避免 nil 指针被包装成非 nil 接口
func WithStorage(s *storage.Storage) ComponentOpt {
	return func(c *Components) {
		if s == nil {
			return
		}
		if s.Redis != nil {
			c.Cache = s.Redis
		}
		if s.MinIO != nil {
			c.Objects = s.MinIO
		}
		if s.MySQL != nil {
			c.Records = s.MySQL
		}
		if s.RabbitMQ != nil {
			c.Events = s.RabbitMQ
		}
	}
}

// ----- 设置选项 -----

// WithParseDelay 设置解析等待时间
func WithParseDelay(d time.Duration) SettingOpt {
	return func(s *Settings) {
		if d >= 0 {
			s.ParseDelay = d
		}
	}
}

// WithSearchDelay 设置岗位搜索等待时间
func WithSearchDelay(d time.Duration) SettingOpt {
	return func(s *Settings) {
		if d >= 0 {
			s.SearchDelay = d
		}
	}
}

// WithMaxUploadBytes 设置上传大小上限
func WithMaxUploadBytes(n int64) SettingOpt {
	return func(s *Settings) {
		s.MaxUploadBytes = n
	}
}

// WithEventRoute 设置 outbox 事件的交换机和路由键
func WithEventRoute(exchange, routingKey string) SettingOpt {
	return func(s *Settings) {
		s.EventExchange = exchange
		s.EventRoutingKey = routingKey
	}
}
