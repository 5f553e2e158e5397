package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// ResumeModulePrefix 简历模块
	ResumeModulePrefix = "resume"

	// EntityRecord 解析结果实体
	EntityRecord = "record"

	// KeyParsedRecord 按文本MD5缓存的解析结果 (STRING, JSON)
	// 格式: app:resume:record:{textMD5}
	KeyParsedRecord = AppPrefix + ":" + ResumeModulePrefix + ":" + EntityRecord + ":%s"
)
