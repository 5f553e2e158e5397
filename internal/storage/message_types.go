package storage

import "time"

// ResumeParsedMessage 简历解析完成事件
type ResumeParsedMessage struct {
	SubmissionUUID    string    `json:"submission_uuid"`
	FileName          string    `json:"file_name,omitempty"`
	TextMD5           string    `json:"text_md5"`
	OriginalObjectKey string    `json:"original_object_key,omitempty"` // MinIO中的对象路径
	ParserVersion     string    `json:"parser_version"`
	Name              string    `json:"name"`
	Email             string    `json:"email,omitempty"`
	SkillCount        int       `json:"skill_count"`
	ExperienceCount   int       `json:"experience_count"`
	EducationCount    int       `json:"education_count"`
	ParsedAt          time.Time `json:"parsed_at"`
}
