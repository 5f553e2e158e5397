package models

import (
	"encoding/json"
	"fmt"
	"time"

	"resume-flow-go/internal/types"
	"resume-flow-go/pkg/utils"

	"gorm.io/datatypes"
)

// ParsedResume 一次简历解析的持久化记录
type ParsedResume struct {
	SubmissionUUID    string         `gorm:"type:char(36);primaryKey"`
	FileName          string         `gorm:"type:varchar(255)"`
	TextMD5           string         `gorm:"type:char(32);index:idx_parsed_resumes_text_md5"`
	OriginalObjectKey string         `gorm:"type:varchar(512)"`
	Name              string         `gorm:"type:varchar(255)"`
	Email             string         `gorm:"type:varchar(255);index:idx_parsed_resumes_email"`
	Phone             string         `gorm:"type:varchar(50)"`
	Location          string         `gorm:"type:varchar(255)"`
	Summary           string         `gorm:"type:text"`
	SkillsJSON        datatypes.JSON `gorm:"type:json"`
	ExperienceJSON    datatypes.JSON `gorm:"type:json"`
	EducationJSON     datatypes.JSON `gorm:"type:json"`
	CreatedAt         time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt         time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (ParsedResume) TableName() string {
	return "parsed_resumes"
}

// NewParsedResume 由解析结果构造持久化记录
func NewParsedResume(submissionUUID, fileName, textMD5, objectKey string, record *types.ResumeRecord) (*ParsedResume, error) {
	if record == nil {
		return nil, fmt.Errorf("解析结果不能为空")
	}
	experience, err := json.Marshal(record.Experience)
	if err != nil {
		return nil, fmt.Errorf("序列化工作经历失败: %w", err)
	}
	education, err := json.Marshal(record.Education)
	if err != nil {
		return nil, fmt.Errorf("序列化教育经历失败: %w", err)
	}

	return &ParsedResume{
		SubmissionUUID:    submissionUUID,
		FileName:          fileName,
		TextMD5:           textMD5,
		OriginalObjectKey: objectKey,
		Name:              record.Name,
		Email:             record.Email,
		Phone:             record.Phone,
		Location:          record.Location,
		Summary:           record.Summary,
		SkillsJSON:        utils.ConvertArrayToJSON(record.Skills),
		ExperienceJSON:    datatypes.JSON(experience),
		EducationJSON:     datatypes.JSON(education),
	}, nil
}

// ToRecord 还原为 ResumeRecord
func (p *ParsedResume) ToRecord() (*types.ResumeRecord, error) {
	record := &types.ResumeRecord{
		Name:       p.Name,
		Email:      p.Email,
		Phone:      p.Phone,
		Location:   p.Location,
		Summary:    p.Summary,
		Skills:     []string{},
		Experience: []types.ExperienceEntry{},
		Education:  []types.EducationEntry{},
	}
	if len(p.SkillsJSON) > 0 {
		if err := json.Unmarshal(p.SkillsJSON, &record.Skills); err != nil {
			return nil, fmt.Errorf("解析技能JSON失败: %w", err)
		}
	}
	if len(p.ExperienceJSON) > 0 {
		if err := json.Unmarshal(p.ExperienceJSON, &record.Experience); err != nil {
			return nil, fmt.Errorf("解析工作经历JSON失败: %w", err)
		}
	}
	if len(p.EducationJSON) > 0 {
		if err := json.Unmarshal(p.EducationJSON, &record.Education); err != nil {
			return nil, fmt.Errorf("解析教育经历JSON失败: %w", err)
		}
	}
	return record, nil
}
