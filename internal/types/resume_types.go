package types

// PresentLabel 表示仍在进行中的经历的结束日期
const PresentLabel = "Present"

// ResumeRecord 简历结构化提取结果
// 每次提取调用创建一次，构造后不再修改，由调用方独占
type ResumeRecord struct {
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Phone      string            `json:"phone"`
	Location   string            `json:"location"`
	Skills     []string          `json:"skills"`
	Experience []ExperienceEntry `json:"experience"`
	Education  []EducationEntry  `json:"education"`
	Summary    string            `json:"summary"`
}

// ExperienceEntry 工作经历条目
type ExperienceEntry struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"` // 为空时由调用方显示为 "Present"
	Description string `json:"description"`
}

// EducationEntry 教育经历条目
type EducationEntry struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

// DisplayEndDate 返回用于展示的结束日期
func (e ExperienceEntry) DisplayEndDate() string {
	if e.EndDate == "" {
		return PresentLabel
	}
	return e.EndDate
}
