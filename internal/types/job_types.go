package types

// JobFilter 岗位列表过滤方式
type JobFilter string

const (
	// JobFilterAll 返回全部岗位
	JobFilterAll JobFilter = "all"
	// JobFilterBest 仅返回高匹配度岗位
	JobFilterBest JobFilter = "best"
)

// JobListing 岗位目录中的一条岗位信息
type JobListing struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Location       string   `json:"location"`
	Salary         string   `json:"salary"`
	JobType        string   `json:"job_type"`
	PostedTime     string   `json:"posted_time"`
	Description    string   `json:"description"`
	RequiredSkills []string `json:"required_skills"`
	MinYears       int      `json:"min_years,omitempty"` // 要求的最低工作年限
}

// JobMatch 岗位与简历的匹配结果
type JobMatch struct {
	JobListing
	MatchPercentage int      `json:"match_percentage"`
	MatchedSkills   []string `json:"matched_skills"`
	MissingSkills   []string `json:"missing_skills"`
	MatchReasons    []string `json:"match_reasons"`
}
