package parser

// maxSkills 单份简历最多返回的技能数量
const maxSkills = 15

// skillVocabulary 已知技能词表，按返回顺序排列，全部小写
// 进程级只读表，匹配方式为不区分大小写的子串包含
var skillVocabulary = []string{
	"javascript", "typescript", "python", "java", "c++", "c#", "ruby", "php", "swift",
	"kotlin", "go", "rust", "html", "css", "react", "angular", "vue", "svelte",
	"node", "express", "django", "flask", "spring", "asp.net", "laravel", "rails",
	"mongodb", "mysql", "postgresql", "oracle", "sql server", "firebase", "aws",
	"azure", "gcp", "docker", "kubernetes", "jenkins", "ci/cd", "git", "github",
	"gitlab", "jira", "agile", "scrum", "kanban", "rest", "graphql", "grpc",
	"redux", "mobx", "vuex", "flutter", "react native", "electron", "webpack",
	"babel", "sass", "less", "tailwind", "bootstrap", "material-ui", "figma",
	"sketch", "adobe xd", "photoshop", "illustrator", "machine learning", "ai",
	"data science", "data analysis", "tensorflow", "pytorch", "opencv", "nlp",
	"blockchain", "cryptocurrency", "solidity", "web3", "devops", "sre",
	"security", "penetration testing", "ethical hacking", "network", "system administration",
	"linux", "windows", "macos", "ios", "android", "mobile development", "responsive design",
	"accessibility", "seo", "performance optimization", "unit testing", "integration testing",
	"e2e testing", "test automation", "jest", "mocha", "cypress", "selenium",
	"product management", "project management", "team leadership", "mentoring",
	"communication", "problem solving", "critical thinking", "time management",
	"multitasking", "attention to detail", "creativity", "innovation",
}

// 经历条目的角色关键词
var roleKeywords = []string{
	"senior", "junior", "lead", "principal", "director", "manager",
	"developer", "engineer", "analyst", "specialist", "consultant",
}

// 学位关键词
var degreeKeywords = []string{
	"bachelor", "master", "phd", "doctor", "associate", "diploma", "certificate",
	"mba", "bs", "ba", "ms", "ma", "bsc", "msc", "btech", "mtech",
}

// 学位短语，例如 "Bachelor of Science" 中的 "of science"
var degreePhrases = []string{
	"of science", "of arts", "of engineering", "of business", "of technology",
}

// 院校关键词
var institutionKeywords = []string{
	"university", "college", "institute", "school", "academy",
}

// SkillVocabulary 返回技能词表的副本
func SkillVocabulary() []string {
	out := make([]string, len(skillVocabulary))
	copy(out, skillVocabulary)
	return out
}
