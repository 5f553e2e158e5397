package jobs

import "resume-flow-go/internal/types"

// catalog 固定的岗位目录，进程内只读
var catalog = []types.JobListing{
	{
		ID:         "job1",
		Title:      "Senior Frontend Engineer",
		Company:    "Innovative Tech",
		Location:   "San Francisco, CA (Remote)",
		Salary:     "$140,000 - $180,000",
		JobType:    "Full-time",
		PostedTime: "2 days ago",
		Description: "We're looking for a Senior Frontend Engineer to join our product team. " +
			"You'll build and maintain high-quality web applications with React.js, build reusable components, " +
			"translate designs into high-quality code and optimize applications for maximum performance.\n\n" +
			"Requirements:\n" +
			"• 5+ years of experience in frontend development\n" +
			"• Strong proficiency in JavaScript and a thorough understanding of React.js\n" +
			"• Experience with popular React.js workflows such as Redux\n" +
			"• Experience with frontend build tools such as Babel and Webpack",
		RequiredSkills: []string{"JavaScript", "React", "TypeScript", "Redux", "HTML/CSS", "Webpack", "Frontend Testing"},
		MinYears:       5,
	},
	{
		ID:         "job2",
		Title:      "Frontend Developer",
		Company:    "Growth Startup",
		Location:   "Remote",
		Salary:     "$120,000 - $150,000",
		JobType:    "Full-time",
		PostedTime: "1 week ago",
		Description: "We are seeking a skilled Frontend Developer to implement the visual elements users " +
			"see and interact with in a web application.\n\n" +
			"Requirements:\n" +
			"• 3+ years of experience with JavaScript\n" +
			"• 2+ years of experience with React.js\n" +
			"• Experience with responsive design and server-side CSS pre-processing\n" +
			"• Familiarity with GraphQL; experience with AWS is a plus",
		RequiredSkills: []string{"JavaScript", "React", "CSS", "GraphQL", "Responsive Design", "AWS"},
		MinYears:       3,
	},
	{
		ID:         "job3",
		Title:      "Lead React Developer",
		Company:    "Enterprise Solutions",
		Location:   "San Francisco, CA",
		Salary:     "$160,000 - $190,000",
		JobType:    "Full-time",
		PostedTime: "3 days ago",
		Description: "We are looking for a Lead React Developer to architect and implement frontend solutions, " +
			"mentor junior developers and keep code quality high across projects.\n\n" +
			"Requirements:\n" +
			"• 7+ years of frontend development experience\n" +
			"• Strong knowledge of TypeScript and state management libraries (Redux, MobX)\n" +
			"• Understanding of CI/CD pipelines and test-driven development\n" +
			"• Leadership experience is preferred",
		RequiredSkills: []string{"React", "TypeScript", "Redux", "JavaScript", "CI/CD", "Leadership", "Testing"},
		MinYears:       7,
	},
	{
		ID:         "job4",
		Title:      "Full Stack Developer",
		Company:    "Tech Innovators",
		Location:   "New York, NY (Hybrid)",
		Salary:     "$130,000 - $160,000",
		JobType:    "Full-time",
		PostedTime: "5 days ago",
		Description: "We're seeking a Full Stack Developer proficient with both frontend and backend development, " +
			"with experience in React, Node.js and database technologies.\n\n" +
			"Requirements:\n" +
			"• 4+ years of full stack development experience\n" +
			"• Experience with React.js, Node.js and MongoDB or PostgreSQL\n" +
			"• Understanding of RESTful APIs and version control (Git)\n" +
			"• Experience with AWS services and agile methodologies",
		RequiredSkills: []string{"JavaScript", "React", "Node.js", "MongoDB", "PostgreSQL", "Git", "AWS"},
		MinYears:       4,
	},
	{
		ID:         "job5",
		Title:      "UI Engineer",
		Company:    "Design Forward",
		Location:   "Remote",
		Salary:     "$125,000 - $155,000",
		JobType:    "Full-time",
		PostedTime: "1 day ago",
		Description: "We are looking for a UI Engineer with a strong design sense to translate design concepts " +
			"into functional, accessible interfaces.\n\n" +
			"Requirements:\n" +
			"• 3+ years of experience in frontend development\n" +
			"• Strong proficiency in HTML, CSS and JavaScript\n" +
			"• Experience with React or similar frontend frameworks\n" +
			"• Strong understanding of UI/UX principles and animation",
		RequiredSkills: []string{"HTML", "CSS", "JavaScript", "React", "UI/UX", "Animation", "Responsive Design"},
		MinYears:       3,
	},
}

// Catalog 返回岗位目录的副本
func Catalog() []types.JobListing {
	out := make([]types.JobListing, len(catalog))
	for i, job := range catalog {
		job.RequiredSkills = append([]string(nil), job.RequiredSkills...)
		out[i] = job
	}
	return out
}
