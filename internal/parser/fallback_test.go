package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/types"
)

const sampleResume = `John Doe
Austin, TX | john@x.com | (512) 555-0143 | linkedin.com/in/johndoe

Summary
Backend engineer with a focus on distributed systems.

Experience

Senior Engineer at Acme Corp 2019 - 2022
• Built resume processing pipeline with Python and Redis
• Led a team of four engineers across two product lines

Education

State University
Bachelor of Science in Computer Science 2015 - 2019
GPA: 3.8

Skills
Python, Go, Redis, PostgreSQL`

func TestSplitSections(t *testing.T) {
	sections := SplitSections(sampleResume)

	// 1. 四个段落按出现顺序识别
	assert.Equal(t, []string{"summary", "experience", "education", "skills"}, sections.Names())

	// 2. 段落内容归属正确
	assert.Contains(t, sections.Get("summary"), "distributed systems")
	assert.Contains(t, sections.Get("experience"), "Acme Corp")
	assert.Contains(t, sections.Get("education"), "State University")
	assert.Contains(t, sections.Get("skills"), "PostgreSQL")
}

func TestSplitSectionsAliases(t *testing.T) {
	text := "Work Experience:\nAcme stuff\n\nAcademic Background\nSchool stuff\n\nTechnical Skills\nGo"
	sections := SplitSections(text)

	assert.True(t, sections.Has("experience"), "别名应映射到标准段落名")
	assert.True(t, sections.Has("education"))
	assert.True(t, sections.Has("skills"))
	assert.Contains(t, sections.Get("experience"), "Acme stuff")
}

func TestExtractPersonal(t *testing.T) {
	personal := ExtractPersonal(sampleResume)

	assert.Equal(t, "John Doe", personal.Name, "姓名取自首行")
	assert.Equal(t, "john@x.com", personal.Email)
	assert.Equal(t, "(512) 555-0143", personal.PhoneNumber)
	assert.Equal(t, "Austin, TX", personal.Location, "位置取自头部联系行")
}

func TestExtractPersonalRejectsNonName(t *testing.T) {
	// 首行不像人名时不提取姓名
	personal := ExtractPersonal("Curriculum Vitae 2024\njane@y.org")
	assert.Empty(t, personal.Name, "带数字的首行不应当作姓名")
	assert.Equal(t, "jane@y.org", personal.Email)
}

func TestParseExperience(t *testing.T) {
	sections := SplitSections(sampleResume)
	entries := ParseExperience(sections.Get("experience"))

	require.Len(t, entries, 1)
	assert.Equal(t, "Senior Engineer", entries[0].JobTitle)
	assert.Equal(t, "Acme Corp", entries[0].Company)
	assert.Equal(t, "2019", entries[0].StartDate)
	assert.Equal(t, "2022", entries[0].EndDate)
	assert.False(t, entries[0].IsCurrent)
	assert.Len(t, entries[0].Description, 2, "项目符号行进描述")
}

func TestParseExperienceCurrentPosition(t *testing.T) {
	entries := ParseExperience("Staff Engineer - BigCo Jan 2021 - Present\n• Runs the platform team")

	require.Len(t, entries, 1)
	assert.Equal(t, "Staff Engineer", entries[0].JobTitle)
	assert.Equal(t, "BigCo", entries[0].Company)
	assert.Equal(t, "Jan 2021", entries[0].StartDate)
	assert.Empty(t, entries[0].EndDate, "在职岗位结束日期置空")
	assert.True(t, entries[0].IsCurrent)
}

func TestParseExperienceCleansTechStackEmployer(t *testing.T) {
	// 雇主位置混入技术栈时只留公司名
	entries := ParseExperience("Backend Developer - Initech, Python, Docker, Redis\n• Shipped internal tools weekly")

	require.Len(t, entries, 1)
	assert.Equal(t, "Initech", entries[0].Company)
}

func TestParseEducation(t *testing.T) {
	sections := SplitSections(sampleResume)
	entries := ParseEducation(sections.Get("education"))

	require.Len(t, entries, 1)
	assert.Equal(t, "State University", entries[0].SchoolName)
	assert.Equal(t, "Bachelor of Science in Computer Science", entries[0].Degree)
	assert.Equal(t, "2015", entries[0].StartDate)
	assert.Equal(t, "2019", entries[0].EndDate)
	assert.Equal(t, []string{"GPA: 3.8"}, entries[0].Description)
}

func TestConsolidateSkills(t *testing.T) {
	sections := SplitSections(sampleResume)
	experience := ParseExperience(sections.Get("experience"))
	skills := ConsolidateSkills(sections, experience)

	names := make([]string, 0, len(skills))
	for _, s := range skills {
		names = append(names, s.SkillName)
	}
	assert.Equal(t, []string{"Python", "Go", "Redis", "PostgreSQL"}, names, "技能段加描述挖掘后去重")
}

func TestExtractSkillsFromTextHeuristics(t *testing.T) {
	// 1. 已知词表用规范写法
	skills := ExtractSkillsFromText("python, POSTGRESQL, Node.js")
	assert.Equal(t, []string{"Python", "PostgreSQL", "Node.js"}, skills)

	// 2. 冒号标签左右展开
	skills = ExtractSkillsFromText("ERP Systems: SAP HANA / Oracle")
	assert.Contains(t, skills, "ERP Systems")
	assert.Contains(t, skills, "SAP HANA")
	assert.Contains(t, skills, "Oracle")

	// 3. 纯数字和停用词被过滤
	skills = ExtractSkillsFromText("42, and, with, 3.14")
	assert.Empty(t, skills)
}

func TestExtractSocialLinks(t *testing.T) {
	text := "linkedin.com/in/johndoe\nhttps://github.com/johndoe\nportfolio-site.dev\njohn@gmail.com"
	links := ExtractSocialLinks(text)

	require.Len(t, links, 3, "邮箱域名不算作品集链接")
	assert.Equal(t, types.SocialLink{Label: "LinkedIn", URL: "https://linkedin.com/in/johndoe"}, links[0])
	assert.Equal(t, types.SocialLink{Label: "GitHub", URL: "https://github.com/johndoe"}, links[1])
	assert.Equal(t, types.SocialLink{Label: "Portfolio", URL: "https://portfolio-site.dev"}, links[2])
}

func TestParseCertifications(t *testing.T) {
	text := "• AWS Certified Solutions Architect - Amazon, 2022\nCKA, 2023"
	certs := ParseCertifications(text)

	require.Len(t, certs, 2)
	assert.Equal(t, "AWS Certified Solutions Architect", certs[0].Name)
	assert.Equal(t, "Amazon", certs[0].Issuer)
	assert.Equal(t, "2022", certs[0].Year)
	assert.Equal(t, "CKA", certs[1].Name)
	assert.Equal(t, "2023", certs[1].Year)
}

func TestParseProjects(t *testing.T) {
	text := "Resume Pipeline 2023\n• Parses documents end to end\nTechnologies used: Python, Redis\n\nTiny Tool"
	projects := ParseProjects(text)

	require.Len(t, projects, 1, "过短的块被跳过")
	assert.Equal(t, "Resume Pipeline", projects[0].Name)
	assert.Equal(t, []string{"• Parses documents end to end"}, projects[0].Description)
	assert.Equal(t, []string{"Python", "Redis"}, projects[0].Technologies)
}

func TestRegexExtractorEndToEnd(t *testing.T) {
	extractor := NewRegexExtractor()

	outcome, err := extractor.Extract(context.Background(), &types.ExtractedText{Content: sampleResume})
	require.NoError(t, err, "规则提取器不返回错误")

	profile := outcome.Profile
	require.NotNil(t, profile)

	// 1. 基本信息与档案链接
	require.NotNil(t, profile.PersonalDetails)
	assert.Equal(t, "John Doe", profile.PersonalDetails.Name)
	assert.Equal(t, "john@x.com", profile.PersonalDetails.Email)
	assert.Equal(t, "https://linkedin.com/in/johndoe", profile.PersonalDetails.ProfileLink)

	// 2. 摘要、经历、教育、技能齐备
	assert.Equal(t, "Backend engineer with a focus on distributed systems.", profile.ProfessionalSummary)
	require.Len(t, profile.WorkExperience, 1)
	assert.Equal(t, "Acme Corp", profile.WorkExperience[0].Company)
	require.Len(t, profile.Education, 1)
	assert.Len(t, profile.Skills, 4)
	assert.Len(t, profile.SocialLinks, 1)

	// 3. 策略诊断
	assert.Equal(t, []string{"summary", "experience", "education", "skills"}, outcome.SectionsFound)
	assert.False(t, outcome.Partial)
	assert.False(t, profile.IsEmpty())
}

func TestRegexExtractorEmptyText(t *testing.T) {
	extractor := NewRegexExtractor()

	outcome, err := extractor.Extract(context.Background(), &types.ExtractedText{Content: ""})
	require.NoError(t, err, "空文本也不返回错误")
	require.NotNil(t, outcome.Profile)
	assert.True(t, outcome.Profile.IsEmpty(), "最差情况是空档案")
	assert.True(t, outcome.Partial)
	assert.Empty(t, outcome.SectionsFound)
}
