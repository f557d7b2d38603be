package types

import "strings"

// PersonalDetails 候选人基本信息
type PersonalDetails struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Location    string `json:"location,omitempty"`
	ProfileLink string `json:"profileLink,omitempty"`
}

// IsEmpty 所有字段均为空白时返回 true
func (p *PersonalDetails) IsEmpty() bool {
	if p == nil {
		return true
	}
	for _, v := range []string{p.Name, p.Email, p.PhoneNumber, p.Location, p.ProfileLink} {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// WorkExperience 一段工作经历
// Description 保留简历中的条目顺序
type WorkExperience struct {
	JobTitle    string   `json:"jobTitle,omitempty"`
	Company     string   `json:"company,omitempty"`
	StartDate   string   `json:"startDate,omitempty"`
	EndDate     string   `json:"endDate,omitempty"`
	IsCurrent   bool     `json:"isCurrent"`
	Location    string   `json:"location,omitempty"`
	Description []string `json:"description,omitempty"`
	Skills      []string `json:"skills,omitempty"`
}

// EducationEntry 一段教育经历
type EducationEntry struct {
	SchoolName  string   `json:"schoolName,omitempty"`
	Degree      string   `json:"degree,omitempty"`
	StartDate   string   `json:"startDate,omitempty"`
	EndDate     string   `json:"endDate,omitempty"`
	Location    string   `json:"location,omitempty"`
	Description []string `json:"description,omitempty"`
}

// Skill 单项技能，ExperienceLevel 为可选分组标签
type Skill struct {
	SkillName       string `json:"skillName"`
	ExperienceLevel string `json:"experienceLevel,omitempty"`
}

// Certification 证书条目
type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
	Year   string `json:"year,omitempty"`
}

// Project 项目经历
type Project struct {
	Name         string   `json:"name"`
	Description  []string `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

// SocialLink 社交与作品链接
type SocialLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// CandidateProfile 结构化候选人档案，所有字段均可缺省
type CandidateProfile struct {
	PersonalDetails     *PersonalDetails `json:"personalDetails,omitempty"`
	ProfessionalSummary string           `json:"professionalSummary,omitempty"`
	WorkExperience      []WorkExperience `json:"workExperience"`
	Education           []EducationEntry `json:"education"`
	Skills              []Skill          `json:"skills"`
	Certifications      []Certification  `json:"certifications,omitempty"`
	Projects            []Project        `json:"projects,omitempty"`
	SocialLinks         []SocialLink     `json:"socialLinks,omitempty"`
}

// IsEmpty 档案完全为空时返回 true
// 判定规则：基本信息无任何值、摘要为空白、且所有列表字段长度为零
// 只含技能的档案视为非空
func (p *CandidateProfile) IsEmpty() bool {
	if p == nil {
		return true
	}
	if !p.PersonalDetails.IsEmpty() {
		return false
	}
	if strings.TrimSpace(p.ProfessionalSummary) != "" {
		return false
	}
	return len(p.WorkExperience) == 0 &&
		len(p.Education) == 0 &&
		len(p.Skills) == 0 &&
		len(p.Certifications) == 0 &&
		len(p.Projects) == 0 &&
		len(p.SocialLinks) == 0
}

// EnsureSlices 将 nil 列表替换为空切片，保证序列化输出为 [] 而不是 null
func (p *CandidateProfile) EnsureSlices() {
	if p == nil {
		return
	}
	if p.WorkExperience == nil {
		p.WorkExperience = []WorkExperience{}
	}
	if p.Education == nil {
		p.Education = []EducationEntry{}
	}
	if p.Skills == nil {
		p.Skills = []Skill{}
	}
}
