package parser

import (
	"sort"
	"strings"
	"time"

	"resume-parser-go/internal/types"
)

// looseDateFormats 两条提取路径会产出的日期写法
var looseDateFormats = []string{
	"02-01-2006", // DD-MM-YYYY 规范格式
	"2006-01-02",
	"01/2006",
	"02/01/2006",
	"Jan 2006",
	"January 2006",
	"2006",
}

// parseDateLoose 宽松解析日期，失败返回零值
func parseDateLoose(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range looseDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// PostprocessProfile 统一整理档案输出，不发明新内容
// 空白字段置空、经历和教育去重排序、技能按名字去重
func PostprocessProfile(p *types.CandidateProfile) {
	if p == nil {
		return
	}

	if p.PersonalDetails != nil {
		trimPersonal(p.PersonalDetails)
		if p.PersonalDetails.IsEmpty() {
			p.PersonalDetails = nil
		}
	}
	p.ProfessionalSummary = strings.TrimSpace(p.ProfessionalSummary)

	p.WorkExperience = dedupeExperience(p.WorkExperience)
	sortExperience(p.WorkExperience)

	p.Education = dedupeEducation(p.Education)
	sortEducation(p.Education)

	p.Skills = dedupeSkills(p.Skills)
}

func trimPersonal(d *types.PersonalDetails) {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	d.PhoneNumber = strings.TrimSpace(d.PhoneNumber)
	d.Location = strings.TrimSpace(d.Location)
	d.ProfileLink = strings.TrimSpace(d.ProfileLink)
}

func dedupeExperience(items []types.WorkExperience) []types.WorkExperience {
	if len(items) == 0 {
		return items
	}
	seen := make(map[string]bool, len(items))
	out := make([]types.WorkExperience, 0, len(items))
	for _, it := range items {
		key := strings.ToLower(strings.TrimSpace(it.JobTitle)) + "\x00" +
			strings.ToLower(strings.TrimSpace(it.Company)) + "\x00" +
			strings.ToLower(strings.TrimSpace(it.StartDate)) + "\x00" +
			strings.ToLower(strings.TrimSpace(it.EndDate))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out
}

func dedupeEducation(items []types.EducationEntry) []types.EducationEntry {
	if len(items) == 0 {
		return items
	}
	seen := make(map[string]bool, len(items))
	out := make([]types.EducationEntry, 0, len(items))
	for _, it := range items {
		key := strings.ToLower(strings.TrimSpace(it.SchoolName)) + "\x00" +
			strings.ToLower(strings.TrimSpace(it.Degree)) + "\x00" +
			strings.ToLower(strings.TrimSpace(it.EndDate)) + "\x00" +
			strings.ToLower(strings.TrimSpace(it.StartDate))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out
}

func dedupeSkills(items []types.Skill) []types.Skill {
	if len(items) == 0 {
		return items
	}
	seen := make(map[string]bool, len(items))
	out := make([]types.Skill, 0, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.SkillName)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out
}

// sortExperience 在职的排最前，其余按开始日期降序，再按结束日期降序
func sortExperience(items []types.WorkExperience) {
	rank := func(it types.WorkExperience) int {
		if it.IsCurrent {
			return 0
		}
		if strings.TrimSpace(it.EndDate) == "" && !parseDateLoose(it.StartDate).IsZero() {
			return 0
		}
		return 1
	}
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := rank(items[i]), rank(items[j])
		if ri != rj {
			return ri < rj
		}
		si, sj := parseDateLoose(items[i].StartDate), parseDateLoose(items[j].StartDate)
		if !si.Equal(sj) {
			return si.After(sj)
		}
		return parseDateLoose(items[i].EndDate).After(parseDateLoose(items[j].EndDate))
	})
}

// sortEducation 按结束日期降序，再按开始日期降序
func sortEducation(items []types.EducationEntry) {
	sort.SliceStable(items, func(i, j int) bool {
		ei, ej := parseDateLoose(items[i].EndDate), parseDateLoose(items[j].EndDate)
		if !ei.Equal(ej) {
			return ei.After(ej)
		}
		return parseDateLoose(items[i].StartDate).After(parseDateLoose(items[j].StartDate))
	})
}
