package parser

import (
	"context"
	"io"
	"log"
	"strings"

	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/types"
)

// RegexExtractor 规则回退提取器
// 纯本地规则匹配，不访问网络，永不返回错误，最差情况给出空档案
type RegexExtractor struct {
	logger *log.Logger
}

// RegexOption 规则提取器的配置选项
type RegexOption func(*RegexExtractor)

// WithRegexLogger 设置日志记录器
func WithRegexLogger(logger *log.Logger) RegexOption {
	return func(e *RegexExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewRegexExtractor 创建规则提取器
func NewRegexExtractor(opts ...RegexOption) *RegexExtractor {
	e := &RegexExtractor{
		logger: log.New(io.Discard, "[RegexExtractor] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name 返回策略名
func (e *RegexExtractor) Name() string {
	return constants.ParserNameRegex
}

// Extract 按段落切分后逐类解析，组装候选人档案
func (e *RegexExtractor) Extract(_ context.Context, text *types.ExtractedText) (*types.ExtractionOutcome, error) {
	content := ""
	if text != nil {
		content = text.Content
	}

	sections := SplitSections(content)
	personal := ExtractPersonal(content)
	experience := ParseExperience(sections.Get("experience"))
	education := ParseEducation(sections.Get("education"))
	skills := ConsolidateSkills(sections, experience)
	socialLinks := ExtractSocialLinks(content)
	certifications := ParseCertifications(sections.Get("certifications"))
	projects := ParseProjects(sections.Get("projects"))

	profile := &types.CandidateProfile{
		ProfessionalSummary: extractSummary(sections),
		WorkExperience:      experience,
		Education:           education,
		Skills:              skills,
		Certifications:      certifications,
		Projects:            projects,
		SocialLinks:         socialLinks,
	}

	// LinkedIn主页同时作为档案链接
	for _, l := range socialLinks {
		if l.Label == "LinkedIn" {
			personal.ProfileLink = l.URL
			break
		}
	}
	if !personal.IsEmpty() {
		profile.PersonalDetails = &personal
	}

	e.logger.Printf("规则提取完成: sections=%v, experience=%d, education=%d, skills=%d",
		sections.Names(), len(experience), len(education), len(skills))

	return &types.ExtractionOutcome{
		Profile:       profile,
		SectionsFound: sections.Names(),
		Partial:       len(experience) == 0 || len(education) == 0,
	}, nil
}

// extractSummary 摘要优先取 summary 段，其次 objective 段
func extractSummary(sections *ResumeSections) string {
	if s := strings.TrimSpace(sections.Get("summary")); s != "" {
		return s
	}
	return strings.TrimSpace(sections.Get("objective"))
}
