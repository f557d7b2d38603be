package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"resume-parser-go/internal/types"
)

// profileSchemaJSON 候选人档案的规范结构
// 日期统一 DD-MM-YYYY，但不在schema层强制，未能归一的日期原样保留
const profileSchemaJSON = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "personalDetails": {
      "type": ["object", "null"],
      "additionalProperties": false,
      "properties": {
        "name": {"type": ["string", "null"]},
        "email": {"type": ["string", "null"]},
        "phoneNumber": {"type": ["string", "null"]},
        "location": {"type": ["string", "null"]},
        "profileLink": {"type": ["string", "null"]}
      }
    },
    "professionalSummary": {"type": ["string", "null"]},
    "workExperience": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "additionalProperties": false,
        "properties": {
          "jobTitle": {"type": ["string", "null"]},
          "company": {"type": ["string", "null"]},
          "startDate": {"type": ["string", "null"]},
          "endDate": {"type": ["string", "null"]},
          "isCurrent": {"type": ["boolean", "null"]},
          "location": {"type": ["string", "null"]},
          "description": {"type": ["array", "null"], "items": {"type": "string"}},
          "skills": {"type": ["array", "null"], "items": {"type": "string"}}
        }
      }
    },
    "education": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "additionalProperties": false,
        "properties": {
          "schoolName": {"type": ["string", "null"]},
          "degree": {"type": ["string", "null"]},
          "startDate": {"type": ["string", "null"]},
          "endDate": {"type": ["string", "null"]},
          "location": {"type": ["string", "null"]},
          "description": {"type": ["array", "null"], "items": {"type": "string"}}
        }
      }
    },
    "skills": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["skillName"],
        "properties": {
          "skillName": {"type": "string"},
          "experienceLevel": {"type": ["string", "null"]}
        }
      }
    },
    "certifications": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["name"],
        "properties": {
          "name": {"type": "string"},
          "issuer": {"type": ["string", "null"]},
          "year": {"type": ["string", "null"]}
        }
      }
    },
    "projects": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["name"],
        "properties": {
          "name": {"type": "string"},
          "description": {"type": ["array", "null"], "items": {"type": "string"}},
          "technologies": {"type": ["array", "null"], "items": {"type": "string"}}
        }
      }
    },
    "socialLinks": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "additionalProperties": false,
        "properties": {
          "label": {"type": ["string", "null"]},
          "url": {"type": ["string", "null"]}
        }
      }
    }
  }
}`

var profileSchema = jsonschema.MustCompileString("candidate_profile.json", profileSchemaJSON)

// DecodeProfile 把LLM返回的JSON解码为候选人档案
// 先按规范结构严格校验，不符时做一轮同义词与格式整流后重新校验
// 两轮都不过则视为畸形响应，由调用方决定回退
func DecodeProfile(jsonStr string) (*types.CandidateProfile, error) {
	var payload any
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, fmt.Errorf("响应不是合法JSON: %w", err)
	}

	if err := profileSchema.Validate(payload); err != nil {
		payload = sanitizeProfilePayload(payload)
		if err := profileSchema.Validate(payload); err != nil {
			return nil, fmt.Errorf("响应结构不符合档案规范: %w", err)
		}
	}

	// 校验通过后结构与目标类型兼容，经字节回转完成类型化
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("序列化整流结果失败: %w", err)
	}
	var profile types.CandidateProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("档案反序列化失败: %w", err)
	}
	return &profile, nil
}

// 顶层字段的常见同义词，按优先级排列
var topLevelAliases = map[string][]string{
	"personalDetails":     {"personal"},
	"professionalSummary": {"summary"},
	"workExperience":      {"workExperiences", "experiences", "experience"},
	"education":           {"educations"},
	"socialLinks":         {"links"},
}

// sanitizeProfilePayload 宽容整流：字段改名、日期归一、字符串列表化、未知键丢弃
// 只做确定性的机械变换，不发明内容
func sanitizeProfilePayload(payload any) any {
	m, ok := payload.(map[string]any)
	if !ok {
		return payload
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	for canonical, aliases := range topLevelAliases {
		if _, exists := out[canonical]; exists {
			continue
		}
		for _, alias := range aliases {
			if v, ok := out[alias]; ok {
				out[canonical] = v
				break
			}
		}
	}

	if v, ok := out["personalDetails"]; ok {
		out["personalDetails"] = sanitizePersonal(v)
	}
	if v, ok := out["professionalSummary"]; ok {
		out["professionalSummary"] = toStringOrNil(v)
	}
	if v, ok := out["workExperience"]; ok {
		out["workExperience"] = sanitizeItems(v, sanitizeWorkItem)
	}
	if v, ok := out["education"]; ok {
		out["education"] = sanitizeItems(v, sanitizeEducationItem)
	}
	if v, ok := out["skills"]; ok {
		out["skills"] = sanitizeItems(v, sanitizeSkillItem)
	}
	if v, ok := out["certifications"]; ok {
		out["certifications"] = sanitizeItems(v, sanitizeCertificationItem)
	}
	if v, ok := out["projects"]; ok {
		out["projects"] = sanitizeItems(v, sanitizeProjectItem)
	}
	if v, ok := out["socialLinks"]; ok {
		out["socialLinks"] = sanitizeItems(v, sanitizeSocialLinkItem)
	}

	// 规范之外的顶层键一律丢弃
	known := map[string]bool{
		"personalDetails": true, "professionalSummary": true, "workExperience": true,
		"education": true, "skills": true, "certifications": true, "projects": true,
		"socialLinks": true,
	}
	for k := range out {
		if !known[k] {
			delete(out, k)
		}
	}
	return out
}

// sanitizeItems 对列表逐项整流，非列表输入返回nil以便schema判空
func sanitizeItems(v any, fn func(any) any) any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]any, 0, len(list))
	for _, item := range list {
		if cleaned := fn(item); cleaned != nil {
			out = append(out, cleaned)
		}
	}
	return out
}

func sanitizePersonal(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := map[string]any{}

	if name := toStr(m["name"]); name != "" {
		out["name"] = name
	} else {
		// 原始简历服务用 firstName/lastName 两段式
		full := strings.TrimSpace(toStr(m["firstName"]) + " " + toStr(m["lastName"]))
		if full != "" {
			out["name"] = full
		}
	}
	if email := toStr(m["email"]); email != "" {
		out["email"] = email
	}
	if phone := firstStr(m, "phoneNumber", "phone"); phone != "" {
		out["phoneNumber"] = phone
	}
	if loc := firstStr(m, "location"); loc != "" {
		out["location"] = loc
	} else {
		parts := make([]string, 0, 2)
		if city := toStr(m["city"]); city != "" {
			parts = append(parts, city)
		}
		if country := toStr(m["country"]); country != "" {
			parts = append(parts, country)
		}
		if len(parts) == 0 {
			if addr := toStr(m["address"]); addr != "" {
				parts = append(parts, addr)
			}
		}
		if len(parts) > 0 {
			out["location"] = strings.Join(parts, ", ")
		}
	}
	if link := firstStr(m, "profileLink", "linkedin", "linkedIn"); link != "" {
		out["profileLink"] = link
	}
	return out
}

func sanitizeWorkItem(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := map[string]any{}

	if s := firstStr(m, "jobTitle", "title", "position", "role"); s != "" {
		out["jobTitle"] = s
	}
	if s := firstStr(m, "company", "employer", "companyName", "organization"); s != "" {
		out["company"] = s
	}
	if s := firstStr(m, "location", "city"); s != "" {
		out["location"] = s
	}

	start := coerceDate(firstStr(m, "startDate", "start"))
	end := coerceDate(firstStr(m, "endDate", "end"))
	isCurrent := coerceBool(firstVal(m, "isCurrent", "isCurrentlyWorking", "currentlyWorking", "current"))

	// "Present"/"Current" 写在endDate里等价于在职
	if lower := strings.ToLower(firstStr(m, "endDate", "end")); lower == "present" || lower == "current" {
		isCurrent = true
		end = ""
	}
	if start != "" {
		out["startDate"] = start
	}
	if end != "" {
		out["endDate"] = end
	}
	out["isCurrent"] = isCurrent

	if desc := toStringList(firstVal(m, "description", "responsibilities")); len(desc) > 0 {
		out["description"] = desc
	}
	if sk := toStringList(firstVal(m, "skills", "technologies")); len(sk) > 0 {
		out["skills"] = sk
	}
	return out
}

func sanitizeEducationItem(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := map[string]any{}

	if s := firstStr(m, "schoolName", "institution", "university", "school"); s != "" {
		out["schoolName"] = s
	}
	if s := firstStr(m, "degree", "qualification"); s != "" {
		out["degree"] = s
	}
	if s := firstStr(m, "location", "city"); s != "" {
		out["location"] = s
	}
	if start := coerceDate(firstStr(m, "startDate", "start")); start != "" {
		out["startDate"] = start
	}
	if end := coerceDate(firstStr(m, "endDate", "end")); end != "" {
		out["endDate"] = end
	}
	if desc := toStringList(firstVal(m, "description")); len(desc) > 0 {
		out["description"] = desc
	}
	return out
}

func sanitizeSkillItem(v any) any {
	// 可能是裸字符串，也可能是对象
	if s := toStr(v); s != "" {
		return map[string]any{"skillName": s}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	name := firstStr(m, "skillName", "name", "skill")
	if name == "" {
		return nil
	}
	out := map[string]any{"skillName": name}
	if level := firstStr(m, "experienceLevel", "level", "proficiency"); level != "" {
		out["experienceLevel"] = level
	}
	return out
}

func sanitizeCertificationItem(v any) any {
	if s := toStr(v); s != "" {
		return map[string]any{"name": s}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	name := firstStr(m, "name", "title", "certification")
	if name == "" {
		return nil
	}
	out := map[string]any{"name": name}
	if issuer := firstStr(m, "issuer", "organization", "authority"); issuer != "" {
		out["issuer"] = issuer
	}
	if year := firstStr(m, "year", "date"); year != "" {
		out["year"] = year
	}
	return out
}

func sanitizeProjectItem(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		if s := toStr(v); s != "" {
			return map[string]any{"name": s}
		}
		return nil
	}
	name := firstStr(m, "name", "title", "projectName")
	if name == "" {
		return nil
	}
	out := map[string]any{"name": name}
	if desc := toStringList(firstVal(m, "description")); len(desc) > 0 {
		out["description"] = desc
	}
	if tech := toStringList(firstVal(m, "technologies", "techStack", "stack")); len(tech) > 0 {
		out["technologies"] = tech
	}
	return out
}

func sanitizeSocialLinkItem(v any) any {
	if s := toStr(v); s != "" {
		return map[string]any{"url": s}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	url := firstStr(m, "url", "link", "href")
	if url == "" {
		return nil
	}
	out := map[string]any{"url": url}
	if label := firstStr(m, "label", "platform", "type", "name"); label != "" {
		out["label"] = label
	}
	return out
}

// ---- 基础整流工具 ----

func toStr(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func toStringOrNil(v any) any {
	if s := toStr(v); s != "" {
		return s
	}
	return nil
}

func firstStr(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := toStr(m[k]); s != "" {
			return s
		}
	}
	return ""
}

func firstVal(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func coerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		low := strings.ToLower(strings.TrimSpace(t))
		return low == "true" || low == "yes"
	default:
		return false
	}
}

// toStringList 列表保持逐项字符串化，整段字符串按行拆开
func toStringList(v any) []any {
	switch t := v.(type) {
	case []any:
		out := make([]any, 0, len(t))
		for _, item := range t {
			if s := toStr(item); s != "" {
				out = append(out, s)
			} else if m, ok := item.(map[string]any); ok {
				// {skillName: X} 或 {name: X} 形态的对象取名字
				if s := firstStr(m, "skillName", "name"); s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	case string:
		out := make([]any, 0, 4)
		for _, line := range strings.Split(t, "\n") {
			if s := strings.TrimSpace(line); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

var (
	isoDateRe   = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	dmYDateRe   = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	slashDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{4})$`)
	fullSlashRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	yearOnlyRe  = regexp.MustCompile(`^\d{4}$`)
	monthYearRe = regexp.MustCompile(`^([A-Za-z]+)\.?\s+(\d{4})$`)
)

var monthNumbers = map[string]string{
	"jan": "01", "january": "01",
	"feb": "02", "february": "02",
	"mar": "03", "march": "03",
	"apr": "04", "april": "04",
	"may": "05",
	"jun": "06", "june": "06",
	"jul": "07", "july": "07",
	"aug": "08", "august": "08",
	"sep": "09", "sept": "09", "september": "09",
	"oct": "10", "october": "10",
	"nov": "11", "november": "11",
	"dec": "12", "december": "12",
}

// coerceDate 把常见日期写法归一为 DD-MM-YYYY，无法归一时原样保留
func coerceDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	low := strings.ToLower(s)
	if low == "present" || low == "current" || low == "null" || low == "n/a" {
		return ""
	}

	if dmYDateRe.MatchString(s) {
		return s
	}
	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		return m[3] + "-" + m[2] + "-" + m[1]
	}
	if m := fullSlashRe.FindStringSubmatch(s); m != nil {
		return pad2(m[1]) + "-" + pad2(m[2]) + "-" + m[3]
	}
	if m := slashDateRe.FindStringSubmatch(s); m != nil {
		return "01-" + pad2(m[1]) + "-" + m[2]
	}
	if yearOnlyRe.MatchString(s) {
		return "01-01-" + s
	}
	if m := monthYearRe.FindStringSubmatch(s); m != nil {
		if num, ok := monthNumbers[strings.ToLower(m[1])]; ok {
			return "01-" + num + "-" + m[2]
		}
	}
	return s
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
