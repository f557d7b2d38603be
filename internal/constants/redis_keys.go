package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// ParseModulePrefix 解析模块
	ParseModulePrefix = "parse"

	// EntityDedup 请求去重实体
	EntityDedup = "dedup"

	// KeyParseRequestSeen 已受理请求的幂等标记 (STRING, SETNX + TTL)
	// 格式: app:parse:dedup:{fingerprint_md5}
	KeyParseRequestSeen = AppPrefix + ":" + ParseModulePrefix + ":" + EntityDedup + ":%s"
)
