package constant

// Context key types to avoid collisions
type contextKey string

const (
	ContextKeyUserID    contextKey = "user_id"
	ContextKeyUserName  contextKey = "user_name"
	ContextKeyTokenID   contextKey = "token_id"
	ContextKeyRequestID contextKey = "request_id"
	ContextKeyInternal  contextKey = "internal"
)

const (
	RequestParamLimit    = "limit"
	RequestParamOwnerID  = "owner_id"
	RequestParamDate     = "date"
	RequestParamResource = "resource"
	RequestParamActive   = "active"
)

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
	MaxParticipants    = 25
)

const (
	TimestampLayout = "2006-01-02 15:04:05"
)

const (
	OtelServiceScopeName    = "service"
	OtelRepositoryScopeName = "repository"
	OtelHandlerScopeName    = "handler"
	OtelStoreScopeName      = "store"
	OtelSchedulerScopeName  = "scheduler"
	OtelExternalScopeName   = "external"
)

const (
	StoreDriverSheets   = "sheets"
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

const (
	NotifierDriverKafka = "kafka"
	NotifierDriverAMQP  = "amqp"
	NotifierDriverLog   = "log"
)

const (
	RequestHeaderAuthorization      = "Authorization"
	RequestHeaderUserAgent          = "User-Agent"
	RequestHeaderContentType        = "Content-Type"
	RequestHeaderRateLimit          = "X-RateLimit-Limit"
	RequestHeaderRateLimitRemaining = "X-RateLimit-Remaining"
	RequestHeaderRateLimitWindow    = "X-RateLimit-Window"
	RequestHeaderRequestID          = "X-Request-ID"
	RequestHeaderForwardedFor       = "X-Forwarded-For"
	RequestHeaderRealIP             = "X-Real-IP"
	RequestHeaderAPIKey             = "X-API-Key"
	RequestHeaderUserID             = "X-User-ID"
	RequestHeaderUserName           = "X-User-Name"
)

const (
	ContentTypeJSON = "application/json"
)

const (
	ResponseErrorPrepareShutdown      = "SERVER PREPARING TO SHUT DOWN"
	ResponseErrorUnhealthy            = "SERVER UNHEALTHY"
	ResponseErrorRequestLimitExceeded = "REQUEST LIMIT EXCEEDED"
)

const (
	ServerEnvDevelopment = "development"
)

const (
	Empty = ""
)
