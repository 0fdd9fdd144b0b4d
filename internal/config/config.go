package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Jyoti/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Jyoti"
	AppBinary         = "go-jyoti"
	AppDescription    = "Antenatal, immunization and date tools for ANMs, with the Jyoti assistant."
	AppID             = "com.github.tartampluch.go-jyoti"
	KeyringService    = "com.github.tartampluch.go-jyoti"
	KeyringAPIKeyUser = "assistant-api-key"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	EnvFile           = ".env"
	EnvPrefix         = "JYOTI"
	StdoutPath        = "-"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for sensitive files like logs.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultPort            = "18080"
	DefaultLanguage        = "en"
	DefaultAssistantModel  = "gemini-3-flash-preview"
	DefaultTemperature     = 0.7
	DefaultSessionTTL      = 2 * time.Hour
	DefaultSessionMaxTurns = 20
	DefaultReminder        = "-P1D"

	// ProfileImageKey is the single key under which the user's picture is kept.
	ProfileImageKey = "jyoti_app_user_profile_pic"

	// LogoURL is served in place of a profile picture that was never uploaded.
	LogoURL = "https://raw.githubusercontent.com/fede-navas/test-images/main/jyoti-new-branding.png"

	// SpeechLanguage is the BCP-47 tag used for voice questions.
	SpeechLanguage = "hi-IN"

	UIDSalt = "go-jyoti-v1-" // Salt for deterministic UID generation

	SourceModeWeb    = "web"
	SourceModeLocal  = "local"
	SourceModeUpload = "upload"

	FormatJSON = "json"
	FormatICS  = "ics"
	FormatFHIR = "fhir"

	ScheduleFileName = "vaccination-schedule.ics"
	ImportFileName   = "beneficiaries.ics"
)

// SupportedLanguages defines the list of available languages (ISO 639-1).
var SupportedLanguages = []string{"en", "hi"}

// -----------------------------------------------------------------------------
// Input Error Codes (API contract)
// -----------------------------------------------------------------------------

const (
	CodeInvalidDate   = "invalid_date"
	CodeFutureLMP     = "future_lmp"
	CodeFutureBirth   = "future_birth"
	CodeInvalidNumber = "invalid_number"
	CodeMissingInput  = "missing_input"
	CodeBadReminder   = "invalid_reminder"
	CodeEmptyMessage  = "empty_message"
	CodeBodyTooLarge  = "body_too_large"
	CodeInvalidBody   = "invalid_body"
	CodeNotFound      = "not_found"
	CodeInternal      = "internal_error"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyErrInvalidDate   = "err_invalid_date"
	TKeyErrFutureLMP     = "err_future_lmp"
	TKeyErrFutureBirth   = "err_future_birth"
	TKeyErrInvalidNumber = "err_invalid_number"
	TKeyErrMissingInput  = "err_missing_input"
	TKeyErrBadReminder   = "err_invalid_reminder"
	TKeyErrEmptyMessage  = "err_empty_message"
	TKeyErrBodyTooLarge  = "err_body_too_large"
	TKeyErrInvalidBody   = "err_invalid_body"
	TKeyErrNotFound      = "err_not_found"
	TKeyErrInternal      = "err_internal"

	TKeyDangerTitle    = "danger_title"
	TKeyDangerBleeding = "danger_bleeding"
	TKeyDangerSwelling = "danger_swelling"
	TKeyDangerHeadache = "danger_headache"
	TKeyDangerMovement = "danger_fetal_movement"
	TKeyDangerReferral = "danger_referral"

	TKeyPromptDangers  = "prompt_pregnancy_dangers"
	TKeyPromptVaccines = "prompt_child_vaccines"
	TKeyPromptLMPToEDD = "prompt_lmp_edd"
	TKeyAssistantGreet = "assistant_greeting"
	TKeyAssistantTag   = "assistant_tagline"
	TKeyUnitYears      = "unit_years"
	TKeyUnitMonths     = "unit_months"
	TKeyUnitWeeks      = "unit_weeks"
	TKeyUnitDays       = "unit_days"
	TKeyEvtVaccination = "event_vaccination" // Requires Name, Vaccine
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Jyoti//Immunization//EN"
	ICalCalName   = "Vaccination Schedule"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "gojyoti"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropCategories  = "CATEGORIES"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardN    = "N"

	ICalCategory       = "IMMUNIZATION"
	DefaultICalRefresh = 24 * time.Hour
)

// -----------------------------------------------------------------------------
// Standards: FHIR R4
// -----------------------------------------------------------------------------

const (
	FHIRResourceType    = "ImmunizationRecommendation"
	FHIRProfile         = "http://hl7.org/fhir/StructureDefinition/ImmunizationRecommendation"
	FHIRForecastSystem  = "http://terminology.hl7.org/CodeSystem/immunization-recommendation-status"
	FHIRForecastDue     = "due"
	FHIRForecastOverdue = "overdue"
	FHIRLoincSystem     = "http://loinc.org"
	FHIRDateDueCode     = "30980-7"
	FHIRDateDueDisplay  = "Date vaccine due"
	FHIRPatientPrefix   = "Patient/"
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts used for parsing vCard BDAY fields. A child's schedule
	// needs the full birth date, so year-less --MM-DD values are skipped.
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"

	// Limits
	MinPort         = 1
	MaxPort         = 65535
	MaxOffsetYears  = 200
	MaxTotalDays    = 1_000_000
	MaxGestWeeks    = 45
	MaxChatMessage  = 4000
	MaxImageSize    = 5 * 1024 * 1024
	MaxAudioSize    = 10 * 1024 * 1024
	MaxImportSize   = 16 * 1024 * 1024
	MaxJSONBodySize = 64 * 1024

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d@%s"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	AssistantTimeout    = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 60 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	CacheCleanup        = 10 * time.Minute
	ICSCacheTTL         = 24 * time.Hour
	MaxHTTPResponseSize = 32 * 1024 * 1024 // 32MB of vCards is a very large address book
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
)

// -----------------------------------------------------------------------------
// HTTP Routes & Query Parameters
// -----------------------------------------------------------------------------

const (
	RouteHealth       = "/healthz"
	RouteAPIPrefix    = "/api/v1"
	RoutePregnancy    = "/pregnancy"
	RouteSchedule     = "/vaccination/schedule"
	RouteScheduleICS  = "/vaccination/schedule.ics"
	RouteScheduleFHIR = "/vaccination/schedule.fhir"
	RouteImport       = "/vaccination/import"
	RouteToolDiff     = "/tools/difference"
	RouteToolOffset   = "/tools/offset"
	RouteToolDays     = "/tools/days"
	RouteDangerSigns  = "/reference/danger-signs"
	RouteChat         = "/assistant/chat"
	RouteChatSession  = "/assistant/chat/{" + PathSessionID + "}"
	RouteTranscribe   = "/assistant/transcribe"
	RouteProfileImage = "/profile/image"

	ParamLMP      = "lmp"
	ParamEDD      = "edd"
	ParamWeeks    = "weeks"
	ParamDays     = "days"
	ParamBirth    = "birth"
	ParamName     = "name"
	ParamReminder = "reminder"
	ParamPatient  = "patient"
	ParamStart    = "start"
	ParamEnd      = "end"
	ParamDate     = "date"
	ParamYears    = "years"
	ParamMonths   = "months"
	ParamTotal    = "total"
	ParamLang     = "lang"
	ParamFormat   = "format"

	PathSessionID = "id"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType        = "Content-Type"
	HeaderContentDisposition = "Content-Disposition"
	HeaderCacheControl       = "Cache-Control"
	HeaderETag               = "ETag"
	HeaderLastModified       = "Last-Modified"
	HeaderXContentType       = "X-Content-Type-Options"
	HeaderUserAgent          = "User-Agent"
	HeaderIfNoneMatch        = "If-None-Match"
	HeaderIfModifiedSince    = "If-Modified-Since"
	HeaderAcceptLanguage     = "Accept-Language"
	HeaderRequestID          = "X-Request-ID"
	HeaderAccept             = "Accept"
	HeaderOrigin             = "Origin"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeFHIRJSON        = "application/fhir+json; charset=utf-8"
	MimeVCard           = "text/vcard, text/x-vcard;q=0.9, */*;q=0.1"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"
	CacheControlNoStore = "no-store"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`

	// FormatAttachment expects a file name.
	FormatAttachment = `attachment; filename="%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty    = "configuration error: local path is empty"
	ErrWebURLEmpty       = "configuration error: web URL is empty"
	ErrReaderMissing     = "configuration error: upload stream is empty"
	ErrFetcherMissing    = "internal error: network fetcher is not initialized"
	ErrModeUnsupport     = "configuration error: unsupported source mode"
	ErrServerStartup     = "server startup failed"
	ErrServerShutdown    = "server shutdown failed"
	ErrPortRequired      = "server port is required"
	ErrPortNumber        = "server port must be a number"
	ErrPortRange         = "server port must be between 1 and 65535"
	ErrInvalidURL        = "invalid URL structure"
	ErrProtocol          = "unsupported protocol scheme (http/https only)"
	ErrVCardParse        = "failed to parse vCard stream"
	ErrSourceTooLarge    = "address book exceeds the size limit"
	ErrICalEncode        = "failed to encode iCalendar data"
	ErrDateParse         = "unable to parse date"
	ErrLogFile           = "failed to open log file"
	ErrCacheDir          = "could not determine user cache dir"
	ErrCreateDir         = "could not create app cache dir"
	ErrAppFailed         = "application failed unexpectedly"
	ErrWriteResp         = "failed to write response body"
	ErrLocalesAccess     = "failed to access embedded locales"
	ErrLocaleLoad        = "failed to load locale file"
	ErrScheduleEmbedded  = "embedded immunization table is invalid"
	ErrScheduleDecode    = "failed to decode immunization table"
	ErrScheduleVersion   = "immunization table has no version"
	ErrScheduleEmpty     = "immunization table has no entries"
	ErrScheduleEntry     = "invalid immunization table entry"
	ErrAssistantInit     = "failed to initialize assistant client"
	ErrAssistantCall     = "assistant request failed"
	ErrAssistantEmpty    = "assistant returned an empty reply"
	ErrTranscribeCall    = "transcription request failed"
	ErrAPIKeyMissing     = "assistant API key is not configured"
	ErrKeyringSet        = "failed to store API key in keyring"
	ErrProfileValue      = "profile store holds a non-binary value"
	ErrReminderInvalid   = "reminder must be an ISO8601 duration such as -P1D"
	ErrEncodeResponse    = "failed to encode response"
	ErrFetchRequest      = "failed to create request"
	ErrFetchNetwork      = "network error during fetch"
	ErrFetchStatus       = "server returned unexpected status"
	ErrSettingsNil       = "settings cannot be nil"
	ErrSessionTTL        = "session TTL must be positive"
	ErrTranslationsEmpty = "no translations loaded"
	ErrPanicRecovered    = "recovered from panic"
	ErrRequestFailed     = "request failed"
	ErrWriteOutput       = "failed to write output"
	ErrScheduleFile      = "failed to open immunization table"
)

// -----------------------------------------------------------------------------
// Assistant Fallback
// -----------------------------------------------------------------------------

// AssistantFallback is returned to the user whenever the hosted model cannot answer.
const AssistantFallback = "I'm sorry, I encountered an error. Please try again later. (क्षमा करें, तकनीकी समस्या आ गई है)"

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummary = "%s: %s" // child name, vaccine
	FallbackName    = "Unknown"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgImportStarted  = "Beneficiary import started"
	MsgImportSuccess  = "Beneficiary import successful"
	MsgAppStop        = "Application stopped gracefully"
	MsgSkippedCard    = "Skipping malformed vCard"
	MsgSkippedDate    = "Skipping invalid or future birth date"
	MsgAppStarting    = "Starting application"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgVaccineToday   = "Vaccination due today"
	MsgRequest        = "HTTP request"
	MsgInputRejected  = "Input rejected"
	MsgAssistantReply = "Assistant replied"
	MsgSessionCleared = "Chat session cleared"
	MsgAssistantOff   = "Assistant disabled: no API key"
	MsgSpeechOff      = "Speech transcription unavailable"
	MsgKeyFromKeyring = "Assistant API key loaded from keyring"
	MsgKeyStored      = "Assistant API key stored in keyring"
	MsgDotenvMissing  = "Unable to load dotenv file"
	MsgProfileStored  = "Profile image stored"
	MsgICSCacheHit    = "Calendar served from cache"
	MsgCacheUpdated   = "Calendar cache updated"
	MsgVersionOutput  = "%s version %s (%s/%s)\n"
	MsgFetchStart     = "Initiating vCard download"
	MsgFetchStatus    = "Server returned error status"
	MsgFetchBody      = "vCards downloading"
	MsgImportDone     = "Import finished"
	MsgKeyringMiss    = "No assistant API key in keyring"
	MsgTableLoaded    = "Immunization table loaded"
	MsgExportWritten  = "Calendar written"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyAddr      = "addr"
	LogKeyMode      = "mode"
	LogKeyCode      = "code"
	LogKeyTotal     = "total_cards"
	LogKeyFound     = "children_found"
	LogKeyToday     = "vaccinations_today"
	LogKeySizeBytes = "size_bytes"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyName      = "name"
	LogKeyVaccine   = "vaccine"
	LogKeyDuration  = "duration_ms"
	LogKeyMethod    = "method"
	LogKeyPath      = "path"
	LogKeyRequestID = "request_id"
	LogKeySession   = "session_id"
	LogKeySessions  = "live_sessions"
	LogKeyModel     = "model"
	LogKeyChars     = "chars"
	LogKeyLength    = "content_length"
	LogKeyETag      = "etag"
	LogKeyOutput    = "output"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyDate    = "build_date"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine    = "engine"
	CompServer    = "server"
	CompFetcher   = "fetcher"
	CompMain      = "main"
	CompI18n      = "i18n"
	CompAssistant = "assistant"
	CompProfile   = "profile"
	CompConfig    = "config"
)
