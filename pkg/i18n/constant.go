package i18n

const (
	DEFAULT_LANG = "en"
)

var ALLOW_LANG = map[string]bool{
	"en": true,
}

const (
	ERROR_INTERNAL            = "error.internal"
	ERROR_NOT_FOUND           = "error.notfound"
	ERROR_INVALIDARGUMENT     = "error.invalidargument"
	ERROR_EXIST               = "error.exist"
	ERROR_FORBIDDEN           = "error.forbidden"
	ERROR_TOO_MANY_REQUESTS   = "error.tooManyRequests"
	ERROR_UNSUPPORTED_FEATURE = "error.unsupported.feature"
	ERROR_AI_UNAVAILABLE      = "error.ai.unavailable"
	ERROR_DATASET_UNREADABLE  = "error.dataset.unreadable"
	ERROR_PIPELINE_BUSY       = "error.pipeline.busy"
)
