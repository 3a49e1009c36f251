package log

// Inner log events.
const (
	EventComponentStarted  = "component_started"
	EventComponentShutdown = "component_shutdown"
	EventMSShutdown        = "ms_shutdown"
	EventPanic             = "panic"
	EventStoreInit         = "store_init"
	EventDocWritten        = "doc_written"
	EventDocWriteFailed    = "doc_write_failed"
	EventDocLoaded         = "doc_loaded"
	EventDocDefaulted      = "doc_defaulted"
	EventDocLoadFailed     = "doc_load_failed"
	EventDocDump           = "doc_dump"
	EventValueRepaired     = "value_repaired"
	EventParamsPatched     = "params_patched"
	EventParamsPublished   = "params_published"
	EventPublishFailed     = "publish_failed"
)
