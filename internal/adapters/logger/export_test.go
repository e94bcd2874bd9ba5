package logger

// Exported for white-box testing of error formatting and the console handler.
var (
	CollectErrorEntriesExported = collectErrorEntries
	FormatErrorEntriesExported  = formatErrorEntries
	NewConsoleHandlerExported   = newConsoleHandler
)
