package cortexerr

// Well-known Cortex API error codes the core must surface distinctly.
// All other server error codes pass through as a generic ApiError.
// CodeAccessDenied is confirmed against Cortex's own
// protocol/rpc.rs::test_deserialize_rpc_error; the remaining four are
// Emotiv's publicly documented Cortex error codes and are not
// independently verified against this repo's retrieved sources.
const (
	CodeAccessDenied     int64 = -32002 // user has not approved the application in the launcher
	CodeNotAuthorized    int64 = -32001
	CodeHeadsetBusy      int64 = -32014
	CodeSessionNotActive int64 = -32015
	CodeLicenseLimit     int64 = -32016
)

// Sentinel ApiError values for errors.Is matching against well-known codes.
var (
	ErrAccessDenied     = NewApiError(CodeAccessDenied, "access denied")
	ErrNotAuthorized    = NewApiError(CodeNotAuthorized, "not authorized")
	ErrHeadsetBusy      = NewApiError(CodeHeadsetBusy, "headset busy")
	ErrSessionNotActive = NewApiError(CodeSessionNotActive, "session not active")
	ErrLicenseLimit     = NewApiError(CodeLicenseLimit, "license limit reached")
)

