package handler

const (
	errInternalServer = "Internal server error"
	errUnauthorized   = "Unauthorized"
	errBadRequest     = "Bad request"
	errUnknownKind    = "Unknown job kind"
)
