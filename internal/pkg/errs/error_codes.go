/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific protocol, resource, and storage errors both
internally within the server and in the error field reported to clients.
*/
package errs

// 1xxx: Protocol Errors (malformed or out-of-sequence messages)
const (
	// ErrMalformedMessage indicates a line that could not be decoded as a JSON object.
	ErrMalformedMessage = 1001

	// ErrMissingRole indicates the opening message carried no role field.
	ErrMissingRole = 1002

	// ErrInvalidRole indicates a role value other than admin or user.
	ErrInvalidRole = 1003

	// ErrMissingFilePath indicates an admin message without a filePath field.
	ErrMissingFilePath = 1004

	// ErrMissingUsername indicates a user message without a username field.
	ErrMissingUsername = 1005

	// ErrMissingLocation indicates a message without the required currentLocation field.
	ErrMissingLocation = 1006

	// ErrMissingType indicates a menu message without a type field.
	ErrMissingType = 1007

	// ErrInvalidType indicates an unsupported menu request type.
	ErrInvalidType = 1008

	// ErrConnectionRateLimited indicates the client IP exceeded the connection admission rate.
	ErrConnectionRateLimited = 1009
)

// 2xxx: Resource Errors (admin upload inputs)
const (
	// ErrBatchFileNotFound indicates the upload path does not resolve to a readable file.
	ErrBatchFileNotFound = 2001

	// ErrBatchFileInvalid indicates the upload file is not a JSON array of weather records.
	ErrBatchFileInvalid = 2002

	// ErrBatchSourceUnavailable indicates a remote upload path was given but no
	// remote source is configured.
	ErrBatchSourceUnavailable = 2003
)

// 3xxx: Storage Errors
const (
	// ErrStorageFailure indicates a database query or connection failure.
	ErrStorageFailure = 3001

	// ErrWeatherNotFound indicates no weather record exists for the requested location.
	ErrWeatherNotFound = 3002
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified server internal error.
	ErrUnknown = 5000
)
