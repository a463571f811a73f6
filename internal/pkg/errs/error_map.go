/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to
standardize the error strings reported to peers and internal error handling.
*/
package errs

// errorMap stores the CustomError template corresponding to every application
// error code. Messages with formatting placeholders accept printf-style details.
var errorMap = map[int]CustomError{
	// 1xxx: Protocol Errors
	ErrMalformedMessage:      {Code: ErrMalformedMessage, Message: "Malformed message: expected one JSON object per line."},
	ErrMissingRole:           {Code: ErrMissingRole, Message: "Missing 'role' field in request."},
	ErrInvalidRole:           {Code: ErrInvalidRole, Message: "Invalid role."},
	ErrMissingFilePath:       {Code: ErrMissingFilePath, Message: "Missing 'filePath' for admin. Please provide a valid file path."},
	ErrMissingUsername:       {Code: ErrMissingUsername, Message: "Missing 'username' for user."},
	ErrMissingLocation:       {Code: ErrMissingLocation, Message: "Missing 'currentLocation' field in request"},
	ErrMissingType:           {Code: ErrMissingType, Message: "Missing 'type' field in request"},
	ErrInvalidType:           {Code: ErrInvalidType, Message: "Invalid 'type' field in request"},
	ErrConnectionRateLimited: {Code: ErrConnectionRateLimited, Message: "Too many connections. Please try again later."},

	// 2xxx: Resource Errors
	ErrBatchFileNotFound:      {Code: ErrBatchFileNotFound, Message: "Failed to load JSON data: file not found: %s"},
	ErrBatchFileInvalid:       {Code: ErrBatchFileInvalid, Message: "Failed to load JSON data: %s"},
	ErrBatchSourceUnavailable: {Code: ErrBatchSourceUnavailable, Message: "Failed to load JSON data: remote storage is not configured"},

	// 3xxx: Storage Errors
	ErrStorageFailure:  {Code: ErrStorageFailure, Message: "A storage error occurred. Please try again."},
	ErrWeatherNotFound: {Code: ErrWeatherNotFound, Message: "Weather data not available for location: %s"},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again."},
}
