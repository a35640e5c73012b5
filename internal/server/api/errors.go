package api

import "github.com/rmikit/rmitouch/apitypes"

// Factory helpers returning *apitypes.ApiError (single canonical error type).
func ErrBadRequest(detail string) *apitypes.ApiError {
	return &apitypes.ApiError{Status: 400, Title: "Bad Request", Detail: detail}
}
func ErrNotFound(detail string) *apitypes.ApiError {
	return &apitypes.ApiError{Status: 404, Title: "Not Found", Detail: detail}
}
func ErrUnauthorized(detail string) *apitypes.ApiError {
	return &apitypes.ApiError{Status: 401, Title: "Unauthorized", Detail: detail}
}
func ErrInternal(detail string) *apitypes.ApiError {
	return &apitypes.ApiError{Status: 500, Title: "Internal Server Error", Detail: detail}
}

// WrapError normalizes any error into *apitypes.ApiError.
func WrapError(err error) *apitypes.ApiError {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*apitypes.ApiError); ok {
		return ae
	}
	if ae, ok := err.(apitypes.ApiError); ok {
		return &ae
	}
	return ErrInternal(err.Error())
}
