// Package api is the HTTP client of the account service.
//
// Client is the contract the CLI depends on; HTTPClient implements it on top
// of net/http. HTTPClient keeps the session tokens of the last successful
// register or login, sends the access token as a bearer header and, when the
// server reports TOKEN_EXPIRED, redeems the refresh token once and repeats
// the call.
//
// # Error Handling
//
// Transport failures match ErrUnavailable. Server rejections are returned as
// *Error, which also matches the corresponding sentinel of the common
// package (for example common.ErrInvalidCredential or common.ErrorNotFound)
// through errors.Is.
package api
