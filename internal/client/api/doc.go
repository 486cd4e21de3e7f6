// Package api is the authenticated HTTP client every e-library call goes
// through.
//
// # Overview
//
// Client.Do attaches "Authorization: Bearer <access token>" from the token
// store, sends JSON or multipart bodies, and decodes the {success, data,
// message} envelope. When a request gets HTTP 401 and has not been retried
// yet, the client:
//
//  1. marks the request as retried;
//  2. without a refresh token, clears credentials, signals AuthLost and
//     fails with the original 401;
//  3. otherwise exchanges the refresh token at /auth/refresh, stores the new
//     pair and replays the request once with the new access token; if the
//     exchange fails it clears credentials, signals AuthLost and fails with
//     the refresh error.
//
// A second 401 on a replayed request fails straight away.
//
// # Error Handling
//
// Every failure is an *Error whose Kind tells authorization, business,
// network and unexpected failures apart; match them with errors.Is against
// ErrUnauthorized, ErrRejected, ErrUnavailable and ErrUnexpected.
//
// # Concurrency
//
// Client is safe for concurrent use. Concurrent requests that hit 401 each
// run their own refresh; nothing coalesces them.
package api
