// Package services wraps the e-library REST endpoints in typed calls.
//
// Every service goes through a Doer (normally *api.Client), so all calls share
// the bearer-token attachment and the refresh protocol. A service returns the
// decoded data on success; an envelope with success=false becomes an error
// matching api.ErrRejected that carries the server message.
package services
