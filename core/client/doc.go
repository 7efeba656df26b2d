// Package client provides a middleware chain for ai.Provider calls: retry,
// timeout, structured logging, and observability can each be composed
// around a provider without the provider implementation knowing about
// any of them.
//
// [Wrap] builds a single provider out of an inner provider plus any
// number of [MiddlewareConfig] values, applied outermost-first. See
// [MiddlewareConfig] and the client/middleware subpackage for the
// concrete middlewares.
package client
