// Package webapi is a client for a time-series historian's REST Web API.
//
// # Overview
//
// A Client is bound to one server (ServerConfig) and maps an Identity to a
// single remote resource:
//
//   - ByWebID: the resource's opaque WebId
//   - ByPath: a point addressed as \\database\tag, resolved to a WebId with
//     GET /points?path=...
//   - Custom: any URL relative to the base URL, or an absolute URL
//
// Reads succeed only on 200 OK. Writes succeed only on 202 Accepted; a 200
// answer to a write is a failure.
//
// # Discovery
//
// ListAllAssetDatabases and ListAllPoints list the asset or data servers and
// then fetch every server's Databases or Points link concurrently. The result
// has one entry per server, in listing order. Any failing fetch fails the
// whole listing.
//
// # Errors
//
// Every operation returns a *Failure on error. Its Kind is one of
// ConfigError, TransportError, RemoteStatusError or DecodeError, and it
// matches the ErrConfig, ErrTransport, ErrRemoteStatus and ErrDecode
// sentinels with errors.Is. Nothing is retried.
//
// # Security
//
//   - Basic credentials are never logged
//   - TLS peer verification is on unless TLSConfig.SkipVerify is set, which
//     is logged as a warning when the client is created
//   - Client certificates and CA bundles are loaded from TLSConfig paths
package webapi
