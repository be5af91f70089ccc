// Package services implements the clients for the music service: the metadata [Client] and the link [Resolver].
//
// # HTTP stack
//
// One [http.Client] is built per session by [NewHTTPClient] and injected into both components.
// Authorization is attached by an [oauth2.Transport] over a static token whose type is "OAuth",
// so every request carries "Authorization: OAuth <token>". Requests are paced by a
// [rate.Limiter] that is unlimited unless configured.
//
// # Metadata
//
// [Client] resolves the account uid, the liked-track listing, per-track details (with a small
// retry budget for transport failures only), playlists and playlist contents.
// [Client.LikedTracks] fans out one goroutine per liked track with [errgroup] and drops tracks
// whose details cannot be fetched, logging each drop.
//
// # Resolution
//
// [Resolver.Resolve] performs three round trips:
//  1. GET /tracks/{id}/download-info, selecting the first descriptor
//  2. GET the descriptor's signing page (XML with host, path, ts, s)
//  3. GET https://{host}/get-mp3/{md5(salt + path[1:] + s)}/{ts}{path}
//
// # Error Handling
//
// Failures wrap sentinels from the shared package:
//   - [shared.ErrTransport] : connection failure, unreadable body or 5xx; the only retried class
//   - [shared.ErrAuth] : 401/403 from the service
//   - [shared.ErrParse] : body that does not decode
//   - [shared.ErrResolution] : missing descriptor or signing fields
//   - [shared.ErrAPIRequest] : any other non-2xx status
package services
