// Package services implements the I/O collaborators of the chord engine: tab page sources
// and object stores for rendered diagrams.
//
// # Tab Sources
//
// [TabSource] fetches raw HTML. [HTTPTabSource] sends a fixed User-Agent, is rate limited
// and carries a client timeout. [FileTabSource] reads saved pages from disk.
//
// # Stores
//
// [Store] writes and reads rendered SVG bytes keyed by variant key:
//   - [FileStore] writes files into a directory with atomic renames.
//   - [HTTPStore] speaks the Supabase storage REST shape. Uploads are
//     POST {base}/object/{bucket}/{key} with x-upsert, public reads are
//     GET {base}/object/public/{bucket}/{key}. The service key is sent as a bearer
//     token through an [oauth2.StaticTokenSource].
//
// [NewStore] selects the driver from [shared.StorageConfig].
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrSourceRequest] : tab page request failed or returned non-2xx
//   - [shared.ErrStoreRequest] : object store request failed or returned non-2xx
//   - [shared.ErrTimeout] : the request deadline passed
//   - [shared.ErrRecordNotFound] : no object stored under the key
//   - [shared.ErrInvalidInput] : unusable URL or key
package services
