// Package catalog holds the browsable media catalogs backed by MongoDB:
// television channels from the iptv-org API, movies described by IMDB,
// TV shows with seasons and episodes, and user-uploaded content.
//
// Each catalog reads through a small store interface. The Mongo
// implementations live in stores.go; refreshers repopulate a catalog when
// the last recorded update is older than its refresh interval.
package catalog

import "errors"

// ErrNotFound is returned when a lookup matches nothing
var ErrNotFound = errors.New("catalog: not found")
