// Package source resolves user-facing video references into playable items.
//
// YouTube goes through the yt-dlp command line. Twitch combines the Helix API,
// for metadata and live search, with yt-dlp for the HLS rendition URL.
package source
