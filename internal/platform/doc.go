// Package platform contains OS integration and external tooling glue:
// running commands, parsing yt-dlp output, importing YouTube playlists and
// small filesystem helpers used by the pipelines.
package platform
