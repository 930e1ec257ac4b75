package main

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Run lifecycle messages (info)
		"Mixing %d streams into %s": "%d ストリームを %s へ合成します",
		"Composited %d frames":      "%d フレームを合成しました",
		"Snapshots saved to %s":     "スナップショットを %s に保存しました",
	})
}
