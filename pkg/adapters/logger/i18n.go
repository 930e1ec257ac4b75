package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Negotiation (mixer component)
		"negotiated output %dx%d @%s par %s": "出力を %dx%d @%s par %s にネゴシエートしました",
		"announcing output caps %s":          "出力caps %s を通知します",

		// Aggregation cycle
		"port %d queued now %dns":                   "ポート %d のキュー残量は %dns です",
		"sending segment %s..%s at position %s":     "セグメント %s..%s を位置 %s で送信します",
		"all ports at end of stream":                "全ポートがストリーム終端に達しました",
		"dropping frame at %s (quality-of-service)": "%s のフレームを破棄します (quality-of-service)",

		// Seeking and flushing
		"seek to %s (flush=%v)": "%s へシーク (flush=%v)",
		"pending flush stop":    "保留中のフラッシュ停止を送信します",
	})
}
