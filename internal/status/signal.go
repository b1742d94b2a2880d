// Package status infers the operational state of the inference server from
// its log tail and from live probes of its runtime endpoints.
package status

import (
	"strings"
)

// Kind is the classified state carried by a Signal.
type Kind int

const (
	KindLoading Kind = iota + 1
	KindActive
	KindReady
	KindUnknown
	KindReachable
	KindUnreachable
	KindError
)

var kindNames = map[Kind]string{
	KindLoading:     "loading",
	KindActive:      "active",
	KindReady:       "ready",
	KindUnknown:     "unknown",
	KindReachable:   "reachable",
	KindUnreachable: "unreachable",
	KindError:       "error",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// Source tells where a Signal came from. It only affects rendering.
type Source int

const (
	FromProbe Source = iota
	FromLog
)

func (s Source) String() string {
	if s == FromLog {
		return "log"
	}
	return "probe"
}

// Signal is one classified observation of the inference server.
type Signal struct {
	Kind   Kind
	Source Source
	// States holds the sorted raw slot labels when Kind is KindUnknown.
	States []string
}

var probeText = map[Kind]string{
	KindLoading:     "モデル読み込み中",
	KindActive:      "実行中",
	KindReady:       "準備完了",
	KindReachable:   "起動中（API応答あり・モデル読み込み未確認）",
	KindUnreachable: "起動中（状態確認待ち）",
}

var logText = map[Kind]string{
	KindLoading:   "モデル読み込み中 (ログより)",
	KindReady:     "準備完了 (ログより)",
	KindReachable: "起動中（モデル読み込み未確認）(ログより)",
	KindError:     "エラー検出 (ログ)",
}

// Render produces the operator-facing text for s.
func (s Signal) Render() string {
	if s.Kind == KindUnknown {
		return "状態: " + strings.Join(s.States, ", ")
	}
	if s.Source == FromLog {
		if text, ok := logText[s.Kind]; ok {
			return text
		}
	}
	return probeText[s.Kind]
}
