// Package protocol defines the wire types for spec.md §6: a tagged
// request/broadcast catalogue carried as newline-delimited JSON over a
// Unix domain stream socket. The Type+Payload envelope mirrors the
// teacher's internal/protocol/messages.go idiom, generalized from a
// single handshake/binary-audio catalogue to the full request/event
// set this daemon needs.
package protocol

import (
	"encoding/json"
	"time"
)

// Request is one line read from a client: a routing key plus its
// raw payload, decoded further once the Hub knows which variant it is.
type Request struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Request type tags, matching spec.md §6's routing table.
const (
	ReqServerQuit            = "ServerQuit"
	ReqServerQuery           = "ServerQuery"
	ReqServerQueryAll        = "ServerQueryAll"
	ReqPlayerState           = "PlayerState"
	ReqPlayerFilePlay        = "PlayerFilePlay"
	ReqPlayerPause           = "PlayerPause"
	ReqPlayerResume          = "PlayerResume"
	ReqPlayerTogglePlay      = "PlayerTogglePlay"
	ReqPlayerPlayNext        = "PlayerPlayNext"
	ReqPlayerPlayPrevious    = "PlayerPlayPrevious"
	ReqPlayerToggleNext      = "PlayerToggleNext"
	ReqPlayerToggleRepeat    = "PlayerToggleRepeat"
	ReqPlayerToggleShuffle   = "PlayerToggleShuffle"
	ReqPlayerVolumeUp        = "PlayerVolumeUp"
	ReqPlayerVolumeDown      = "PlayerVolumeDown"
	ReqPlayerFastForward     = "PlayerFastForward"
	ReqPlayerRewind          = "PlayerRewind"
	ReqPlaylistGet           = "PlaylistGet"
	ReqPlaylistOpen          = "PlaylistOpen"
	ReqPlaylistPlay          = "PlaylistPlay"
	ReqPlaylistAppend        = "PlaylistAppend"
	ReqPlaylistRemove        = "PlaylistRemove"
	ReqPlaylistMoveUp        = "PlaylistMoveUp"
	ReqPlaylistMoveDown      = "PlaylistMoveDown"
	ReqPlaylistClear         = "PlaylistClear"
)

// Broadcast type tags, matching spec.md §6's event catalogue.
const (
	EvtServerQuit           = "ServerQuit"
	EvtServerError          = "ServerError"
	EvtServerQuery          = "ServerQuery"
	EvtServerQueryAll       = "ServerQueryAll"
	EvtPlayerState          = "PlayerState"
	EvtPlayerFilePlay       = "PlayerFilePlay"
	EvtPlayerPause          = "PlayerPause"
	EvtPlayerResume         = "PlayerResume"
	EvtPlayerStop           = "PlayerStop"
	EvtPlayerRepeat         = "PlayerRepeat"
	EvtPlayerShuffle        = "PlayerShuffle"
	EvtPlayerNext           = "PlayerNext"
	EvtPlayerVolumeUpdate   = "PlayerVolumeUpdate"
	EvtPlayerProgressUpdate = "PlayerProgressUpdate"
	EvtPlaylistOpen         = "PlaylistOpen"
	EvtPlaylistPlay         = "PlaylistPlay"
	EvtPlaylistAppend       = "PlaylistAppend"
	EvtPlaylistRemove       = "PlaylistRemove"
	EvtPlaylistSwapMove     = "PlaylistSwapMove"
	EvtPlaylistClear        = "PlaylistClear"
)

// Event is the outbound envelope; Payload is marshaled per-variant by
// the Hub before being wrapped here.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Duration serialises as {secs,nanos}, the "ambient JSON encoding"
// spec.md §6 names.
type Duration struct {
	Secs  int64 `json:"secs"`
	Nanos int32 `json:"nanos"`
}

func FromDuration(d time.Duration) Duration {
	return Duration{Secs: int64(d / time.Second), Nanos: int32(d % time.Second)}
}

func (d Duration) ToDuration() time.Duration {
	return time.Duration(d.Secs)*time.Second + time.Duration(d.Nanos)
}

type ErrorPayload struct {
	Msg string `json:"msg"`
}

type PathPayload struct {
	Path string `json:"path"`
}

type IndexPayload struct {
	Index int `json:"index"`
}

type AmountPayload struct {
	Amount uint `json:"amount"`
}

type DurationPayload struct {
	Amount Duration `json:"amount"`
}

type QueryPayload struct {
	Query string `json:"query"`
}

type OpenPayload struct {
	Cwd  *string `json:"cwd,omitempty"`
	Path *string `json:"path,omitempty"`
}

type BoolPayload struct {
	On bool `json:"on"`
}

type SwapMovePayload struct {
	Index1 int `json:"index1"`
	Index2 int `json:"index2"`
}
