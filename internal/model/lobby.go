package model

import (
	"crypto/subtle"
	"time"

	"sudooom.boba/internal/engine"
	appErrors "sudooom.boba/pkg/errors"
)

// LobbyStatus 大厅状态
type LobbyStatus string

const (
	LobbyWaiting LobbyStatus = "waiting"
	LobbyStarted LobbyStatus = "started"
)

// Lobby 开局前的等待大厅，座位号即加入顺序
// Secrets[i] 是 i 号座位的密钥，只发给该座位的玩家，不出现在公开视图中
type Lobby struct {
	ID         string      `json:"id"`
	Host       string      `json:"host"`
	RoundCount int         `json:"round_count"`
	Seed       *uint64     `json:"seed,omitempty"`
	Status     LobbyStatus `json:"status"`
	Players    []string    `json:"players"`
	Secrets    []string    `json:"-"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Seat 玩家名对应的座位号
func (l *Lobby) Seat(name string) (int, bool) {
	for i, p := range l.Players {
		if p == name {
			return i, true
		}
	}
	return -1, false
}

// CheckSecret 校验座位密钥
func (l *Lobby) CheckSecret(seat int, secret string) bool {
	if seat < 0 || seat >= len(l.Secrets) || secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(l.Secrets[seat]), []byte(secret)) == 1
}

// AddPlayer 入座
// 名字已在座时必须带上该座位的密钥（proof）才算重连，否则视为重名；
// 新玩家使用 issued 作为座位密钥
func (l *Lobby) AddPlayer(name, proof, issued string) (int, error) {
	if seat, ok := l.Seat(name); ok {
		if !l.CheckSecret(seat, proof) {
			return -1, appErrors.ErrNameTaken
		}
		return seat, nil
	}
	if l.Status != LobbyWaiting {
		return -1, appErrors.ErrLobbyStarted
	}
	if len(l.Players) >= engine.MaxPlayers {
		return -1, appErrors.ErrLobbyFull
	}
	l.Players = append(l.Players, name)
	l.Secrets = append(l.Secrets, issued)
	return len(l.Players) - 1, nil
}

// Start 房主凭 0 号座位密钥开局
func (l *Lobby) Start(host, secret string) error {
	if l.Host != host || !l.CheckSecret(0, secret) {
		return appErrors.ErrNotHost
	}
	if l.Status != LobbyWaiting {
		return appErrors.ErrLobbyStarted
	}
	if len(l.Players) < engine.MinPlayers {
		return appErrors.ErrNotEnough
	}
	l.Status = LobbyStarted
	return nil
}
