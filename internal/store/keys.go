package store

import "fmt"

const (
	// LobbyKeyPrefix 大厅 Key 前缀，完整格式 boba:lobby:{lobbyId}
	LobbyKeyPrefix = "boba:lobby:"
	// StatusKeyPrefix 对局快照 Key 前缀，完整格式 boba:game:{gameId}:status
	StatusKeyPrefix = "boba:game:"
)

// BuildLobbyKey 构建大厅 Key
func BuildLobbyKey(lobbyID string) string {
	return LobbyKeyPrefix + lobbyID
}

// BuildStatusKey 构建对局快照 Key
func BuildStatusKey(gameID string) string {
	return fmt.Sprintf("%s%s:status", StatusKeyPrefix, gameID)
}
