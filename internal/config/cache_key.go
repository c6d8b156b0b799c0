package config

import "fmt"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// LeaderboardKey returns the cache key for a ranked top-N snapshot.
func (r *CacheKeyStruct) LeaderboardKey(n int) string {
	return fmt.Sprintf("leaderboard:top:%d", n)
}

// PlayerActiveSessionKey returns the key marking a player's live session.
func (r *CacheKeyStruct) PlayerActiveSessionKey(playerName string) string {
	return fmt.Sprintf("player:%s:active_session", playerName)
}

var CacheKey = NewCacheKeyStruct()
