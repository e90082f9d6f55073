package models

import "time"

// Snapshot is the broadcast-safe projection of a game. It deliberately
// excludes logo payloads, which travel on the separate assets message, and
// carries the server's wall-clock time so clients can extrapolate the timer
// locally from the same timestamps the server used.
type Snapshot struct {
	GameID          string         `json:"game_id"`
	Status          GameStatus     `json:"status"`
	Period          string         `json:"period"`
	HomeName        string         `json:"home_name"`
	AwayName        string         `json:"away_name"`
	HomeScore       int            `json:"home_score"`
	AwayScore       int            `json:"away_score"`
	HomeYellowCards int            `json:"home_yellow_cards"`
	HomeRedCards    int            `json:"home_red_cards"`
	AwayYellowCards int            `json:"away_yellow_cards"`
	AwayRedCards    int            `json:"away_red_cards"`
	HomeShirtColor  string         `json:"home_shirt_color"`
	HomeNumberColor string         `json:"home_number_color"`
	AwayShirtColor  string         `json:"away_shirt_color"`
	AwayNumberColor string         `json:"away_number_color"`
	TimerSeconds    int            `json:"timer_seconds"`
	TimerRunning    bool           `json:"timer_running"`
	TimerStartedAt  *time.Time     `json:"timer_started_at,omitempty"`
	TimerDirection  TimerDirection `json:"timer_direction"`
	TimerSetSeconds int            `json:"timer_set_seconds"`
	HomeKicks       []KickResult   `json:"home_kicks"`
	AwayKicks       []KickResult   `json:"away_kicks"`
	ServerTime      time.Time      `json:"server_time"`
}

// AssetBundle is the low-frequency appearance payload pushed on join, on a
// cold poll, and after an appearance-changing mutation. Never included in
// routine state broadcasts.
type AssetBundle struct {
	HomeName    string  `json:"home_name"`
	AwayName    string  `json:"away_name"`
	HomeLogoURL *string `json:"home_logo_url,omitempty"`
	AwayLogoURL *string `json:"away_logo_url,omitempty"`
}
