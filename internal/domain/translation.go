package domain

import "time"

// Translation is a stored text-to-sign request and the video it resolved to
type Translation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	VideoURL  string    `json:"video_url"`
	IsLive    bool      `json:"is_live"`
	CreatedAt time.Time `json:"created_at"`
}
