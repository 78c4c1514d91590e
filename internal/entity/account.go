package entity

import (
	"strings"

	"github.com/google/uuid"
)

type Platform string

const (
	PlatformFacebook  Platform = "FACEBOOK"
	PlatformInstagram Platform = "INSTAGRAM"
	PlatformYouTube   Platform = "YOUTUBE"
	PlatformTikTok    Platform = "TIKTOK"
	PlatformX         Platform = "X"
	PlatformZalo      Platform = "ZALO"
	PlatformTelegram  Platform = "TELEGRAM"
)

// Key is the lowercase form used for rate-limit and registry keys.
func (p Platform) Key() string {
	return strings.ToLower(string(p))
}

type VideoRef struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	OriginalFileName string    `json:"original_file_name,omitempty"`
	FilePath         string    `json:"-"`
	Description      *string   `json:"description,omitempty"`
}

type AccountRef struct {
	ID          uuid.UUID `json:"id"`
	Platform    Platform  `json:"platform"`
	AccountName string    `json:"account_name"`
}
