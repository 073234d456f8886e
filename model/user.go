package model

import "time"

// Identity providers.
const (
	ProviderLocal = "local"
	ProviderKakao = "kakao"
)

// User represents a registered account. Accounts created through an OAuth
// provider have no password hash and carry the provider's external id in
// SNSID instead.
type User struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Email     *string   `json:"email,omitempty" gorm:"size:191;uniqueIndex"`
	Nick      string    `json:"nick" gorm:"size:32;not null"`
	Password  string    `json:"-" gorm:"size:100"` // bcrypt hash, empty for OAuth-only accounts
	Provider  string    `json:"provider" gorm:"size:16;not null;default:local;uniqueIndex:idx_provider_sns,priority:1"`
	SNSID     *string   `json:"-" gorm:"column:sns_id;size:64;uniqueIndex:idx_provider_sns,priority:2"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasLocalPassword reports whether the account can log in with credentials.
func (u *User) HasLocalPassword() bool {
	return u.Password != ""
}

// Follow is a directed edge meaning "follower follows following". The
// composite unique index keeps the pair unique regardless of how many times
// the insert races.
type Follow struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	FollowerID  int64     `json:"followerId" gorm:"not null;uniqueIndex:idx_follower_following"`
	Follower    *User     `json:"-" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	FollowingID int64     `json:"followingId" gorm:"not null;uniqueIndex:idx_follower_following"`
	Following   *User     `json:"-" gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `json:"createdAt"`
}
