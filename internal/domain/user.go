package domain

import "time"

type User struct {
	ID            string    `json:"user_id"`
	DisplayName   string    `json:"display_name"`
	WalletAddress string    `json:"wallet_address,omitempty"`
	Email         string    `json:"-"`
	ProfilePicURL string    `json:"profile_pic_url"`
	Bio           string    `json:"bio"`
	Rating        float64   `json:"rating"`
	ReviewCount   int       `json:"review_count"`
	RatingTotal   int       `json:"-"` // Sum of every rating received; Rating is derived from it
	CreatedOn     time.Time `json:"created_on"`
	UpdatedOn     time.Time `json:"updated_on"`
}
