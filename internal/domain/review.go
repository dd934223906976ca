package domain

import "time"

type Review struct {
	ID            string    `json:"review_id"`
	TransactionID string    `json:"transaction_id"`
	ReviewerID    string    `json:"reviewer_id"`
	RevieweeID    string    `json:"reviewee_id"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment,omitempty"`
	CreatedOn     time.Time `json:"created_on"`
}
