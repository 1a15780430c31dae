package model

import "time"

// ShareGrant lets a non-owner read one specific revision.
type ShareGrant struct {
	ID         string    `json:"id"`
	RevisionID string    `json:"revision_id"`
	GranteeID  string    `json:"grantee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// ShareResult reports the emails touched by a grant reconciliation.
type ShareResult struct {
	Added    []string `json:"added"`
	Removed  []string `json:"removed"`
	NotFound []string `json:"not_found"`
}
