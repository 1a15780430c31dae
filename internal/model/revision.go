package model

import "time"

// Revision is one immutable uploaded artifact within a document family.
// A family is every revision sharing the same OwnerID and URL; VersionNumber
// is contiguous and zero-based inside it.
type Revision struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	URL           string    `json:"url"`
	VersionNumber int       `json:"version_number"`
	FileName      string    `json:"file_name"`
	ContentHash   string    `json:"content_hash"`
	BlobRef       string    `json:"-"`
	Size          int64     `json:"size"`
	ContentType   string    `json:"content_type"`
	CreatedAt     time.Time `json:"created_at"`

	// SharedUsers lists current grantees. Only filled on payloads shown to the owner.
	SharedUsers []User `json:"shared_users"`
}

// DocumentFamily groups all revisions of one (owner, url) pair.
type DocumentFamily struct {
	URL       string     `json:"url"`
	Revisions []Revision `json:"revisions"`
}
