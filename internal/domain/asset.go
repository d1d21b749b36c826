package domain

import "time"

// Media classes accepted by the upload endpoints. Each class carries its own
// size cap and MIME allow-list.
const (
	MediaClassImage    = "image"
	MediaClassDocument = "document"
)

// Asset is the metadata record for an object stored in the media bucket.
// PublicID is the client-facing handle used for deletion.
type Asset struct {
	PublicID   string    `json:"public_id" dynamodbav:"public_id"`
	Object     string    `json:"object" dynamodbav:"object"`
	Size       int64     `json:"bytes" dynamodbav:"size"`
	Type       string    `json:"type" dynamodbav:"type"`
	Name       string    `json:"name" dynamodbav:"name"`
	Hash       string    `json:"hash" dynamodbav:"hash"`
	URL        string    `json:"url" dynamodbav:"url"`
	SecureURL  string    `json:"secure_url" dynamodbav:"-"`
	UploadedBy string    `json:"uploaded_by" dynamodbav:"uploaded_by"`
	Enable     bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}
