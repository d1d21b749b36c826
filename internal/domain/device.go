package domain

import "time"

// Device identifies one client installation (browser profile or app install).
// Sessions bind to a device so the same person can hold concurrent sessions
// for different roles from one browser.
type Device struct {
	DeviceID  string    `json:"id" dynamodbav:"device_id"`
	UUID      string    `json:"uuid" dynamodbav:"device_uuid"`
	AccountID string    `json:"account_id" dynamodbav:"account_id"`
	Enable    bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}
