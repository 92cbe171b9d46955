package models

// Position represents a GPS fix delivered by the location stream
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"` // GPS accuracy in meters
	Timestamp int64   `json:"timestamp"`          // Client-side timestamp (unix millis)
}
