package domain

import "time"

// NodeInfo describes one running execution engine process.
type NodeInfo struct {
	ID            string    `json:"id"`
	Languages     []string  `json:"languages"`
	Capacity      int       `json:"capacity"`
	CurrentLoad   int       `json:"currentLoad"`
	LastHeartbeat time.Time `json:"lastHeartbeat"`
	IpAddress     string    `json:"ipAddress"`
	OS            string    `json:"os"`
	Version       string    `json:"version"`
	IsActive      bool      `json:"isActive"`
}
