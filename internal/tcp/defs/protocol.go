package defs

import "time"

// Protocol constants
const (
	MagicNumber uint16 = 0xCAFE
	HeaderSize         = 8

	// Message types
	MsgRunRequest    byte = 0x01
	MsgRunResult     byte = 0x02
	MsgSubmitRequest byte = 0x03
	MsgSubmitResult  byte = 0x04
	MsgError         byte = 0x07

	// MaxPayloadSize matches the request body limit of the HTTP boundary
	MaxPayloadSize = 32 << 20

	// Configuration constants
	IdleTimeout          = 5 * time.Minute
	ConnectionRetryDelay = 1 * time.Second
)
