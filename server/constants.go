package server

// WebSocket message types.
const (
	MessageTypeCycleResult = "cycleResult"
)

// CORS configuration for the HTTP surface.
const (
	CORSAllowOrigin  = "*"
	CORSAllowMethods = "GET, POST, OPTIONS"
	CORSAllowHeaders = "Content-Type, Authorization"
)

// mDNS service registration, so local UIs can auto-discover the gadget.
const (
	MDNSServiceType = "_flipperpi._tcp"
	MDNSDomain      = "local."
)
