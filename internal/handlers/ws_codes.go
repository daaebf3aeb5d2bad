// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the room handler. These give clients a
// more specific reason for closure than the standard codes.
const (
	BadSubprotocolError  = 3000 // Client connected with an unsupported subprotocol.
	InvalidRoomIDError   = 3001 // Target room ID in the WS URL does not exist.
	MissingPlayerIDError = 3002 // No player identifier supplied on connect.
)
