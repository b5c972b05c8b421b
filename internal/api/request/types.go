package request

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateConfigRequest is the request body for updating lobby config
type UpdateConfigRequest struct {
	Mode               string `json:"mode"`
	TurnTimeoutSeconds int    `json:"turn_timeout_seconds"`
}

// SetTeamRoleRequest is the request body for claiming a seat
type SetTeamRoleRequest struct {
	Team string `json:"team"`
	Role string `json:"role"`
}

// TransferHostRequest is the request body for transferring host
type TransferHostRequest struct {
	NewHostID string `json:"new_host_id"`
}

// AddBotRequest is the request body for adding a bot to a lobby
type AddBotRequest struct {
	Team     string `json:"team"`
	Role     string `json:"role"`
	Strategy string `json:"strategy,omitempty"`
}

// ClueRequest is the request body for submitting a clue
type ClueRequest struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// GuessRequest is the request body for guessing a card
type GuessRequest struct {
	CardID int `json:"card_id"`
}

// EndTurnRequest is the request body for voluntarily passing the turn
type EndTurnRequest struct {
	TurnSeq int `json:"turn_seq"`
}
