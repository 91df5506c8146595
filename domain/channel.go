package domain

// Channel is an addressable topic with a membership set.
// A channel is owned by exactly one team; a user may join it only if one of
// their teams is the owner.
type Channel struct {
	ID     string `json:"id"`
	TeamID string `json:"teamId"`
	Name   string `json:"name"`
}

// Team groups users; channel access is authorized through team membership.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
