// Package domain contains core concepts of the messaging system.
// This file defines the authenticated Identity bound to a connection.
// No runtime, network, or UI logic should be added here.
package domain

// Identity is the authenticated user resolved once during the handshake.
// It is read-only for the lifetime of the connection.
type Identity struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}

// PublicUser is the projection of an Identity that is safe to send to peers.
// Email is only populated for the owner's own connection_established event.
type PublicUser struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Profile returns the full public projection, including the email.
func (i Identity) Profile() PublicUser {
	return PublicUser{ID: i.ID, Email: i.Email, FirstName: i.FirstName, LastName: i.LastName}
}

// Public returns the projection used in presence events, without the email.
func (i Identity) Public() PublicUser {
	return PublicUser{ID: i.ID, FirstName: i.FirstName, LastName: i.LastName}
}
