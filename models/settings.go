package models

// CalendarSettings is a singleton row holding the service-wide nostr identity
// used to sign outgoing direct messages, and the relays to publish them to.
type CalendarSettings struct {
	ID              uint     `json:"-" gorm:"primaryKey"`
	NostrPrivateKey string   `json:"nostr_private_key"`
	Relays          []string `json:"relays" gorm:"serializer:json"`
}
