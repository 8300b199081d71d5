package queue

// RoutingKeyShareExpired binds the expiry notice queue to the harbor exchange.
const RoutingKeyShareExpired = "share.expired"

// ShareExpired is emitted by the reaper once per expiring share whose owner
// has notifications enabled. The notifier worker turns it into a push notice.
type ShareExpired struct {
	ShareID       string `json:"share_id"`
	UserID        string `json:"user_id"`
	ReactionCount int    `json:"reaction_count"`
	Message       string `json:"message"`
}
