package entity

const (
	StatusOnline  = "online"
	StatusTyping  = "typing"
	StatusOffline = "offline"
)

type BuyerProfile struct {
	UID    string  `json:"uid" firestore:"-"`
	Name   string  `json:"name" firestore:"name"`
	Avatar *string `json:"avatar,omitempty" firestore:"avatar,omitempty"`
	Status string  `json:"status" firestore:"status"`
}

// PresenceStatus returns the profile status, falling back to offline for
// missing or unrecognised values.
func (p *BuyerProfile) PresenceStatus() string {
	switch p.Status {
	case StatusOnline, StatusTyping, StatusOffline:
		return p.Status
	default:
		return StatusOffline
	}
}
