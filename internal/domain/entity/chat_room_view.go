package entity

const (
	DefaultBuyerName   = "Unknown Buyer"
	DefaultSenderName  = "Unknown User"
	DefaultLastMessage = "Start chatting"
)

// ChatRoomView is the display record for one entry of a seller's chat list.
type ChatRoomView struct {
	ID          string  `json:"id"`
	BuyerName   string  `json:"buyer_name"`
	BuyerID     string  `json:"buyer_id"`
	Avatar      *string `json:"avatar"`
	Status      string  `json:"status"`
	LastMessage string  `json:"last_message"`
	Timestamp   int64   `json:"timestamp"`
	Read        bool    `json:"read"`
}

// NavigationTarget is what the presentation layer needs to open a conversation.
type NavigationTarget struct {
	ChatRoomID string `json:"chat_room_id"`
	BuyerName  string `json:"buyer_name"`
}
