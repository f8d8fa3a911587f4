package entity

// ChatRoom is a conversation between the seller of a listing and one buyer.
type ChatRoom struct {
	ID       string `json:"id" firestore:"-"`
	SellerID string `json:"seller_id" firestore:"sellerId"`
	BuyerID  string `json:"buyer_id" firestore:"buyerId"`
	Read     *bool  `json:"read,omitempty" firestore:"read,omitempty"`
}

// IsRead reports the room's read flag, treating an unset flag as read.
func (r *ChatRoom) IsRead() bool {
	if r.Read == nil {
		return true
	}
	return *r.Read
}
