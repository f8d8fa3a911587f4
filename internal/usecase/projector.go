package usecase

import (
	"sort"

	"traveleon/internal/domain/entity"
)

// Project merges enriched rooms into display records ordered by latest
// activity, newest first. Rooms without activity (timestamp 0) follow, in
// input order. Duplicate room ids keep their first occurrence.
func Project(enriched []EnrichedRoom) []entity.ChatRoomView {
	seen := make(map[string]struct{}, len(enriched))
	views := make([]entity.ChatRoomView, 0, len(enriched))

	for _, e := range enriched {
		if e.Room == nil {
			continue
		}
		if _, dup := seen[e.Room.ID]; dup {
			continue
		}
		seen[e.Room.ID] = struct{}{}
		views = append(views, buildView(e))
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Timestamp > views[j].Timestamp
	})

	return views
}

func buildView(e EnrichedRoom) entity.ChatRoomView {
	view := entity.ChatRoomView{
		ID:          e.Room.ID,
		BuyerID:     e.Room.BuyerID,
		BuyerName:   entity.DefaultBuyerName,
		Status:      entity.StatusOffline,
		LastMessage: entity.DefaultLastMessage,
		Read:        e.Room.IsRead(),
	}

	if p := e.Profile; p != nil {
		if p.Name != "" {
			view.BuyerName = p.Name
		}
		if p.Avatar != nil {
			avatar := *p.Avatar
			view.Avatar = &avatar
		}
		view.Status = p.PresenceStatus()
	}

	if m := e.Latest; m != nil {
		view.LastMessage = m.Text
		view.Timestamp = m.Epoch()
	}

	return view
}
