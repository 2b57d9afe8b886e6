package models

import (
	"smartbizmap.kr/internal/pipeline"
	"smartbizmap.kr/internal/session"
)

// ViewModel summarises the snapshot currently shown to a session.
type ViewModel struct {
	Token       uint64         `json:"token"`
	Query       pipeline.Query `json:"query"`
	DataVersion uint64         `json:"dataVersion"`
	Unmatched   int            `json:"unmatched"`
}

type SessionEntry struct {
	ID        string     `json:"id"`
	CreatedAt int64      `json:"createdAt"`
	Cart      []string   `json:"cart"`
	View      *ViewModel `json:"view"`
}

func NewSessionEntry(s *session.Session) SessionEntry {
	entry := SessionEntry{
		ID:        s.ID,
		CreatedAt: s.CreatedAt.UnixMilli(),
		Cart:      s.Cart.IDs(),
	}
	if snap, token := s.View(); snap != nil {
		entry.View = NewViewModel(snap, token)
	}
	return entry
}

func NewViewModel(snap *pipeline.Snapshot, token uint64) *ViewModel {
	return &ViewModel{
		Token:       token,
		Query:       snap.Query,
		DataVersion: snap.DataVersion,
		Unmatched:   snap.Diagnostics.Unmatched,
	}
}
