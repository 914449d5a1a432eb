package server

import "github.com/porticus-lab/tabshot"

// State is the JSON form of the board view.
type State struct {
	URL           string      `json:"url,omitempty"`
	TitleVisible  bool        `json:"title_visible"`
	ExportVisible bool        `json:"export_visible"`
	Loading       bool        `json:"loading"`
	Dragging      int         `json:"dragging"`
	Anchor        int         `json:"anchor"`
	Items         []ItemState `json:"items"`
}

// ItemState is one entry of State.Items.
type ItemState struct {
	Index     int     `json:"index"`
	Src       string  `json:"src"`
	MediaType string  `json:"media_type"`
	Bytes     int     `json:"bytes"`
	Scale     float64 `json:"scale"`
}

func (s *Server) state() State {
	return newState(s.board.View(), s.tab)
}

func newState(v tabshot.View, tab Navigator) State {
	st := State{
		TitleVisible:  v.TitleVisible,
		ExportVisible: v.ExportVisible,
		Loading:       v.Loading,
		Dragging:      v.Dragging,
		Anchor:        v.Anchor,
		Items:         make([]ItemState, len(v.Items)),
	}
	if tab != nil {
		st.URL = tab.URL()
	}
	for i, iv := range v.Items {
		st.Items[i] = ItemState{
			Index:     iv.Index,
			Src:       iv.Item.DataURL,
			MediaType: iv.Item.MediaType(),
			Bytes:     iv.Item.Size(),
			Scale:     iv.Scale,
		}
	}
	return st
}
