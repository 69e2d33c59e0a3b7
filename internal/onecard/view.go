package onecard

// View is the state one player is allowed to see. Other players' hands are
// reduced to a count.
type View struct {
	OpenedCard     *Card          `json:"openedCard"`
	TurnOrder      []string       `json:"turnOrder"`
	TurnDir        bool           `json:"turnDir"`
	CurTurn        string         `json:"curTurn"`
	NextTurn       string         `json:"nextTurn"`
	MyHand         []Card         `json:"myHand"`
	RemainingCards map[string]int `json:"opponentsRemainingCards"`
}

// Project builds the view of g for viewer. It does not modify g.
func Project(g *GameState, viewer string) View {
	v := View{
		TurnOrder:      g.Turns.Sequence(),
		TurnDir:        g.Turns.Forward(),
		CurTurn:        g.Turns.Current(),
		NextTurn:       g.Turns.Next(),
		MyHand:         g.Hands[viewer].Sorted(),
		RemainingCards: make(map[string]int, len(g.Hands)),
	}
	if c, ok := g.OpenedCard(); ok {
		v.OpenedCard = &c
	}
	for p, h := range g.Hands {
		v.RemainingCards[p] = len(h)
	}
	return v
}

// ProjectAll builds one view per player.
func ProjectAll(g *GameState, players []string) map[string]View {
	views := make(map[string]View, len(players))
	for _, p := range players {
		views[p] = Project(g, p)
	}
	return views
}
