package onecard

// TurnOrder tracks whose turn it is.
//
// The player acting now is held outside the sequence. Going forward, the next
// player comes off the front and a finished player goes to the back; going
// backward both ends swap roles.
type TurnOrder struct {
	seq     *deque[string]
	forward bool
	current string
	next    string
}

// NewTurnOrder seeds the order from players in join order. The first player
// acts first and the direction is forward.
func NewTurnOrder(players []string) (*TurnOrder, error) {
	if len(players) < MinPlayers {
		return nil, ErrNotEnoughPlayers
	}
	t := &TurnOrder{
		seq:     newDeque(len(players), players...),
		forward: true,
	}
	t.current, _ = t.seq.popFront()
	t.peek()
	return t, nil
}

// RestoreTurnOrder rebuilds a tracker from a stored sequence, direction and
// current player. nextTurn is derived, not stored.
func RestoreTurnOrder(seq []string, forward bool, current string) *TurnOrder {
	t := &TurnOrder{
		seq:     newDeque(len(seq)+1, seq...),
		forward: forward,
		current: current,
	}
	t.peek()
	return t
}

func (t *TurnOrder) peek() {
	if t.forward {
		t.next, _ = t.seq.peekFront()
	} else {
		t.next, _ = t.seq.peekBack()
	}
}

// Advance passes the turn to the next player and returns them.
func (t *TurnOrder) Advance() string {
	if t.seq.len() == 0 {
		return t.current
	}
	if t.forward {
		cur, _ := t.seq.popFront()
		t.seq.pushBack(t.current)
		t.current = cur
	} else {
		cur, _ := t.seq.popBack()
		t.seq.pushFront(t.current)
		t.current = cur
	}
	t.peek()
	return t.current
}

// Reverse flips the direction of play. The sequence is left as is.
func (t *TurnOrder) Reverse() {
	t.forward = !t.forward
	t.peek()
}

func (t *TurnOrder) Current() string { return t.current }
func (t *TurnOrder) Next() string    { return t.next }
func (t *TurnOrder) Forward() bool   { return t.forward }

// Sequence copies the waiting players front to back, excluding Current.
func (t *TurnOrder) Sequence() []string { return t.seq.slice() }

// Players returns every player in the order, Current first.
func (t *TurnOrder) Players() []string {
	return append([]string{t.current}, t.seq.slice()...)
}
