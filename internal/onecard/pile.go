package onecard

// Pile is an ordered stack of cards. The front is the top.
type Pile struct {
	d *deque[Card]
}

// NewPile returns a pile holding cards, cards[0] on top.
func NewPile(cards ...Card) *Pile {
	return &Pile{d: newDeque(DeckSize, cards...)}
}

func (p *Pile) Len() int { return p.d.len() }

// Draw removes the top card.
func (p *Pile) Draw() (Card, error) {
	c, ok := p.d.popFront()
	if !ok {
		return Card{}, ErrEmptyPile
	}
	return c, nil
}

// Put places c on top.
func (p *Pile) Put(c Card) { p.d.pushFront(c) }

// PutBottom places c under every other card.
func (p *Pile) PutBottom(c Card) { p.d.pushBack(c) }

// Top returns the top card without removing it.
func (p *Pile) Top() (Card, bool) { return p.d.peekFront() }

// Cards copies the pile top to bottom.
func (p *Pile) Cards() []Card { return p.d.slice() }
