package cart

// Line is one cart entry. Lines keep insertion order, which the summary
// phrase depends on and a Go map would not preserve.
type Line struct {
	Item     string
	Quantity int
}

// Cart is the in-progress order of one session. Not safe for concurrent
// use on its own; the Store serializes access per session.
type Cart struct {
	lines []Line
}

// Add inserts the item or accumulates onto its existing quantity.
func (c *Cart) Add(item string, qty int) {
	for i := range c.lines {
		if c.lines[i].Item == item {
			c.lines[i].Quantity += qty
			return
		}
	}
	c.lines = append(c.lines, Line{Item: item, Quantity: qty})
}

// Remove subtracts qty from the item and reports whether the item was
// present. A quantity dropping to zero or below deletes the line; negative
// quantities never persist.
func (c *Cart) Remove(item string, qty int) bool {
	for i := range c.lines {
		if c.lines[i].Item != item {
			continue
		}
		c.lines[i].Quantity -= qty
		if c.lines[i].Quantity <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		}
		return true
	}
	return false
}

func (c *Cart) Len() int { return len(c.lines) }

// Lines returns a copy of the cart contents in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Quantity returns the current quantity for item, 0 if absent.
func (c *Cart) Quantity(item string) int {
	for _, l := range c.lines {
		if l.Item == item {
			return l.Quantity
		}
	}
	return 0
}
