package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAccumulates(t *testing.T) {
	c := &Cart{}
	c.Add("pizza", 2)
	c.Add("samosa", 1)
	c.Add("pizza", 3)

	assert.Equal(t, 5, c.Quantity("pizza"))
	assert.Equal(t, 1, c.Quantity("samosa"))
	assert.Equal(t, 2, c.Len())
}

func TestAddKeepsInsertionOrder(t *testing.T) {
	c := &Cart{}
	c.Add("pizza", 2)
	c.Add("samosa", 1)
	c.Add("mango lassi", 3)
	c.Add("pizza", 1)

	lines := c.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "pizza", lines[0].Item)
	assert.Equal(t, "samosa", lines[1].Item)
	assert.Equal(t, "mango lassi", lines[2].Item)
}

func TestRemoveSubtracts(t *testing.T) {
	c := &Cart{}
	c.Add("pizza", 3)

	found := c.Remove("pizza", 1)
	assert.True(t, found)
	assert.Equal(t, 2, c.Quantity("pizza"))
}

func TestRemoveAtOrBelowZeroDeletesLine(t *testing.T) {
	c := &Cart{}
	c.Add("pizza", 2)
	c.Add("samosa", 1)

	c.Remove("pizza", 2)
	assert.Equal(t, 0, c.Quantity("pizza"))
	assert.Equal(t, 1, c.Len())

	c.Remove("samosa", 5)
	assert.Equal(t, 0, c.Len())
}

func TestRemoveAbsentItem(t *testing.T) {
	c := &Cart{}
	c.Add("pizza", 2)

	assert.False(t, c.Remove("biryani", 1))
	assert.Equal(t, 2, c.Quantity("pizza"))
}

func TestLinesReturnsCopy(t *testing.T) {
	c := &Cart{}
	c.Add("pizza", 2)

	lines := c.Lines()
	lines[0].Quantity = 99
	assert.Equal(t, 2, c.Quantity("pizza"))
}
