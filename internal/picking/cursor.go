package picking

import "pmd-rigview/internal/skeleton"

// NoBone is the cursor value when nothing is selected.
const NoBone = -1

// Cursor tracks the bone selected by the input layer. Keyboard stepping
// cycles through [1, count]; picking sets it directly.
type Cursor struct {
	count   int
	current int
}

// NewCursor returns a cursor over count bones with nothing selected.
func NewCursor(count int) *Cursor {
	return &Cursor{count: count, current: NoBone}
}

// Current returns the selected bone id, or NoBone.
func (c *Cursor) Current() int {
	return c.current
}

// Selected reports whether a bone is selected.
func (c *Cursor) Selected() bool {
	return c.current != NoBone
}

// Set selects bone id. Ids outside [1, count] are rejected with an
// IndexError and leave the selection unchanged.
func (c *Cursor) Set(id int) error {
	if id < 1 || id > c.count {
		return &skeleton.IndexError{Bone: id, Count: c.count}
	}
	c.current = id
	return nil
}

// Clear drops the selection.
func (c *Cursor) Clear() {
	c.current = NoBone
}

// Step moves the selection by delta bones, wrapping at both ends. With
// nothing selected, a forward step lands on the first bone and a backward
// step on the last.
func (c *Cursor) Step(delta int) int {
	if c.count == 0 {
		return c.current
	}
	pos := c.current - 1 // zero-based
	if c.current == NoBone {
		if delta > 0 {
			pos = -1
		} else {
			pos = c.count
		}
	}
	pos = ((pos+delta)%c.count + c.count) % c.count
	c.current = pos + 1
	return c.current
}

// Next selects the following bone.
func (c *Cursor) Next() int { return c.Step(1) }

// Prev selects the preceding bone.
func (c *Cursor) Prev() int { return c.Step(-1) }

// Update applies a pick result: a hit selects the bone, a miss clears the
// selection. It reports whether the selection changed.
func (c *Cursor) Update(h Hit, ok bool) bool {
	prev := c.current
	if ok {
		c.current = h.Bone
	} else {
		c.current = NoBone
	}
	return prev != c.current
}
