package chart

import "github.com/matzehuels/crimescope/pkg/dataset"

// Listener receives the selection after a change.
type Listener func(Selection)

// Controller owns the current Selection of one interactive chart and
// notifies listeners after every mutation. It is meant to be driven from a
// single goroutine (a bubbletea update loop or one request).
type Controller struct {
	sel       Selection
	taxonomy  *dataset.Taxonomy
	listeners []Listener

	batchDepth int
	pending    bool
}

// NewController returns a controller starting at initial.
func NewController(initial Selection) *Controller {
	return &Controller{sel: initial}
}

// Subscribe registers fn for change notifications.
func (c *Controller) Subscribe(fn Listener) {
	c.listeners = append(c.listeners, fn)
}

// SetTaxonomy sets the parent → children mapping used by ToggleGroup.
func (c *Controller) SetTaxonomy(t *dataset.Taxonomy) {
	c.taxonomy = t
}

// Selection returns the current selection.
func (c *Controller) Selection() Selection { return c.sel }

func (c *Controller) apply(next Selection) {
	c.sel = next
	if c.batchDepth > 0 {
		c.pending = true
		return
	}
	c.notify()
}

func (c *Controller) notify() {
	for _, fn := range c.listeners {
		fn(c.sel)
	}
}

// Batch runs fn and emits at most one notification for all mutations it
// performs. Batches nest.
func (c *Controller) Batch(fn func()) {
	c.batchDepth++
	defer func() {
		c.batchDepth--
		if c.batchDepth == 0 && c.pending {
			c.pending = false
			c.notify()
		}
	}()
	fn()
}

// Toggle flips key.
func (c *Controller) Toggle(key string) { c.apply(c.sel.Flip(key)) }

// SetAll makes exactly keys active.
func (c *Controller) SetAll(keys []string) { c.apply(c.sel.Only(keys...)) }

// Clear empties the active set, which renders as all keys.
func (c *Controller) Clear() { c.apply(c.sel.Cleared()) }

// IsActive reports whether key is active.
func (c *Controller) IsActive(key string) bool { return c.sel.IsActive(key) }

// GroupChecked reports whether every child of parent is active.
func (c *Controller) GroupChecked(parent string) bool {
	return c.sel.GroupState(c.taxonomy.Children(parent))
}

// ToggleGroup sets every child of parent to the parent's new checked state
// in one mutation.
func (c *Controller) ToggleGroup(parent string) {
	c.apply(c.sel.FlipGroup(c.taxonomy.Children(parent)))
}

// SetMode switches the mode, resetting keys and focus.
func (c *Controller) SetMode(mode string) { c.apply(c.sel.WithMode(mode)) }

// SetFilter sets the filter.
func (c *Controller) SetFilter(filter string) { c.apply(c.sel.WithFilter(filter)) }

// SetFocus sets the drill-down target.
func (c *Controller) SetFocus(focus string) { c.apply(c.sel.WithFocus(focus)) }

// SetBreakdown sets the breakdown toggle.
func (c *Controller) SetBreakdown(on bool) { c.apply(c.sel.WithBreakdown(on)) }
