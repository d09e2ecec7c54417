package axis

// Category is a categorical axis: an append-only label table with stable
// integer indices in first-seen order.
//
// A growable Category admits new labels on first use, which grows the axis in
// place; histograms owning the axis re-layout their cells accordingly. A
// fixed Category rejects unknown labels with *ErrUnknownLabel.
//
// Categorical axes have no sentinel cells: Extent equals the current label
// count and dense indices are the label indices themselves.
type Category struct {
	name     string
	labels   []string
	index    map[string]int
	growable bool
}

var _ Axis = (*Category)(nil)

// NewCategory creates a growable categorical axis, optionally seeded with
// labels. Duplicate seed labels collapse onto their first occurrence.
func NewCategory(name string, labels ...string) *Category {
	return newCategory(name, labels, true)
}

// NewFixedCategory creates a categorical axis whose label set is closed.
func NewFixedCategory(name string, labels ...string) *Category {
	return newCategory(name, labels, false)
}

func newCategory(name string, labels []string, growable bool) *Category {
	c := &Category{
		name:     name,
		index:    make(map[string]int, len(labels)),
		growable: growable,
	}
	for _, label := range labels {
		if _, ok := c.index[label]; ok {
			continue
		}
		c.index[label] = len(c.labels)
		c.labels = append(c.labels, label)
	}
	return c
}

// Name returns the axis name.
func (c *Category) Name() string { return c.name }

// Kind returns KindCategory.
func (c *Category) Kind() Kind { return KindCategory }

// Bins returns the current label count.
func (c *Category) Bins() int { return len(c.labels) }

// Extent returns the current label count.
func (c *Category) Extent() int { return len(c.labels) }

// Growable reports whether unseen labels are admitted on first use.
func (c *Category) Growable() bool { return c.growable }

// Labels returns a copy of the labels in first-seen order.
func (c *Category) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

// Lookup returns the index of a label without growing the axis.
func (c *Category) Lookup(label string) (int, bool) {
	i, ok := c.index[label]
	return i, ok
}

// Index returns the dense index of a label. On a growable axis an unseen
// label is appended and its new index returned; on a fixed axis the lookup
// fails with *ErrUnknownLabel.
func (c *Category) Index(label string) (int, error) {
	if i, ok := c.index[label]; ok {
		return i, nil
	}
	if !c.growable {
		return 0, &ErrUnknownLabel{Axis: c.name, Label: label}
	}

	i := len(c.labels)
	c.index[label] = i
	c.labels = append(c.labels, label)
	return i, nil
}

// Clone returns an independent copy with its own label table.
func (c *Category) Clone() Axis {
	clone := &Category{
		name:     c.name,
		labels:   make([]string, len(c.labels)),
		index:    make(map[string]int, len(c.index)),
		growable: c.growable,
	}
	copy(clone.labels, c.labels)
	for label, i := range c.index {
		clone.index[label] = i
	}
	return clone
}
