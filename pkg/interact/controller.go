package interact

// ClickHandler receives the key of a clicked intersection.
type ClickHandler func(key string)

// Point is a pointer position in viewport coordinates.
type Point struct {
	X, Y float64
}

// Controller owns the interaction state of one chart. It is not safe for
// concurrent use.
type Controller struct {
	state   State
	onClick ClickHandler
	pointer Point
}

// Option configures a Controller.
type Option func(*Controller)

// WithClickHandler routes clicks to h instead of toggling the selection.
func WithClickHandler(h ClickHandler) Option {
	return func(c *Controller) { c.onClick = h }
}

// WithSelection starts the controller with keys selected.
func WithSelection(keys ...string) Option {
	return func(c *Controller) { c.state = c.state.WithSelected(keys...) }
}

// NewController returns an Idle controller.
func NewController(opts ...Option) *Controller {
	c := &Controller{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Pointer returns the last pointer position.
func (c *Controller) Pointer() Point { return c.pointer }

// SetClickHandler replaces the click handler; nil restores toggling.
func (c *Controller) SetClickHandler(h ClickHandler) { c.onClick = h }

// PointerEnter hovers key.
func (c *Controller) PointerEnter(key string) Update {
	var u Update
	c.state, u = c.state.Enter(key)
	return u
}

// PointerLeave clears the hover.
func (c *Controller) PointerLeave() Update {
	var u Update
	c.state, u = c.state.Leave()
	return u
}

// PointerMove records the pointer position. While hovering the tooltip
// follows it; the state itself never changes.
func (c *Controller) PointerMove(x, y float64) Update {
	c.pointer = Point{X: x, Y: y}
	if _, ok := c.state.Hovered(); ok {
		return UpdateTooltip
	}
	return UpdateNone
}

// Click hands key to the registered click handler, or toggles its
// selection when there is none.
func (c *Controller) Click(key string) Update {
	if c.onClick != nil {
		c.onClick(key)
		return UpdateNone
	}
	var u Update
	c.state, u = c.state.Toggle(key)
	return u
}

// ClearHover drops the hover without reporting an update. Used when the
// rows it referred to are replaced.
func (c *Controller) ClearHover() {
	c.state, _ = c.state.Leave()
}
