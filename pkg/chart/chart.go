package chart

import (
	"errors"

	"github.com/charmbracelet/log"

	upserrors "github.com/matzehuels/upset/pkg/errors"
	"github.com/matzehuels/upset/pkg/interact"
	"github.com/matzehuels/upset/pkg/matrix"
	"github.com/matzehuels/upset/pkg/render/upset"
	"github.com/matzehuels/upset/pkg/render/upset/layout"
	"github.com/matzehuels/upset/pkg/render/upset/styles"
)

// Options configures a chart at mount time.
type Options struct {
	Width    float64
	Height   float64
	FontSize float64

	// Palette overrides the default colors. Zero fields keep the default.
	Palette styles.Palette

	// Selected rows at mount time.
	Selected []string

	// OnClick receives clicked keys instead of toggling the selection.
	OnClick interact.ClickHandler

	Logger *log.Logger
}

// Stats counts how often the chart redrew or recolored.
type Stats struct {
	Draws    int
	Recolors int
}

// Chart is one mounted upset chart.
type Chart struct {
	opts    layout.Options
	palette styles.Palette
	logger  *log.Logger

	ctrl    *interact.Controller
	tooltip *upset.Tooltip

	file   matrix.ParsedFile
	status matrix.Status
	err    error

	layout  layout.Layout
	scene   upset.Scene
	paints  []upset.Paint
	stats   Stats
	mounted bool
}

// New mounts a chart with no data.
func New(opts Options) (*Chart, error) {
	lo := layout.Options{Width: opts.Width, Height: opts.Height, FontSize: opts.FontSize}
	lo.SetDefaults()
	if err := upserrors.ValidateDimensions(lo.Width, lo.Height, lo.FontSize); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	ctrlOpts := []interact.Option{interact.WithSelection(opts.Selected...)}
	if opts.OnClick != nil {
		ctrlOpts = append(ctrlOpts, interact.WithClickHandler(opts.OnClick))
	}
	c := &Chart{
		opts:    lo,
		palette: styles.DefaultPalette().Merge(opts.Palette),
		logger:  logger,
		ctrl:    interact.NewController(ctrlOpts...),
		tooltip: upset.NewTooltip(),
		file:    matrix.ParsedFile{Status: matrix.StatusPending},
		status:  matrix.StatusPending,
		mounted: true,
	}
	c.redraw()
	return c, nil
}

// SetFile shows f. A failed file keeps the previous model on screen and
// only records the error; a pending file only updates the status.
func (c *Chart) SetFile(f matrix.ParsedFile) {
	if !c.mounted {
		return
	}
	c.status, c.err = f.Status, f.Err
	switch f.Status {
	case matrix.StatusValid:
		c.file = f
		c.ctrl.ClearHover()
		c.tooltip.Hide()
		for _, w := range f.Warnings {
			c.logger.Warn("skipped line", "file", f.Name, "line", w.Line, "reason", w.Err)
		}
		c.redraw()
	case matrix.StatusError:
		c.logger.Error("load failed", "file", f.Name, "err", f.Err)
	}
}

// Resize changes the pixel budget and redraws.
func (c *Chart) Resize(width, height float64) error {
	if err := upserrors.ValidateDimensions(width, height, c.opts.FontSize); err != nil {
		return err
	}
	if !c.mounted {
		return nil
	}
	c.opts.Width, c.opts.Height = width, height
	c.redraw()
	return nil
}

// SetFontSize changes the base font size and redraws.
func (c *Chart) SetFontSize(px float64) error {
	if err := upserrors.ValidateDimensions(c.opts.Width, c.opts.Height, px); err != nil {
		return err
	}
	if !c.mounted {
		return nil
	}
	c.opts.FontSize = px
	c.redraw()
	return nil
}

// PointerEnter hovers the row with key; x, y place the tooltip. Unknown
// keys are ignored.
func (c *Chart) PointerEnter(key string, x, y float64) interact.Update {
	if !c.mounted {
		return interact.UpdateNone
	}
	i := c.layout.RowIndex(key)
	if i < 0 {
		return interact.UpdateNone
	}
	c.ctrl.PointerMove(x, y)
	u := c.ctrl.PointerEnter(key)
	if u != interact.UpdateNone {
		c.tooltip.Show(key, c.layout.Rows[i].Value, x, y)
	}
	return c.apply(u)
}

// PointerMove moves the tooltip.
func (c *Chart) PointerMove(x, y float64) interact.Update {
	if !c.mounted {
		return interact.UpdateNone
	}
	u := c.ctrl.PointerMove(x, y)
	if u == interact.UpdateTooltip {
		c.tooltip.Move(x, y)
	}
	return u
}

// PointerLeave clears the hover and hides the tooltip.
func (c *Chart) PointerLeave() interact.Update {
	if !c.mounted {
		return interact.UpdateNone
	}
	c.tooltip.Hide()
	return c.apply(c.ctrl.PointerLeave())
}

// PointerAt hit-tests x, y against the scene and enters, moves within or
// leaves rows accordingly.
func (c *Chart) PointerAt(x, y float64) interact.Update {
	if !c.mounted {
		return interact.UpdateNone
	}
	key, ok := c.scene.HitTest(x, y)
	if !ok {
		return c.PointerLeave()
	}
	if c.ctrl.State().IsHovered(key) {
		return c.PointerMove(x, y)
	}
	return c.PointerEnter(key, x, y)
}

// Click toggles the selection of key, or hands it to the click handler.
func (c *Chart) Click(key string) interact.Update {
	if !c.mounted || c.layout.RowIndex(key) < 0 {
		return interact.UpdateNone
	}
	return c.apply(c.ctrl.Click(key))
}

// SetClickHandler replaces the click handler; nil restores toggling.
func (c *Chart) SetClickHandler(h interact.ClickHandler) { c.ctrl.SetClickHandler(h) }

func (c *Chart) apply(u interact.Update) interact.Update {
	switch u {
	case interact.UpdateRecolor:
		c.scene, c.paints = upset.Recolor(c.scene, c.ctrl.State())
		c.stats.Recolors++
	case interact.UpdateFull:
		c.redraw()
	}
	return u
}

func (c *Chart) redraw() {
	c.paints = nil
	c.stats.Draws++
	l, err := layout.Compute(c.file.Matrix, c.opts)
	if errors.Is(err, layout.ErrEmpty) {
		c.layout = layout.Layout{}
		c.scene = upset.EmptyScene(c.opts.Width, c.opts.Height, upset.WithPalette(c.palette))
		return
	}
	c.layout = l
	c.scene = upset.Draw(l, c.file.Matrix, c.ctrl.State(), upset.WithPalette(c.palette))
	c.logger.Debug("drew chart", "sets", len(l.Columns), "rows", len(l.Rows), "elements", len(c.scene.Elements))
}

// Unmount destroys the tooltip and detaches the chart. Later calls are
// ignored.
func (c *Chart) Unmount() {
	if !c.mounted {
		return
	}
	c.mounted = false
	c.tooltip.Destroy()
}

// Mounted reports whether Unmount has not been called.
func (c *Chart) Mounted() bool { return c.mounted }

// Surface returns the current scene, or nil when there is nothing drawn.
func (c *Chart) Surface() *upset.Scene {
	if !c.mounted || c.scene.Empty() {
		return nil
	}
	s := c.scene
	return &s
}

// Scene returns the current scene, which is an empty frame without data.
func (c *Chart) Scene() upset.Scene { return c.scene }

// Paints returns the fills changed by the last recolor.
func (c *Chart) Paints() []upset.Paint { return c.paints }

// Layout returns the current layout.
func (c *Chart) Layout() layout.Layout { return c.layout }

// Tooltip returns the chart's tooltip.
func (c *Chart) Tooltip() *upset.Tooltip { return c.tooltip }

// State returns the interaction state.
func (c *Chart) State() interact.State { return c.ctrl.State() }

// File returns the file currently shown.
func (c *Chart) File() matrix.ParsedFile { return c.file }

// Status returns the status of the most recent file handed to SetFile.
func (c *Chart) Status() matrix.Status { return c.status }

// Err returns the error of the most recent failed load.
func (c *Chart) Err() error { return c.err }

// Options returns the current layout options.
func (c *Chart) Options() layout.Options { return c.opts }

// Palette returns the chart palette.
func (c *Chart) Palette() styles.Palette { return c.palette }

// Stats returns redraw counters.
func (c *Chart) Stats() Stats { return c.stats }
