package chart

import (
	"context"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/upset/pkg/errors"
	"github.com/matzehuels/upset/pkg/interact"
	"github.com/matzehuels/upset/pkg/matrix"
	"github.com/matzehuels/upset/pkg/render/upset"
	"github.com/matzehuels/upset/pkg/render/upset/styles"
)

const scenarioA = "SetA\t120\nSetB\t150\nSetA,SetB\t45\n"

func quietLogger() *log.Logger { return log.New(io.Discard) }

func mount(t *testing.T, opts Options) *Chart {
	t.Helper()
	opts.Logger = quietLogger()
	c, err := New(opts)
	require.NoError(t, err)
	return c
}

func loaded(t *testing.T, content string) *Chart {
	t.Helper()
	c := mount(t, Options{})
	c.SetFile(matrix.Load("a.tsv", strings.NewReader(content)))
	require.Equal(t, matrix.StatusValid, c.Status())
	return c
}

func TestNewIsEmpty(t *testing.T) {
	c := mount(t, Options{})
	assert.Nil(t, c.Surface())
	assert.True(t, c.Scene().Empty())
	assert.Equal(t, 800.0, c.Scene().Width)
	assert.Equal(t, matrix.StatusPending, c.Status())
	assert.True(t, c.Mounted())
}

func TestNewRejectsBadDimensions(t *testing.T) {
	_, err := New(Options{Width: -1, Logger: quietLogger()})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestSetFileDraws(t *testing.T) {
	c := loaded(t, scenarioA)
	s := c.Surface()
	require.NotNil(t, s)
	assert.Equal(t, []string{"SetA", "SetB", "SetA,SetB"}, s.Keys())
	assert.Equal(t, 2, c.Stats().Draws)
}

func TestSetFileFailureKeepsModel(t *testing.T) {
	c := loaded(t, scenarioA)
	before := c.Scene()

	c.SetFile(matrix.Load("bad.tsv", strings.NewReader("oops\n")))
	assert.Equal(t, matrix.StatusError, c.Status())
	assert.True(t, errors.Is(c.Err(), errors.ErrCodeInvalidFormat))
	assert.Equal(t, before, c.Scene())
	assert.Equal(t, "a.tsv", c.File().Name)

	c.SetFile(matrix.Pending("next.tsv"))
	assert.Equal(t, matrix.StatusPending, c.Status())
	assert.Equal(t, before, c.Scene())
}

func TestSetFileEmptyContent(t *testing.T) {
	c := loaded(t, scenarioA)
	c.SetFile(matrix.Load("empty.tsv", strings.NewReader("# nothing\n")))
	assert.Equal(t, matrix.StatusValid, c.Status())
	assert.Nil(t, c.Surface())
}

func TestHoverRecolors(t *testing.T) {
	c := loaded(t, scenarioA)
	draws := c.Stats().Draws

	assert.Equal(t, interact.UpdateRecolor, c.PointerEnter("SetA", 100, 100))
	assert.Equal(t, draws, c.Stats().Draws, "hover must not redraw")
	assert.Equal(t, 1, c.Stats().Recolors)
	assert.NotEmpty(t, c.Paints())
	assert.True(t, c.Tooltip().Visible())
	assert.Equal(t, "SetA: 120", c.Tooltip().Text())

	assert.Equal(t, interact.UpdateNone, c.PointerEnter("SetA", 101, 101))
	assert.Equal(t, 1, c.Stats().Recolors)

	assert.Equal(t, interact.UpdateTooltip, c.PointerMove(200, 200))
	x, _ := c.Tooltip().Position()
	assert.Equal(t, 200+upset.TooltipOffsetX, x)

	assert.Equal(t, interact.UpdateRecolor, c.PointerLeave())
	assert.False(t, c.Tooltip().Visible())
	assert.Equal(t, draws, c.Stats().Draws)
}

func TestHoverUnknownKey(t *testing.T) {
	c := loaded(t, scenarioA)
	assert.Equal(t, interact.UpdateNone, c.PointerEnter("nope", 0, 0))
	assert.Equal(t, interact.UpdateNone, c.Click("nope"))
}

func TestClickRedraws(t *testing.T) {
	c := loaded(t, scenarioA)
	draws := c.Stats().Draws

	assert.Equal(t, interact.UpdateFull, c.Click("SetB"))
	assert.Equal(t, draws+1, c.Stats().Draws)
	assert.True(t, c.State().IsSelected("SetB"))

	bar, ok := c.Scene().Find("bar-1")
	require.True(t, ok)
	assert.Equal(t, c.Palette().Bar.SelectedIncluded, bar.Fill)

	c.Click("SetB")
	assert.False(t, c.State().IsSelected("SetB"))
}

func TestClickHandler(t *testing.T) {
	var clicked []string
	c := mount(t, Options{OnClick: func(key string) { clicked = append(clicked, key) }})
	c.SetFile(matrix.Load("a.tsv", strings.NewReader(scenarioA)))
	draws := c.Stats().Draws

	assert.Equal(t, interact.UpdateNone, c.Click("SetA"))
	assert.Equal(t, []string{"SetA"}, clicked)
	assert.Empty(t, c.State().Selected())
	assert.Equal(t, draws, c.Stats().Draws)
}

func TestPointerAt(t *testing.T) {
	c := loaded(t, scenarioA)
	row := c.Layout().Rows[2]

	assert.Equal(t, interact.UpdateRecolor, c.PointerAt(10, row.CenterY))
	assert.True(t, c.State().IsHovered("SetA,SetB"))
	assert.Equal(t, "SetA ∩ SetB: 45", c.Tooltip().Text())

	assert.Equal(t, interact.UpdateTooltip, c.PointerAt(20, row.CenterY))
	assert.Equal(t, interact.UpdateRecolor, c.PointerAt(10, 1))
	assert.False(t, c.Tooltip().Visible())
}

func TestResizeAndFont(t *testing.T) {
	c := loaded(t, scenarioA)

	require.NoError(t, c.Resize(1000, 500))
	assert.Equal(t, 1000.0, c.Scene().Width)
	assert.InDelta(t, 187.5, c.Layout().CellWidth, 1e-9)

	require.NoError(t, c.SetFontSize(16))
	assert.Equal(t, 16.0, c.Layout().FontSize)

	assert.Error(t, c.Resize(-5, 100))
	assert.Error(t, c.SetFontSize(-1))

	require.NoError(t, c.Resize(0, 0))
	assert.Nil(t, c.Surface())
}

func TestSelectionSurvivesNewData(t *testing.T) {
	c := mount(t, Options{Selected: []string{"SetA"}})
	c.SetFile(matrix.Load("a.tsv", strings.NewReader(scenarioA)))
	c.PointerEnter("SetB", 0, 0)

	c.SetFile(matrix.Load("b.tsv", strings.NewReader("SetA\t1\nSetC\t2\n")))
	assert.True(t, c.State().IsSelected("SetA"))
	_, hovering := c.State().Hovered()
	assert.False(t, hovering)
	assert.False(t, c.Tooltip().Visible())
}

func TestPalette(t *testing.T) {
	c := mount(t, Options{Palette: styles.Palette{Background: "#000000"}})
	assert.Equal(t, "#000000", c.Scene().Background)
	assert.Equal(t, styles.DefaultPalette().Dot, c.Palette().Dot)
}

func TestUnmount(t *testing.T) {
	c := loaded(t, scenarioA)
	c.PointerEnter("SetA", 0, 0)
	c.Unmount()

	assert.False(t, c.Mounted())
	assert.True(t, c.Tooltip().Destroyed())
	assert.False(t, c.Tooltip().Visible())
	assert.Nil(t, c.Surface())
	assert.Equal(t, interact.UpdateNone, c.PointerEnter("SetB", 0, 0))
	assert.Equal(t, interact.UpdateNone, c.Click("SetA"))
	c.Unmount()
}

type collector struct {
	mu    sync.Mutex
	files []matrix.ParsedFile
}

func (c *collector) deliver(f matrix.ParsedFile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = append(c.files, f)
}

func (c *collector) snapshot() []matrix.ParsedFile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.files)
}

// gateReader blocks its first read until release is closed.
type gateReader struct {
	release chan struct{}
	r       io.Reader
}

func (g *gateReader) Read(p []byte) (int, error) {
	<-g.release
	return g.r.Read(p)
}

func TestLoaderDelivers(t *testing.T) {
	var got collector
	l := NewLoader(got.deliver, quietLogger())
	out := <-l.Load(context.Background(), "a.tsv", strings.NewReader(scenarioA))

	assert.False(t, out.Superseded)
	assert.Equal(t, matrix.StatusValid, out.File.Status)
	require.Len(t, got.files, 2)
	assert.Equal(t, matrix.StatusPending, got.files[0].Status)
	assert.Equal(t, matrix.StatusValid, got.files[1].Status)
	assert.Equal(t, 3, got.files[1].Matrix.IntersectionCount())
}

func TestLoaderReportsFailure(t *testing.T) {
	var got collector
	l := NewLoader(got.deliver, quietLogger())
	out := <-l.Load(context.Background(), "bad.tsv", strings.NewReader("oops\n"))

	assert.False(t, out.Superseded)
	assert.Equal(t, matrix.StatusError, out.File.Status)
	assert.True(t, errors.Is(out.File.Err, errors.ErrCodeInvalidFormat))
}

func TestLoaderDropsSuperseded(t *testing.T) {
	var got collector
	l := NewLoader(got.deliver, quietLogger())

	gate := &gateReader{release: make(chan struct{}), r: strings.NewReader("Old\t1\n")}
	oldDone := l.Load(context.Background(), "old.tsv", gate)
	newDone := l.Load(context.Background(), "new.tsv", strings.NewReader(scenarioA))
	close(gate.release)

	old, fresh := <-oldDone, <-newDone
	assert.True(t, old.Superseded)
	assert.False(t, fresh.Superseded)
	assert.Equal(t, "new.tsv", fresh.File.Name)

	var names []string
	for _, f := range got.snapshot() {
		if f.Status != matrix.StatusPending {
			names = append(names, f.Name)
		}
	}
	assert.Equal(t, []string{"new.tsv"}, names)
}

func TestLoaderCloseCancels(t *testing.T) {
	var got collector
	l := NewLoader(got.deliver, quietLogger())

	gate := &gateReader{release: make(chan struct{}), r: strings.NewReader("A\t1\n")}
	pending := l.Load(context.Background(), "a.tsv", gate)

	done := make(chan struct{})
	go func() {
		l.Close()
		close(done)
	}()
	require.Eventually(t, func() bool {
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.closed
	}, time.Second, time.Millisecond)
	close(gate.release)
	<-done

	assert.True(t, (<-pending).Superseded)
	for _, f := range got.snapshot() {
		assert.Equal(t, matrix.StatusPending, f.Status)
	}

	late := <-l.Load(context.Background(), "late.tsv", strings.NewReader(scenarioA))
	assert.True(t, late.Superseded, "loads after Close are refused")
}

func TestLoaderConcurrentLoads(t *testing.T) {
	var got collector
	l := NewLoader(got.deliver, quietLogger())

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				out := <-l.Load(context.Background(), "a.tsv", strings.NewReader(scenarioA))
				if !out.Superseded {
					assert.Equal(t, matrix.StatusValid, out.File.Status, "worker %d", i)
				}
			}
		}()
	}
	wg.Wait()
	l.Close()

	files := got.snapshot()
	require.NotEmpty(t, files)
	assert.Equal(t, matrix.StatusValid, files[len(files)-1].Status)
}

func TestLoaderIntoChart(t *testing.T) {
	c := mount(t, Options{})
	l := NewLoader(c.SetFile, quietLogger())
	<-l.Load(context.Background(), "a.tsv", strings.NewReader(scenarioA))
	assert.NotNil(t, c.Surface())
	assert.Equal(t, "a.tsv", c.File().Name)
}
