// Package placement decides where to draw an information panel next to a
// highlighted region so the panel stays inside its container and never covers
// the region.
//
// Placement never fails. When no side has room for the panel, the side with
// the most space is used anyway and the result is marked Degraded; the panel
// may then clip the container edge.
package placement

import "sort"

// Side is the edge of the region the panel is anchored to.
type Side string

const (
	SideLeft   Side = "left"
	SideRight  Side = "right"
	SideTop    Side = "top"
	SideBottom Side = "bottom"
)

// Preference is the caller's requested side.
type Preference string

const (
	PreferAuto  Preference = "auto"
	PreferLeft  Preference = "left"
	PreferRight Preference = "right"
)

// Config holds the layout constants. They are fixed per deployment.
type Config struct {
	PanelWidth  float64 `yaml:"panel_width" json:"panel_width"`
	PanelHeight float64 `yaml:"panel_height" json:"panel_height"`

	// Clearance is the minimum gap between the panel and the region.
	Clearance float64 `yaml:"clearance" json:"clearance"`

	// EdgePadding is the minimum gap between the panel and the container edge.
	EdgePadding float64 `yaml:"edge_padding" json:"edge_padding"`

	// Containers narrower than CompactBreakpoint are laid out in compact mode.
	CompactBreakpoint  float64 `yaml:"compact_breakpoint" json:"compact_breakpoint"`
	CompactPanelWidth  float64 `yaml:"compact_panel_width" json:"compact_panel_width"`
	CompactPanelHeight float64 `yaml:"compact_panel_height" json:"compact_panel_height"`
}

// DefaultConfig returns the standard layout constants.
func DefaultConfig() Config {
	return Config{
		PanelWidth:         280,
		PanelHeight:        160,
		Clearance:          12,
		EdgePadding:        8,
		CompactBreakpoint:  640,
		CompactPanelWidth:  200,
		CompactPanelHeight: 120,
	}
}

// Placement is where the panel goes.
type Placement struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Side Side    `json:"side"`

	// Width and Height are the panel size actually used, which is smaller
	// than requested in compact mode.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Compact reports whether compact mode was applied.
	Compact bool `json:"compact"`

	// Degraded is set when no side had enough room.
	Degraded bool `json:"degraded"`
}

// Bounds returns the panel rectangle.
func (p Placement) Bounds() Rect {
	return Rect{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
}

// Placer computes panel placements. It holds no mutable state.
type Placer struct {
	cfg Config
}

// New returns a Placer. Unset panel sizes fall back to DefaultConfig; a zero
// CompactBreakpoint disables automatic compact mode.
func New(cfg Config) *Placer {
	def := DefaultConfig()
	if cfg.PanelWidth <= 0 {
		cfg.PanelWidth = def.PanelWidth
	}
	if cfg.PanelHeight <= 0 {
		cfg.PanelHeight = def.PanelHeight
	}
	if cfg.Clearance < 0 {
		cfg.Clearance = 0
	}
	if cfg.EdgePadding < 0 {
		cfg.EdgePadding = 0
	}
	if cfg.CompactPanelWidth <= 0 {
		cfg.CompactPanelWidth = def.CompactPanelWidth
	}
	if cfg.CompactPanelHeight <= 0 {
		cfg.CompactPanelHeight = def.CompactPanelHeight
	}
	return &Placer{cfg: cfg}
}

// Config returns the constants the placer was built with.
func (p *Placer) Config() Config { return p.cfg }

// IsCompact reports whether container is narrow enough for compact mode.
func (p *Placer) IsCompact(container Rect) bool {
	return container.Width < p.cfg.CompactBreakpoint
}

// Place positions a panel of the given size beside region inside container.
//
// A zero or negative panel dimension means the configured default. Compact
// mode applies when isCompact is set or the container is narrower than the
// breakpoint: the panel shrinks to the compact size and top/bottom are tried
// before left/right.
//
// Side selection:
//  1. preferred left/right, if it has panel width + clearance + edge padding free
//  2. whichever of left/right has more space, if that is enough
//  3. whichever of top/bottom has more space, if that is enough
//  4. otherwise the side with the most space overall (Degraded)
//
// In compact mode step 3 runs first. The panel is then centered on the region
// along the chosen edge, offset by the clearance, and clamped so it keeps
// edge padding from the container on both axes.
func (p *Placer) Place(region, container Rect, preferred Preference, panel Size, isCompact bool) Placement {
	if panel.Width <= 0 {
		panel.Width = p.cfg.PanelWidth
	}
	if panel.Height <= 0 {
		panel.Height = p.cfg.PanelHeight
	}

	compact := isCompact || p.IsCompact(container)
	if compact {
		panel.Width = min(panel.Width, p.cfg.CompactPanelWidth)
		panel.Height = min(panel.Height, p.cfg.CompactPanelHeight)
	}

	space := map[Side]float64{
		SideLeft:   region.X,
		SideRight:  container.Width - region.Right(),
		SideTop:    region.Y,
		SideBottom: container.Height - region.Bottom(),
	}
	needH := panel.Width + p.cfg.Clearance + p.cfg.EdgePadding
	needV := panel.Height + p.cfg.Clearance + p.cfg.EdgePadding
	fits := func(s Side) bool {
		if s == SideLeft || s == SideRight {
			return space[s] >= needH
		}
		return space[s] >= needV
	}

	side, ok := p.chooseSide(space, fits, preferred, compact)
	pos := p.position(side, region, container, panel)

	return Placement{
		X:        pos.X,
		Y:        pos.Y,
		Side:     side,
		Width:    panel.Width,
		Height:   panel.Height,
		Compact:  compact,
		Degraded: !ok,
	}
}

// chooseSide returns the side to use and whether the panel fits there.
func (p *Placer) chooseSide(space map[Side]float64, fits func(Side) bool, preferred Preference, compact bool) (Side, bool) {
	horizontal := rankBySpace(space, SideRight, SideLeft)
	vertical := rankBySpace(space, SideBottom, SideTop)

	var candidates []Side
	if preferred == PreferLeft || preferred == PreferRight {
		candidates = append(candidates, Side(preferred))
	}
	if compact {
		candidates = append([]Side{vertical[0]}, candidates...)
		candidates = append(candidates, horizontal[0])
	} else {
		candidates = append(candidates, horizontal[0], vertical[0])
	}

	for _, s := range candidates {
		if fits(s) {
			return s, true
		}
	}

	order := []Side{horizontal[0], horizontal[1], vertical[0], vertical[1]}
	if compact {
		order = []Side{vertical[0], vertical[1], horizontal[0], horizontal[1]}
	}
	return rankBySpace(space, order...)[0], false
}

// position computes the panel's top-left corner for side.
func (p *Placer) position(side Side, region, container Rect, panel Size) Point {
	c := region.Center()
	var x, y float64

	switch side {
	case SideLeft:
		x = region.X - p.cfg.Clearance - panel.Width
		y = c.Y - panel.Height/2
	case SideRight:
		x = region.Right() + p.cfg.Clearance
		y = c.Y - panel.Height/2
	case SideTop:
		x = c.X - panel.Width/2
		y = region.Y - p.cfg.Clearance - panel.Height
	case SideBottom:
		x = c.X - panel.Width/2
		y = region.Bottom() + p.cfg.Clearance
	}

	pad := p.cfg.EdgePadding
	return Point{
		X: clamp(x, pad, container.Width-panel.Width-pad),
		Y: clamp(y, pad, container.Height-panel.Height-pad),
	}
}

// rankBySpace orders sides by available space, most first. Ties keep the
// order given.
func rankBySpace(space map[Side]float64, sides ...Side) []Side {
	ranked := append([]Side(nil), sides...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return space[ranked[i]] > space[ranked[j]]
	})
	return ranked
}
