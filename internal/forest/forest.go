// Package forest turns completed focus sessions into trees: one tree per
// session, with the newest one briefly animated from seedling to tree.
package forest

import "time"

const (
	// DashboardMax caps the trees shown in the compact panel.
	DashboardMax = 36
	// FullViewMax caps the trees shown on the full forest view.
	FullViewMax = 120

	Seedling = "🌱"
	Sapling  = "🌿"
	Tree     = "🌳"
)

// Plot splits a total into trees drawn and trees summarised as "+N more".
type Plot struct {
	Visible int
	Hidden  int
}

func Layout(total, maxVisible int) Plot {
	if total < 0 {
		total = 0
	}
	if maxVisible < 0 {
		maxVisible = 0
	}
	visible := total
	if visible > maxVisible {
		visible = maxVisible
	}
	return Plot{Visible: visible, Hidden: total - visible}
}

type frame struct {
	at    time.Duration
	glyph string
}

var growthFrames = []frame{
	{at: 0, glyph: Seedling},
	{at: 350 * time.Millisecond, glyph: Sapling},
	{at: 750 * time.Millisecond, glyph: Tree},
}

// GrowthDuration is how long the newest tree animates.
const GrowthDuration = 950 * time.Millisecond

// Growth animates the tree at Index starting at Started.
type Growth struct {
	Index   int
	Started time.Time
}

// NewGrowth animates the newest tree of a forest that just reached total.
func NewGrowth(total int, now time.Time) *Growth {
	if total <= 0 {
		return nil
	}
	return &Growth{Index: total - 1, Started: now}
}

// Frame returns the glyph for the growing tree and whether the animation is
// still running at now.
func (g *Growth) Frame(now time.Time) (string, bool) {
	elapsed := now.Sub(g.Started)
	if elapsed >= GrowthDuration {
		return Tree, false
	}
	glyph := growthFrames[0].glyph
	for _, f := range growthFrames {
		if elapsed >= f.at {
			glyph = f.glyph
		}
	}
	return glyph, true
}

// NextFrameIn reports how long until the glyph changes or the animation
// ends. It returns 0 once finished.
func (g *Growth) NextFrameIn(now time.Time) time.Duration {
	elapsed := now.Sub(g.Started)
	for _, f := range growthFrames {
		if f.at > elapsed {
			return f.at - elapsed
		}
	}
	if elapsed < GrowthDuration {
		return GrowthDuration - elapsed
	}
	return 0
}

// Cells returns one glyph per visible tree.
func Cells(p Plot, g *Growth, now time.Time) []string {
	out := make([]string, p.Visible)
	for i := range out {
		out[i] = Tree
	}
	if g != nil && g.Index >= 0 && g.Index < p.Visible {
		if glyph, active := g.Frame(now); active {
			out[g.Index] = glyph
		}
	}
	return out
}
