package sim

// OpKind identifies a recorded drawing call.
type OpKind int

const (
	OpClear OpKind = iota
	OpFill
	OpText
)

// DrawOp is one recorded Surface call.
type DrawOp struct {
	Kind OpKind
	X    float64
	Y    float64
	W    float64
	H    float64
	Text string
}

// DrawList is a Surface that records calls for later replay.
// A clear covering the whole area drops everything recorded before it.
type DrawList struct {
	width  float64
	height float64
	ops    []DrawOp
}

// NewDrawList returns an empty list for an area of width x height.
func NewDrawList(width, height float64) *DrawList {
	return &DrawList{width: width, height: height}
}

// SetSize changes the area used to detect full clears.
func (d *DrawList) SetSize(width, height float64) {
	d.width = width
	d.height = height
}

func (d *DrawList) ClearRect(x, y, w, h float64) {
	if x <= 0 && y <= 0 && x+w >= d.width && y+h >= d.height {
		d.ops = d.ops[:0]
	}
	d.ops = append(d.ops, DrawOp{Kind: OpClear, X: x, Y: y, W: w, H: h})
}

func (d *DrawList) FillRect(x, y, w, h float64) {
	d.ops = append(d.ops, DrawOp{Kind: OpFill, X: x, Y: y, W: w, H: h})
}

func (d *DrawList) DrawText(text string, x, y float64) {
	d.ops = append(d.ops, DrawOp{Kind: OpText, X: x, Y: y, Text: text})
}

// Ops returns the recorded calls in order.
func (d *DrawList) Ops() []DrawOp {
	out := make([]DrawOp, len(d.ops))
	copy(out, d.ops)
	return out
}

// Reset drops every recorded call.
func (d *DrawList) Reset() {
	d.ops = d.ops[:0]
}
