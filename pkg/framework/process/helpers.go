package process

import "github.com/viterin/vek/vek32"

// ProcessStereo runs fx in place over every frame of the first two output
// channels. A mono context feeds the same channel to both sides and keeps the
// left result.
func (c *Context) ProcessStereo(fx StereoEffect) {
	left, right := 0, 1
	if c.NumChannels() < 2 {
		right = 0
	}
	inL, inR := c.Output[left], c.Output[right]
	for i := range inL {
		l, r := fx.Process(inL[i], inR[i])
		c.Output[left][i] = l
		if right != left {
			c.Output[right][i] = r
		}
	}
}

// CopyToAll copies a mono block into every output channel
func (c *Context) CopyToAll(mono []float32) {
	for ch := range c.Output {
		copy(c.Output[ch], mono)
	}
}

// Accumulate adds src*gain into dst. src is scaled in place.
func Accumulate(dst, src []float32, gain float32) {
	if len(src) == 0 {
		return
	}
	if gain != 1 {
		vek32.MulNumber_Inplace(src, gain)
	}
	vek32.Add_Inplace(dst, src)
}

// Scale multiplies buf by gain in place
func Scale(buf []float32, gain float32) {
	if len(buf) == 0 {
		return
	}
	vek32.MulNumber_Inplace(buf, gain)
}

// Peak returns the largest absolute sample of buf. scratch must be at least
// as long as buf.
func Peak(buf, scratch []float32) float32 {
	if len(buf) == 0 {
		return 0
	}
	abs := scratch[:len(buf)]
	copy(abs, buf)
	vek32.Abs_Inplace(abs)
	return vek32.Max(abs)
}
