package port

// Decoder reassembles frames from a stream of sampled nibbles, the way the
// legacy host reads them. It synchronises on the ID and pad elements, so a
// delta whose nibbles happen to spell ID, pad, pad can cause a false match.
type Decoder struct {
	window [FrameLen]uint8
	n      int
}

// Push adds one sampled nibble and returns a frame once seven nibbles
// starting with ID, pad, pad have been seen.
func (d *Decoder) Push(nibble uint8) (Frame, bool) {
	copy(d.window[:], d.window[1:])
	d.window[FrameLen-1] = nibble & 0x0F
	if d.n < FrameLen {
		d.n++
	}
	if d.n < FrameLen ||
		d.window[0] != FrameID || d.window[1] != FramePad || d.window[2] != FramePad {
		return Frame{}, false
	}
	d.n = 0
	return Frame(d.window), true
}

// Reset discards any partial frame.
func (d *Decoder) Reset() {
	d.n = 0
}
