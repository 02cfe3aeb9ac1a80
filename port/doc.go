// Package port implements the legacy mouse port engine.
//
// Data flows through four parts:
//
//	USB reports ──Accumulate──▶ Accumulator ──Drain──▶ Clamp/Build
//	     ──Publish──▶ FrameCell ──OnEdge──▶ Emitter ──▶ LineSet ──▶ bus
//
// The [Accumulator] is written from the USB report context and drained by the
// foreground loop. [Build] turns a clamped delta pair into a seven-nibble
// [Frame], and [FrameCell.Publish] hands it to the [Emitter] as one unit.
// The emitter runs once per strobe edge from the legacy host and places the
// next nibble on the data lines, or releases them when nothing is active.
//
// # Wire frame
//
//	index  0    1    2    3       4      5       6
//	       ID   pad  pad  X-high  X-low  Y-high  Y-low
//
// ID is [FrameID] and pad is [FramePad]. X and Y are signed deltas clamped to
// [-127, 127] and split into nibbles of their 8-bit two's-complement form.
// Bit i of every nibble is carried on data line i; 0 drives the line low and
// 1 releases it.
package port
