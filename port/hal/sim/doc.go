// Package sim provides a software legacy mouse port for tests and the
// simulator.
//
// Every [Line] records its operations in a shared [Recorder], so frame and
// cursor logic can be checked without hardware. The [Strobe] delivers edges
// while holding the [Guard] mutex, which gives the same exclusion a real
// interrupt mask gives between the strobe handler and frame publication.
//
//	p := sim.NewPort(2)
//	lines, _ := port.NewLineSet(p.DataLines(), p.ButtonLines()...)
//	cell := port.NewFrameCell(lines, p.Guard)
//	em := port.NewEmitter(cell, lines)
//	p.Strobe.SetHandler(em.OnEdge)
//	nibbles := p.Clock(7)
package sim
