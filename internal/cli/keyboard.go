package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/ardnew/nibblemouse/pkg"
)

// keyStep is the delta of one movement key press.
const keyStep int8 = 4

type key uint8

const (
	keyNone key = iota
	keyUp
	keyDown
	keyLeft
	keyRight
	keyButton1
	keyButton2
	keyQuit
)

// parseKeys splits raw terminal input into keys. WASD and the arrow keys
// move, space and enter toggle buttons 1 and 2, q and Ctrl-C quit. Other
// input is dropped.
func parseKeys(buf []byte) []key {
	var keys []key
	for i := 0; i < len(buf); i++ {
		switch c := buf[i]; c {
		case 'w', 'W':
			keys = append(keys, keyUp)
		case 's', 'S':
			keys = append(keys, keyDown)
		case 'a', 'A':
			keys = append(keys, keyLeft)
		case 'd', 'D':
			keys = append(keys, keyRight)
		case ' ':
			keys = append(keys, keyButton1)
		case '\r', '\n':
			keys = append(keys, keyButton2)
		case 'q', 'Q', 0x03:
			keys = append(keys, keyQuit)
		case 0x1B:
			if i+2 < len(buf) && buf[i+1] == '[' {
				switch buf[i+2] {
				case 'A':
					keys = append(keys, keyUp)
				case 'B':
					keys = append(keys, keyDown)
				case 'C':
					keys = append(keys, keyRight)
				case 'D':
					keys = append(keys, keyLeft)
				}
				i += 2
			}
		}
	}
	return keys
}

// keyboard turns keys into mouse reports.
type keyboard struct {
	buttons uint8
}

// apply returns the report for k. ok is false for keys that send nothing.
func (kb *keyboard) apply(k key) (buttons uint8, dx, dy int8, ok bool) {
	switch k {
	case keyUp:
		dy = -keyStep
	case keyDown:
		dy = keyStep
	case keyLeft:
		dx = -keyStep
	case keyRight:
		dx = keyStep
	case keyButton1:
		kb.buttons ^= 0x01
	case keyButton2:
		kb.buttons ^= 0x02
	default:
		return kb.buttons, 0, 0, false
	}
	return kb.buttons, dx, dy, true
}

// feed applies raw input to m. It reports whether a quit key was seen.
func (kb *keyboard) feed(buf []byte, m Mover) bool {
	for _, k := range parseKeys(buf) {
		if k == keyQuit {
			return true
		}
		if b, dx, dy, ok := kb.apply(k); ok {
			m.Move(b, dx, dy)
		}
	}
	return false
}

// interactive reads the terminal in raw mode and moves m until a quit key
// or ctx is done.
func interactive(ctx context.Context, m Mover, out io.Writer) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("interactive mode needs a terminal: %w", pkg.ErrNotSupported)
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("raw terminal: %w", err)
	}
	defer term.Restore(fd, old)

	fmt.Fprint(out, "WASD/arrows move, space/enter toggle buttons, q quits\r\n")

	input := make(chan []byte)
	go func() {
		buf := make([]byte, 16)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				close(input)
				return
			}
			chunk := append([]byte(nil), buf[:n]...)
			select {
			case input <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()

	var kb keyboard
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-input:
			if !ok || kb.feed(chunk, m) {
				return nil
			}
		}
	}
}
