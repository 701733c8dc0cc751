package net

import (
	"bytes"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Telnet protocol bytes handled by the stripper.
const (
	telSE   = 240 // subnegotiation end
	telSB   = 250 // subnegotiation begin
	telWILL = 251
	telWONT = 252
	telDO   = 253
	telDONT = 254
	telIAC  = 255

	telOptEcho = 1
)

// Echo negotiation sequences. "WILL ECHO" tells the client the server owns
// echoing (it then stops local echo, hiding password input); "WONT ECHO"
// hands echoing back.
var (
	echoOff = []byte{telIAC, telWILL, telOptEcho}
	echoOn  = []byte{telIAC, telWONT, telOptEcho}
)

// iacStripper filters telnet command sequences out of an inbound stream so
// the line scanner only ever sees text. IAC IAC unescapes to a literal 0xFF;
// option negotiation and subnegotiation blocks vanish entirely.
type iacStripper struct {
	r     io.Reader
	state iacState
	buf   [512]byte
}

type iacState uint8

const (
	iacText     iacState = iota
	iacSeenIAC           // after IAC, expecting a command
	iacSeenOpt           // after WILL/WONT/DO/DONT, expecting an option
	iacInSub             // inside SB ... IAC SE
	iacInSubIAC          // inside subnegotiation, after IAC
)

func (t *iacStripper) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		max := len(p)
		if max > len(t.buf) {
			max = len(t.buf)
		}
		n, err := t.r.Read(t.buf[:max])
		out := 0
		for _, b := range t.buf[:n] {
			switch t.state {
			case iacText:
				if b == telIAC {
					t.state = iacSeenIAC
				} else {
					p[out] = b
					out++
				}
			case iacSeenIAC:
				switch b {
				case telIAC:
					p[out] = b
					out++
					t.state = iacText
				case telWILL, telWONT, telDO, telDONT:
					t.state = iacSeenOpt
				case telSB:
					t.state = iacInSub
				default:
					t.state = iacText
				}
			case iacSeenOpt:
				t.state = iacText
			case iacInSub:
				if b == telIAC {
					t.state = iacInSubIAC
				}
			case iacInSubIAC:
				if b == telSE {
					t.state = iacText
				} else {
					t.state = iacInSub
				}
			}
		}
		if out > 0 || err != nil {
			return out, err
		}
		// The whole chunk was telnet chatter; keep reading.
	}
}

// decodeLine turns one raw input line into valid UTF-8. Clients that still
// speak Latin-1 produce bytes invalid as UTF-8; those decode through the
// charmap instead of being mangled. Trailing CR and NUL from NVT line
// endings are dropped.
func decodeLine(raw []byte) string {
	raw = bytes.TrimRight(raw, "\r\x00")
	if utf8.Valid(raw) {
		return string(raw)
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}
