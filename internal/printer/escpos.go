package printer

import (
	"bytes"
	"time"
)

// ESC/POS control sequences. These are wire bytes the hardware matches
// exactly; keep them in sync with the printer family in the field.
var (
	escInit       = []byte{0x1B, 0x40}             // ESC @  initialize
	escCenter     = []byte{0x1B, 0x61, 0x01}       // ESC a 1  center align
	gsLargeFont   = []byte{0x1D, 0x21, 0x11}       // GS !  double width and height
	escNormalFont = []byte{0x1B, 0x21, 0x00}       // ESC !  normal font
	gsCutPaper    = []byte{0x1D, 0x56, 0x42, 0x00} // GS V B 0  full cut
)

// Payload is one print job: the ticket text plus rendering hints.
type Payload struct {
	Text      string `json:"text"`
	LargeFont bool   `json:"large_font"`
}

// Ticket renders a queue ticket as the raw byte stream sent to the
// device: init, center, optional large font, the text, normal font, a
// timestamp line, cut.
func Ticket(payload Payload, now time.Time) []byte {
	var buf bytes.Buffer
	buf.Write(escInit)
	buf.Write(escCenter)
	if payload.LargeFont {
		buf.Write(gsLargeFont)
	}
	buf.WriteString("\n\n")
	buf.WriteString(payload.Text)
	buf.WriteString("\n")
	buf.Write(escNormalFont)
	buf.WriteString(now.Format("1/2/2006, 3:04:05 PM"))
	buf.WriteString("\n\n")
	buf.Write(gsCutPaper)
	return buf.Bytes()
}

// TestPage is the settings-page test print.
func TestPage(now time.Time) []byte {
	var buf bytes.Buffer
	buf.Write(escInit)
	buf.WriteString("Test Print\nSuccessful!\n\n\n")
	buf.WriteString(now.Format("1/2/2006, 3:04:05 PM"))
	buf.WriteString("\n")
	buf.Write(gsCutPaper)
	return buf.Bytes()
}
