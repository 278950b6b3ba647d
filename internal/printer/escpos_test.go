package printer

import (
	"bytes"
	"testing"
	"time"
)

func TestTicketByteSequence(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	data := Ticket(Payload{Text: "R03", LargeFont: true}, now)

	if !bytes.HasPrefix(data, []byte{0x1B, 0x40}) {
		t.Fatalf("ticket must start with initialize: % X", data[:4])
	}
	if !bytes.HasSuffix(data, []byte{0x1D, 0x56, 0x42, 0x00}) {
		t.Fatalf("ticket must end with full cut: % X", data[len(data)-4:])
	}

	fontStart := bytes.Index(data, []byte{0x1D, 0x21, 0x11})
	fontEnd := bytes.Index(data, []byte{0x1B, 0x21, 0x00})
	if fontStart < 0 || fontEnd < 0 || fontEnd < fontStart {
		t.Fatalf("font control codes missing or out of order: % X", data)
	}

	text := bytes.Index(data, []byte("R03"))
	if text < fontStart || text > fontEnd {
		t.Fatalf("ticket text must sit between large-font and normal-font codes (text=%d font=[%d,%d])", text, fontStart, fontEnd)
	}

	if !bytes.Contains(data, []byte{0x1B, 0x61, 0x01}) {
		t.Fatal("center-align code missing")
	}
	if !bytes.Contains(data[fontEnd:], []byte("2025")) {
		t.Fatal("timestamp line missing after normal-font code")
	}
}

func TestTicketNormalFontSkipsLargeCode(t *testing.T) {
	data := Ticket(Payload{Text: "P01"}, time.Now())
	if bytes.Contains(data, []byte{0x1D, 0x21, 0x11}) {
		t.Fatal("large-font code must not appear for a normal-font ticket")
	}
	if !bytes.Contains(data, []byte("P01")) {
		t.Fatal("ticket text missing")
	}
}

func TestTestPageFramesText(t *testing.T) {
	data := TestPage(time.Now())
	if !bytes.HasPrefix(data, []byte{0x1B, 0x40}) || !bytes.HasSuffix(data, []byte{0x1D, 0x56, 0x42, 0x00}) {
		t.Fatalf("test page must be framed by init and cut: % X", data)
	}
	if !bytes.Contains(data, []byte("Test Print")) {
		t.Fatal("test page text missing")
	}
}
