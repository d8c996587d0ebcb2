package ogg

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"
)

func TestPageWriter_TinyPage(t *testing.T) {
	var buf bytes.Buffer
	p := NewPageWriter(&buf)
	if err := p.WriteBytes([]byte{1, 2, 3}); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	if err := p.FlushPage(false, false); err != nil {
		t.Fatalf("FlushPage: %v", err)
	}
	want, _ := hex.DecodeString("4f6767530002000000000000000001000000000000004ff088950103010203")
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("page = %x, want %x", buf.Bytes(), want)
	}
}

func TestPageWriter_BitAndByteWritesAgree(t *testing.T) {
	var a, b bytes.Buffer
	p1 := NewPageWriter(&a)
	p2 := NewPageWriter(&b)

	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	if err := p1.WriteBytes(data); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	for _, by := range data {
		for i := 0; i < 8; i++ {
			if err := p2.WriteBits(uint32(by>>i)&1, 1); err != nil {
				t.Fatalf("WriteBits: %v", err)
			}
		}
	}
	if err := p1.FlushPage(false, false); err != nil {
		t.Fatalf("FlushPage: %v", err)
	}
	if err := p2.FlushPage(false, false); err != nil {
		t.Fatalf("FlushPage: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Errorf("byte path and bit path produced different pages:\n%x\n%x", a.Bytes(), b.Bytes())
	}
}

func TestPageWriter_UnalignedBytesStayContiguous(t *testing.T) {
	var a, b bytes.Buffer
	p1 := NewPageWriter(&a)
	p2 := NewPageWriter(&b)

	// Three leading bits then two bytes, against the same 19 bits
	// written one at a time.
	if err := p1.WriteBits(0x5, 3); err != nil {
		t.Fatalf("WriteBits: %v", err)
	}
	if err := p1.WriteBytes([]byte{0xAB, 0xCD}); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}

	stream := uint32(0x5) | uint32(0xAB)<<3 | uint32(0xCD)<<11
	for i := 0; i < 19; i++ {
		if err := p2.WriteBits(stream>>i&1, 1); err != nil {
			t.Fatalf("WriteBits: %v", err)
		}
	}

	if err := p1.FlushPage(false, false); err != nil {
		t.Fatalf("FlushPage: %v", err)
	}
	if err := p2.FlushPage(false, false); err != nil {
		t.Fatalf("FlushPage: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Errorf("unaligned byte write diverged from bit stream:\n%x\n%x", a.Bytes(), b.Bytes())
	}
}

func TestPageWriter_Lacing(t *testing.T) {
	tests := []struct {
		name       string
		payloadLen int
		wantLacing []byte
	}{
		{"short", 10, []byte{10}},
		{"one full segment", 255, []byte{255, 0}},
		{"full plus partial", 300, []byte{255, 45}},
		{"two full segments", 510, []byte{255, 255, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			p := NewPageWriter(&buf)
			if err := p.WriteBytes(make([]byte, tt.payloadLen)); err != nil {
				t.Fatalf("WriteBytes: %v", err)
			}
			if err := p.FlushPage(false, false); err != nil {
				t.Fatalf("FlushPage: %v", err)
			}
			page := buf.Bytes()
			segments := int(page[26])
			if segments != len(tt.wantLacing) {
				t.Fatalf("segment count = %d, want %d", segments, len(tt.wantLacing))
			}
			if !bytes.Equal(page[27:27+segments], tt.wantLacing) {
				t.Errorf("lacing = %v, want %v", page[27:27+segments], tt.wantLacing)
			}
		})
	}
}

func TestPageWriter_MaxPayloadClampsSegmentTable(t *testing.T) {
	// 65025 bytes is 255 full segments; the terminating zero lacing value
	// does not fit and the count stays clamped at 255.
	var buf bytes.Buffer
	p := NewPageWriter(&buf)
	if err := p.WriteBytes(make([]byte, maxPayload)); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	if err := p.FlushPage(false, false); err != nil {
		t.Fatalf("FlushPage: %v", err)
	}
	page := buf.Bytes()
	if page[26] != 255 {
		t.Fatalf("segment count = %d, want 255", page[26])
	}
	for i, v := range page[27 : 27+255] {
		if v != 255 {
			t.Fatalf("lacing[%d] = %d, want 255", i, v)
		}
	}
	if len(page) != headerBytes+255+maxPayload {
		t.Errorf("page length = %d, want %d", len(page), headerBytes+255+maxPayload)
	}
}

func TestPageWriter_PayloadOverflow(t *testing.T) {
	p := NewPageWriter(&bytes.Buffer{})
	if err := p.WriteBytes(make([]byte, maxPayload)); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	if err := p.WriteBytes([]byte{0}); !errors.Is(err, ErrPageFull) {
		t.Errorf("WriteBytes past capacity = %v, want ErrPageFull", err)
	}
}

func TestPageWriter_FlagsAndSequence(t *testing.T) {
	var buf bytes.Buffer
	p := NewPageWriter(&buf)

	writeOne := func(last bool) []byte {
		start := buf.Len()
		if err := p.WriteBytes([]byte{0xAA}); err != nil {
			t.Fatalf("WriteBytes: %v", err)
		}
		if err := p.FlushPage(false, last); err != nil {
			t.Fatalf("FlushPage: %v", err)
		}
		return buf.Bytes()[start:]
	}

	first := writeOne(false)
	middle := writeOne(false)
	final := writeOne(true)

	if first[5] != 0x02 {
		t.Errorf("first page flags = %#x, want 0x02", first[5])
	}
	if middle[5] != 0x00 {
		t.Errorf("middle page flags = %#x, want 0", middle[5])
	}
	if final[5] != 0x04 {
		t.Errorf("final page flags = %#x, want 0x04", final[5])
	}
	for i, page := range [][]byte{first, middle, final} {
		if got := uint32(page[18]) | uint32(page[19])<<8 | uint32(page[20])<<16 | uint32(page[21])<<24; got != uint32(i) {
			t.Errorf("page %d sequence = %d", i, got)
		}
	}
}

func TestPageWriter_SetGranule(t *testing.T) {
	var buf bytes.Buffer
	p := NewPageWriter(&buf)
	p.SetGranule(0x12345678)
	if err := p.WriteBytes([]byte{1}); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	if err := p.FlushPage(false, false); err != nil {
		t.Fatalf("FlushPage: %v", err)
	}
	page := buf.Bytes()
	got := uint32(page[6]) | uint32(page[7])<<8 | uint32(page[8])<<16 | uint32(page[9])<<24
	if got != 0x12345678 {
		t.Errorf("granule low half = %#x, want 0x12345678", got)
	}
	for i := 10; i < 14; i++ {
		if page[i] != 0 {
			t.Errorf("granule high byte %d = %#x, want 0", i, page[i])
		}
	}
}

func TestPageWriter_FlushEmptyIsNoop(t *testing.T) {
	var buf bytes.Buffer
	p := NewPageWriter(&buf)
	if err := p.FlushPage(false, false); err != nil {
		t.Fatalf("FlushPage: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("empty flush wrote %d bytes", buf.Len())
	}
}

func TestPageWriter_ClosePadsPartialByte(t *testing.T) {
	var buf bytes.Buffer
	p := NewPageWriter(&buf)
	if err := p.WriteBits(0x3, 3); err != nil {
		t.Fatalf("WriteBits: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	page := buf.Bytes()
	if len(page) != headerBytes+1+1 {
		t.Fatalf("page length = %d, want %d", len(page), headerBytes+2)
	}
	if page[len(page)-1] != 0x03 {
		t.Errorf("payload byte = %#x, want 0x03", page[len(page)-1])
	}
}
