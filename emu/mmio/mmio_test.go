package mmio

import "testing"

type fakePeripheral struct {
	words map[uint32]uint32
	bytes map[uint32]uint8
}

func newFakePeripheral() *fakePeripheral {
	return &fakePeripheral{words: map[uint32]uint32{}, bytes: map[uint32]uint8{}}
}

func (f *fakePeripheral) ReadWord(offset uint32) (uint32, error)  { return f.words[offset], nil }
func (f *fakePeripheral) WriteWord(offset uint32, v uint32) error { f.words[offset] = v; return nil }
func (f *fakePeripheral) ReadByte(offset uint32) (uint8, error)   { return f.bytes[offset], nil }
func (f *fakePeripheral) WriteByte(offset uint32, v uint8) error  { f.bytes[offset] = v; return nil }

func TestRegisterRejectsEmptyOrInvertedRange(t *testing.T) {
	r := NewRouter()
	if err := r.Register("dev", 0x1000, 0x1000, newFakePeripheral()); err == nil {
		t.Fatalf("expected an error for an empty window")
	}
	if err := r.Register("dev", 0x1000, 0x0FFF, newFakePeripheral()); err == nil {
		t.Fatalf("expected an error for an inverted window")
	}
}

func TestRegisterRejectsOverlap(t *testing.T) {
	r := NewRouter()
	if err := r.Register("uart", 0x1000, 0x1010, newFakePeripheral()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register("disk", 0x1008, 0x1020, newFakePeripheral()); err == nil {
		t.Fatalf("expected an overlap error between [0x1000,0x1010) and [0x1008,0x1020)")
	}
	// Adjacent, non-overlapping windows are fine.
	if err := r.Register("timer", 0x1010, 0x1020, newFakePeripheral()); err != nil {
		t.Fatalf("adjacent window rejected: %v", err)
	}
}

func TestFindReturnsWindowRelativeOffset(t *testing.T) {
	r := NewRouter()
	dev := newFakePeripheral()
	if err := r.Register("uart", 0x2000, 0x2010, dev); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, off, ok := r.Find(0x2008)
	if !ok {
		t.Fatalf("expected 0x2008 to resolve inside the registered window")
	}
	if got != dev {
		t.Fatalf("Find returned a different peripheral than registered")
	}
	if off != 0x8 {
		t.Fatalf("offset = %#x, want %#x", off, 0x8)
	}

	if _, _, ok := r.Find(0x2010); ok {
		t.Fatalf("0x2010 is the exclusive high bound and must not resolve")
	}
	if _, _, ok := r.Find(0x1FFF); ok {
		t.Fatalf("0x1FFF is below the window and must not resolve")
	}
}

func TestInWindowCoversMultiByteAccessSpanningBounds(t *testing.T) {
	r := NewRouter()
	if err := r.Register("uart", 0x3000, 0x3004, newFakePeripheral()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if !r.InWindow(0x3000, 4) {
		t.Fatalf("a word access starting at the window's low bound must be routed")
	}
	if !r.InWindow(0x2FFE, 4) {
		t.Fatalf("an access whose last byte (0x3001) lands in the window must be routed")
	}
	if r.InWindow(0x4000, 4) {
		t.Fatalf("an access entirely outside any window must not be routed")
	}
}
