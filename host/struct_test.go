package host

import (
	"context"
	"testing"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/abi-bindgen/errors"
)

func TestStruct_RoundTrip(t *testing.T) {
	f := newFixture(t)
	s, err := f.rt.NewStruct(64)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Release()

	t.Run("u8", func(t *testing.T) {
		if err := s.SetU8(0, 200); err != nil {
			t.Fatal(err)
		}
		if got, _ := s.U8(0); got != 200 {
			t.Errorf("got %d, want 200", got)
		}
	})

	t.Run("bool", func(t *testing.T) {
		if err := s.SetBool(1, true); err != nil {
			t.Fatal(err)
		}
		if got, _ := s.Bool(1); !got {
			t.Error("got false, want true")
		}
	})

	t.Run("u32", func(t *testing.T) {
		if err := s.SetU32(4, 0xdeadbeef); err != nil {
			t.Fatal(err)
		}
		if got, _ := s.U32(4); got != 0xdeadbeef {
			t.Errorf("got %#x, want 0xdeadbeef", got)
		}
	})

	t.Run("i32", func(t *testing.T) {
		if err := s.SetI32(8, -42); err != nil {
			t.Fatal(err)
		}
		if got, _ := s.I32(8); got != -42 {
			t.Errorf("got %d, want -42", got)
		}
	})

	t.Run("i16", func(t *testing.T) {
		if err := s.SetI16(12, -7); err != nil {
			t.Fatal(err)
		}
		if got, _ := s.I16(12); got != -7 {
			t.Errorf("got %d, want -7", got)
		}
	})

	t.Run("f32", func(t *testing.T) {
		if err := s.SetF32(16, 3.25); err != nil {
			t.Fatal(err)
		}
		if got, _ := s.F32(16); got != 3.25 {
			t.Errorf("got %v, want 3.25", got)
		}
	})

	t.Run("f64", func(t *testing.T) {
		if err := s.SetF64(20, -1.5e10); err != nil {
			t.Fatal(err)
		}
		if got, _ := s.F64(20); got != -1.5e10 {
			t.Errorf("got %v, want -1.5e10", got)
		}
	})

	t.Run("ptr", func(t *testing.T) {
		if err := s.SetPtr(28, 4096); err != nil {
			t.Fatal(err)
		}
		if got, _ := s.Ptr(28); got != 4096 {
			t.Errorf("got %d, want 4096", got)
		}
	})

	t.Run("inline string", func(t *testing.T) {
		if err := s.SetInlineString(32, 8, "bone"); err != nil {
			t.Fatal(err)
		}
		if got, _ := s.InlineString(32, 8); got != "bone" {
			t.Errorf("got %q, want bone", got)
		}
		if err := s.SetInlineString(32, 8, "truncated!"); err != nil {
			t.Fatal(err)
		}
		if got, _ := s.InlineString(32, 8); got != "truncat" {
			t.Errorf("got %q, want truncat", got)
		}
	})

	t.Run("c string", func(t *testing.T) {
		fr := f.rt.Frame()
		defer fr.Close()
		p, err := fr.CString("resources/wabbit.png")
		if err != nil {
			t.Fatal(err)
		}
		if err := s.SetPtr(40, p); err != nil {
			t.Fatal(err)
		}
		if got, _ := s.CString(40); got != "resources/wabbit.png" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("bounds", func(t *testing.T) {
		if _, err := s.U32(62); !errors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindOutOfBounds}) {
			t.Errorf("got %v, want out_of_bounds", err)
		}
	})
}

func TestStruct_Ownership(t *testing.T) {
	f := newFixture(t)

	owned, err := f.rt.NewStruct(8)
	if err != nil {
		t.Fatal(err)
	}
	if !owned.Owned() {
		t.Error("NewStruct should own its memory")
	}

	view := f.rt.View(owned.Address(), 8)
	if err := view.Release(); !errors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindNotOwner}) {
		t.Errorf("releasing a view: got %v, want not_owner", err)
	}

	sub := owned.Sub(4, 4)
	if sub.Owned() {
		t.Error("Sub should return a view")
	}
	if err := sub.SetF32(0, 9); err != nil {
		t.Fatal(err)
	}
	if got, _ := owned.F32(4); got != 9 {
		t.Errorf("write through sub: got %v, want 9", got)
	}

	copied := owned
	if err := owned.Release(); err != nil {
		t.Fatal(err)
	}
	if err := copied.Release(); !errors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindReleased}) {
		t.Errorf("double release: got %v, want released", err)
	}
	if _, err := copied.U8(0); err == nil {
		t.Error("use after release: expected error")
	}
	if f.alloc.frees != 1 {
		t.Errorf("frees: got %d, want 1", f.alloc.frees)
	}
}

func TestStruct_ZeroValue(t *testing.T) {
	var s Struct
	if _, err := s.U8(0); !errors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindNotInitialized}) {
		t.Errorf("got %v, want not_initialized", err)
	}
	var nilStruct *Struct
	if nilStruct.Address() != 0 {
		t.Error("nil struct address should be 0")
	}
}

func TestFrame_CallStruct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fr := f.rt.Frame()
	ret, err := fr.CallStruct(ctx, "GetMousePosition", 8)
	fr.Close()
	if err != nil {
		t.Fatal(err)
	}
	defer ret.Release()

	if got := f.calls["GetMousePosition"]; len(got) != 1 || got[0] != ret.Address() {
		t.Errorf("hidden pointer: got %v, want [%d]", got, ret.Address())
	}
	if !ret.Owned() || ret.Size() != 8 {
		t.Errorf("result should be an owning 8-byte instance, got owned=%v size=%d", ret.Owned(), ret.Size())
	}
	x, _ := ret.F32(0)
	y, _ := ret.F32(4)
	if x != 12.5 || y != -3 {
		t.Errorf("got (%v, %v), want (12.5, -3)", x, y)
	}
}

func TestFrame_CallStructFailureReleases(t *testing.T) {
	f := newFixture(t)
	fr := f.rt.Frame()
	defer fr.Close()

	if _, err := fr.CallStruct(context.Background(), "GetMissing", 16, api.EncodeU32(1)); err == nil {
		t.Fatal("expected error")
	}
	if len(f.alloc.live) != 0 {
		t.Errorf("result buffer leaked: %d live allocations", len(f.alloc.live))
	}
}

func TestFrame_Encoding(t *testing.T) {
	f := newFixture(t)
	fr := f.rt.Frame()
	defer fr.Close()

	if fr.Bool(true) != 1 || fr.Bool(false) != 0 {
		t.Error("bool encoding")
	}
	if fr.Pointer(nil) != 0 {
		t.Error("nil pointer should encode as 0")
	}
	if fr.Pointer(Addr(77)) != 77 {
		t.Error("Addr encoding")
	}
}

func TestStruct_SubAfterRelease(t *testing.T) {
	f := newFixture(t)

	outer, err := f.rt.NewStruct(44)
	if err != nil {
		t.Fatal(err)
	}
	position := outer.Sub(0, 12)
	x := position.Sub(0, 4)
	if _, err := x.F32(0); err != nil {
		t.Fatalf("read before release: %v", err)
	}

	if err := outer.Release(); err != nil {
		t.Fatal(err)
	}
	released := &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindReleased}
	if _, err := position.F32(0); !errors.Is(err, released) {
		t.Errorf("nested view: got %v, want released", err)
	}
	if err := x.SetF32(0, 1); !errors.Is(err, released) {
		t.Errorf("view of a view: got %v, want released", err)
	}
	if position.Owned() {
		t.Error("nested view should not own memory")
	}
	if err := position.Release(); !errors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindNotOwner}) {
		t.Errorf("releasing a nested view: got %v, want not_owner", err)
	}
}
