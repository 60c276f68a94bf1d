package input

import "testing"

func TestExitKeys(t *testing.T) {
	cases := map[string]bool{KeyEscape: true, KeyF4: true, "A": false, "Return": false}
	for name, want := range cases {
		if got := (Event{Name: name}).IsExit(); got != want {
			t.Errorf("%s: IsExit=%v want %v", name, got, want)
		}
	}
}

func TestEcho(t *testing.T) {
	if got := (Event{Name: "Space"}).Echo(); got != "key pressed Space" {
		t.Fatalf("echo=%q", got)
	}
}

func TestChannelPushAndStop(t *testing.T) {
	c := NewChannel(1)
	if !c.Push(Event{Name: "A"}) {
		t.Fatal("first push dropped")
	}
	if c.Push(Event{Name: "B"}) {
		t.Fatal("push into full buffer should drop")
	}
	if got := <-c.Events(); got.Name != "A" {
		t.Fatalf("got %q", got.Name)
	}
	_ = c.Stop()
	_ = c.Stop()
	if c.Push(Event{Name: "C"}) {
		t.Fatal("push after stop should drop")
	}
	if _, ok := <-c.Events(); ok {
		t.Fatal("channel not closed")
	}
}
