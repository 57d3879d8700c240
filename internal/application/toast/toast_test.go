package toast

import (
	"context"
	"sync"
	"testing"
)

func TestTray_PushCollapsesDuplicates(t *testing.T) {
	tray := &Tray{}
	tray.Push(Error, "Request failed")
	tray.Push(Error, "Request failed")
	tray.Push(Success, "Loaded capsule")
	tray.Push(Error, "Request failed")

	got := tray.Messages()
	want := []string{"Request failed", "Loaded capsule", "Request failed"}
	if len(got) != len(want) {
		t.Fatalf("Messages = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Messages[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPush_NoTrayIsNoop(t *testing.T) {
	Push(context.Background(), Info, "dropped")
	var tray *Tray
	if tray.All() != nil {
		t.Error("nil tray should return nil")
	}
}

func TestTray_Concurrent(t *testing.T) {
	tray := &Tray{}
	ctx := WithTray(context.Background(), tray)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Push(ctx, Info, string(rune('a'+n%26)))
		}(i)
	}
	wg.Wait()
	if len(tray.All()) == 0 {
		t.Error("expected toasts")
	}
}
