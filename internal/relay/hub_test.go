package relay

import (
	"encoding/json"
	"sync"
	"testing"
)

// recorder captures frames written to a client connection
type recorder struct {
	mu     sync.Mutex
	frames [][]byte
}

func (r *recorder) WriteMessage(messageType int, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	r.frames = append(r.frames, cp)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func (r *recorder) last(t *testing.T) map[string]any {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		t.Fatal("expected at least one frame, got none")
	}
	var out map[string]any
	if err := json.Unmarshal(r.frames[len(r.frames)-1], &out); err != nil {
		t.Fatalf("frame is not valid JSON: %v", err)
	}
	return out
}

func newTestClient(h *Hub) (*Client, *recorder) {
	rec := &recorder{}
	c := NewClient(rec)
	h.Register(c)
	return c, rec
}

func TestRelayExcludesSender(t *testing.T) {
	h := NewHub()
	sender, senderRec := newTestClient(h)
	peer, peerRec := newTestClient(h)
	h.Join(sender, "42")
	h.Join(peer, "42")

	h.Relay(sender, "42", []byte(`{"event":"canvas-update","data":{"x":1}}`))

	if senderRec.count() != 0 {
		t.Errorf("sender received %d frames, want 0", senderRec.count())
	}
	if peerRec.count() != 1 {
		t.Fatalf("peer received %d frames, want 1", peerRec.count())
	}
}

func TestRelayPayloadUnchanged(t *testing.T) {
	h := NewHub()
	sender, _ := newTestClient(h)
	peer, peerRec := newTestClient(h)
	h.Join(sender, "room")
	h.Join(peer, "room")

	frame := []byte(`{"event":"page-update","pages":[{"pageNumber":1,"canvasData":{"nested":[true,null,3.5]}}]}`)
	h.Relay(sender, "room", frame)

	peerRec.mu.Lock()
	got := string(peerRec.frames[0])
	peerRec.mu.Unlock()
	if got != string(frame) {
		t.Errorf("payload was rewritten:\n got %s\nwant %s", got, frame)
	}
}

func TestRelayRoomIsolation(t *testing.T) {
	h := NewHub()
	sender, _ := newTestClient(h)
	inRoom, inRec := newTestClient(h)
	otherRoom, otherRec := newTestClient(h)
	_, noneRec := newTestClient(h)
	h.Join(sender, "a")
	h.Join(inRoom, "a")
	h.Join(otherRoom, "b")

	h.Relay(sender, "a", []byte(`{"event":"canvas-update"}`))

	if inRec.count() != 1 {
		t.Errorf("room member received %d frames, want 1", inRec.count())
	}
	if otherRec.count() != 0 {
		t.Errorf("member of a different room received %d frames, want 0", otherRec.count())
	}
	if noneRec.count() != 0 {
		t.Errorf("roomless client received %d frames, want 0", noneRec.count())
	}
}

func TestRelayEmptyRoomDropsFrame(t *testing.T) {
	h := NewHub()
	sender, senderRec := newTestClient(h)
	h.Join(sender, "solo")

	// sender is the only member; the frame goes nowhere
	h.Relay(sender, "solo", []byte(`{"event":"canvas-update"}`))

	if senderRec.count() != 0 {
		t.Errorf("sender received %d frames, want 0", senderRec.count())
	}
}

func TestJoinIdempotent(t *testing.T) {
	h := NewHub()
	sender, _ := newTestClient(h)
	peer, peerRec := newTestClient(h)
	h.Join(peer, "room")
	h.Join(peer, "room")
	h.Join(peer, "room")
	h.Join(sender, "room")

	h.Relay(sender, "room", []byte(`{"event":"canvas-update"}`))

	if peerRec.count() != 1 {
		t.Errorf("double join caused %d deliveries, want 1", peerRec.count())
	}
}

func TestJoinEmptyKeyIgnored(t *testing.T) {
	h := NewHub()
	c, _ := newTestClient(h)
	h.Join(c, "")
	if h.RoomCount() != 0 {
		t.Errorf("empty room key created a room, RoomCount = %d", h.RoomCount())
	}
}

func TestClientCanJoinMultipleRooms(t *testing.T) {
	h := NewHub()
	sender, _ := newTestClient(h)
	multi, multiRec := newTestClient(h)
	h.Join(multi, "storyboard-room")
	h.Join(multi, "script-room")
	h.Join(sender, "storyboard-room")
	h.Join(sender, "script-room")

	h.Relay(sender, "storyboard-room", []byte(`{"event":"canvas-update"}`))
	h.Relay(sender, "script-room", []byte(`{"event":"script-update"}`))

	if multiRec.count() != 2 {
		t.Errorf("client in two rooms received %d frames, want 2", multiRec.count())
	}
}

func TestUnregisterRemovesFromAllRooms(t *testing.T) {
	h := NewHub()
	sender, _ := newTestClient(h)
	leaver, leaverRec := newTestClient(h)
	h.Join(sender, "a")
	h.Join(sender, "b")
	h.Join(leaver, "a")
	h.Join(leaver, "b")

	h.Unregister(leaver)

	h.Relay(sender, "a", []byte(`{"event":"canvas-update"}`))
	h.Relay(sender, "b", []byte(`{"event":"script-update"}`))

	if leaverRec.count() != 0 {
		t.Errorf("disconnected client received %d frames, want 0", leaverRec.count())
	}
	if h.ClientCount() != 1 {
		t.Errorf("ClientCount = %d, want 1", h.ClientCount())
	}
}

func TestUnregisterCleansUpEmptyRooms(t *testing.T) {
	h := NewHub()
	only, _ := newTestClient(h)
	h.Join(only, "a")
	h.Join(only, "b")
	if h.RoomCount() != 2 {
		t.Fatalf("RoomCount = %d, want 2", h.RoomCount())
	}

	h.Unregister(only)

	if h.RoomCount() != 0 {
		t.Errorf("RoomCount after last member left = %d, want 0", h.RoomCount())
	}
}

func TestRelayToRoomIncludesSender(t *testing.T) {
	h := NewHub()
	a, aRec := newTestClient(h)
	b, bRec := newTestClient(h)
	h.Join(a, DashboardRoom("7"))
	h.Join(b, DashboardRoom("7"))

	h.RelayToRoom(DashboardRoom("7"), []byte(`{"event":"project-created","project":{"id":1}}`))

	if aRec.count() != 1 || bRec.count() != 1 {
		t.Errorf("dashboard members received %d/%d frames, want 1/1", aRec.count(), bRec.count())
	}
}

func TestBroadcastAllReachesEveryClient(t *testing.T) {
	h := NewHub()
	inRoom, inRec := newTestClient(h)
	_, roomlessRec := newTestClient(h)
	h.Join(inRoom, "some-room")

	h.BroadcastAll([]byte(`{"event":"project-updated","projectId":"9"}`))

	if inRec.count() != 1 {
		t.Errorf("room member received %d frames, want 1", inRec.count())
	}
	if roomlessRec.count() != 1 {
		t.Errorf("roomless client received %d frames, want 1", roomlessRec.count())
	}
}

func TestConcurrentJoinAndRelay(t *testing.T) {
	h := NewHub()
	sender, _ := newTestClient(h)
	h.Join(sender, "room")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, _ := newTestClient(h)
			h.Join(c, "room")
			h.Relay(c, "room", []byte(`{"event":"canvas-update"}`))
			h.Unregister(c)
		}()
	}
	wg.Wait()

	if h.ClientCount() != 1 {
		t.Errorf("ClientCount = %d, want 1", h.ClientCount())
	}
}
