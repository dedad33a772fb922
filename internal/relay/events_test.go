package relay

import (
	"fmt"
	"testing"
)

func TestDispatchJoinAndUpdateRoundTrip(t *testing.T) {
	h := NewHub()
	sender, senderRec := newTestClient(h)
	peer, peerRec := newTestClient(h)

	Dispatch(h, sender, []byte(`{"event":"join-storyboard","storyboardId":"12"}`))
	Dispatch(h, peer, []byte(`{"event":"join-storyboard","storyboardId":12}`))

	Dispatch(h, sender, []byte(`{"event":"canvas-update","storyboardId":"12","data":{"scene":"rooftop"}}`))

	if senderRec.count() != 0 {
		t.Errorf("sender received its own update")
	}
	frame := peerRec.last(t)
	if frame["event"] != "canvas-update" {
		t.Errorf("event = %v, want canvas-update", frame["event"])
	}
	data, ok := frame["data"].(map[string]any)
	if !ok || data["scene"] != "rooftop" {
		t.Errorf("payload not forwarded intact: %v", frame["data"])
	}
}

func TestDispatchNumericAndStringIDsShareRoom(t *testing.T) {
	h := NewHub()
	a, _ := newTestClient(h)
	b, bRec := newTestClient(h)

	Dispatch(h, a, []byte(`{"event":"join-script","scriptId":5}`))
	Dispatch(h, b, []byte(`{"event":"join-script","scriptId":"5"}`))

	Dispatch(h, a, []byte(`{"event":"script-update","scriptId":"5","pages":[],"pageColor":"#fafafa"}`))

	if bRec.count() != 1 {
		t.Fatalf("string-id joiner received %d frames, want 1", bRec.count())
	}
	frame := bRec.last(t)
	if frame["pageColor"] != "#fafafa" {
		t.Errorf("pageColor = %v, want #fafafa", frame["pageColor"])
	}
}

func TestDispatchDerivedRoomKeys(t *testing.T) {
	cases := []struct {
		name      string
		joinFrame string
		wantRoom  string
	}{
		{"breakdown", `{"event":"join-breakdown","projectId":"3"}`, "breakdown-3"},
		{"shotsequence", `{"event":"join-shotsequence","sequenceId":"8"}`, "shotsequence-8"},
		{"dashboard", `{"event":"join-dashboard","userId":"21"}`, "dashboard-21"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHub()
			c, _ := newTestClient(h)
			Dispatch(h, c, []byte(tc.joinFrame))
			if got := h.roomSnapshot(tc.wantRoom); len(got) != 1 {
				t.Errorf("room %q has %d members, want 1", tc.wantRoom, len(got))
			}
		})
	}
}

func TestDispatchBreakdownUpdate(t *testing.T) {
	h := NewHub()
	sender, _ := newTestClient(h)
	peer, peerRec := newTestClient(h)
	Dispatch(h, sender, []byte(`{"event":"join-breakdown","projectId":"3"}`))
	Dispatch(h, peer, []byte(`{"event":"join-breakdown","projectId":"3"}`))

	Dispatch(h, sender, []byte(`{"event":"breakdown-update","projectId":"3","breakdown":{"scenes":[]}}`))

	frame := peerRec.last(t)
	if frame["event"] != "breakdown-update" {
		t.Errorf("event = %v, want breakdown-update", frame["event"])
	}
	if _, ok := frame["breakdown"]; !ok {
		t.Error("breakdown payload missing from forwarded frame")
	}
}

func TestDispatchProjectCreatedStaysOnDashboard(t *testing.T) {
	h := NewHub()
	emitter, emitterRec := newTestClient(h)
	sameUser, sameRec := newTestClient(h)
	otherUser, otherRec := newTestClient(h)
	Dispatch(h, emitter, []byte(`{"event":"join-dashboard","userId":"1"}`))
	Dispatch(h, sameUser, []byte(`{"event":"join-dashboard","userId":"1"}`))
	Dispatch(h, otherUser, []byte(`{"event":"join-dashboard","userId":"2"}`))

	Dispatch(h, emitter, []byte(`{"event":"project-created","userId":"1","project":{"id":40,"title":"Reel"}}`))

	// the emitting session receives its own dashboard event
	if emitterRec.count() != 1 {
		t.Errorf("emitter received %d frames, want 1", emitterRec.count())
	}
	if sameRec.count() != 1 {
		t.Errorf("same-user session received %d frames, want 1", sameRec.count())
	}
	if otherRec.count() != 0 {
		t.Errorf("other user's dashboard received %d frames, want 0", otherRec.count())
	}
}

func TestDispatchProjectDeletedCarriesProjectID(t *testing.T) {
	h := NewHub()
	emitter, _ := newTestClient(h)
	watcher, watcherRec := newTestClient(h)
	Dispatch(h, emitter, []byte(`{"event":"join-dashboard","userId":"1"}`))
	Dispatch(h, watcher, []byte(`{"event":"join-dashboard","userId":"1"}`))

	Dispatch(h, emitter, []byte(`{"event":"project-deleted","userId":"1","projectId":77}`))

	frame := watcherRec.last(t)
	if frame["projectId"] != "77" {
		t.Errorf("projectId = %v, want 77", frame["projectId"])
	}
}

func TestDispatchProjectUpdatedIsGlobal(t *testing.T) {
	h := NewHub()
	emitter, emitterRec := newTestClient(h)
	_, strangerRec := newTestClient(h)
	// the second session never joined any room

	Dispatch(h, emitter, []byte(`{"event":"project-updated","projectId":"5","project":{"title":"Final Cut"}}`))

	if strangerRec.count() != 1 {
		t.Fatalf("roomless session received %d frames, want 1", strangerRec.count())
	}
	if emitterRec.count() != 1 {
		t.Errorf("emitter received %d frames, want 1", emitterRec.count())
	}
	frame := strangerRec.last(t)
	if frame["event"] != "project-updated" {
		t.Errorf("event = %v, want project-updated", frame["event"])
	}
}

func TestDispatchMalformedFrameIsInert(t *testing.T) {
	h := NewHub()
	sender, _ := newTestClient(h)
	peer, peerRec := newTestClient(h)
	Dispatch(h, sender, []byte(`{"event":"join-project","projectId":"9"}`))
	Dispatch(h, peer, []byte(`{"event":"join-project","projectId":"9"}`))

	Dispatch(h, sender, []byte(`{not json`))
	Dispatch(h, sender, []byte(`"just a string"`))

	if peerRec.count() != 0 {
		t.Errorf("malformed frames produced %d deliveries, want 0", peerRec.count())
	}
	if h.ClientCount() != 2 {
		t.Errorf("malformed frame disturbed registration, ClientCount = %d", h.ClientCount())
	}
}

func TestDispatchUnknownEventIsInert(t *testing.T) {
	h := NewHub()
	sender, _ := newTestClient(h)
	peer, peerRec := newTestClient(h)
	Dispatch(h, sender, []byte(`{"event":"join-project","projectId":"9"}`))
	Dispatch(h, peer, []byte(`{"event":"join-project","projectId":"9"}`))

	Dispatch(h, sender, []byte(`{"event":"self-destruct","projectId":"9"}`))

	if peerRec.count() != 0 {
		t.Errorf("unknown event produced %d deliveries, want 0", peerRec.count())
	}
}

func TestDispatchUpdateWithoutRoomIDIsInert(t *testing.T) {
	h := NewHub()
	sender, _ := newTestClient(h)
	peer, peerRec := newTestClient(h)
	Dispatch(h, sender, []byte(`{"event":"join-storyboard","storyboardId":"1"}`))
	Dispatch(h, peer, []byte(`{"event":"join-storyboard","storyboardId":"1"}`))

	Dispatch(h, sender, []byte(`{"event":"canvas-update","data":{"x":1}}`))
	Dispatch(h, sender, []byte(`{"event":"canvas-update","storyboardId":null,"data":{"x":1}}`))

	if peerRec.count() != 0 {
		t.Errorf("room-less update produced %d deliveries, want 0", peerRec.count())
	}
}

func TestDispatchNewComment(t *testing.T) {
	h := NewHub()
	sender, _ := newTestClient(h)
	peer, peerRec := newTestClient(h)
	Dispatch(h, sender, []byte(`{"event":"join-project","projectId":"14"}`))
	Dispatch(h, peer, []byte(`{"event":"join-project","projectId":"14"}`))

	comment := `{"username":"mina","text":"tighten the cut on page 2"}`
	Dispatch(h, sender, []byte(fmt.Sprintf(`{"event":"new-comment","projectId":"14","comment":%s}`, comment)))

	frame := peerRec.last(t)
	got, ok := frame["comment"].(map[string]any)
	if !ok || got["username"] != "mina" {
		t.Errorf("comment not forwarded intact: %v", frame["comment"])
	}
}

func TestDispatchCursorMove(t *testing.T) {
	h := NewHub()
	sender, _ := newTestClient(h)
	peer, peerRec := newTestClient(h)
	Dispatch(h, sender, []byte(`{"event":"join-storyboard","storyboardId":"6"}`))
	Dispatch(h, peer, []byte(`{"event":"join-storyboard","storyboardId":"6"}`))

	Dispatch(h, sender, []byte(`{"event":"cursor-move","storyboardId":"6","user":{"id":2,"name":"soo"},"position":{"x":120,"y":44}}`))

	frame := peerRec.last(t)
	pos, ok := frame["position"].(map[string]any)
	if !ok || pos["x"] != float64(120) {
		t.Errorf("position not forwarded intact: %v", frame["position"])
	}
}
