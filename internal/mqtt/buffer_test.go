package mqtt

import "testing"

func pushN(b *backlog, from, n int) (losses int) {
	for i := from; i < from+n; i++ {
		if b.push(pendingMsg{topic: "t", payload: []byte{byte(i)}}) {
			losses++
		}
	}
	return losses
}

func TestBacklogEmptyDrain(t *testing.T) {
	if got := newBacklog(4).drain(); got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestBacklogOrder(t *testing.T) {
	b := newBacklog(10)
	if losses := pushN(b, 0, 5); losses != 0 {
		t.Errorf("unexpected loss report")
	}
	if b.len() != 5 {
		t.Errorf("len = %d, want 5", b.len())
	}

	got := b.drain()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i, m := range got {
		if m.payload[0] != byte(i) {
			t.Errorf("item %d: payload %d", i, m.payload[0])
		}
	}
	if b.len() != 0 || b.drain() != nil {
		t.Error("backlog should be empty after drain")
	}
}

func TestBacklogOverwritesOldest(t *testing.T) {
	b := newBacklog(5)

	// 0..7 into 5 slots keeps 3..7 and reports the loss once.
	if losses := pushN(b, 0, 8); losses != 1 {
		t.Errorf("loss reports = %d, want 1", losses)
	}

	got := b.drain()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i, m := range got {
		if want := byte(i + 3); m.payload[0] != want {
			t.Errorf("item %d: payload %d, want %d", i, m.payload[0], want)
		}
	}

	// A new outage reports again.
	if losses := pushN(b, 0, 6); losses != 1 {
		t.Errorf("loss reports after drain = %d, want 1", losses)
	}
}

func TestBacklogPreservesFields(t *testing.T) {
	b := newBacklog(2)
	b.push(pendingMsg{topic: TopicSystem, payload: []byte(`{"x":1}`), qos: 1, retained: true})

	got := b.drain()
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	m := got[0]
	if m.topic != TopicSystem || string(m.payload) != `{"x":1}` || m.qos != 1 || !m.retained {
		t.Errorf("fields not preserved: %+v", m)
	}
}
