package mqtt

// pendingMsg is a serialized message held for replay after reconnection.
type pendingMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// backlog is a fixed-capacity FIFO of messages published while the broker
// was unreachable. When full, the oldest message is overwritten.
// Not safe for concurrent use; the caller must synchronize.
type backlog struct {
	msgs  []pendingMsg
	next  int // next write position
	count int
	lossy bool // a message was overwritten since the last drain
}

func newBacklog(capacity int) *backlog {
	return &backlog{msgs: make([]pendingMsg, capacity)}
}

// push appends msg. It reports true the first time a message is lost
// after a drain, so the caller can log once per outage.
func (b *backlog) push(msg pendingMsg) (firstLoss bool) {
	b.msgs[b.next] = msg
	b.next = (b.next + 1) % len(b.msgs)
	if b.count < len(b.msgs) {
		b.count++
		return false
	}
	firstLoss = !b.lossy
	b.lossy = true
	return firstLoss
}

// drain returns the held messages oldest first and empties the backlog.
func (b *backlog) drain() []pendingMsg {
	if b.count == 0 {
		return nil
	}
	out := make([]pendingMsg, 0, b.count)
	start := (b.next - b.count + len(b.msgs)) % len(b.msgs)
	for i := 0; i < b.count; i++ {
		out = append(out, b.msgs[(start+i)%len(b.msgs)])
	}
	b.count = 0
	b.next = 0
	b.lossy = false
	return out
}

func (b *backlog) len() int { return b.count }
