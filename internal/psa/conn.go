package psa

import (
	"context"
	"fmt"
	"sync"
)

// Request is one inbound call awaiting a reply.
type Request struct {
	frame []byte
	reply chan []byte
	once  sync.Once
}

// Decode returns the message carried by the request.
func (r *Request) Decode() (*Message, error) {
	var m Message
	if err := decode(r.frame, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Reply answers the request. Only the first call has any effect.
func (r *Request) Reply(status Status, out ...[]byte) {
	r.once.Do(func() {
		frame, err := encode(Reply{Status: status, Out: out})
		if err != nil {
			frame, _ = encode(Reply{Status: ErrGeneric})
		}
		r.reply <- frame
	})
}

// Endpoint is the service side of the boundary.
type Endpoint struct {
	requests chan *Request
	done     chan struct{}
	close    sync.Once
}

// NewEndpoint creates an endpoint with no queued requests.
func NewEndpoint() *Endpoint {
	return &Endpoint{
		requests: make(chan *Request),
		done:     make(chan struct{}),
	}
}

// Requests delivers inbound calls. The service must Reply to each.
func (e *Endpoint) Requests() <-chan *Request {
	return e.requests
}

// Close refuses further calls. Calls already delivered still get their reply.
func (e *Endpoint) Close() {
	e.close.Do(func() { close(e.done) })
}

// Client is the application side of the boundary.
type Client struct {
	ep *Endpoint
}

// NewClient returns a client connected to ep.
func NewClient(ep *Endpoint) *Client {
	return &Client{ep: ep}
}

// Call sends a request and blocks until the service replies. outLen gives
// the size of each output buffer the caller provides; each returned vector
// is at most that long. A non-success status is returned as the error.
func (c *Client) Call(ctx context.Context, typ Type, in [][]byte, outLen []int) ([][]byte, error) {
	frame, err := encode(Message{Type: typ, In: in, OutLen: outLen})
	if err != nil {
		return nil, err
	}

	req := &Request{frame: frame, reply: make(chan []byte, 1)}
	select {
	case c.ep.requests <- req:
	case <-c.ep.done:
		return nil, ErrConnectionRefused
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var raw []byte
	select {
	case raw = <-req.reply:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var rep Reply
	if err := decode(raw, &rep); err != nil {
		return nil, err
	}
	if err := rep.Status.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", typ, err)
	}
	if len(rep.Out) > len(outLen) {
		return nil, fmt.Errorf("%s: %d output vectors, caller provided %d: %w", typ, len(rep.Out), len(outLen), ErrProgrammerError)
	}
	for i, v := range rep.Out {
		if len(v) > outLen[i] {
			return nil, fmt.Errorf("%s: output %d is %d bytes, buffer is %d: %w", typ, i, len(v), outLen[i], ErrProgrammerError)
		}
	}
	return rep.Out, nil
}
