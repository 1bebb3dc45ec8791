package bus

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrDisconnected is returned when the receiving end of the bus is gone
var ErrDisconnected = errors.New("receiving end does not exist")

type call struct {
	ctx   context.Context
	req   Request
	reply chan result
}

type result struct {
	resp Response
	err  error
}

// Bus serializes requests onto a single handler goroutine
type Bus struct {
	handler   Handler
	logger    *zap.Logger
	calls     chan call
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New starts a bus delivering requests to handler
func New(handler Handler, logger *zap.Logger) *Bus {
	b := &Bus{
		handler: handler,
		logger:  logger,
		calls:   make(chan call),
		done:    make(chan struct{}),
	}
	b.wg.Add(1)
	go b.serve()
	return b
}

// Send delivers req and waits for the response
func (b *Bus) Send(ctx context.Context, req Request) (Response, error) {
	select {
	case <-b.done:
		return nil, ErrDisconnected
	default:
	}

	c := call{ctx: ctx, req: req, reply: make(chan result, 1)}
	select {
	case b.calls <- c:
	case <-b.done:
		return nil, ErrDisconnected
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case r := <-c.reply:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the handler goroutine; later sends fail with ErrDisconnected
func (b *Bus) Close() {
	b.closeOnce.Do(func() { close(b.done) })
	b.wg.Wait()
}

func (b *Bus) serve() {
	defer b.wg.Done()
	for {
		select {
		case c := <-b.calls:
			resp, err := b.handler.Dispatch(c.ctx, c.req)
			if err != nil {
				b.logger.Error("Request failed",
					zap.String("action", c.req.Action()),
					zap.Error(err))
			}
			c.reply <- result{resp: resp, err: err}
		case <-b.done:
			b.logger.Debug("Bus closed")
			return
		}
	}
}
