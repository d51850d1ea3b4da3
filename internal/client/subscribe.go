package client

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	v1 "github.com/PaulBabatuyi/campusMarket-gRPC/api/market/v1"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/market"
)

const subscribeBuffer = 16

// Subscribe opens a change stream for table. The channel is closed when ctx
// ends or the stream fails.
func (c *Client) Subscribe(ctx context.Context, table string) (<-chan market.ChangeEvent, error) {
	stream, err := c.rpc.Subscribe(c.outgoing(ctx), &v1.SubscribeRequest{Table: table})
	if err != nil {
		return nil, c.fail(err)
	}

	out := make(chan market.ChangeEvent, subscribeBuffer)
	go func() {
		defer close(out)
		for {
			ev, err := stream.Recv()
			if err != nil {
				switch {
				case errors.Is(err, io.EOF), status.Code(err) == codes.Canceled, ctx.Err() != nil:
					// closed on purpose
				default:
					c.log.Warn("change stream ended", zap.String("table", table), zap.Error(err))
					_ = c.fail(err)
				}
				return
			}
			select {
			case out <- market.ChangeEvent{Table: ev.Table, Op: ev.Op, RecordID: ev.RecordID}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
