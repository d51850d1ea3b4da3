package main

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	v1 "github.com/PaulBabatuyi/campusMarket-gRPC/api/market/v1"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/logger"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/realtime"
)

// Subscribe streams change events of req.Table addressed to the caller
// until the client goes away.
func (s *Server) Subscribe(req *v1.SubscribeRequest, stream v1.MarketService_SubscribeServer) error {
	ctx := stream.Context()
	_, claims, err := caller(ctx)
	if err != nil {
		return err
	}
	if err := s.check(req); err != nil {
		return err
	}

	sub := s.hub.Subscribe(req.Table, claims.UserID, realtime.DefaultBuffer)
	defer s.hub.Unsubscribe(sub)
	log := logger.FromContext(ctx)
	log.Debug("subscribed", zap.String("table", req.Table))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sub.C:
			if !ok {
				// dropped for falling behind; the client resubscribes and refetches
				return status.Error(codes.Unavailable, "change feed overflowed")
			}
			if err := stream.Send(ev); err != nil {
				return status.Errorf(codes.Internal, "failed to send change event: %v", err)
			}
		}
	}
}

// publish announces a change. Delivery is best effort: the write already
// happened and clients refetch on reconnect.
func (s *Server) publish(ctx context.Context, table, op, recordID string, userIDs ...string) {
	ev := &v1.ChangeEvent{Table: table, Op: op, RecordID: recordID, UserIDs: userIDs}
	if err := s.broker.Publish(ctx, ev); err != nil {
		logger.FromContext(ctx).Warn("publish change failed",
			zap.String("table", table),
			zap.String("op", op),
			zap.Error(err))
	}
}

func hexes(ids []bson.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}
