package main

import (
	"context"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	v1 "github.com/PaulBabatuyi/campusMarket-gRPC/api/market/v1"
)

// SendMessage stores a message from the caller to req.ReceiverID.
func (s *Server) SendMessage(ctx context.Context, req *v1.SendMessageRequest) (*v1.Message, error) {
	me, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, status.Error(codes.InvalidArgument, "content is required")
	}
	receiver, err := objectID(req.ReceiverID, "receiver_id")
	if err != nil {
		return nil, err
	}

	// recipient must exist
	exists, err := s.users.UserExistsByID(ctx, receiver)
	if err != nil {
		return nil, storeError(ctx, err, "verify recipient")
	}
	if !exists {
		return nil, status.Errorf(codes.NotFound, "recipient not found")
	}

	saved, err := s.msgs.SaveMessage(ctx, me, receiver, content, strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, storeError(ctx, err, "save message")
	}

	msg := messageToWire(saved)
	s.publish(ctx, v1.TableMessages, v1.OpInsert, msg.ID, me.Hex(), receiver.Hex())
	return msg, nil
}

// ListMessages returns every message the caller sent or received, oldest
// first.
func (s *Server) ListMessages(ctx context.Context, _ *v1.ListMessagesRequest) (*v1.ListMessagesResponse, error) {
	me, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	msgs, err := s.msgs.ListForUser(ctx, me)
	if err != nil {
		return nil, storeError(ctx, err, "list messages")
	}
	out := make([]*v1.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageToWire(m))
	}
	return &v1.ListMessagesResponse{Messages: out}, nil
}

// MarkRead marks what req.OtherUserID sent the caller as read.
func (s *Server) MarkRead(ctx context.Context, req *v1.MarkReadRequest) (*v1.MarkReadResponse, error) {
	me, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}
	other, err := objectID(req.OtherUserID, "other_user_id")
	if err != nil {
		return nil, err
	}

	n, err := s.msgs.MarkConversationRead(ctx, me, other)
	if err != nil {
		return nil, storeError(ctx, err, "mark read")
	}
	if n > 0 {
		s.publish(ctx, v1.TableMessages, v1.OpUpdate, req.OtherUserID, me.Hex(), other.Hex())
	}
	return &v1.MarkReadResponse{Updated: n}, nil
}
