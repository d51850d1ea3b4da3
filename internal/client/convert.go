package client

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	v1 "github.com/PaulBabatuyi/campusMarket-gRPC/api/market/v1"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/market"
)

// convertError turns a gRPC status into a market.BackendError carrying the
// server's message. Other errors pass through.
func convertError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	var kind error
	switch st.Code() {
	case codes.Unauthenticated:
		kind = market.ErrUnauthenticated
	case codes.PermissionDenied:
		kind = market.ErrForbidden
	case codes.NotFound:
		kind = market.ErrNotFound
	case codes.AlreadyExists:
		kind = market.ErrConflict
	case codes.InvalidArgument:
		kind = market.ErrInvalidInput
	}
	return &market.BackendError{Message: st.Message(), Kind: kind}
}

func profileFromWire(p *v1.Profile) market.Profile {
	return market.Profile{
		ID:            p.ID,
		Email:         p.Email,
		FullName:      p.FullName,
		StudentID:     p.StudentID,
		PhoneNumber:   p.PhoneNumber,
		HostelDetails: p.HostelDetails,
		AvatarURL:     p.AvatarURL,
		UpdatedAt:     p.UpdatedAt,
	}
}

func productsFromWire(ps []*v1.Product) []market.ProductRow {
	out := make([]market.ProductRow, 0, len(ps))
	for _, p := range ps {
		out = append(out, market.ProductRow{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Price:       p.Price,
			Negotiable:  p.Negotiable,
			Condition:   p.Condition,
			Category:    p.Category,
			Location:    p.Location,
			Images:      p.Images,
			SellerID:    p.SellerID,
			Status:      p.Status,
			CreatedAt:   p.CreatedAt,
		})
	}
	return out
}

func messageFromWire(m *v1.Message) market.Message {
	return market.Message{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		ProductID:  m.ProductID,
		Timestamp:  m.SentAt,
		Read:       m.Read,
	}
}
