package main

import (
	v1 "github.com/PaulBabatuyi/campusMarket-gRPC/api/market/v1"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/data"
)

func profileToWire(p *data.Profile, withEmail bool) *v1.Profile {
	out := &v1.Profile{
		ID:            p.ID.Hex(),
		FullName:      p.FullName,
		StudentID:     p.StudentID,
		PhoneNumber:   p.PhoneNumber,
		HostelDetails: p.HostelDetails,
		AvatarURL:     p.AvatarURL,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	// email is only shown to its owner
	if withEmail {
		out.Email = p.Email
	}
	return out
}

func productToWire(p *data.Product) *v1.Product {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return &v1.Product{
		ID:          p.ID.Hex(),
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Negotiable:  p.Negotiable,
		Condition:   p.Condition,
		Category:    p.Category,
		Location:    p.Location,
		Images:      images,
		SellerID:    p.SellerID.Hex(),
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func productsToWire(ps []*data.Product) []*v1.Product {
	out := make([]*v1.Product, 0, len(ps))
	for _, p := range ps {
		out = append(out, productToWire(p))
	}
	return out
}

func messageToWire(m *data.Message) *v1.Message {
	return &v1.Message{
		ID:         m.ID.Hex(),
		SenderID:   m.SenderID.Hex(),
		ReceiverID: m.ReceiverID.Hex(),
		Content:    m.Content,
		ProductID:  m.ProductID,
		SentAt:     m.SentAt,
		Read:       m.Read,
	}
}
