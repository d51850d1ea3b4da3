package client

import (
	"context"

	v1 "github.com/PaulBabatuyi/campusMarket-gRPC/api/market/v1"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/market"
)

func (c *Client) GetProfile(ctx context.Context, userID string) (*market.Profile, error) {
	p, err := c.rpc.GetProfile(c.outgoing(ctx), &v1.GetProfileRequest{UserID: userID})
	if err != nil {
		return nil, c.fail(err)
	}
	out := profileFromWire(p)
	return &out, nil
}

func (c *Client) GetProfiles(ctx context.Context, userIDs []string) ([]market.Profile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	resp, err := c.rpc.GetProfiles(c.outgoing(ctx), &v1.GetProfilesRequest{UserIDs: userIDs})
	if err != nil {
		return nil, c.fail(err)
	}
	out := make([]market.Profile, 0, len(resp.Profiles))
	for _, p := range resp.Profiles {
		out = append(out, profileFromWire(p))
	}
	return out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, u market.ProfileUpdate) (*market.Profile, error) {
	p, err := c.rpc.UpdateProfile(c.outgoing(ctx), &v1.UpdateProfileRequest{
		FullName:      u.FullName,
		StudentID:     u.StudentID,
		PhoneNumber:   u.PhoneNumber,
		HostelDetails: u.HostelDetails,
		AvatarURL:     u.AvatarURL,
	})
	if err != nil {
		return nil, c.fail(err)
	}
	out := profileFromWire(p)
	return &out, nil
}

func (c *Client) ListActiveProducts(ctx context.Context, offset, limit int) ([]market.ProductRow, error) {
	resp, err := c.rpc.ListProducts(c.outgoing(ctx), &v1.ListProductsRequest{Offset: int64(offset), Limit: int64(limit)})
	if err != nil {
		return nil, c.fail(err)
	}
	return productsFromWire(resp.Products), nil
}

func (c *Client) GetProducts(ctx context.Context, ids []string) ([]market.ProductRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	resp, err := c.rpc.GetProducts(c.outgoing(ctx), &v1.GetProductsRequest{IDs: ids})
	if err != nil {
		return nil, c.fail(err)
	}
	return productsFromWire(resp.Products), nil
}

// ListSellerProducts returns every listing of sellerID, whatever its status.
func (c *Client) ListSellerProducts(ctx context.Context, sellerID string) ([]market.ProductRow, error) {
	resp, err := c.rpc.ListSellerProducts(c.outgoing(ctx), &v1.ListSellerProductsRequest{SellerID: sellerID})
	if err != nil {
		return nil, c.fail(err)
	}
	return productsFromWire(resp.Products), nil
}

func (c *Client) InsertProduct(ctx context.Context, p market.NewProduct) (string, error) {
	resp, err := c.rpc.CreateProduct(c.outgoing(ctx), &v1.CreateProductRequest{
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Negotiable:  p.Negotiable,
		Condition:   p.Condition,
		Category:    p.Category,
		Location:    p.Location,
		Images:      p.Images,
	})
	if err != nil {
		return "", c.fail(err)
	}
	return resp.ID, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, p market.ProductPatch) error {
	_, err := c.rpc.UpdateProduct(c.outgoing(ctx), &v1.UpdateProductRequest{
		ID:          id,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Negotiable:  p.Negotiable,
		Condition:   p.Condition,
		Category:    p.Category,
		Location:    p.Location,
		Images:      p.Images,
		Status:      p.Status,
	})
	if err != nil {
		return c.fail(err)
	}
	return nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	if _, err := c.rpc.DeleteProduct(c.outgoing(ctx), &v1.DeleteProductRequest{ID: id}); err != nil {
		return c.fail(err)
	}
	return nil
}

func (c *Client) ListWishlist(ctx context.Context) ([]string, error) {
	resp, err := c.rpc.ListWishlist(c.outgoing(ctx), &v1.ListWishlistRequest{})
	if err != nil {
		return nil, c.fail(err)
	}
	return resp.ProductIDs, nil
}

func (c *Client) AddToWishlist(ctx context.Context, productID string) error {
	if _, err := c.rpc.AddToWishlist(c.outgoing(ctx), &v1.WishlistRequest{ProductID: productID}); err != nil {
		return c.fail(err)
	}
	return nil
}

func (c *Client) RemoveFromWishlist(ctx context.Context, productID string) error {
	if _, err := c.rpc.RemoveFromWishlist(c.outgoing(ctx), &v1.WishlistRequest{ProductID: productID}); err != nil {
		return c.fail(err)
	}
	return nil
}

func (c *Client) SendMessage(ctx context.Context, receiverID, content, productID string) (*market.Message, error) {
	m, err := c.rpc.SendMessage(c.outgoing(ctx), &v1.SendMessageRequest{
		ReceiverID: receiverID,
		Content:    content,
		ProductID:  productID,
	})
	if err != nil {
		return nil, c.fail(err)
	}
	out := messageFromWire(m)
	return &out, nil
}

func (c *Client) ListMessages(ctx context.Context) ([]market.Message, error) {
	resp, err := c.rpc.ListMessages(c.outgoing(ctx), &v1.ListMessagesRequest{})
	if err != nil {
		return nil, c.fail(err)
	}
	out := make([]market.Message, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		out = append(out, messageFromWire(m))
	}
	return out, nil
}

func (c *Client) MarkRead(ctx context.Context, otherUserID string) (int64, error) {
	resp, err := c.rpc.MarkRead(c.outgoing(ctx), &v1.MarkReadRequest{OtherUserID: otherUserID})
	if err != nil {
		return 0, c.fail(err)
	}
	return resp.Updated, nil
}

var (
	_ market.SessionBackend  = (*Client)(nil)
	_ market.CatalogBackend  = (*Client)(nil)
	_ market.WishlistBackend = (*Client)(nil)
	_ market.MessageBackend  = (*Client)(nil)
	_ market.ChangeFeed      = (*Client)(nil)
)
