package main

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	v1 "github.com/PaulBabatuyi/campusMarket-gRPC/api/market/v1"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/data"
)

// ListWishlist returns the caller's wishlisted product ids in the order
// they were added.
func (s *Server) ListWishlist(ctx context.Context, _ *v1.ListWishlistRequest) (*v1.ListWishlistResponse, error) {
	me, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := s.wishlists.ListProductIDs(ctx, me)
	if err != nil {
		return nil, storeError(ctx, err, "list wishlist")
	}
	return &v1.ListWishlistResponse{ProductIDs: hexes(ids)}, nil
}

func (s *Server) AddToWishlist(ctx context.Context, req *v1.WishlistRequest) (*v1.Empty, error) {
	me, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}
	id, err := objectID(req.ProductID, "product_id")
	if err != nil {
		return nil, err
	}

	if _, err := s.products.GetProduct(ctx, id); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, status.Error(codes.NotFound, "product not found")
		}
		return nil, storeError(ctx, err, "look up product")
	}
	if err := s.wishlists.AddProduct(ctx, me, id); err != nil {
		return nil, storeError(ctx, err, "add to wishlist")
	}

	s.publish(ctx, v1.TableWishlists, v1.OpInsert, req.ProductID, me.Hex())
	return &v1.Empty{}, nil
}

func (s *Server) RemoveFromWishlist(ctx context.Context, req *v1.WishlistRequest) (*v1.Empty, error) {
	me, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}
	id, err := objectID(req.ProductID, "product_id")
	if err != nil {
		return nil, err
	}

	if err := s.wishlists.RemoveProduct(ctx, me, id); err != nil {
		return nil, storeError(ctx, err, "remove from wishlist")
	}

	s.publish(ctx, v1.TableWishlists, v1.OpDelete, req.ProductID, me.Hex())
	return &v1.Empty{}, nil
}
