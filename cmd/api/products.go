package main

import (
	"context"
	"strings"

	"go.uber.org/zap"

	v1 "github.com/PaulBabatuyi/campusMarket-gRPC/api/market/v1"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/data"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/logger"
)

const defaultPageSize = 10

// ListProducts returns one window of Active listings, newest first.
func (s *Server) ListProducts(ctx context.Context, req *v1.ListProductsRequest) (*v1.ListProductsResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultPageSize
	}

	ps, err := s.products.ListActive(ctx, req.Offset, limit)
	if err != nil {
		return nil, storeError(ctx, err, "list products")
	}
	return &v1.ListProductsResponse{Products: productsToWire(ps)}, nil
}

// GetProducts returns the listings found for req.IDs in any status.
func (s *Server) GetProducts(ctx context.Context, req *v1.GetProductsRequest) (*v1.ListProductsResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	ids, err := objectIDs(req.IDs, "ids")
	if err != nil {
		return nil, err
	}

	ps, err := s.products.GetProducts(ctx, ids)
	if err != nil {
		return nil, storeError(ctx, err, "get products")
	}
	return &v1.ListProductsResponse{Products: productsToWire(ps)}, nil
}

func (s *Server) ListSellerProducts(ctx context.Context, req *v1.ListSellerProductsRequest) (*v1.ListProductsResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	seller, err := objectID(req.SellerID, "seller_id")
	if err != nil {
		return nil, err
	}

	ps, err := s.products.ListBySeller(ctx, seller)
	if err != nil {
		return nil, storeError(ctx, err, "list seller products")
	}
	return &v1.ListProductsResponse{Products: productsToWire(ps)}, nil
}

// CreateProduct lists an item for the caller. New listings are Active.
func (s *Server) CreateProduct(ctx context.Context, req *v1.CreateProductRequest) (*v1.CreateProductResponse, error) {
	me, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}

	p, err := s.products.InsertProduct(ctx, &data.Product{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Negotiable:  req.Negotiable,
		Condition:   req.Condition,
		Category:    strings.TrimSpace(req.Category),
		Location:    strings.TrimSpace(req.Location),
		Images:      req.Images,
		SellerID:    me,
	})
	if err != nil {
		return nil, storeError(ctx, err, "create product")
	}

	id := p.ID.Hex()
	s.publish(ctx, v1.TableProducts, v1.OpInsert, id)
	return &v1.CreateProductResponse{ID: id}, nil
}

// UpdateProduct applies the set fields to one of the caller's listings.
func (s *Server) UpdateProduct(ctx context.Context, req *v1.UpdateProductRequest) (*v1.Product, error) {
	me, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}
	id, err := objectID(req.ID, "id")
	if err != nil {
		return nil, err
	}

	p, err := s.products.UpdateProduct(ctx, id, me, data.ProductPatch{
		Title:       trimmed(req.Title),
		Description: trimmed(req.Description),
		Price:       req.Price,
		Negotiable:  req.Negotiable,
		Condition:   req.Condition,
		Category:    trimmed(req.Category),
		Location:    trimmed(req.Location),
		Images:      req.Images,
		Status:      req.Status,
	})
	if err != nil {
		return nil, storeError(ctx, err, "update product")
	}

	s.publish(ctx, v1.TableProducts, v1.OpUpdate, req.ID)
	return productToWire(p), nil
}

// DeleteProduct removes one of the caller's listings and drops it from
// every wishlist.
func (s *Server) DeleteProduct(ctx context.Context, req *v1.DeleteProductRequest) (*v1.Empty, error) {
	me, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}
	id, err := objectID(req.ID, "id")
	if err != nil {
		return nil, err
	}

	if err := s.products.DeleteProduct(ctx, id, me); err != nil {
		return nil, storeError(ctx, err, "delete product")
	}
	s.publish(ctx, v1.TableProducts, v1.OpDelete, req.ID)

	users, err := s.wishlists.RemoveProductEverywhere(ctx, id)
	if err != nil {
		// dangling entries are filtered out on read
		logger.FromContext(ctx).Warn("wishlist cleanup failed", zap.String("product_id", req.ID), zap.Error(err))
		return &v1.Empty{}, nil
	}
	if len(users) > 0 {
		s.publish(ctx, v1.TableWishlists, v1.OpDelete, req.ID, hexes(users)...)
	}
	return &v1.Empty{}, nil
}
