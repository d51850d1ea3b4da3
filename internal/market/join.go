package market

import (
	"context"

	"go.uber.org/zap"
)

// joinSellers attaches each row's seller profile. Profiles are fetched in
// batches of batch distinct ids; a failed batch leaves its sellers as
// UnknownSeller.
func joinSellers(ctx context.Context, lookup ProfileLookup, rows []ProductRow, batch int, log *zap.Logger) []Product {
	var ids []string
	seen := make(map[string]struct{})
	for _, r := range rows {
		if _, ok := seen[r.SellerID]; ok || r.SellerID == "" {
			continue
		}
		seen[r.SellerID] = struct{}{}
		ids = append(ids, r.SellerID)
	}

	sellers := make(map[string]Profile, len(ids))
	for _, chunk := range chunks(ids, batch) {
		profiles, err := lookup.GetProfiles(ctx, chunk)
		if err != nil {
			log.Warn("seller profiles unavailable", zap.Strings("seller_ids", chunk), zap.Error(err))
			continue
		}
		for _, p := range profiles {
			sellers[p.ID] = p
		}
	}

	out := make([]Product, 0, len(rows))
	for _, r := range rows {
		p := Product{
			ID:          r.ID,
			Name:        r.Title,
			Description: r.Description,
			Price:       r.Price,
			Negotiable:  r.Negotiable,
			Condition:   r.Condition,
			Category:    r.Category,
			Location:    r.Location,
			Images:      append([]string(nil), r.Images...),
			SellerID:    r.SellerID,
			SellerName:  UnknownSeller,
			Status:      r.Status,
			CreatedAt:   r.CreatedAt,
		}
		if s, ok := sellers[r.SellerID]; ok {
			if s.FullName != "" {
				p.SellerName = s.FullName
			}
			p.SellerAvatar = s.AvatarURL
			p.SellerPhone = s.PhoneNumber
		}
		out = append(out, p)
	}
	return out
}

func chunks(ids []string, size int) [][]string {
	if size <= 0 {
		size = len(ids)
	}
	var out [][]string
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		out = append(out, ids[start:end])
	}
	return out
}

func cloneProduct(p Product) Product {
	p.Images = append([]string(nil), p.Images...)
	return p
}
