package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	v1 "github.com/PaulBabatuyi/campusMarket-gRPC/api/market/v1"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/auth"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/data"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/logger"
)

// Register creates the account and its profile and returns a session token.
func (s *Server) Register(ctx context.Context, req *v1.RegisterRequest) (*v1.AuthResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	if err := s.policy.ValidateEmail(req.Email); err != nil {
		return nil, policyError(err)
	}
	if err := s.policy.ValidatePassword(req.Password); err != nil {
		return nil, policyError(err)
	}

	// Hash password using auth utility
	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to hash password: %v", err)
	}

	user, err := s.users.CreateUser(ctx, req.Email, hashed)
	if err != nil {
		if errors.Is(err, data.ErrDuplicate) {
			return nil, status.Error(codes.AlreadyExists, "User already registered")
		}
		return nil, storeError(ctx, err, "create user")
	}

	profile := &data.Profile{
		ID:            user.ID,
		Email:         user.Email,
		FullName:      strings.TrimSpace(req.FullName),
		StudentID:     strings.TrimSpace(req.StudentID),
		PhoneNumber:   strings.TrimSpace(req.PhoneNumber),
		HostelDetails: strings.TrimSpace(req.HostelDetails),
	}
	if err := s.profiles.CreateProfile(ctx, profile); err != nil {
		// without a profile the account is unusable, so free the email again
		if derr := s.users.DeleteUser(ctx, user.ID); derr != nil {
			logger.FromContext(ctx).Error("rollback of user failed", zap.String("user_id", user.ID.Hex()), zap.Error(derr))
		}
		return nil, storeError(ctx, err, "create profile")
	}

	logger.FromContext(ctx).Info("user registered", zap.String("user_id", user.ID.Hex()))
	return s.issue(user)
}

// Login authenticates a user and returns a JWT token
func (s *Server) Login(ctx context.Context, req *v1.LoginRequest) (*v1.AuthResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	if err := s.policy.ValidateEmail(req.Email); err != nil {
		return nil, policyError(err)
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, status.Error(codes.Unauthenticated, "Invalid login credentials")
		}
		return nil, storeError(ctx, err, "look up user")
	}
	if err := auth.CheckPassword(user.Password, req.Password); err != nil {
		return nil, status.Error(codes.Unauthenticated, "Invalid login credentials")
	}
	return s.issue(user)
}

func (s *Server) issue(user *data.User) (*v1.AuthResponse, error) {
	token, expiresAt, err := s.auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to generate token: %v", err)
	}
	return &v1.AuthResponse{
		Token:     token,
		UserID:    user.ID.Hex(),
		Email:     user.Email,
		ExpiresAt: expiresAt,
	}, nil
}

// Logout revokes the calling token until it would have expired anyway.
func (s *Server) Logout(ctx context.Context, _ *v1.LogoutRequest) (*v1.Empty, error) {
	_, claims, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if s.blacklist == nil || claims.ID == "" {
		return &v1.Empty{}, nil
	}

	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return &v1.Empty{}, nil
	}
	if err := s.blacklist.Add(ctx, claims.ID, ttl); err != nil {
		logger.FromContext(ctx).Error("blacklist add failed", zap.Error(err))
		return nil, status.Error(codes.Unavailable, "failed to sign out")
	}
	return &v1.Empty{}, nil
}

func (s *Server) GetProfile(ctx context.Context, req *v1.GetProfileRequest) (*v1.Profile, error) {
	me, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}
	id, err := objectID(req.UserID, "user_id")
	if err != nil {
		return nil, err
	}

	p, err := s.profiles.GetProfile(ctx, id)
	if err != nil {
		return nil, storeError(ctx, err, "get profile")
	}
	return profileToWire(p, id == me), nil
}

// GetProfiles returns the public profiles found for req.UserIDs.
func (s *Server) GetProfiles(ctx context.Context, req *v1.GetProfilesRequest) (*v1.GetProfilesResponse, error) {
	me, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}
	ids, err := objectIDs(req.UserIDs, "user_ids")
	if err != nil {
		return nil, err
	}

	ps, err := s.profiles.GetProfiles(ctx, ids)
	if err != nil {
		return nil, storeError(ctx, err, "get profiles")
	}
	out := make([]*v1.Profile, 0, len(ps))
	for _, p := range ps {
		out = append(out, profileToWire(p, p.ID == me))
	}
	return &v1.GetProfilesResponse{Profiles: out}, nil
}

// UpdateProfile merges the set fields into the caller's profile.
func (s *Server) UpdateProfile(ctx context.Context, req *v1.UpdateProfileRequest) (*v1.Profile, error) {
	me, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}

	p, err := s.profiles.UpdateProfile(ctx, me, data.ProfilePatch{
		FullName:      trimmed(req.FullName),
		StudentID:     trimmed(req.StudentID),
		PhoneNumber:   trimmed(req.PhoneNumber),
		HostelDetails: trimmed(req.HostelDetails),
		AvatarURL:     trimmed(req.AvatarURL),
	})
	if err != nil {
		return nil, storeError(ctx, err, "update profile")
	}
	return profileToWire(p, true), nil
}

// CreateImageUpload signs a direct upload of one image for the caller.
func (s *Server) CreateImageUpload(ctx context.Context, req *v1.CreateImageUploadRequest) (*v1.CreateImageUploadResponse, error) {
	me, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, status.Error(codes.FailedPrecondition, "image uploads are not configured")
	}

	up, err := s.images.CreateUpload(ctx, req.Kind, me.Hex(), req.ContentType)
	if err != nil {
		return nil, storeError(ctx, err, "create upload")
	}
	return &v1.CreateImageUploadResponse{
		UploadURL: up.UploadURL,
		ImageURL:  up.ImageURL,
		ExpiresAt: up.ExpiresAt,
	}, nil
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
