package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/auth"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/data"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/logger"
	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/storage"
)

// storeError maps a data layer error to a status. Unexpected errors are
// logged and hidden behind "failed to <action>".
func storeError(ctx context.Context, err error, action string) error {
	switch {
	case errors.Is(err, data.ErrNotFound):
		return status.Errorf(codes.NotFound, "%s: not found", action)
	case errors.Is(err, data.ErrForbidden):
		return status.Errorf(codes.PermissionDenied, "%s: not allowed", action)
	case errors.Is(err, data.ErrDuplicate):
		return status.Errorf(codes.AlreadyExists, "%s: already exists", action)
	case errors.Is(err, storage.ErrUnsupportedType), errors.Is(err, storage.ErrUnknownKind):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}
	logger.FromContext(ctx).Error(action+" failed", zap.Error(err))
	return status.Errorf(codes.Internal, "failed to %s", action)
}

// policyError maps credential policy violations to InvalidArgument.
func policyError(err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidEmailDomain), errors.Is(err, auth.ErrPasswordTooShort):
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Errorf(codes.Internal, "policy check: %v", err)
}

// check runs the struct tags of req and reports the first failures as
// InvalidArgument.
func (s *Server) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return status.Error(codes.InvalidArgument, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "product_condition":
		return "condition must be one of New, Like New, Good, Fair, Poor"
	case "product_status":
		return "status must be one of Active, Sold, Reserved"
	case "max":
		if fe.Kind().String() == "slice" {
			return fmt.Sprintf("%s allows at most %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, fe.Param())
	}
	return field + " is invalid"
}

// objectID parses a hex id from a request field.
func objectID(s, field string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(strings.TrimSpace(s))
	if err != nil {
		return bson.NilObjectID, status.Errorf(codes.InvalidArgument, "invalid %s", field)
	}
	return id, nil
}

func objectIDs(ss []string, field string) ([]bson.ObjectID, error) {
	out := make([]bson.ObjectID, 0, len(ss))
	for _, s := range ss {
		id, err := objectID(s, field)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// caller returns the authenticated user's id.
func caller(ctx context.Context) (bson.ObjectID, *auth.Claims, error) {
	claims, ok := getClaimsFromContext(ctx)
	if !ok {
		return bson.NilObjectID, nil, status.Errorf(codes.Unauthenticated, "missing auth claims")
	}
	id, err := bson.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return bson.NilObjectID, nil, status.Errorf(codes.Unauthenticated, "invalid subject")
	}
	return id, claims, nil
}
