package repository

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/shopgrid/internal/user/domain"
)

var tracer = otel.Tracer("user-repository")

// TracingUserRepository wraps any UserRepository with spans
type TracingUserRepository struct {
	next   domain.UserRepository
	driver string
}

// NewTracingUserRepository creates a new repository with tracing
func NewTracingUserRepository(next domain.UserRepository, driver string) *TracingUserRepository {
	return &TracingUserRepository{next: next, driver: driver}
}

// Create with tracing
func (r *TracingUserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, span := tracer.Start(ctx, "repository.Create",
		trace.WithAttributes(
			attribute.String("db.system", r.driver),
			attribute.String("user.username", user.Username),
		),
	)
	defer span.End()

	if err := r.next.Create(ctx, user); err != nil {
		recordError(span, err)
		return err
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	return nil
}

// FindByID with tracing
func (r *TracingUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "repository.FindByID",
		trace.WithAttributes(
			attribute.String("db.system", r.driver),
			attribute.String("user.id", id),
		),
	)
	defer span.End()

	user, err := r.next.FindByID(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	return user, nil
}

// FindByEmail with tracing. The address is not recorded on the span.
func (r *TracingUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "repository.FindByEmail",
		trace.WithAttributes(attribute.String("db.system", r.driver)),
	)
	defer span.End()

	user, err := r.next.FindByEmail(ctx, email)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", user.ID))
	return user, nil
}

// ExistsByEmailOrUsername with tracing
func (r *TracingUserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	ctx, span := tracer.Start(ctx, "repository.ExistsByEmailOrUsername",
		trace.WithAttributes(
			attribute.String("db.system", r.driver),
			attribute.String("user.username", username),
		),
	)
	defer span.End()

	exists, err := r.next.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		recordError(span, err)
		return false, err
	}
	span.SetAttributes(attribute.Bool("user.exists", exists))
	return exists, nil
}

// UpdateRole with tracing
func (r *TracingUserRepository) UpdateRole(ctx context.Context, id, role string) error {
	ctx, span := tracer.Start(ctx, "repository.UpdateRole",
		trace.WithAttributes(
			attribute.String("db.system", r.driver),
			attribute.String("user.id", id),
			attribute.String("user.role", role),
		),
	)
	defer span.End()

	if err := r.next.UpdateRole(ctx, id, role); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

// recordError marks the span failed unless err is an expected lookup miss
func recordError(span trace.Span, err error) {
	if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidUserID) {
		span.SetAttributes(attribute.String("lookup.result", err.Error()))
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
