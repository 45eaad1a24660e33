package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-marketplace/internal/logger"
	"github.com/sbilibin2017/gw-marketplace/internal/models"
	"github.com/sbilibin2017/gw-marketplace/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

// UserProfileWriter defines profile changes.
type UserProfileWriter interface {
	Update(ctx context.Context, userID uuid.UUID, upd models.UserUpdate) (bool, error)
	Delete(ctx context.Context, userID uuid.UUID) (bool, error)
	UpdatePicture(ctx context.Context, userID uuid.UUID, path string) error
}

// ImageUploader stores images and removes them again.
type ImageUploader interface {
	Upload(ctx context.Context, data []byte, mimeType, folder string) (string, error)
	Delete(ctx context.Context, path string) error
}

// UserService handles profile reads and changes.
type UserService struct {
	reader    UserReader
	writer    UserProfileWriter
	images    ImageUploader
	publisher eventPublisher
}

func NewUserService(reader UserReader, writer UserProfileWriter, images ImageUploader, kafkaWriter KafkaWriter) *UserService {
	return &UserService{
		reader:    reader,
		writer:    writer,
		images:    images,
		publisher: eventPublisher{kafkaWriter: kafkaWriter},
	}
}

// Get returns the user or nil when it does not exist.
func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*models.UserDB, error) {
	user, err := s.reader.GetByID(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to get user", "user_id", userID, "error", err)
		return nil, err
	}
	return user, nil
}

// Update changes the non-nil profile fields of targetID on behalf of callerID.
func (s *UserService) Update(ctx context.Context, callerID, targetID uuid.UUID, upd models.UserUpdate) error {
	if err := s.authorize(ctx, callerID, targetID); err != nil {
		return err
	}

	upd, err := normalizeUserUpdate(upd)
	if err != nil {
		return err
	}
	if upd.IsEmpty() {
		return fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	ok, err := s.writer.Update(ctx, targetID, upd)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return ErrUserAlreadyExists
		}
		logger.FromContext(ctx).Errorw("failed to update user", "user_id", targetID, "error", err)
		return err
	}
	if !ok {
		return ErrUserDoesNotExist
	}
	return nil
}

// Delete removes targetID together with its places and favorites.
func (s *UserService) Delete(ctx context.Context, callerID, targetID uuid.UUID) error {
	if err := s.authorize(ctx, callerID, targetID); err != nil {
		return err
	}

	user, err := s.reader.GetByID(ctx, targetID)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to get user", "user_id", targetID, "error", err)
		return err
	}
	if user == nil {
		return ErrUserDoesNotExist
	}

	ok, err := s.writer.Delete(ctx, targetID)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to delete user", "user_id", targetID, "error", err)
		return err
	}
	if !ok {
		return ErrUserDoesNotExist
	}

	s.removePicture(ctx, user.PicturePath)
	s.publisher.publish(ctx, models.OperationUserDeleted, targetID, callerID)

	return nil
}

// SetPicture uploads a new profile picture for targetID and returns its path.
func (s *UserService) SetPicture(ctx context.Context, callerID, targetID uuid.UUID, data []byte, mimeType string) (string, error) {
	if err := s.authorize(ctx, callerID, targetID); err != nil {
		return "", err
	}

	user, err := s.reader.GetByID(ctx, targetID)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to get user", "user_id", targetID, "error", err)
		return "", err
	}
	if user == nil {
		return "", ErrUserDoesNotExist
	}

	path, err := s.images.Upload(ctx, data, mimeType, "users")
	if err != nil {
		return "", err
	}

	if err := s.writer.UpdatePicture(ctx, targetID, path); err != nil {
		logger.FromContext(ctx).Errorw("failed to store picture path", "user_id", targetID, "error", err)
		s.removePicture(ctx, path)
		return "", err
	}

	s.removePicture(ctx, user.PicturePath)

	return path, nil
}

// authorize allows users to act on themselves and admins to act on anyone.
func (s *UserService) authorize(ctx context.Context, callerID, targetID uuid.UUID) error {
	if callerID == targetID {
		return nil
	}
	if err := requireAdmin(ctx, s.reader, callerID); err != nil {
		logger.FromContext(ctx).Warnw("user access denied", "caller_id", callerID, "target_id", targetID)
		return err
	}
	return nil
}

func (s *UserService) removePicture(ctx context.Context, path string) {
	if path == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, path); err != nil {
		logger.FromContext(ctx).Warnw("failed to delete picture", "path", path, "error", err)
	}
}

// normalizeUserUpdate applies the registration rules to the present fields
// and hashes a new password.
func normalizeUserUpdate(upd models.UserUpdate) (models.UserUpdate, error) {
	if upd.Username != nil {
		username := normalizeUsername(*upd.Username)
		if err := validateUsername(username); err != nil {
			return upd, err
		}
		upd.Username = &username
	}
	if upd.Email != nil {
		email := normalizeEmail(*upd.Email)
		if email == "" {
			return upd, fmt.Errorf("%w: email must not be blank", ErrInvalidInput)
		}
		upd.Email = &email
	}
	if upd.FirstName != nil {
		first := normalizeName(*upd.FirstName)
		if first == "" {
			return upd, fmt.Errorf("%w: first_name must not be blank", ErrInvalidInput)
		}
		upd.FirstName = &first
	}
	if upd.LastName != nil {
		last := normalizeName(*upd.LastName)
		if last == "" {
			return upd, fmt.Errorf("%w: last_name must not be blank", ErrInvalidInput)
		}
		upd.LastName = &last
	}
	if upd.Biography != nil {
		bio := strings.TrimSpace(*upd.Biography)
		upd.Biography = &bio
	}

	upd.PasswordHash = nil
	if upd.Password != nil {
		if *upd.Password == "" {
			return upd, fmt.Errorf("%w: password must not be blank", ErrInvalidInput)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return upd, err
		}
		h := string(hash)
		upd.PasswordHash = &h
	}
	upd.Password = nil

	return upd, nil
}
