package services

import (
	"context"
	"io"
	"strings"

	"github.com/jobboard/apiserver/internal/apperr"
	"github.com/jobboard/apiserver/internal/auth"
	"github.com/jobboard/apiserver/internal/logging"
	"github.com/jobboard/apiserver/internal/ownership"
	"github.com/jobboard/apiserver/types"
)

// MaxAvatarBytes caps profile image uploads.
const MaxAvatarBytes = 5 << 20

var avatarContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// AvatarStore keeps profile images in object storage.
type AvatarStore interface {
	PutAvatar(ctx context.Context, userKey string, r io.Reader, size int64, contentType, ext string) (string, error)
	OpenAvatar(ctx context.Context, key string) (io.ReadCloser, string, error)
	DeleteAvatar(ctx context.Context, key string) error
}

// AvatarService manages user profile images.
type AvatarService struct {
	users UserRepository
	store AvatarStore
}

func NewAvatarService(users UserRepository, store AvatarStore) *AvatarService {
	return &AvatarService{users: users, store: store}
}

// Upload replaces the avatar of account id. userKey is the opaque id used to
// namespace the object key.
func (s *AvatarService) Upload(ctx context.Context, principal auth.Principal, id int, userKey string, r io.Reader, size int64, contentType string) (types.User, error) {
	if s.store == nil {
		return types.User{}, apperr.NotFound("profile images are not enabled")
	}
	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := avatarContentTypes[contentType]
	if !ok {
		return types.User{}, apperr.Validation("profileImage must be a jpeg, png, webp or gif image", "profileImage")
	}
	if size <= 0 || size > MaxAvatarBytes {
		return types.User{}, apperr.Validation("profileImage must be between 1 byte and 5 MiB", "profileImage")
	}

	user, err := ownership.Authorize(ctx, "user", s.users.GetByID, id, principal)
	if err != nil {
		return types.User{}, err
	}

	key, err := s.store.PutAvatar(ctx, userKey, r, size, contentType, ext)
	if err != nil {
		return types.User{}, err
	}
	if err := s.users.SetProfileImage(ctx, user.ID, key); err != nil {
		_ = s.store.DeleteAvatar(ctx, key)
		return types.User{}, err
	}

	if previous := user.ProfileImage; previous != "" && previous != key {
		if err := s.store.DeleteAvatar(ctx, previous); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("key", previous).Msg("failed to delete previous avatar")
		}
	}

	user.ProfileImage = key
	return user, nil
}

// Open returns the avatar of account id and its content type.
func (s *AvatarService) Open(ctx context.Context, id int) (io.ReadCloser, string, error) {
	if s.store == nil {
		return nil, "", apperr.NotFound("profile images are not enabled")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, "", notFoundAs(err, "user not found")
	}
	if user.ProfileImage == "" {
		return nil, "", apperr.NotFound("user has no profile image")
	}
	return s.store.OpenAvatar(ctx, user.ProfileImage)
}
