package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/common"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/dbx"
	sc "github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/config"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// presignExpiry is the lifetime of avatar upload and download URLs.
const presignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// AvatarService hands out presigned URLs for the profile avatar stored in
// S3-compatible object storage.
type AvatarService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	deps        Deps
}

func NewAvatarService(db dbx.DBTX, m repomanager.RepositoryManager, cfg *sc.Config, deps Deps) *AvatarService {
	return &AvatarService{db: db, repomanager: m, config: cfg, deps: deps.withDefaults()}
}

// AvatarStorageKey returns a fresh object key under the user's prefix.
func AvatarStorageKey(userID string, d time.Time) string {
	return fmt.Sprintf("avatars/%s/%d/%02d/%v", userID, d.Year(), d.Month(), uuid.New())
}

func (s *AvatarService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// UploadURL reserves a new avatar key for userID, records it on the profile
// and returns it with a presigned PUT URL.
func (s *AvatarService) UploadURL(ctx context.Context, userID string) (key string, url string, err error) {
	defer s.deps.observe(ctx, "avatar_upload_url", time.Now(), &err)

	if userID == "" {
		return "", "", common.ErrorNoUserID
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key = AvatarStorageKey(userID, s.deps.Now())

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", "", err
	}

	if err := s.repomanager.Profiles(s.db).SetAvatarKey(ctx, userID, key); err != nil {
		return "", "", fmt.Errorf("error saving avatar key: %w", err)
	}

	return key, req.URL, nil
}

// DownloadURL returns a presigned GET URL for the user's current avatar, or
// common.ErrorNotFound when none was uploaded.
func (s *AvatarService) DownloadURL(ctx context.Context, userID string) (url string, err error) {
	defer s.deps.observe(ctx, "avatar_download_url", time.Now(), &err)

	if userID == "" {
		return "", common.ErrorNoUserID
	}

	p, err := s.repomanager.Profiles(s.db).Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("error checking profile: %w", err)
	}
	if p.AvatarKey == nil || *p.AvatarKey == "" {
		return "", common.ErrorNotFound
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	key := *p.AvatarKey

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
