package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/common"
	sc "github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func newSvcForPresign(t *testing.T) (*AvatarService, *memStore) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	cfg := &sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "avatars",
	}
	store := newMemStore()
	return NewAvatarService(db, &fakeRepoManager{s: store}, cfg, Deps{Now: func() time.Time { return fixedNow }}), store
}

// stubPresign replaces the AWS seams for the duration of the test.
func stubPresign(t *testing.T, put, get func(in any) (*v4.PresignedHTTPRequest, error)) {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	origPut := presignPutObject
	origGet := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
		presignGetObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client { return &s3.Client{} }
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return put(in)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return get(in)
	}
}

func Test_getPresignClient_SuccessAndError(t *testing.T) {
	svc, _ := newSvcForPresign(t)

	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				t.Fatalf("load options fn error: %v", err)
			}
		}
		if lo.Region != "us-east-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		if lo.Credentials == nil {
			t.Fatalf("static credentials not applied")
		}
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		if c == nil {
			t.Fatalf("nil client passed to presign")
		}
		return &s3.PresignClient{}
	}

	pc, err := svc.getPresignClient(context.Background())
	if err != nil || pc == nil {
		t.Fatalf("getPresignClient = %v, %v", pc, err)
	}
	if opts.BaseEndpoint == nil || *opts.BaseEndpoint != "http://127.0.0.1:9000" {
		t.Fatalf("BaseEndpoint not applied: %v", opts.BaseEndpoint)
	}
	if !opts.UsePathStyle {
		t.Fatalf("path-style addressing expected for S3-compatible endpoints")
	}

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	if _, err := svc.getPresignClient(context.Background()); err == nil || err.Error() != "load-fail" {
		t.Fatalf("expected load-fail, got %v", err)
	}
}

func TestAvatarStorageKey(t *testing.T) {
	key := AvatarStorageKey("u-1", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC))
	re := regexp.MustCompile(`^avatars/u-1/2025/03/[0-9a-f-]{36}$`)
	if !re.MatchString(key) {
		t.Fatalf("unexpected key %q", key)
	}
}

func TestUploadURL_StoresKey(t *testing.T) {
	svc, store := newSvcForPresign(t)
	store.addProfile("u-1", "", true)

	var gotBucket, gotKey string
	stubPresign(t, func(in any) (*v4.PresignedHTTPRequest, error) {
		put := in.(*s3.PutObjectInput)
		gotBucket, gotKey = *put.Bucket, *put.Key
		return &v4.PresignedHTTPRequest{URL: "https://s3/put"}, nil
	}, nil)

	key, url, err := svc.UploadURL(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("UploadURL error: %v", err)
	}
	if url != "https://s3/put" || key != gotKey || gotBucket != "avatars" {
		t.Fatalf("unexpected result key=%q url=%q bucket=%q", key, url, gotBucket)
	}
	if !strings.HasPrefix(key, "avatars/u-1/2025/06/") {
		t.Fatalf("unexpected key %q", key)
	}
	if ak := store.profiles["u-1"].AvatarKey; ak == nil || *ak != key {
		t.Fatalf("avatar key not stored: %v", ak)
	}
}

func TestUploadURL_Errors(t *testing.T) {
	svc, store := newSvcForPresign(t)

	if _, _, err := svc.UploadURL(context.Background(), ""); !errors.Is(err, common.ErrorNoUserID) {
		t.Fatalf("expected ErrorNoUserID, got %v", err)
	}

	stubPresign(t, func(any) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign-put-fail")
	}, nil)
	if _, _, err := svc.UploadURL(context.Background(), "u-1"); err == nil || err.Error() != "presign-put-fail" {
		t.Fatalf("expected presign-put-fail, got %v", err)
	}

	// presign works but the profile is missing
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "https://s3/put"}, nil
	}
	if _, _, err := svc.UploadURL(context.Background(), "ghost"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
	if len(store.profiles) != 0 {
		t.Fatalf("no profile may be created")
	}
}

func TestDownloadURL(t *testing.T) {
	svc, store := newSvcForPresign(t)
	store.addProfile("u-1", "", true)
	key := "avatars/u-1/2025/06/abc"
	store.profiles["u-1"].AvatarKey = &key

	stubPresign(t, nil, func(in any) (*v4.PresignedHTTPRequest, error) {
		get := in.(*s3.GetObjectInput)
		if *get.Key != key || *get.Bucket != "avatars" {
			t.Fatalf("unexpected input %q %q", *get.Bucket, *get.Key)
		}
		return &v4.PresignedHTTPRequest{URL: "https://s3/get"}, nil
	})

	url, err := svc.DownloadURL(context.Background(), "u-1")
	if err != nil || url != "https://s3/get" {
		t.Fatalf("DownloadURL = %q, %v", url, err)
	}
}

func TestDownloadURL_NotFound(t *testing.T) {
	svc, store := newSvcForPresign(t)
	stubPresign(t, nil, func(any) (*v4.PresignedHTTPRequest, error) {
		t.Fatalf("presign must not be called")
		return nil, nil
	})

	if _, err := svc.DownloadURL(context.Background(), "ghost"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound for missing profile, got %v", err)
	}

	store.addProfile("u-1", "", true)
	if _, err := svc.DownloadURL(context.Background(), "u-1"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound for missing avatar, got %v", err)
	}
}

func TestDownloadURL_PresignError(t *testing.T) {
	svc, store := newSvcForPresign(t)
	store.addProfile("u-1", "", true)
	key := "k"
	store.profiles["u-1"].AvatarKey = &key

	stubPresign(t, nil, func(any) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign-get-fail")
	})

	if _, err := svc.DownloadURL(context.Background(), "u-1"); err == nil || err.Error() != "presign-get-fail" {
		t.Fatalf("expected presign-get-fail, got %v", err)
	}
}
