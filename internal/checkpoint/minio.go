package checkpoint

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Object    string `mapstructure:"object"`
	Secure    bool   `mapstructure:"secure"`
	// Region skips the bucket location lookup when set.
	Region    string `mapstructure:"region"`
}

// MinioStore keeps the checkpoint in an object, for exports that run on
// machines without a persistent disk.
type MinioStore struct {
	cli    *minio.Client
	bucket string
	object string
}

var _ Store = (*MinioStore)(nil)

func NewMinioStore(ctx context.Context, conf MinioConfig) (*MinioStore, error) {
	client, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
		Secure: conf.Secure,
		Region: conf.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio.New: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, conf.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio.BucketExists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, conf.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio.MakeBucket: %w", err)
		}
		logrus.WithField("bucket", conf.Bucket).Info("checkpoint bucket created")
	}

	object := conf.Object
	if object == "" {
		object = "disqus-export.state"
	}
	return &MinioStore{cli: client, bucket: conf.Bucket, object: object}, nil
}

func (s *MinioStore) Load(ctx context.Context) (int64, bool, error) {
	obj, err := s.cli.GetObject(ctx, s.bucket, s.object, minio.GetObjectOptions{})
	if err != nil {
		return 0, false, err
	}
	defer obj.Close()

	raw, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return 0, false, nil
		}
		return 0, false, err
	}
	id, err := parseState(raw)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (s *MinioStore) Save(ctx context.Context, lastId int64) error {
	state := strconv.FormatInt(lastId, 10)
	_, err := s.cli.PutObject(ctx, s.bucket, s.object,
		strings.NewReader(state), int64(len(state)),
		minio.PutObjectOptions{ContentType: "text/plain"})
	return err
}
