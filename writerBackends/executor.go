package writerbackends

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"renditionmaker/config"
	"renditionmaker/models"
)

// WriteImage writes one file to the backend of the given type.
func WriteImage(ctx context.Context, accessInfo map[string]string, reader io.Reader, backendType string) error {
	switch backendType {
	case "directServe":
		err := UploadToDirectServe(ctx, accessInfo, reader)
		if err != nil {
			return fmt.Errorf("failed to upload to direct serve: %w", err)
		}
	case "s3":
		err := UploadToS3WithCreds(ctx, accessInfo, reader)
		if err != nil {
			return fmt.Errorf("failed to upload to S3: %w", err)
		}
	case "gcs":
		err := UploadToGCSWithJSON(ctx, accessInfo, reader)
		if err != nil {
			return fmt.Errorf("failed to upload to GCS: %w", err)
		}
	case "sftp":
		err := UploadToSFTPWithCreds(ctx, accessInfo, reader)
		if err != nil {
			return fmt.Errorf("failed to upload to SFTP: %w", err)
		}
	default:
		return fmt.Errorf("unknown backend type: %s", backendType)
	}
	return nil
}

// CredentialsLookup returns the stored credentials for a key.
type CredentialsLookup func(key string) (map[string]string, error)

// Publisher copies rendition files to every configured destination.
type Publisher struct {
	destinations []config.Destination
	credentials  CredentialsLookup
	write        func(ctx context.Context, accessInfo map[string]string, reader io.Reader, backendType string) error
}

func NewPublisher(destinations []config.Destination, credentials CredentialsLookup) *Publisher {
	return &Publisher{destinations: destinations, credentials: credentials, write: WriteImage}
}

// Publish writes file to each destination in order and stops at the first failure.
func (p *Publisher) Publish(ctx context.Context, asset *models.Asset, file string) error {
	for _, dest := range p.destinations {
		select {
		case <-ctx.Done():
			return fmt.Errorf("publishing cancelled: %w", ctx.Err())
		default:
		}

		accessInfo, err := p.prepareAccessInfo(dest, asset, filepath.Base(file))
		if err != nil {
			return err
		}

		reader, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open file %s: %w", file, err)
		}
		err = p.write(ctx, accessInfo, reader, dest.Type)
		reader.Close()
		if err != nil {
			return fmt.Errorf("failed to write %s to %s: %w", filepath.Base(file), dest.Type, err)
		}
	}
	return nil
}

// prepareAccessInfo merges stored credentials with the per-file location keys
// each backend expects.
func (p *Publisher) prepareAccessInfo(dest config.Destination, asset *models.Asset, filename string) (map[string]string, error) {
	accessInfo := make(map[string]string)

	if dest.CredentialsKey != "" {
		if p.credentials == nil {
			return nil, fmt.Errorf("no credentials store for destination %s", dest.Type)
		}
		creds, err := p.credentials(dest.CredentialsKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load credentials %s: %w", dest.CredentialsKey, err)
		}
		for k, v := range creds {
			accessInfo[k] = v
		}
	}

	folder := path.Join(dest.Folder, asset.ID)
	objectKey := path.Join(folder, filename)
	accessInfo["filename"] = filename
	accessInfo["folder"] = folder

	switch dest.Type {
	case "directServe":
		accessInfo["baseDir"] = config.GetDirectServeBaseDir()
	case "s3":
		accessInfo["key"] = objectKey
	case "gcs":
		accessInfo["object"] = objectKey
	case "sftp":
		accessInfo["remotePath"] = path.Join(accessInfo["remotePath"], objectKey)
	}
	return accessInfo, nil
}
