// Package storage provides object storage for exported registry reports.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/objectregistry/pkg/config"
	"github.com/objectregistry/pkg/errors"
)

// Storage defines the interface for object storage operations.
type Storage interface {
	// Upload stores the data from reader under key with the given content type.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Download opens the object stored under key.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete deletes the object at the specified key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists at the specified key.
	Exists(ctx context.Context, key string) (bool, error)

	// List returns the keys under prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)

	// GetURL returns the URL for the specified key (if applicable).
	GetURL(key string) string
}

// StorageType represents the type of storage backend.
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeCOS   StorageType = "cos"
)

// NewStorage creates a new Storage instance based on the configuration.
func NewStorage(cfg *config.StorageConfig) (Storage, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	switch StorageType(cfg.Type) {
	case StorageTypeCOS:
		return NewCOSStorage(&COSConfig{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
			Domain:    cfg.Domain,
			Scheme:    cfg.Scheme,
			Endpoint:  cfg.Endpoint,
		})
	default:
		return NewLocalStorage(cfg.LocalPath)
	}
}

// ValidateConfig checks that cfg names a supported backend with the settings
// that backend needs. An empty type means local.
func ValidateConfig(cfg *config.StorageConfig) error {
	if cfg == nil {
		return errors.New(errors.CodeConfigError, "storage config is nil")
	}

	switch StorageType(cfg.Type) {
	case "", StorageTypeLocal:
		if cfg.LocalPath == "" {
			return errors.New(errors.CodeConfigError, "local storage path is required")
		}
	case StorageTypeCOS:
		switch {
		case cfg.Bucket == "":
			return errors.New(errors.CodeConfigError, "COS bucket is required")
		case cfg.Region == "" && cfg.Endpoint == "":
			// a custom endpoint carries its own region
			return errors.New(errors.CodeConfigError, "COS region is required")
		case cfg.SecretID == "" || cfg.SecretKey == "":
			return errors.New(errors.CodeConfigError, "COS credentials are required")
		}
	default:
		return errors.Newf(errors.CodeConfigError, "unsupported storage type: %q", cfg.Type)
	}
	return nil
}

// ReportKey returns the object key for a report of the given kind, such as
// "population" or "maintenance", with the encoding's file extension.
func ReportKey(runUUID, kind, ext string) string {
	return path.Join("reports", runUUID, kind+ext)
}

// cleanKey rejects keys that would escape the storage root.
func cleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || strings.HasPrefix(key, "/") || cleaned != key {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return cleaned, nil
}
