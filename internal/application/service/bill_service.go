package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

// DefaultMaxUploadSize caps a receipt upload at 10 MiB
const DefaultMaxUploadSize int64 = 10 << 20

var (
	// ErrUploadTooLarge is returned when a receipt exceeds the configured size
	ErrUploadTooLarge = errors.New("receipt exceeds maximum upload size")

	// ErrEmptyUpload is returned for a receipt without content
	ErrEmptyUpload = errors.New("receipt is empty")

	// ErrUnsupportedReceipt is returned for a receipt that is not a jpg, png, gif or pdf
	ErrUnsupportedReceipt = errors.New("unsupported receipt type")

	// ErrUnknownReceipt is returned when a bill references a local file that was never uploaded
	ErrUnknownReceipt = errors.New("receipt file not found")
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// KeyFunc builds the storage key of a receipt from its owner, a fresh id
// and the uploaded file name
type KeyFunc func(owner, id, fileName string) string

// BillServiceConfig tunes the in-process bill store
type BillServiceConfig struct {
	// FileURLPrefix is prepended to storage keys to form the public receipt URL
	FileURLPrefix string
	MaxUploadSize int64
	Key           KeyFunc
	NewID         func() string
}

// BillService is the bill store backed by the local database and file storage
type BillService interface {
	port.BillStore
	Get(ctx context.Context, id string) (*entity.Bill, error)
}

type billServiceImpl struct {
	repo      port.BillRepository
	files     port.FileStorage
	txManager port.TransactionManager
	logger    Logger
	cfg       BillServiceConfig
}

// NewBillService creates a new BillService
func NewBillService(
	repo port.BillRepository,
	files port.FileStorage,
	txManager port.TransactionManager,
	logger Logger,
	cfg BillServiceConfig,
) BillService {
	if cfg.FileURLPrefix == "" {
		cfg.FileURLPrefix = "/files/"
	}
	if !strings.HasSuffix(cfg.FileURLPrefix, "/") {
		cfg.FileURLPrefix += "/"
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DefaultMaxUploadSize
	}
	if cfg.Key == nil {
		cfg.Key = func(owner, id, fileName string) string {
			return path.Join("receipts", id+strings.ToLower(filepath.Ext(fileName)))
		}
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &billServiceImpl{
		repo:      repo,
		files:     files,
		txManager: txManager,
		logger:    logger,
		cfg:       cfg,
	}
}

// List returns every stored bill
func (s *billServiceImpl) List(ctx context.Context) ([]*entity.Bill, error) {
	bills, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list bills", "error", err)
		return nil, err
	}
	return bills, nil
}

// Get returns one bill by id
func (s *billServiceImpl) Get(ctx context.Context, id string) (*entity.Bill, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores a new bill and returns the created record. The id is
// assigned here and an empty status defaults to pending.
func (s *billServiceImpl) Create(ctx context.Context, bill *entity.Bill) ([]*entity.Bill, error) {
	created := bill.Clone()
	created.ID = s.cfg.NewID()
	if created.Status == "" {
		created.Status = entity.StatusPending
	}

	if err := created.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkReceipt(ctx, created); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, created); err != nil {
		s.logger.Error("Failed to create bill", "email", created.Email, "error", err)
		return nil, err
	}

	s.logger.Info("Bill created", "id", created.ID, "email", created.Email, "type", created.Type)
	return []*entity.Bill{created}, nil
}

// Update replaces a bill's mutable fields. The owner email never changes.
// A receipt replaced by another one is removed from storage after commit.
func (s *billServiceImpl) Update(ctx context.Context, bill *entity.Bill) (*entity.Bill, error) {
	var updated, previous *entity.Bill

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, bill.ID)
		if err != nil {
			return err
		}

		next := bill.Clone()
		next.Email = existing.Email
		if next.Status == "" {
			next.Status = existing.Status
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if next.FileURL != existing.FileURL {
			if err := s.checkReceipt(txCtx, next); err != nil {
				return err
			}
		}

		if err := s.repo.Update(txCtx, next); err != nil {
			return err
		}
		updated, previous = next, existing
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to update bill", "id", bill.ID, "error", err)
		return nil, err
	}

	if previous.FileURL != updated.FileURL {
		s.removeReceipt(ctx, previous.FileURL)
	}

	s.logger.Info("Bill updated", "id", updated.ID, "status", updated.Status)
	return updated, nil
}

// removeReceipt deletes a local receipt no longer referenced. Failures are
// logged only: the bill is already updated.
func (s *billServiceImpl) removeReceipt(ctx context.Context, fileURL string) {
	key, ok := s.localKey(fileURL)
	if !ok {
		return
	}
	if err := s.files.Delete(ctx, key); err != nil {
		s.logger.Error("Failed to remove replaced receipt", "key", key, "error", err)
		return
	}
	s.logger.Info("Replaced receipt removed", "key", key)
}

// localKey returns the storage key of a receipt URL served by this instance
func (s *billServiceImpl) localKey(fileURL string) (string, bool) {
	if !strings.HasPrefix(fileURL, s.cfg.FileURLPrefix) {
		return "", false
	}
	key := strings.TrimPrefix(fileURL, s.cfg.FileURLPrefix)
	return key, key != ""
}

// Upload stores a receipt under a fresh key and returns its public reference
func (s *billServiceImpl) Upload(ctx context.Context, upload port.Upload) (*port.UploadedFile, error) {
	if upload.Content == nil {
		return nil, ErrEmptyUpload
	}

	content, err := io.ReadAll(io.LimitReader(upload.Content, s.cfg.MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read receipt: %w", err)
	}
	if len(content) == 0 {
		return nil, ErrEmptyUpload
	}
	if int64(len(content)) > s.cfg.MaxUploadSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrUploadTooLarge, s.cfg.MaxUploadSize)
	}

	fileName := filepath.Base(upload.FileName)
	if !entity.IsReceiptFileName(fileName) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedReceipt, fileName)
	}
	mime, ok := entity.SniffReceipt(content)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %s", ErrUnsupportedReceipt, fileName, mime)
	}

	key := s.cfg.Key(upload.Email, s.cfg.NewID(), fileName)
	if err := s.files.Save(ctx, key, content); err != nil {
		s.logger.Error("Failed to store receipt", "file_name", fileName, "error", err)
		return nil, err
	}

	s.logger.Info("Receipt stored",
		"key", key,
		"file_name", fileName,
		"mime", mime,
		"size", len(content))

	return &port.UploadedFile{
		FileURL:  s.cfg.FileURLPrefix + key,
		FileName: fileName,
	}, nil
}

// checkReceipt rejects references into local storage that do not exist.
// External URLs are accepted as is.
func (s *billServiceImpl) checkReceipt(ctx context.Context, bill *entity.Bill) error {
	if !bill.HasFile() {
		return nil
	}
	key, ok := s.localKey(bill.FileURL)
	if !ok {
		return nil
	}
	if !s.files.Exists(ctx, key) {
		return fmt.Errorf("%w: %s", ErrUnknownReceipt, bill.FileURL)
	}
	return nil
}
