package port

import (
	"context"
	"io"

	"github.com/garyjia/billed/internal/domain/entity"
)

// Upload is a receipt file sent to the store before its bill is created
type Upload struct {
	FileName    string
	ContentType string
	Email       string
	Content     io.Reader
}

// UploadedFile is the store's reference to a persisted receipt
type UploadedFile struct {
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
}

// BillStore is the remote store the controllers read bills from and write
// them to. Error messages are displayed verbatim, so implementations keep
// them stable (e.g. "Erreur 404", "Erreur 500").
type BillStore interface {
	List(ctx context.Context) ([]*entity.Bill, error)
	Create(ctx context.Context, bill *entity.Bill) ([]*entity.Bill, error)
	Update(ctx context.Context, bill *entity.Bill) (*entity.Bill, error)
	Upload(ctx context.Context, upload Upload) (*UploadedFile, error)
}

// BillRepository defines persistence operations for Bill
type BillRepository interface {
	Create(ctx context.Context, bill *entity.Bill) error
	GetByID(ctx context.Context, id string) (*entity.Bill, error)
	List(ctx context.Context) ([]*entity.Bill, error)
	Update(ctx context.Context, bill *entity.Bill) error
}

// FileStorage defines receipt file storage operations
type FileStorage interface {
	Save(ctx context.Context, path string, content []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) bool
	Delete(ctx context.Context, path string) error
}

// TransactionManager runs fn in a transaction carried by the context
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
