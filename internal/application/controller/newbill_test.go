package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/view"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/workflow"
	"github.com/garyjia/billed/internal/views"
)

var (
	jpegBytes = []byte("\xFF\xD8\xFF\xE0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	pdfBytes  = []byte("%PDF-1.4\n%\xE2\xE3\xCF\xD3\n1 0 obj\n<<>>\nendobj\n")
)

func newNewBillController(t *testing.T, store *fakeStore, nav *navigator) (*NewBillController, *fakeDocument) {
	t.Helper()
	doc := newFakeDocument()
	c := NewNewBillController(NewBillDeps{
		Document: doc,
		Navigate: nav.Navigate,
		Store:    store,
		Storage:  employeeKV("johndoe@email.com"),
		Renderer: views.MustNewRenderer(),
	})
	require.NoError(t, c.Activate(context.Background()))
	return c, doc
}

func johnDoeFields() view.FormFields {
	return view.FormFields{
		Type:       entity.TypeHotel,
		Name:       "John Doe",
		Date:       "2004-04-04",
		Amount:     "400",
		VAT:        "80",
		Pct:        "20",
		Commentary: "Séminaire",
	}
}

func TestNewBillController_Activate(t *testing.T) {
	c, doc := newNewBillController(t, &fakeStore{}, &navigator{})

	assert.Equal(t, workflow.StateIdle, c.State())
	assert.Contains(t, doc.Body(), `data-testid="form-new-bill"`)
}

func TestNewBillController_HandleChangeFile(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects disallowed extension", func(t *testing.T) {
		c, doc := newNewBillController(t, &fakeStore{}, &navigator{})

		err := c.HandleChangeFile(ctx, FileChangeEvent{FileName: "notes.txt", Content: []byte("hello")})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "file", verr.Field)
		assert.Equal(t, workflow.StateInvalid, c.State())
		assert.Empty(t, c.Form().FileName)
		assert.Equal(t, entity.MsgInvalidFileType, c.Form().ValidationError)
		assert.Contains(t, doc.Body(), entity.MsgInvalidFileType)
	})

	t.Run("rejects image extension with foreign content", func(t *testing.T) {
		c, _ := newNewBillController(t, &fakeStore{}, &navigator{})

		err := c.HandleChangeFile(ctx, FileChangeEvent{FileName: "fake.jpg", Content: []byte("#!/bin/sh\necho hi\n")})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, workflow.StateInvalid, c.State())
	})

	t.Run("accepts jpeg and clears prior message", func(t *testing.T) {
		c, doc := newNewBillController(t, &fakeStore{}, &navigator{})

		require.Error(t, c.HandleChangeFile(ctx, FileChangeEvent{FileName: "bill.exe"}))
		require.NoError(t, c.HandleChangeFile(ctx, FileChangeEvent{FileName: "Hôtel.jpeg", Content: jpegBytes}))

		assert.Equal(t, workflow.StateValid, c.State())
		assert.Equal(t, "Hôtel.jpeg", c.Form().FileName)
		assert.Empty(t, c.Form().ValidationError)
		assert.NotContains(t, doc.Body(), entity.MsgInvalidFileType)
	})

	t.Run("accepts pdf", func(t *testing.T) {
		c, _ := newNewBillController(t, &fakeStore{}, &navigator{})

		require.NoError(t, c.HandleChangeFile(ctx, FileChangeEvent{FileName: "facture.PDF", Content: pdfBytes}))
		assert.Equal(t, workflow.StateValid, c.State())
	})

	t.Run("rejects zero byte file", func(t *testing.T) {
		c, doc := newNewBillController(t, &fakeStore{}, &navigator{})

		err := c.HandleChangeFile(ctx, FileChangeEvent{FileName: "x.jpg", ContentType: "image/jpeg", Content: []byte{}})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, workflow.StateInvalid, c.State())
		assert.Contains(t, doc.Body(), entity.MsgInvalidFileType)
	})

	t.Run("accepts by name when content is unknown", func(t *testing.T) {
		c, _ := newNewBillController(t, &fakeStore{}, &navigator{})

		require.NoError(t, c.HandleChangeFile(ctx, FileChangeEvent{FileName: "scan.png", ContentType: "image/png"}))
		assert.Equal(t, workflow.StateValid, c.State())
	})

	t.Run("invalid file after valid one unstages it", func(t *testing.T) {
		store := &fakeStore{}
		c, _ := newNewBillController(t, store, &navigator{})

		require.NoError(t, c.HandleChangeFile(ctx, FileChangeEvent{FileName: "a.jpg", Content: jpegBytes}))
		require.Error(t, c.HandleChangeFile(ctx, FileChangeEvent{FileName: "a.doc"}))

		err := c.HandleSubmit(ctx, SubmitEvent{Fields: johnDoeFields()})
		assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
		assert.Empty(t, store.Calls())
	})
}

func TestNewBillController_HandleSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("uploads then creates then navigates", func(t *testing.T) {
		store := &fakeStore{}
		nav := &navigator{}
		c, _ := newNewBillController(t, store, nav)

		require.NoError(t, c.HandleChangeFile(ctx, FileChangeEvent{FileName: "Hôtel.jpeg", Content: jpegBytes}))
		require.NoError(t, c.HandleSubmit(ctx, SubmitEvent{Fields: johnDoeFields()}))

		assert.Equal(t, []string{"upload", "create"}, store.Calls())
		assert.Equal(t, []string{entity.RouteBills}, nav.Routes())
		assert.Equal(t, workflow.StateDone, c.State())
		assert.Equal(t, jpegBytes, store.uploaded[0])

		require.Len(t, store.created, 1)
		created := store.created[0]
		assert.Equal(t, &entity.Bill{
			Email:        "johndoe@email.com",
			Type:         entity.TypeHotel,
			Name:         "John Doe",
			Date:         "2004-04-04",
			Amount:       400,
			VAT:          "80",
			Pct:          20,
			Commentary:   "Séminaire",
			FileURL:      "/files/Hôtel.jpeg",
			FileName:     "Hôtel.jpeg",
			Status:       entity.StatusPending,
			CommentAdmin: "",
		}, created)
	})

	t.Run("submit without staged file never reaches the store", func(t *testing.T) {
		store := &fakeStore{}
		nav := &navigator{}
		c, _ := newNewBillController(t, store, nav)

		err := c.HandleSubmit(ctx, SubmitEvent{Fields: johnDoeFields()})

		assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
		assert.Empty(t, store.Calls())
		assert.Empty(t, nav.Routes())
	})

	t.Run("invalid pct falls back to default", func(t *testing.T) {
		store := &fakeStore{}
		c, _ := newNewBillController(t, store, &navigator{})
		fields := johnDoeFields()
		fields.Pct = ""

		require.NoError(t, c.HandleChangeFile(ctx, FileChangeEvent{FileName: "a.jpg", Content: jpegBytes}))
		require.NoError(t, c.HandleSubmit(ctx, SubmitEvent{Fields: fields}))

		assert.Equal(t, entity.DefaultPct, store.created[0].Pct)
	})

	t.Run("invalid amount is a validation error", func(t *testing.T) {
		store := &fakeStore{}
		c, doc := newNewBillController(t, store, &navigator{})
		fields := johnDoeFields()
		fields.Amount = "quatre cents"

		require.NoError(t, c.HandleChangeFile(ctx, FileChangeEvent{FileName: "a.jpg", Content: jpegBytes}))
		err := c.HandleSubmit(ctx, SubmitEvent{Fields: fields})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "amount", verr.Field)
		assert.Equal(t, workflow.StateValid, c.State())
		assert.Empty(t, store.Calls())
		assert.Contains(t, doc.Body(), "quatre cents")
	})

	t.Run("invalid date is a validation error", func(t *testing.T) {
		store := &fakeStore{}
		c, _ := newNewBillController(t, store, &navigator{})
		fields := johnDoeFields()
		fields.Date = "2004-02-31"

		require.NoError(t, c.HandleChangeFile(ctx, FileChangeEvent{FileName: "a.jpg", Content: jpegBytes}))
		err := c.HandleSubmit(ctx, SubmitEvent{Fields: fields})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "date", verr.Field)
	})

	t.Run("upload failure stops before create", func(t *testing.T) {
		store := &fakeStore{uploadFunc: func(ctx context.Context, upload port.Upload) (*port.UploadedFile, error) {
			return nil, errors.New("Erreur 500")
		}}
		nav := &navigator{}
		c, _ := newNewBillController(t, store, nav)

		require.NoError(t, c.HandleChangeFile(ctx, FileChangeEvent{FileName: "a.jpg", Content: jpegBytes}))
		err := c.HandleSubmit(ctx, SubmitEvent{Fields: johnDoeFields()})

		var serr *SubmissionError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, StageUpload, serr.Stage)
		assert.EqualError(t, serr.Unwrap(), "Erreur 500")
		assert.Equal(t, []string{"upload"}, store.Calls())
		assert.Equal(t, workflow.StateFailed, c.State())
		assert.Empty(t, nav.Routes())
	})

	t.Run("create failure then manual resubmit", func(t *testing.T) {
		attempts := 0
		store := &fakeStore{}
		store.createFunc = func(ctx context.Context, bill *entity.Bill) ([]*entity.Bill, error) {
			attempts++
			if attempts == 1 {
				return nil, errors.New("Erreur 404")
			}
			return []*entity.Bill{bill}, nil
		}
		nav := &navigator{}
		c, _ := newNewBillController(t, store, nav)

		require.NoError(t, c.HandleChangeFile(ctx, FileChangeEvent{FileName: "a.jpg", Content: jpegBytes}))

		err := c.HandleSubmit(ctx, SubmitEvent{Fields: johnDoeFields()})
		var serr *SubmissionError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, StageCreate, serr.Stage)
		assert.Equal(t, workflow.StateFailed, c.State())
		assert.Equal(t, []string{"upload", "create"}, store.Calls(), "no automatic retry")

		require.NoError(t, c.HandleSubmit(ctx, SubmitEvent{Fields: johnDoeFields()}))
		assert.Equal(t, []string{"upload", "create", "create"}, store.Calls(), "the stored receipt is reused")
		assert.Len(t, store.uploaded, 1)
		assert.Equal(t, []string{entity.RouteBills}, nav.Routes())
	})

	t.Run("new file after failure is uploaded again", func(t *testing.T) {
		attempts := 0
		store := &fakeStore{}
		store.createFunc = func(ctx context.Context, bill *entity.Bill) ([]*entity.Bill, error) {
			attempts++
			if attempts == 1 {
				return nil, errors.New("Erreur 500")
			}
			return []*entity.Bill{bill}, nil
		}
		c, _ := newNewBillController(t, store, &navigator{})

		require.NoError(t, c.HandleChangeFile(ctx, FileChangeEvent{FileName: "a.jpg", Content: jpegBytes}))
		require.Error(t, c.HandleSubmit(ctx, SubmitEvent{Fields: johnDoeFields()}))

		require.NoError(t, c.HandleChangeFile(ctx, FileChangeEvent{FileName: "b.pdf", Content: pdfBytes}))
		require.NoError(t, c.HandleSubmit(ctx, SubmitEvent{Fields: johnDoeFields()}))

		assert.Equal(t, []string{"upload", "create", "upload", "create"}, store.Calls())
		assert.Equal(t, pdfBytes, store.uploaded[1])
	})

	t.Run("done form accepts no further events", func(t *testing.T) {
		store := &fakeStore{}
		c, _ := newNewBillController(t, store, &navigator{})

		require.NoError(t, c.HandleChangeFile(ctx, FileChangeEvent{FileName: "a.jpg", Content: jpegBytes}))
		require.NoError(t, c.HandleSubmit(ctx, SubmitEvent{Fields: johnDoeFields()}))

		assert.ErrorIs(t, c.HandleChangeFile(ctx, FileChangeEvent{FileName: "b.jpg"}), workflow.ErrInvalidTransition)
		assert.ErrorIs(t, c.HandleSubmit(ctx, SubmitEvent{Fields: johnDoeFields()}), workflow.ErrInvalidTransition)
	})
}
