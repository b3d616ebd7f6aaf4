package service_test

import (
	"bytes"
	"context"
	"regexp"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/apperror"
	"marketplace/internal/service"
	"marketplace/internal/testsupport"
)

func TestUploadStoresUnderDatedKey(t *testing.T) {
	store := testsupport.NewObjectStore()
	uploads := service.NewUploadService(store, 1<<20, zerolog.Nop())

	ref, err := uploads.Upload(context.Background(), "products", service.ImageUpload{
		Filename:    "Lamp.JPEG",
		ContentType: "image/jpeg",
		Body:        bytes.NewReader(testsupport.JPEG),
	})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^products/\d{4}/\d{2}/\d{2}/[0-9A-Za-z]{27}\.jpg$`), ref.ExternalID)
	assert.Equal(t, "https://cdn.test/"+ref.ExternalID, ref.URL)
	assert.True(t, store.Has(ref.ExternalID))
}

func TestUploadRejections(t *testing.T) {
	cases := map[string]service.ImageUpload{
		"svg extension":     {Filename: "a.svg", Body: bytes.NewReader(testsupport.PNG)},
		"png named jpg":     {Filename: "a.jpg", Body: bytes.NewReader(testsupport.PNG)},
		"declared mismatch": {Filename: "a.png", ContentType: "image/jpeg", Body: bytes.NewReader(testsupport.PNG)},
		"empty file":        {Filename: "a.png", Body: bytes.NewReader(nil)},
		"not an image":      {Filename: "a.png", Body: bytes.NewReader([]byte("hello world"))},
		"too large":         {Filename: "a.png", Body: bytes.NewReader(append(append([]byte{}, testsupport.PNG...), make([]byte, 64)...))},
	}

	for name, upload := range cases {
		t.Run(name, func(t *testing.T) {
			store := testsupport.NewObjectStore()
			uploads := service.NewUploadService(store, int64(len(testsupport.PNG)+8), zerolog.Nop())

			_, err := uploads.Upload(context.Background(), "payments", upload)
			assert.True(t, apperror.Is(err, apperror.Validation), "got %v", err)
			assert.Equal(t, 0, store.Len())
		})
	}
}

func TestRemoveIgnoresEmptyID(t *testing.T) {
	store := testsupport.NewObjectStore()
	uploads := service.NewUploadService(store, 0, zerolog.Nop())

	require.NoError(t, uploads.Remove(context.Background(), ""))
	assert.Empty(t, store.Removed())
}
