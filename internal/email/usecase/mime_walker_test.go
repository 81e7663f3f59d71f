package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	emaildomain "maildigest-backend/internal/email/domain"
)

func walkerUsecase(provider *fakeProvider) *hydrationUsecase {
	return &hydrationUsecase{provider: provider}
}

func TestFlattenPartsDepthFirstOrder(t *testing.T) {
	u := walkerUsecase(&fakeProvider{})

	root := &emaildomain.RawPart{
		MimeType: "multipart/mixed",
		Parts: []*emaildomain.RawPart{
			{
				MimeType: "multipart/alternative",
				Parts: []*emaildomain.RawPart{
					{MimeType: "text/plain", Body: &emaildomain.RawBody{Data: encodeBody("plain")}},
					{MimeType: "text/html", Body: &emaildomain.RawBody{Data: encodeBody("<p>html</p>")}},
				},
			},
			{MimeType: "image/png", Filename: "logo.png", Body: &emaildomain.RawBody{AttachmentID: "att-1"}},
		},
	}

	parts := u.flattenParts(context.Background(), "user-1", "m1", root, false)

	require.Len(t, parts, 3)
	assert.Equal(t, "text/plain", parts[0].mimeType)
	assert.Equal(t, []byte("plain"), parts[0].data)
	assert.Equal(t, "text/html", parts[1].mimeType)
	assert.Equal(t, "logo.png", parts[2].filename)
	assert.True(t, parts[2].isAttachment())
}

func TestFlattenPartsDownloadsAttachmentBytes(t *testing.T) {
	provider := &fakeProvider{attachments: map[string][]byte{"att-1": []byte("real bytes")}}
	u := walkerUsecase(provider)

	root := &emaildomain.RawPart{
		MimeType: "application/pdf",
		Filename: "doc.pdf",
		Body:     &emaildomain.RawBody{AttachmentID: "att-1", Data: encodeBody("inline stub")},
	}

	parts := u.flattenParts(context.Background(), "user-1", "m1", root, true)

	require.Len(t, parts, 1)
	assert.Equal(t, []byte("real bytes"), parts[0].data, "downloaded bytes replace the inline stub")
}

func TestFlattenPartsKeepsInlineDataOnDownloadFailure(t *testing.T) {
	// Provider has no such attachment; the inline payload survives.
	u := walkerUsecase(&fakeProvider{})

	root := &emaildomain.RawPart{
		MimeType: "application/pdf",
		Filename: "doc.pdf",
		Body:     &emaildomain.RawBody{AttachmentID: "att-missing", Data: encodeBody("inline fallback")},
	}

	parts := u.flattenParts(context.Background(), "user-1", "m1", root, true)

	require.Len(t, parts, 1)
	assert.Equal(t, []byte("inline fallback"), parts[0].data)
}

func TestFlattenPartsNilAndEmpty(t *testing.T) {
	u := walkerUsecase(&fakeProvider{})

	assert.Nil(t, u.flattenParts(context.Background(), "user-1", "m1", nil, true))

	leaf := &emaildomain.RawPart{MimeType: "text/plain"}
	parts := u.flattenParts(context.Background(), "user-1", "m1", leaf, true)
	require.Len(t, parts, 1)
	assert.Nil(t, parts[0].data)
}

func TestDecodeInlineData(t *testing.T) {
	assert.Nil(t, decodeInlineData(""))
	assert.Nil(t, decodeInlineData("not base64!!!"))
	assert.Equal(t, []byte("hello"), decodeInlineData(encodeBody("hello")))
}
