package utils

import (
	"bytes"
	"context"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

// SupabaseStorage upload file export lên một bucket Supabase.
type SupabaseStorage struct {
	client *storage.Client
	bucket string
}

func NewSupabaseStorage(supabaseURL, key, bucket string) *SupabaseStorage {
	client := storage.NewClient(strings.TrimRight(supabaseURL, "/")+"/storage/v1", key, nil)
	return &SupabaseStorage{client: client, bucket: bucket}
}

// Upload ghi đè nếu object đã tồn tại và trả về URL công khai.
// storage-go không nhận context nên ctx chỉ được kiểm tra trước khi gửi.
func (s *SupabaseStorage) Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	upsert := true
	options := storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}
	if _, err := s.client.UploadFile(s.bucket, objectPath, bytes.NewReader(data), options); err != nil {
		return "", err
	}

	publicURL := s.client.GetPublicUrl(s.bucket, objectPath)
	return publicURL.SignedURL, nil
}
