package domain

import "io"

// Image описывает файл фотографии, который хранится в S3-совместимом хранилище
type Image struct {
	ID          string // uuid
	Bucket      string
	ObjectKey   string
	Body        io.Reader
	Size        int64 // -1, если размер неизвестен
	ContentType string
}

func NewImage(id string, bucket string, objectKey string, body io.Reader, size int64, contentType string) *Image {
	return &Image{
		ID:          id,
		Bucket:      bucket,
		ObjectKey:   objectKey,
		Body:        body,
		Size:        size,
		ContentType: contentType,
	}
}
