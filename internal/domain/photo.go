package domain

// Photo хранит ссылку на файл фотографии товара. Position задаёт порядок внутри товара.
type Photo struct {
	ProductID int64
	Position  int
	PhotoPath string
}

// NewPhotos строит набор фото товара в порядке переданных путей.
func NewPhotos(productID int64, paths []string) []Photo {
	photos := make([]Photo, 0, len(paths))
	for i, path := range paths {
		photos = append(photos, Photo{ProductID: productID, Position: i, PhotoPath: path})
	}

	return photos
}
