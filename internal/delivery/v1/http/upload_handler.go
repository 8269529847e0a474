package http

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/DRSN-tech/catalog-admin/internal/cfg"
	"github.com/DRSN-tech/catalog-admin/internal/usecase"
	"github.com/DRSN-tech/catalog-admin/pkg/e"
	"github.com/DRSN-tech/catalog-admin/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// UploadHandler принимает отдельные файлы и отдаёт сохранённые фото.
type UploadHandler struct {
	photos usecase.PhotoStorage
	cfg    *cfg.HTTPConfig
	dev    bool
	logger logger.Logger
}

func NewUploadHandler(photos usecase.PhotoStorage, cfg *cfg.HTTPConfig, dev bool, logger logger.Logger) *UploadHandler {
	return &UploadHandler{photos: photos, cfg: cfg, dev: dev, logger: logger}
}

// upload сохраняет один файл из поля image и возвращает его путь.
// Путь затем передаётся в photos при создании или обновлении товара.
func (u *UploadHandler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, u.cfg.MaxImageSize+maxMemory)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		u.fail(w, r, err)
		return
	}

	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		u.fail(w, r, e.ErrNoImages)
		return
	}

	images, err := parseImages(files[:1], 1, u.cfg.MaxImageSize)
	if err != nil {
		u.fail(w, r, err)
		return
	}

	paths, err := u.photos.SavePhotos(r.Context(), images)
	if err != nil {
		u.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, &UploadResponse{
		URL:      paths[0],
		Filename: paths[0][strings.LastIndexByte(paths[0], '/')+1:],
	})
}

// serve отдаёт файл по ключу из пути /uploads/*.
func (u *UploadHandler) serve(w http.ResponseWriter, r *http.Request) {
	obj, err := u.photos.OpenPhoto(r.Context(), chi.URLParam(r, "*"))
	if err != nil {
		u.fail(w, r, err)
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")

	if rs, ok := obj.Body.(io.ReadSeeker); ok {
		http.ServeContent(w, r, "", obj.LastModified, rs)
		return
	}

	if obj.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		u.logger.Warnf("serve %s: %v", r.URL.Path, err)
	}
}

func (u *UploadHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	logFailure(u.logger, r, err)
	WriteError(w, err, u.dev)
}
