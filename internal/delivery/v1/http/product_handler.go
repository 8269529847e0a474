package http

import (
	"net/http"
	"strings"

	"github.com/DRSN-tech/catalog-admin/internal/cfg"
	"github.com/DRSN-tech/catalog-admin/internal/usecase"
	"github.com/DRSN-tech/catalog-admin/pkg/logger"
)

const maxMemory = 32 << 20

type ProductHandler struct {
	productUsecase usecase.ProductUC
	catalogUsecase usecase.CatalogUC
	photos         usecase.PhotoStorage
	cfg            *cfg.HTTPConfig
	dev            bool
	logger         logger.Logger
}

func NewProductHandler(
	productUsecase usecase.ProductUC,
	catalogUsecase usecase.CatalogUC,
	photos usecase.PhotoStorage,
	cfg *cfg.HTTPConfig,
	dev bool,
	logger logger.Logger,
) *ProductHandler {
	return &ProductHandler{
		productUsecase: productUsecase,
		catalogUsecase: catalogUsecase,
		photos:         photos,
		cfg:            cfg,
		dev:            dev,
		logger:         logger,
	}
}

// productPayload — разобранный запрос на запись товара.
type productPayload struct {
	id          int64
	fields      usecase.ProductFields
	paths       []string // уже загруженные пути, идут перед новыми файлами
	uploads     []usecase.PhotoUpload
	photosGiven bool
}

// listProducts
//
//	@Summary		Список товаров
//	@Description	Товары с фото, новые первыми. Фильтры необязательны.
//	@Tags			products
//	@Produce		json
//	@Param			category_id		query		int		false	"Категория"
//	@Param			manufacturer_id	query		int		false	"Производитель"
//	@Success		200				{array}		ProductResponse
//	@Failure		400				{object}	ErrorResponse	"Некорректный фильтр"
//	@Router			/products [get]
func (p *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	categoryID, err := queryID(r, "category_id")
	if err != nil {
		p.fail(w, r, err)
		return
	}
	manufacturerID, err := queryID(r, "manufacturer_id")
	if err != nil {
		p.fail(w, r, err)
		return
	}

	products, err := p.productUsecase.ListProducts(r.Context(), usecase.ProductFilter{
		CategoryID:     categoryID,
		ManufacturerID: manufacturerID,
	})
	if err != nil {
		p.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponses(products))
}

// getProduct
//
//	@Summary	Товар по id
//	@Tags		products
//	@Produce	json
//	@Param		id	path		int	true	"ID товара"
//	@Success	200	{object}	ProductResponse
//	@Failure	404	{object}	ErrorResponse	"Товар не найден"
//	@Router		/products/{id} [get]
func (p *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	product, err := p.productUsecase.GetProduct(r.Context(), id)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// nextProductID возвращает наименьший свободный id. Значение не резервируется.
//
//	@Summary	Наименьший свободный id товара
//	@Tags		products
//	@Produce	json
//	@Success	200	{object}	map[string]int64
//	@Router		/products/next-id [get]
func (p *ProductHandler) nextProductID(w http.ResponseWriter, r *http.Request) {
	id, err := p.productUsecase.NextProductID(r.Context())
	if err != nil {
		p.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]int64{"next_id": id})
}

// createProduct принимает multipart/form-data (поля + файлы photos) или JSON (поля + пути photos).
//
//	@Summary		Создание товара
//	@Description	Товар и его фото сохраняются одной транзакцией. Фото идут в порядке загрузки.
//	@Tags			products
//	@Accept			multipart/form-data
//	@Accept			json
//	@Produce		json
//	@Param			name			formData	string	true	"Название"
//	@Param			description		formData	string	false	"Описание"
//	@Param			price			formData	number	true	"Цена, не более двух знаков после запятой"
//	@Param			category_id		formData	int		true	"Категория"
//	@Param			manufacturer_id	formData	int		true	"Производитель"
//	@Param			id				formData	int		false	"Заранее выделенный id"
//	@Param			photos			formData	file	false	"Фото товара"
//	@Success		201				{object}	ProductResponse
//	@Failure		400				{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		409				{object}	ErrorResponse	"id уже занят"
//	@Failure		422				{object}	ErrorResponse	"Неизвестная категория или производитель"
//	@Router			/products [post]
func (p *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	payload, err := p.readProductPayload(w, r)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	uploaded, err := p.savePhotos(r, payload)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	product, err := p.productUsecase.CreateProduct(r.Context(), &usecase.CreateProductReq{
		ProductFields: payload.fields,
		ID:            payload.id,
		PhotoPaths:    append(payload.paths, uploaded...),
	})
	if err != nil {
		p.photos.CleanupPhotos(uploaded)
		p.fail(w, r, err)
		return
	}

	p.logger.Infof("product created: id=%d photos=%d", product.ID, len(product.Photos))
	WriteSuccess(w, http.StatusCreated, toProductResponse(product))
}

// updateProduct перезаписывает поля товара. Набор фото заменяется, только если запрос
// содержит файлы photos или поле photos/photo_paths.
//
//	@Summary	Обновление товара
//	@Tags		products
//	@Accept		multipart/form-data
//	@Accept		json
//	@Produce	json
//	@Param		id				path		int		true	"ID товара"
//	@Param		name			formData	string	true	"Название"
//	@Param		price			formData	number	true	"Цена"
//	@Param		category_id		formData	int		true	"Категория"
//	@Param		manufacturer_id	formData	int		true	"Производитель"
//	@Param		photo_paths		formData	string	false	"Оставляемые пути фото"
//	@Param		photos			formData	file	false	"Новые фото"
//	@Success	200				{object}	ProductResponse
//	@Failure	404				{object}	ErrorResponse	"Товар не найден"
//	@Failure	422				{object}	ErrorResponse	"Неизвестная категория или производитель"
//	@Router		/products/{id} [put]
func (p *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	payload, err := p.readProductPayload(w, r)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	uploaded, err := p.savePhotos(r, payload)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	paths := append(payload.paths, uploaded...)
	if paths == nil {
		paths = []string{}
	}

	product, err := p.productUsecase.UpdateProduct(r.Context(), &usecase.UpdateProductReq{
		ProductFields: payload.fields,
		ID:            id,
		ReplacePhotos: payload.photosGiven,
		PhotoPaths:    paths,
	})
	if err != nil {
		p.photos.CleanupPhotos(uploaded)
		p.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// deleteProduct
//
//	@Summary	Удаление товара вместе с фото
//	@Tags		products
//	@Produce	json
//	@Param		id	path		int	true	"ID товара"
//	@Success	200	{object}	map[string]bool
//	@Failure	404	{object}	ErrorResponse	"Товар не найден"
//	@Router		/products/{id} [delete]
func (p *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	if err := p.productUsecase.DeleteProduct(r.Context(), id); err != nil {
		p.fail(w, r, err)
		return
	}

	p.logger.Infof("product deleted: id=%d", id)
	WriteSuccess(w, http.StatusOK, map[string]bool{"success": true})
}

// listCategoryRows отдаёт справочник категорий без счётчиков (для форм товара).
func (p *ProductHandler) listCategoryRows(w http.ResponseWriter, r *http.Request) {
	categories, err := p.catalogUsecase.ListCategories(r.Context())
	if err != nil {
		p.fail(w, r, err)
		return
	}

	rows := make([]referenceRow, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, referenceRow{ID: c.ID, Name: c.Name, Description: c.Description})
	}
	WriteSuccess(w, http.StatusOK, rows)
}

func (p *ProductHandler) listManufacturerRows(w http.ResponseWriter, r *http.Request) {
	manufacturers, err := p.catalogUsecase.ListManufacturers(r.Context())
	if err != nil {
		p.fail(w, r, err)
		return
	}

	rows := make([]referenceRow, 0, len(manufacturers))
	for _, m := range manufacturers {
		rows = append(rows, referenceRow{ID: m.ID, Name: m.Name, Description: m.Description})
	}
	WriteSuccess(w, http.StatusOK, rows)
}

func (p *ProductHandler) readProductPayload(w http.ResponseWriter, r *http.Request) (*productPayload, error) {
	maxBody := int64(p.cfg.MaxImagesCount)*p.cfg.MaxImageSize + maxMemory
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if !isMultipart(r) {
		var in productInput
		if err := decodeJSON(r, &in); err != nil {
			return nil, err
		}

		return &productPayload{
			id: in.ID,
			fields: usecase.ProductFields{
				Name:           in.Name,
				Description:    in.Description,
				Price:          in.Price,
				CategoryID:     in.CategoryID,
				ManufacturerID: in.ManufacturerID,
			},
			paths:       in.Photos,
			photosGiven: in.Photos != nil,
		}, nil
	}

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		return nil, err
	}

	price, err := parsePrice(r.FormValue("price"))
	if err != nil {
		return nil, err
	}
	categoryID, err := parseFormID(r.FormValue("category_id"))
	if err != nil {
		return nil, err
	}
	manufacturerID, err := parseFormID(r.FormValue("manufacturer_id"))
	if err != nil {
		return nil, err
	}
	id, err := parseFormID(r.FormValue("id"))
	if err != nil {
		return nil, err
	}

	var description *string
	if d := strings.TrimSpace(r.FormValue("description")); d != "" {
		description = &d
	}

	files := r.MultipartForm.File["photos"]
	uploads, err := parseImages(files, p.cfg.MaxImagesCount, p.cfg.MaxImageSize)
	if err != nil {
		return nil, err
	}

	paths, pathsGiven := r.MultipartForm.Value["photo_paths"]

	return &productPayload{
		id: id,
		fields: usecase.ProductFields{
			Name:           strings.TrimSpace(r.FormValue("name")),
			Description:    description,
			Price:          price,
			CategoryID:     categoryID,
			ManufacturerID: manufacturerID,
		},
		paths:       paths,
		uploads:     uploads,
		photosGiven: pathsGiven || len(files) > 0,
	}, nil
}

func (p *ProductHandler) savePhotos(r *http.Request, payload *productPayload) ([]string, error) {
	if len(payload.uploads) == 0 {
		return nil, nil
	}

	return p.photos.SavePhotos(r.Context(), payload.uploads)
}

func (p *ProductHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	logFailure(p.logger, r, err)
	WriteError(w, err, p.dev)
}

// logFailure пишет 5xx как ошибку, остальное предупреждением.
func logFailure(log logger.Logger, r *http.Request, err error) {
	code, _ := ToHTTPResponse(err)
	if code >= http.StatusInternalServerError {
		log.Errorf(err, "%s %s -> %d", r.Method, r.URL.Path, code)
		return
	}
	log.Warnf("%s %s -> %d: %v", r.Method, r.URL.Path, code, err)
}
