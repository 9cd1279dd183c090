package property

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Rizwanwaseer11/homerental/model"
	ps "github.com/Rizwanwaseer11/homerental/service/property"
)

type Controller struct {
	Svc       ps.Service
	V         *validator.Validate
	Log       *slog.Logger
	UploadDir string
}

// POST /v1/properties  (owner)
func (h *Controller) Create(c echo.Context) error {
	role, _ := c.Get("role").(string)
	if role != "owner" {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "owners only"})
	}

	var req CreatePropertyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	p := toModel(uid, req)
	if err := h.Svc.Create(c.Request().Context(), p); err != nil {
		if ps.Code(err) == ps.ErrBadInput {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		}
		h.Log.Error("property create", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, p)
}

// GET /v1/properties
func (h *Controller) List(c echo.Context) error {
	q := ps.ListQuery{
		Q:        c.QueryParam("q"),
		City:     c.QueryParam("city"),
		Category: c.QueryParam("category"),
		ViewAll:  c.QueryParam("view_all") != "",
	}
	q.MinPrice, _ = strconv.ParseFloat(c.QueryParam("min_price"), 64)
	q.MaxPrice, _ = strconv.ParseFloat(c.QueryParam("max_price"), 64)
	q.Page, _ = strconv.Atoi(c.QueryParam("page"))

	// Both set only when the request carried a valid token.
	if uid, ok := c.Get("user_id").(int64); ok {
		q.ViewerID = uid
	}
	if role, ok := c.Get("role").(string); ok {
		q.ViewerRole = model.Role(role)
	}

	page, err := h.Svc.List(c.Request().Context(), q)
	if err != nil {
		h.Log.Error("property list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, page)
}

// GET /v1/properties/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	p, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		if ps.Code(err) == ps.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "property not found"})
		}
		h.Log.Error("property detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, p)
}

// PUT /v1/properties/:id  (owner)
func (h *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req CreatePropertyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	p := toModel(uid, req)
	p.ID = id
	if err := h.Svc.Update(c.Request().Context(), uid, p); err != nil {
		return h.mapErr(c, "property update", err)
	}
	return c.JSON(http.StatusOK, p)
}

// DELETE /v1/properties/:id  (owner)
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Delete(c.Request().Context(), uid, id); err != nil {
		return h.mapErr(c, "property delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// POST /v1/properties/:id/images  (owner, multipart)
func (h *Controller) UploadImages(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "multipart form expected"})
	}
	files := form.File["images"]
	if len(files) == 0 || len(files) > 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "between 1 and 8 images required"})
	}

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		h.Log.Error("upload dir", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}

	var paths []string
	for _, fh := range files {
		name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(fh.Filename))
		dst := filepath.Join(h.UploadDir, name)
		if err := saveFile(fh, dst); err != nil {
			h.Log.Error("image save", "file", fh.Filename, "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
		paths = append(paths, "/uploads/"+name)
	}

	if err := h.Svc.AddImages(c.Request().Context(), uid, id, paths); err != nil {
		return h.mapErr(c, "property images", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"images": paths})
}

func (h *Controller) mapErr(c echo.Context, op string, err error) error {
	switch ps.Code(err) {
	case ps.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "property not found"})
	case ps.ErrNotOwner:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "not allowed"})
	case ps.ErrBadInput:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

func toModel(ownerID int64, req CreatePropertyReq) *model.Property {
	return &model.Property{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		RentType:    req.RentType,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Amenities:   req.Amenities,
		Location: model.Location{
			City:         req.Location.City,
			State:        req.Location.State,
			Address:      req.Location.Address,
			FullLocation: req.Location.FullLocation,
		},
		Images:   req.Images,
		Featured: req.Featured,
	}
}

func saveFile(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}
