package handlers

import (
	"context"
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/gallery"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/models"
	service "github.com/yassinbenelhajlahsen/gallery-sub001/internal/services"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/storage"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/utils"
)

// StatFunc reads object metadata for a stored binary.
type StatFunc func(ctx context.Context, key string) (*storage.ObjectInfo, error)

type Handler struct {
	svc     *service.MediaService
	gallery *gallery.Gallery
	media   service.MediaStore
	resolve gallery.URLResolver
	stat    StatFunc
	maxSize int64
}

func NewHandler(svc *service.MediaService, g *gallery.Gallery, media service.MediaStore, resolve gallery.URLResolver, stat StatFunc, maxSize int64) *Handler {
	return &Handler{svc: svc, gallery: g, media: media, resolve: resolve, stat: stat, maxSize: maxSize}
}

// GET /api/media
func (h *Handler) ListMedia(c *fiber.Ctx) error {
	return utils.JSONSuccess(c, fiber.StatusOK, h.gallery.Media())
}

// GET /api/events
func (h *Handler) ListEvents(c *fiber.Ctx) error {
	return utils.JSONSuccess(c, fiber.StatusOK, h.gallery.Events())
}

// GET /api/search?q=
func (h *Handler) Search(c *fiber.Ctx) error {
	return utils.JSONSuccess(c, fiber.StatusOK, h.gallery.Search(c.Query("q")))
}

// GET /api/media/:kind/:id/url
func (h *Handler) GetSignedURL(c *fiber.Ctx) error {
	kind, ok := models.ParseKind(c.Params("kind"))
	if !ok {
		return utils.JSONError(c, fiber.StatusBadRequest, "unknown media kind")
	}
	item, err := h.media.Get(c.UserContext(), kind, c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	url, err := h.resolve(c.UserContext(), item.FullPath)
	if err != nil {
		return respondErr(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"url": url})
}

// GET /api/admin/media/:kind/:id/info — metadata document plus what the
// object store actually holds, useful for spotting drift after partial runs.
func (h *Handler) MediaInfo(c *fiber.Ctx) error {
	kind, ok := models.ParseKind(c.Params("kind"))
	if !ok {
		return utils.JSONError(c, fiber.StatusBadRequest, "unknown media kind")
	}
	item, err := h.media.Get(c.UserContext(), kind, c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	payload := fiber.Map{"media": item}
	if info, err := h.stat(c.UserContext(), item.FullPath); err == nil {
		payload["object"] = info
	} else if errors.Is(err, utils.ErrNotFound) {
		payload["object"] = nil
	} else {
		return respondErr(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, payload)
}

// POST /api/admin/upload (multipart/form-data)
func (h *Handler) Upload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "multipart form required")
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return utils.JSONError(c, fiber.StatusBadRequest, "no files selected")
	}

	req := service.UploadRequest{
		Date:    formValue(form.Value, "date"),
		EventID: formValue(form.Value, "event_id"),
		Caption: formValue(form.Value, "caption"),
	}
	if title := formValue(form.Value, "event_title"); title != "" && req.EventID == "" {
		req.NewEvent = &service.EventInput{
			Title: title,
			Emoji: formValue(form.Value, "event_emoji"),
			Date:  formValue(form.Value, "event_date"),
		}
	}

	for _, fh := range headers {
		if fh.Size > h.maxSize {
			return utils.JSONError(c, fiber.StatusRequestEntityTooLarge, "file too large: "+fh.Filename)
		}
		f, err := fh.Open()
		if err != nil {
			return utils.JSONError(c, fiber.StatusInternalServerError, "cannot open file")
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return utils.JSONError(c, fiber.StatusInternalServerError, "cannot read file")
		}
		req.Files = append(req.Files, service.UploadFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	res, err := h.svc.Upload(context.WithoutCancel(c.UserContext()), req)
	if err != nil {
		return respondErr(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, res)
}

// POST /api/admin/events
func (h *Handler) CreateEvent(c *fiber.Ctx) error {
	var in service.EventInput
	if err := c.BodyParser(&in); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid body")
	}
	ev, err := h.svc.CreateEvent(c.UserContext(), in)
	if err != nil {
		return respondErr(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, ev)
}

// POST /api/admin/media/:kind/:id/delete — first activation, arms only.
func (h *Handler) ArmDeleteMedia(c *fiber.Ctx) error {
	kind, ok := models.ParseKind(c.Params("kind"))
	if !ok {
		return utils.JSONError(c, fiber.StatusBadRequest, "unknown media kind")
	}
	token := h.svc.ArmDelete(service.DeleteTarget{Kind: service.TargetMedia, MediaKind: kind, ID: c.Params("id")})
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"confirm_token": token})
}

// POST /api/admin/events/:id/delete — first activation, arms only.
func (h *Handler) ArmDeleteEvent(c *fiber.Ctx) error {
	token := h.svc.ArmDelete(service.DeleteTarget{Kind: service.TargetEvent, ID: c.Params("id")})
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"confirm_token": token})
}

type confirmBody struct {
	Token string `json:"token"`
}

// POST /api/admin/delete/confirm — second activation, executes the cascade.
func (h *Handler) ConfirmDelete(c *fiber.Ctx) error {
	var body confirmBody
	if err := c.BodyParser(&body); err != nil || body.Token == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "confirm token required")
	}
	if err := h.svc.ConfirmDelete(context.WithoutCancel(c.UserContext()), body.Token); err != nil {
		return respondErr(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

// POST /api/admin/delete/cancel
func (h *Handler) CancelDelete(c *fiber.Ctx) error {
	var body confirmBody
	if err := c.BodyParser(&body); err != nil || body.Token == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "confirm token required")
	}
	h.svc.CancelDelete(body.Token)
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"cancelled": true})
}

func formValue(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func respondErr(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, utils.ErrValidation):
		return utils.JSONError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, utils.ErrNotFound):
		return utils.JSONError(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, utils.ErrConfirmExpired):
		return utils.JSONError(c, fiber.StatusGone, "confirmation expired")
	case errors.Is(err, utils.ErrUnauthorized):
		return utils.JSONError(c, fiber.StatusUnauthorized, "unauthorized")
	default:
		return utils.JSONError(c, fiber.StatusInternalServerError, err.Error())
	}
}
